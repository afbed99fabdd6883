package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SettingMinBalanceAdd  = "min_balance_add"
	SettingMaxBalanceAdd  = "max_balance_add"
	SettingMinWithdraw    = "min_withdraw"
	SettingMaxWithdraw    = "max_withdraw"
	SettingSocialFacebook = "social_facebook"
	SettingSocialTelegram = "social_telegram"
	SettingSocialWhatsapp = "social_whatsapp"
)

type SystemSetting struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultSettings are seeded by the admin tool and used when a key is missing.
var DefaultSettings = []SystemSetting{
	{Key: SettingMinBalanceAdd, Value: "20", Description: strPtr("Minimum amount for add money requests")},
	{Key: SettingMaxBalanceAdd, Value: "1000", Description: strPtr("Maximum amount for add money requests")},
	{Key: SettingMinWithdraw, Value: "20", Description: strPtr("Minimum amount for withdraw requests")},
	{Key: SettingMaxWithdraw, Value: "1000", Description: strPtr("Maximum amount for withdraw requests")},
	{Key: SettingSocialFacebook, Value: "", Description: strPtr("Facebook support link")},
	{Key: SettingSocialTelegram, Value: "", Description: strPtr("Telegram support link")},
	{Key: SettingSocialWhatsapp, Value: "", Description: strPtr("WhatsApp support link")},
}

// AmountLimits bounds a financial request amount (inclusive).
type AmountLimits struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

func (l AmountLimits) Contains(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(l.Min) && amount.LessThanOrEqual(l.Max)
}

type SocialLinks struct {
	Facebook string `json:"facebook"`
	Telegram string `json:"telegram"`
	Whatsapp string `json:"whatsapp"`
}

type PublicSettings struct {
	BalanceAdd AmountLimits `json:"balance_add"`
	Withdraw   AmountLimits `json:"withdraw"`
	Social     SocialLinks  `json:"social"`
}

type DashboardStats struct {
	TotalUsers        int             `json:"total_users"`
	ActiveTournaments int             `json:"active_tournaments"`
	PendingRequests   int             `json:"pending_requests"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
}

func strPtr(s string) *string { return &s }
