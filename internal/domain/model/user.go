package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TokenTypeUser  = "user"
	TokenTypeAdmin = "admin"
)

type User struct {
	ID             string          `json:"id"`
	Username       string          `json:"username"`
	Email          string          `json:"email"`
	HashedPassword string          `json:"-"` // Not exposed
	FreeFireUID    string          `json:"free_fire_uid"`
	Balance        decimal.Decimal `json:"balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type Admin struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UIDChangeLog records every change of a user's Free Fire UID.
// ChangedBy is nil when the user changed it themselves.
type UIDChangeLog struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	OldUID       *string   `json:"old_uid,omitempty"`
	NewUID       string    `json:"new_uid"`
	ChangedBy    *string   `json:"changed_by,omitempty"`
	ChangeReason *string   `json:"change_reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type PasswordResetToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

// Valid reports whether the token can still be redeemed at now.
func (t *PasswordResetToken) Valid(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
