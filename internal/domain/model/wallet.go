package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentBkash  PaymentMethod = "bkash"
	PaymentNagad  PaymentMethod = "nagad"
	PaymentRocket PaymentMethod = "rocket"
)

// MaxTransactionIDLength is the longest transaction id each provider issues.
func (m PaymentMethod) MaxTransactionIDLength() int {
	switch m {
	case PaymentNagad:
		return 8
	case PaymentRocket:
		return 20
	default:
		return 10
	}
}

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestCompleted RequestStatus = "completed"
)

type BalanceRequest struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	SenderWallet  string          `json:"sender_wallet"`
	TransactionID string          `json:"transaction_id"`
	Status        RequestStatus   `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type WithdrawRequest struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	ReceiverWallet string          `json:"receiver_wallet"`
	Status         RequestStatus   `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AdminWallet is the operator account users send top-ups to, one per payment method.
type AdminWallet struct {
	ID            string        `json:"id"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	WalletNumber  string        `json:"wallet_number"`
	IsActive      bool          `json:"is_active"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type BalanceOperation string

const (
	BalanceAdd      BalanceOperation = "add"
	BalanceSubtract BalanceOperation = "subtract"
	BalanceSet      BalanceOperation = "set"
)

func (op BalanceOperation) Valid() bool {
	return op == BalanceAdd || op == BalanceSubtract || op == BalanceSet
}

type LedgerReason string

const (
	ReasonBalanceRequest  LedgerReason = "balance_request"
	ReasonWithdrawRequest LedgerReason = "withdraw_request"
	ReasonTournamentEntry LedgerReason = "tournament_entry"
	ReasonAdminAdjustment LedgerReason = "admin_adjustment"
)

// LedgerEntry is written alongside every balance mutation.
type LedgerEntry struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	Operation    BalanceOperation `json:"operation"`
	Amount       decimal.Decimal  `json:"amount"`
	BalanceAfter decimal.Decimal  `json:"balance_after"`
	Reason       LedgerReason     `json:"reason"`
	ReferenceID  *string          `json:"reference_id,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

type UserTransactions struct {
	BalanceRequests  []BalanceRequest  `json:"balance_requests"`
	WithdrawRequests []WithdrawRequest `json:"withdraw_requests"`
}
