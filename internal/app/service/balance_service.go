package service

import (
	"context"
	"database/sql"
	"fmt"

	"ffclash/internal/common"
	"ffclash/internal/domain/model"
	"ffclash/internal/domain/repository"
	"ffclash/internal/platform/database"
	"ffclash/internal/platform/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type BalanceService struct {
	userRepo   repository.UserRepository
	ledgerRepo repository.LedgerRepository
	tx         database.Transactor
}

func NewBalanceService(userRepo repository.UserRepository, ledgerRepo repository.LedgerRepository, tx database.Transactor) *BalanceService {
	return &BalanceService{userRepo: userRepo, ledgerRepo: ledgerRepo, tx: tx}
}

type UpdateBalanceRequest struct {
	Amount    *decimal.Decimal       `json:"amount"`
	Operation model.BalanceOperation `json:"operation"`
}

// maxAmount is the first value a NUMERIC(10,2) column cannot hold.
var maxAmount = decimal.New(1, 8)

// checkMoney rejects values the balance columns would round or overflow.
func checkMoney(amount decimal.Decimal) error {
	if !amount.Equal(amount.Round(2)) {
		return common.NewValidationError("amount must have at most 2 decimal places")
	}
	if amount.Abs().GreaterThanOrEqual(maxAmount) {
		return common.NewValidationError("amount must be less than " + maxAmount.String())
	}
	return nil
}

// normalizeOperation defaults an empty operation to add.
func normalizeOperation(op model.BalanceOperation, amount decimal.Decimal) (model.BalanceOperation, error) {
	if op == "" {
		op = model.BalanceAdd
	}
	if !op.Valid() {
		return "", common.NewValidationError("operation must be one of [add subtract set]")
	}
	if amount.IsNegative() {
		return "", common.NewValidationError("amount must not be negative")
	}
	if err := checkMoney(amount); err != nil {
		return "", err
	}
	return op, nil
}

// Apply mutates the balance inside tx and records a ledger entry.
func (s *BalanceService) Apply(ctx context.Context, tx *sql.Tx, userID string, amount decimal.Decimal, op model.BalanceOperation, reason model.LedgerReason, referenceID *string) (*model.User, error) {
	op, err := normalizeOperation(op, amount)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.UpdateBalance(ctx, tx, userID, amount, op)
	if err != nil {
		return nil, fmt.Errorf("BalanceService.Apply: %w", err)
	}

	entry := &model.LedgerEntry{
		ID:           uuid.NewString(),
		UserID:       userID,
		Operation:    op,
		Amount:       amount,
		BalanceAfter: user.Balance,
		Reason:       reason,
		ReferenceID:  referenceID,
	}
	if err := s.ledgerRepo.Create(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("BalanceService.Apply ledger: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"operation": op,
		"amount":    amount.StringFixed(2),
		"reason":    reason,
		"balance":   user.Balance.StringFixed(2),
	}).Info("balance updated")
	return user, nil
}

// AdminUpdate is the admin add/subtract/set endpoint.
// Only set accepts zero.
func (s *BalanceService) AdminUpdate(ctx context.Context, userID string, req UpdateBalanceRequest) (*model.User, error) {
	if req.Amount == nil {
		return nil, common.NewValidationError("amount is required")
	}
	amount := *req.Amount
	op, err := normalizeOperation(req.Operation, amount)
	if err != nil {
		return nil, err
	}
	if op != model.BalanceSet && amount.IsZero() {
		return nil, common.NewValidationError("amount must be greater than 0")
	}

	var user *model.User
	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		var err error
		user, err = s.Apply(ctx, tx, userID, amount, op, model.ReasonAdminAdjustment, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *BalanceService) Ledger(ctx context.Context, userID string) ([]model.LedgerEntry, error) {
	entries, err := s.ledgerRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return entries, nil
}
