package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"ffclash/internal/common"
	"ffclash/internal/domain/model"
	"ffclash/internal/domain/repository"
	"ffclash/internal/platform/database"
	"ffclash/internal/platform/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type RequestService struct {
	balanceReqRepo  repository.BalanceRequestRepository
	withdrawReqRepo repository.WithdrawRequestRepository
	userRepo        repository.UserRepository
	balance         *BalanceService
	settings        *SettingService
	notifications   *NotificationService
	tx              database.Transactor
}

func NewRequestService(
	balanceReqRepo repository.BalanceRequestRepository,
	withdrawReqRepo repository.WithdrawRequestRepository,
	userRepo repository.UserRepository,
	balance *BalanceService,
	settings *SettingService,
	notifications *NotificationService,
	tx database.Transactor,
) *RequestService {
	return &RequestService{
		balanceReqRepo:  balanceReqRepo,
		withdrawReqRepo: withdrawReqRepo,
		userRepo:        userRepo,
		balance:         balance,
		settings:        settings,
		notifications:   notifications,
		tx:              tx,
	}
}

type SubmitBalanceRequest struct {
	Amount        decimal.Decimal     `json:"amount"`
	PaymentMethod model.PaymentMethod `json:"payment_method" validate:"required,oneof=bkash nagad rocket"`
	SenderWallet  string              `json:"sender_wallet" validate:"required,wallet"`
	TransactionID string              `json:"transaction_id" validate:"required"`
}

type SubmitWithdrawRequest struct {
	Amount         decimal.Decimal     `json:"amount"`
	PaymentMethod  model.PaymentMethod `json:"payment_method" validate:"required,oneof=bkash nagad rocket"`
	ReceiverWallet string              `json:"receiver_wallet" validate:"required,wallet"`
}

type UpdateRequestStatusRequest struct {
	Status model.RequestStatus `json:"status" validate:"required,oneof=pending approved rejected completed"`
}

type PendingCount struct {
	BalanceRequests  int `json:"balance_requests"`
	WithdrawRequests int `json:"withdraw_requests"`
	Total            int `json:"total"`
	// Count mirrors Total for clients that read pendingCount.count.
	Count int `json:"count"`
}

func checkAmount(amount decimal.Decimal, limits model.AmountLimits) error {
	if !amount.IsPositive() {
		return common.NewValidationError("amount must be greater than 0")
	}
	if err := checkMoney(amount); err != nil {
		return err
	}
	if !limits.Contains(amount) {
		return common.NewValidationError(fmt.Sprintf("amount must be between %s and %s", limits.Min.String(), limits.Max.String()))
	}
	return nil
}

func (s *RequestService) SubmitBalanceRequest(ctx context.Context, userID string, req SubmitBalanceRequest) (*model.BalanceRequest, error) {
	req.TransactionID = strings.TrimSpace(req.TransactionID)
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	if maxLen := req.PaymentMethod.MaxTransactionIDLength(); len(req.TransactionID) > maxLen {
		return nil, common.NewValidationError(fmt.Sprintf("transaction_id for %s must have maximum length %d", req.PaymentMethod, maxLen))
	}
	limits, err := s.settings.BalanceAddLimits(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkAmount(req.Amount, limits); err != nil {
		return nil, err
	}

	br := &model.BalanceRequest{
		ID:            uuid.NewString(),
		UserID:        userID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		SenderWallet:  req.SenderWallet,
		TransactionID: req.TransactionID,
		Status:        model.RequestPending,
	}
	if err := s.balanceReqRepo.Create(ctx, br); err != nil {
		return nil, fmt.Errorf("failed to create balance request: %w", err)
	}

	s.notifications.AlertAdmins(ctx, fmt.Sprintf("New add money request: %s BDT via %s from %s (trx %s)",
		br.Amount.StringFixed(2), br.PaymentMethod, br.SenderWallet, br.TransactionID))
	logger.WithFields(logrus.Fields{"request_id": br.ID, "user_id": userID}).Info("balance request submitted")
	return br, nil
}

// SubmitWithdrawRequest checks the balance but does not hold funds; the debit
// happens when an admin approves.
func (s *RequestService) SubmitWithdrawRequest(ctx context.Context, userID string, req SubmitWithdrawRequest) (*model.WithdrawRequest, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	limits, err := s.settings.WithdrawLimits(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkAmount(req.Amount, limits); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, nil, userID)
	if err != nil {
		return nil, notFoundAs(err, "user not found")
	}
	if user.Balance.LessThan(req.Amount) {
		return nil, common.NewError(common.ErrInsufficientBalance, "insufficient balance")
	}

	wr := &model.WithdrawRequest{
		ID:             uuid.NewString(),
		UserID:         userID,
		Amount:         req.Amount,
		PaymentMethod:  req.PaymentMethod,
		ReceiverWallet: req.ReceiverWallet,
		Status:         model.RequestPending,
	}
	if err := s.withdrawReqRepo.Create(ctx, wr); err != nil {
		return nil, fmt.Errorf("failed to create withdraw request: %w", err)
	}

	s.notifications.AlertAdmins(ctx, fmt.Sprintf("New withdraw request: %s BDT via %s to %s (user %s)",
		wr.Amount.StringFixed(2), wr.PaymentMethod, wr.ReceiverWallet, user.Username))
	logger.WithFields(logrus.Fields{"request_id": wr.ID, "user_id": userID}).Info("withdraw request submitted")
	return wr, nil
}

func invalidTransition(from, to model.RequestStatus) error {
	return common.NewError(common.ErrInvalidTransition, fmt.Sprintf("cannot change request status from %s to %s", from, to))
}

// balanceRequestEffect returns the balance operation a transition triggers ("" for none).
func balanceRequestEffect(from, to model.RequestStatus) (model.BalanceOperation, error) {
	if from == model.RequestPending {
		switch to {
		case model.RequestApproved:
			return model.BalanceAdd, nil
		case model.RequestRejected:
			return "", nil
		}
	}
	return "", invalidTransition(from, to)
}

// withdrawRequestEffect implements deduct on approval. approved -> rejected
// refunds because the debit already happened.
func withdrawRequestEffect(from, to model.RequestStatus) (model.BalanceOperation, error) {
	switch from {
	case model.RequestPending:
		switch to {
		case model.RequestApproved, model.RequestCompleted:
			return model.BalanceSubtract, nil
		case model.RequestRejected:
			return "", nil
		}
	case model.RequestApproved:
		switch to {
		case model.RequestCompleted:
			return "", nil
		case model.RequestRejected:
			return model.BalanceAdd, nil
		}
	}
	return "", invalidTransition(from, to)
}

func (s *RequestService) UpdateBalanceRequestStatus(ctx context.Context, id string, req UpdateRequestStatusRequest) (*model.BalanceRequest, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	var br *model.BalanceRequest
	err := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		var err error
		br, err = s.balanceReqRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return notFoundAs(err, "balance request not found")
		}
		op, err := balanceRequestEffect(br.Status, req.Status)
		if err != nil {
			return err
		}
		if op != "" {
			if _, err := s.balance.Apply(ctx, tx, br.UserID, br.Amount, op, model.ReasonBalanceRequest, &br.ID); err != nil {
				return err
			}
		}
		if err := s.balanceReqRepo.UpdateStatus(ctx, tx, br.ID, req.Status); err != nil {
			return err
		}
		br.Status = req.Status
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{"request_id": id, "status": req.Status}).Info("balance request updated")
	s.notifyOwner(ctx, br.UserID, "Add money request "+string(req.Status),
		fmt.Sprintf("Your add money request of %s BDT via %s is now %s.", br.Amount.StringFixed(2), br.PaymentMethod, req.Status))
	return br, nil
}

func (s *RequestService) UpdateWithdrawRequestStatus(ctx context.Context, id string, req UpdateRequestStatusRequest) (*model.WithdrawRequest, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	var wr *model.WithdrawRequest
	err := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		var err error
		wr, err = s.withdrawReqRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return notFoundAs(err, "withdraw request not found")
		}
		op, err := withdrawRequestEffect(wr.Status, req.Status)
		if err != nil {
			return err
		}
		if op != "" {
			if _, err := s.balance.Apply(ctx, tx, wr.UserID, wr.Amount, op, model.ReasonWithdrawRequest, &wr.ID); err != nil {
				return err
			}
		}
		if err := s.withdrawReqRepo.UpdateStatus(ctx, tx, wr.ID, req.Status); err != nil {
			return err
		}
		wr.Status = req.Status
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{"request_id": id, "status": req.Status}).Info("withdraw request updated")
	s.notifyOwner(ctx, wr.UserID, "Withdraw request "+string(req.Status),
		fmt.Sprintf("Your withdraw request of %s BDT to %s is now %s.", wr.Amount.StringFixed(2), wr.ReceiverWallet, req.Status))
	return wr, nil
}

// notifyOwner emails the request owner after a committed status change.
func (s *RequestService) notifyOwner(ctx context.Context, userID, subject, body string) {
	user, err := s.userRepo.FindByID(ctx, nil, userID)
	if err != nil {
		logger.WithField("user_id", userID).Warnf("status email skipped: %v", err)
		return
	}
	s.notifications.SendEmail(ctx, user.Email, subject, "Hi "+user.Username+",\n\n"+body)
}

func parseStatusFilter(status string) (model.RequestStatus, error) {
	switch rs := model.RequestStatus(status); rs {
	case "", model.RequestPending, model.RequestApproved, model.RequestRejected, model.RequestCompleted:
		return rs, nil
	}
	return "", common.NewValidationError("status must be one of [pending approved rejected completed]")
}

func (s *RequestService) ListBalanceRequests(ctx context.Context, status string) ([]model.BalanceRequest, error) {
	rs, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}
	list, err := s.balanceReqRepo.List(ctx, rs)
	if err != nil {
		return nil, fmt.Errorf("failed to list balance requests: %w", err)
	}
	return list, nil
}

func (s *RequestService) ListWithdrawRequests(ctx context.Context, status string) ([]model.WithdrawRequest, error) {
	rs, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}
	list, err := s.withdrawReqRepo.List(ctx, rs)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdraw requests: %w", err)
	}
	return list, nil
}

func (s *RequestService) PendingCount(ctx context.Context) (*PendingCount, error) {
	b, err := s.balanceReqRepo.CountPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending balance requests: %w", err)
	}
	w, err := s.withdrawReqRepo.CountPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending withdraw requests: %w", err)
	}
	return &PendingCount{BalanceRequests: b, WithdrawRequests: w, Total: b + w, Count: b + w}, nil
}

func (s *RequestService) UserTransactions(ctx context.Context, userID string) (*model.UserTransactions, error) {
	b, err := s.balanceReqRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list balance requests: %w", err)
	}
	w, err := s.withdrawReqRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdraw requests: %w", err)
	}
	return &model.UserTransactions{BalanceRequests: b, WithdrawRequests: w}, nil
}
