package service

import (
	"context"
	"fmt"

	"ffclash/internal/common"
	"ffclash/internal/domain/model"
	"ffclash/internal/domain/repository"

	"github.com/google/uuid"
)

type WalletService struct {
	repo repository.AdminWalletRepository
}

func NewWalletService(repo repository.AdminWalletRepository) *WalletService {
	return &WalletService{repo: repo}
}

type UpsertWalletRequest struct {
	PaymentMethod model.PaymentMethod `json:"payment_method" validate:"required,oneof=bkash nagad rocket"`
	WalletNumber  string              `json:"wallet_number" validate:"required,wallet"`
	IsActive      *bool               `json:"is_active,omitempty"`
}

func (s *WalletService) List(ctx context.Context) ([]model.AdminWallet, error) {
	wallets, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}

func (s *WalletService) ListActive(ctx context.Context) ([]model.AdminWallet, error) {
	wallets, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active wallets: %w", err)
	}
	return wallets, nil
}

// Upsert replaces the wallet for the payment method. IsActive defaults to true.
func (s *WalletService) Upsert(ctx context.Context, req UpsertWalletRequest) (*model.AdminWallet, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	wallet := &model.AdminWallet{
		ID:            uuid.NewString(),
		PaymentMethod: req.PaymentMethod,
		WalletNumber:  req.WalletNumber,
		IsActive:      active,
	}
	if err := s.repo.Upsert(ctx, wallet); err != nil {
		return nil, fmt.Errorf("failed to save wallet: %w", err)
	}
	return wallet, nil
}
