package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ffclash/internal/domain/model"
)

type AdminWalletRepository interface {
	List(ctx context.Context) ([]model.AdminWallet, error)
	ListActive(ctx context.Context) ([]model.AdminWallet, error)
	// Upsert inserts or replaces the wallet for its payment method.
	Upsert(ctx context.Context, w *model.AdminWallet) error
}

const adminWalletColumns = `id, payment_method, wallet_number, is_active, created_at, updated_at`

type pgAdminWalletRepository struct {
	db *sql.DB
}

func NewPgAdminWalletRepository(db *sql.DB) AdminWalletRepository {
	return &pgAdminWalletRepository{db: db}
}

func (r *pgAdminWalletRepository) List(ctx context.Context) ([]model.AdminWallet, error) {
	return r.list(ctx, "List", `SELECT `+adminWalletColumns+` FROM admin_wallets ORDER BY payment_method`)
}

func (r *pgAdminWalletRepository) ListActive(ctx context.Context) ([]model.AdminWallet, error) {
	return r.list(ctx, "ListActive", `SELECT `+adminWalletColumns+` FROM admin_wallets WHERE is_active = TRUE ORDER BY payment_method`)
}

func (r *pgAdminWalletRepository) list(ctx context.Context, op, query string) ([]model.AdminWallet, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgAdminWalletRepository.%s: %w", op, err)
	}
	defer rows.Close()

	wallets := []model.AdminWallet{}
	for rows.Next() {
		var w model.AdminWallet
		if err := rows.Scan(&w.ID, &w.PaymentMethod, &w.WalletNumber, &w.IsActive, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgAdminWalletRepository.%s scan: %w", op, err)
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

func (r *pgAdminWalletRepository) Upsert(ctx context.Context, w *model.AdminWallet) error {
	query := `INSERT INTO admin_wallets (id, payment_method, wallet_number, is_active)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (payment_method) DO UPDATE
	          SET wallet_number = EXCLUDED.wallet_number, is_active = EXCLUDED.is_active, updated_at = CURRENT_TIMESTAMP
	          RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, w.ID, w.PaymentMethod, w.WalletNumber, w.IsActive).
		Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pgAdminWalletRepository.Upsert: %w", err)
	}
	return nil
}
