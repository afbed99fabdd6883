package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ffclash/internal/domain/model"
)

type LedgerRepository interface {
	Create(ctx context.Context, tx *sql.Tx, e *model.LedgerEntry) error
	ListByUser(ctx context.Context, userID string) ([]model.LedgerEntry, error)
}

type pgLedgerRepository struct {
	db *sql.DB
}

func NewPgLedgerRepository(db *sql.DB) LedgerRepository {
	return &pgLedgerRepository{db: db}
}

func (r *pgLedgerRepository) Create(ctx context.Context, tx *sql.Tx, e *model.LedgerEntry) error {
	query := `INSERT INTO balance_ledger (id, user_id, operation, amount, balance_after, reason, reference_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at`
	err := pick(r.db, tx).QueryRowContext(ctx, query,
		e.ID, e.UserID, e.Operation, e.Amount, e.BalanceAfter, e.Reason, e.ReferenceID,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgLedgerRepository.Create: %w", err)
	}
	return nil
}

func (r *pgLedgerRepository) ListByUser(ctx context.Context, userID string) ([]model.LedgerEntry, error) {
	query := `SELECT id, user_id, operation, amount, balance_after, reason, reference_id, created_at
	          FROM balance_ledger WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgLedgerRepository.ListByUser: %w", err)
	}
	defer rows.Close()

	entries := []model.LedgerEntry{}
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Operation, &e.Amount, &e.BalanceAfter, &e.Reason, &e.ReferenceID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgLedgerRepository.ListByUser scan: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
