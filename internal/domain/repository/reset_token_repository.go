package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ffclash/internal/common"
	"ffclash/internal/domain/model"
)

type PasswordResetTokenRepository interface {
	Create(ctx context.Context, t *model.PasswordResetToken) error
	FindByToken(ctx context.Context, tx *sql.Tx, token string) (*model.PasswordResetToken, error)
	MarkUsed(ctx context.Context, tx *sql.Tx, id string) error
	// DeleteStale removes tokens that are used or expired before now.
	DeleteStale(ctx context.Context, now time.Time) (int64, error)
}

type pgPasswordResetTokenRepository struct {
	db *sql.DB
}

func NewPgPasswordResetTokenRepository(db *sql.DB) PasswordResetTokenRepository {
	return &pgPasswordResetTokenRepository{db: db}
}

func (r *pgPasswordResetTokenRepository) Create(ctx context.Context, t *model.PasswordResetToken) error {
	query := `INSERT INTO password_reset_tokens (id, user_id, token, expires_at, used)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, t.ID, t.UserID, t.Token, t.ExpiresAt, t.Used).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgPasswordResetTokenRepository.Create: %w", err)
	}
	return nil
}

func (r *pgPasswordResetTokenRepository) FindByToken(ctx context.Context, tx *sql.Tx, token string) (*model.PasswordResetToken, error) {
	query := `SELECT id, user_id, token, expires_at, used, created_at FROM password_reset_tokens WHERE token = $1`
	if tx != nil {
		query += ` FOR UPDATE`
	}
	t := &model.PasswordResetToken{}
	err := pick(r.db, tx).QueryRowContext(ctx, query, token).Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgPasswordResetTokenRepository.FindByToken: %w", err)
	}
	return t, nil
}

func (r *pgPasswordResetTokenRepository) MarkUsed(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := pick(r.db, tx).ExecContext(ctx, `UPDATE password_reset_tokens SET used = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("pgPasswordResetTokenRepository.MarkUsed: %w", err)
	}
	return nil
}

func (r *pgPasswordResetTokenRepository) DeleteStale(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE used = TRUE OR expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("pgPasswordResetTokenRepository.DeleteStale: %w", err)
	}
	return res.RowsAffected()
}
