package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ffclash/internal/domain/model"
)

type UIDChangeLogRepository interface {
	Create(ctx context.Context, tx *sql.Tx, log *model.UIDChangeLog) error
	ListByUser(ctx context.Context, userID string) ([]model.UIDChangeLog, error)
}

type pgUIDChangeLogRepository struct {
	db *sql.DB
}

func NewPgUIDChangeLogRepository(db *sql.DB) UIDChangeLogRepository {
	return &pgUIDChangeLogRepository{db: db}
}

func (r *pgUIDChangeLogRepository) Create(ctx context.Context, tx *sql.Tx, l *model.UIDChangeLog) error {
	query := `INSERT INTO uid_change_logs (id, user_id, old_uid, new_uid, changed_by, change_reason)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at`
	err := pick(r.db, tx).QueryRowContext(ctx, query,
		l.ID, l.UserID, l.OldUID, l.NewUID, l.ChangedBy, l.ChangeReason,
	).Scan(&l.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgUIDChangeLogRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUIDChangeLogRepository) ListByUser(ctx context.Context, userID string) ([]model.UIDChangeLog, error) {
	query := `SELECT id, user_id, old_uid, new_uid, changed_by, change_reason, created_at
	          FROM uid_change_logs WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgUIDChangeLogRepository.ListByUser: %w", err)
	}
	defer rows.Close()

	logs := []model.UIDChangeLog{}
	for rows.Next() {
		var l model.UIDChangeLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.OldUID, &l.NewUID, &l.ChangedBy, &l.ChangeReason, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgUIDChangeLogRepository.ListByUser scan: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
