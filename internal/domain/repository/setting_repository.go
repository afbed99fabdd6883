package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ffclash/internal/common"
	"ffclash/internal/domain/model"
)

type SettingRepository interface {
	List(ctx context.Context) ([]model.SystemSetting, error)
	Get(ctx context.Context, key string) (*model.SystemSetting, error)
	Create(ctx context.Context, s *model.SystemSetting) error
	Update(ctx context.Context, s *model.SystemSetting) error
	// InsertIfMissing leaves an existing value untouched and reports whether a row was written.
	InsertIfMissing(ctx context.Context, s *model.SystemSetting) (bool, error)
}

const settingColumns = `id, key, value, description, created_at, updated_at`

type pgSettingRepository struct {
	db *sql.DB
}

func NewPgSettingRepository(db *sql.DB) SettingRepository {
	return &pgSettingRepository{db: db}
}

func scanSetting(row rowScanner) (*model.SystemSetting, error) {
	s := &model.SystemSetting{}
	if err := row.Scan(&s.ID, &s.Key, &s.Value, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *pgSettingRepository) List(ctx context.Context) ([]model.SystemSetting, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+settingColumns+` FROM system_settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("pgSettingRepository.List: %w", err)
	}
	defer rows.Close()

	settings := []model.SystemSetting{}
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("pgSettingRepository.List scan: %w", err)
		}
		settings = append(settings, *s)
	}
	return settings, rows.Err()
}

func (r *pgSettingRepository) Get(ctx context.Context, key string) (*model.SystemSetting, error) {
	s, err := scanSetting(r.db.QueryRowContext(ctx, `SELECT `+settingColumns+` FROM system_settings WHERE key = $1`, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSettingRepository.Get: %w", err)
	}
	return s, nil
}

func (r *pgSettingRepository) Create(ctx context.Context, s *model.SystemSetting) error {
	query := `INSERT INTO system_settings (id, key, value, description)
	          VALUES ($1, $2, $3, $4)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, s.ID, s.Key, s.Value, s.Description).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("setting %q already exists: %w", s.Key, common.ErrConflict)
		}
		return fmt.Errorf("pgSettingRepository.Create: %w", err)
	}
	return nil
}

// Update keeps the stored description when s.Description is nil.
func (r *pgSettingRepository) Update(ctx context.Context, s *model.SystemSetting) error {
	query := `UPDATE system_settings
	          SET value = $1, description = COALESCE($2, description), updated_at = CURRENT_TIMESTAMP
	          WHERE key = $3
	          RETURNING ` + settingColumns
	updated, err := scanSetting(r.db.QueryRowContext(ctx, query, s.Value, s.Description, s.Key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		return fmt.Errorf("pgSettingRepository.Update: %w", err)
	}
	*s = *updated
	return nil
}

func (r *pgSettingRepository) InsertIfMissing(ctx context.Context, s *model.SystemSetting) (bool, error) {
	query := `INSERT INTO system_settings (id, key, value, description)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (key) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, s.ID, s.Key, s.Value, s.Description)
	if err != nil {
		return false, fmt.Errorf("pgSettingRepository.InsertIfMissing: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
