package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ffclash/internal/common"
	"ffclash/internal/domain/model"
)

type AdminRepository interface {
	FindByID(ctx context.Context, id string) (*model.Admin, error)
	FindByUsername(ctx context.Context, username string) (*model.Admin, error)
	// Upsert creates the admin or refreshes email and password for an existing username.
	Upsert(ctx context.Context, admin *model.Admin) error
}

const adminColumns = `id, username, email, hashed_password, created_at, updated_at`

type pgAdminRepository struct {
	db *sql.DB
}

func NewPgAdminRepository(db *sql.DB) AdminRepository {
	return &pgAdminRepository{db: db}
}

func (r *pgAdminRepository) find(ctx context.Context, op, where string, arg interface{}) (*model.Admin, error) {
	admin := &model.Admin{}
	err := r.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admins WHERE `+where, arg).Scan(
		&admin.ID, &admin.Username, &admin.Email, &admin.HashedPassword, &admin.CreatedAt, &admin.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgAdminRepository.%s: %w", op, err)
	}
	return admin, nil
}

func (r *pgAdminRepository) FindByID(ctx context.Context, id string) (*model.Admin, error) {
	return r.find(ctx, "FindByID", "id = $1", id)
}

func (r *pgAdminRepository) FindByUsername(ctx context.Context, username string) (*model.Admin, error) {
	return r.find(ctx, "FindByUsername", "username = $1", username)
}

func (r *pgAdminRepository) Upsert(ctx context.Context, admin *model.Admin) error {
	query := `INSERT INTO admins (id, username, email, hashed_password)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (username) DO UPDATE
	          SET email = EXCLUDED.email, hashed_password = EXCLUDED.hashed_password, updated_at = CURRENT_TIMESTAMP
	          RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, admin.ID, admin.Username, admin.Email, admin.HashedPassword).
		Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("admin email already in use: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgAdminRepository.Upsert: %w", err)
	}
	return nil
}
