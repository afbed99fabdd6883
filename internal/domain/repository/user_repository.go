package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ffclash/internal/common"
	"ffclash/internal/domain/model"

	"github.com/shopspring/decimal"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByFreeFireUID(ctx context.Context, uid string) (*model.User, error)
	FindByID(ctx context.Context, tx *sql.Tx, id string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, tx *sql.Tx, user *model.User) error
	UpdatePassword(ctx context.Context, tx *sql.Tx, userID, hashedPassword string) error
	UpdateBalance(ctx context.Context, tx *sql.Tx, userID string, amount decimal.Decimal, op model.BalanceOperation) (*model.User, error)
}

const userColumns = `id, username, email, hashed_password, free_fire_uid, balance, created_at, updated_at`

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

func scanUser(row rowScanner) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.FreeFireUID,
		&user.Balance, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, username, email, hashed_password, free_fire_uid, balance)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.HashedPassword, user.FreeFireUID, user.Balance,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("user with given username, email or free fire uid already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) findOne(ctx context.Context, q querier, op, where string, arg interface{}) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	user, err := scanUser(q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.%s: %w", op, err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, r.db, "FindByEmail", "email = $1", email)
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, r.db, "FindByUsername", "username = $1", username)
}

func (r *pgUserRepository) FindByFreeFireUID(ctx context.Context, uid string) (*model.User, error) {
	return r.findOne(ctx, r.db, "FindByFreeFireUID", "free_fire_uid = $1", uid)
}

func (r *pgUserRepository) FindByID(ctx context.Context, tx *sql.Tx, id string) (*model.User, error) {
	return r.findOne(ctx, pick(r.db, tx), "FindByID", "id = $1", id)
}

func (r *pgUserRepository) List(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.List: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("pgUserRepository.List scan: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *pgUserRepository) UpdateProfile(ctx context.Context, tx *sql.Tx, user *model.User) error {
	query := `UPDATE users SET username = $1, free_fire_uid = $2, hashed_password = $3, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $4
	          RETURNING updated_at`
	err := pick(r.db, tx).QueryRowContext(ctx, query,
		user.Username, user.FreeFireUID, user.HashedPassword, user.ID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("username or free fire uid already taken: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.UpdateProfile: %w", err)
	}
	return nil
}

func (r *pgUserRepository) UpdatePassword(ctx context.Context, tx *sql.Tx, userID, hashedPassword string) error {
	query := `UPDATE users SET hashed_password = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	res, err := pick(r.db, tx).ExecContext(ctx, query, hashedPassword, userID)
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdatePassword: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// UpdateBalance applies op in a single statement. A subtract that would take
// the balance below zero matches no row and yields ErrInsufficientBalance.
func (r *pgUserRepository) UpdateBalance(ctx context.Context, tx *sql.Tx, userID string, amount decimal.Decimal, op model.BalanceOperation) (*model.User, error) {
	var set, guard string
	switch op {
	case model.BalanceAdd:
		set = "balance + $2"
	case model.BalanceSubtract:
		set = "balance - $2"
		guard = " AND balance >= $2"
	case model.BalanceSet:
		set = "$2"
	default:
		return nil, fmt.Errorf("unknown balance operation %q: %w", op, common.ErrValidation)
	}

	q := pick(r.db, tx)
	query := `UPDATE users SET balance = ` + set + `, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $1` + guard + `
	          RETURNING ` + userColumns
	user, err := scanUser(q.QueryRowContext(ctx, query, userID, amount))
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pgUserRepository.UpdateBalance: %w", err)
	}
	if op != model.BalanceSubtract {
		return nil, common.ErrNotFound
	}

	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("pgUserRepository.UpdateBalance exists: %w", err)
	}
	if !exists {
		return nil, common.ErrNotFound
	}
	return nil, common.NewError(common.ErrInsufficientBalance, "insufficient balance")
}
