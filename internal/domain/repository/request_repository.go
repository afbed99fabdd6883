package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ffclash/internal/common"
	"ffclash/internal/domain/model"
)

type BalanceRequestRepository interface {
	Create(ctx context.Context, req *model.BalanceRequest) error
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.BalanceRequest, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id string, status model.RequestStatus) error
	// List returns all requests, newest first. An empty status means no filter.
	List(ctx context.Context, status model.RequestStatus) ([]model.BalanceRequest, error)
	ListByUser(ctx context.Context, userID string) ([]model.BalanceRequest, error)
	CountPending(ctx context.Context) (int, error)
}

type WithdrawRequestRepository interface {
	Create(ctx context.Context, req *model.WithdrawRequest) error
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.WithdrawRequest, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id string, status model.RequestStatus) error
	List(ctx context.Context, status model.RequestStatus) ([]model.WithdrawRequest, error)
	ListByUser(ctx context.Context, userID string) ([]model.WithdrawRequest, error)
	CountPending(ctx context.Context) (int, error)
}

const balanceRequestColumns = `id, user_id, amount, payment_method, sender_wallet, transaction_id, status, created_at, updated_at`

type pgBalanceRequestRepository struct {
	db *sql.DB
}

func NewPgBalanceRequestRepository(db *sql.DB) BalanceRequestRepository {
	return &pgBalanceRequestRepository{db: db}
}

func scanBalanceRequest(row rowScanner) (*model.BalanceRequest, error) {
	br := &model.BalanceRequest{}
	err := row.Scan(&br.ID, &br.UserID, &br.Amount, &br.PaymentMethod, &br.SenderWallet, &br.TransactionID,
		&br.Status, &br.CreatedAt, &br.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return br, nil
}

func (r *pgBalanceRequestRepository) Create(ctx context.Context, br *model.BalanceRequest) error {
	query := `INSERT INTO balance_requests (id, user_id, amount, payment_method, sender_wallet, transaction_id, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		br.ID, br.UserID, br.Amount, br.PaymentMethod, br.SenderWallet, br.TransactionID, br.Status,
	).Scan(&br.CreatedAt, &br.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pgBalanceRequestRepository.Create: %w", err)
	}
	return nil
}

func (r *pgBalanceRequestRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.BalanceRequest, error) {
	query := `SELECT ` + balanceRequestColumns + ` FROM balance_requests WHERE id = $1 FOR UPDATE`
	br, err := scanBalanceRequest(pick(r.db, tx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgBalanceRequestRepository.FindByIDForUpdate: %w", err)
	}
	return br, nil
}

func (r *pgBalanceRequestRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id string, status model.RequestStatus) error {
	return updateRequestStatus(ctx, pick(r.db, tx), "balance_requests", id, status)
}

func (r *pgBalanceRequestRepository) List(ctx context.Context, status model.RequestStatus) ([]model.BalanceRequest, error) {
	query := `SELECT ` + balanceRequestColumns + ` FROM balance_requests
	          WHERE ($1::text = '' OR status = $1::text)
	          ORDER BY created_at DESC`
	return r.list(ctx, "List", query, string(status))
}

func (r *pgBalanceRequestRepository) ListByUser(ctx context.Context, userID string) ([]model.BalanceRequest, error) {
	query := `SELECT ` + balanceRequestColumns + ` FROM balance_requests WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, "ListByUser", query, userID)
}

func (r *pgBalanceRequestRepository) list(ctx context.Context, op, query string, arg interface{}) ([]model.BalanceRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("pgBalanceRequestRepository.%s: %w", op, err)
	}
	defer rows.Close()

	requests := []model.BalanceRequest{}
	for rows.Next() {
		br, err := scanBalanceRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("pgBalanceRequestRepository.%s scan: %w", op, err)
		}
		requests = append(requests, *br)
	}
	return requests, rows.Err()
}

func (r *pgBalanceRequestRepository) CountPending(ctx context.Context) (int, error) {
	return countPending(ctx, r.db, "balance_requests")
}

const withdrawRequestColumns = `id, user_id, amount, payment_method, receiver_wallet, status, created_at, updated_at`

type pgWithdrawRequestRepository struct {
	db *sql.DB
}

func NewPgWithdrawRequestRepository(db *sql.DB) WithdrawRequestRepository {
	return &pgWithdrawRequestRepository{db: db}
}

func scanWithdrawRequest(row rowScanner) (*model.WithdrawRequest, error) {
	wr := &model.WithdrawRequest{}
	err := row.Scan(&wr.ID, &wr.UserID, &wr.Amount, &wr.PaymentMethod, &wr.ReceiverWallet,
		&wr.Status, &wr.CreatedAt, &wr.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return wr, nil
}

func (r *pgWithdrawRequestRepository) Create(ctx context.Context, wr *model.WithdrawRequest) error {
	query := `INSERT INTO withdraw_requests (id, user_id, amount, payment_method, receiver_wallet, status)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		wr.ID, wr.UserID, wr.Amount, wr.PaymentMethod, wr.ReceiverWallet, wr.Status,
	).Scan(&wr.CreatedAt, &wr.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pgWithdrawRequestRepository.Create: %w", err)
	}
	return nil
}

func (r *pgWithdrawRequestRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.WithdrawRequest, error) {
	query := `SELECT ` + withdrawRequestColumns + ` FROM withdraw_requests WHERE id = $1 FOR UPDATE`
	wr, err := scanWithdrawRequest(pick(r.db, tx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgWithdrawRequestRepository.FindByIDForUpdate: %w", err)
	}
	return wr, nil
}

func (r *pgWithdrawRequestRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id string, status model.RequestStatus) error {
	return updateRequestStatus(ctx, pick(r.db, tx), "withdraw_requests", id, status)
}

func (r *pgWithdrawRequestRepository) List(ctx context.Context, status model.RequestStatus) ([]model.WithdrawRequest, error) {
	query := `SELECT ` + withdrawRequestColumns + ` FROM withdraw_requests
	          WHERE ($1::text = '' OR status = $1::text)
	          ORDER BY created_at DESC`
	return r.list(ctx, "List", query, string(status))
}

func (r *pgWithdrawRequestRepository) ListByUser(ctx context.Context, userID string) ([]model.WithdrawRequest, error) {
	query := `SELECT ` + withdrawRequestColumns + ` FROM withdraw_requests WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, "ListByUser", query, userID)
}

func (r *pgWithdrawRequestRepository) list(ctx context.Context, op, query string, arg interface{}) ([]model.WithdrawRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("pgWithdrawRequestRepository.%s: %w", op, err)
	}
	defer rows.Close()

	requests := []model.WithdrawRequest{}
	for rows.Next() {
		wr, err := scanWithdrawRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("pgWithdrawRequestRepository.%s scan: %w", op, err)
		}
		requests = append(requests, *wr)
	}
	return requests, rows.Err()
}

func (r *pgWithdrawRequestRepository) CountPending(ctx context.Context) (int, error) {
	return countPending(ctx, r.db, "withdraw_requests")
}

// table is always a package constant, never user input.
func updateRequestStatus(ctx context.Context, q querier, table, id string, status model.RequestStatus) error {
	query := `UPDATE ` + table + ` SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	res, err := q.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updateRequestStatus(%s): %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func countPending(ctx context.Context, q querier, table string) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+` WHERE status = 'pending'`).Scan(&n); err != nil {
		return 0, fmt.Errorf("countPending(%s): %w", table, err)
	}
	return n, nil
}
