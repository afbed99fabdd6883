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

type TournamentRepository interface {
	Create(ctx context.Context, t *model.Tournament) error
	Update(ctx context.Context, t *model.Tournament) error
	UpdateStatus(ctx context.Context, id string, status model.TournamentStatus) (*model.Tournament, error)
	FindByID(ctx context.Context, id string) (*model.Tournament, error)
	// FindByIDForUpdate locks the row until tx ends.
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.Tournament, error)
	IncrementPlayers(ctx context.Context, tx *sql.Tx, id string) error
	Delete(ctx context.Context, tx *sql.Tx, id string) error
	ListOpen(ctx context.Context) ([]model.Tournament, error)
	ListAll(ctx context.Context) ([]model.Tournament, error)
	ListJoinedByUser(ctx context.Context, userID string) ([]model.Tournament, error)
	DashboardStats(ctx context.Context) (*model.DashboardStats, error)
}

const tournamentColumns = `id, title, slug, description, game_type, team_formation, max_players, current_players,
	entry_fee, prize_pool, room_id, room_password, status, start_time, created_at, updated_at`

type pgTournamentRepository struct {
	db *sql.DB
}

func NewPgTournamentRepository(db *sql.DB) TournamentRepository {
	return &pgTournamentRepository{db: db}
}

func scanTournament(row rowScanner) (*model.Tournament, error) {
	t := &model.Tournament{}
	err := row.Scan(
		&t.ID, &t.Title, &t.Slug, &t.Description, &t.GameType, &t.TeamFormation, &t.MaxPlayers, &t.CurrentPlayers,
		&t.EntryFee, &t.PrizePool, &t.RoomID, &t.RoomPassword, &t.Status, &t.StartTime, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *pgTournamentRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]model.Tournament, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgTournamentRepository.%s: %w", op, err)
	}
	defer rows.Close()

	tournaments := []model.Tournament{}
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("pgTournamentRepository.%s scan: %w", op, err)
		}
		tournaments = append(tournaments, *t)
	}
	return tournaments, rows.Err()
}

func (r *pgTournamentRepository) Create(ctx context.Context, t *model.Tournament) error {
	query := `INSERT INTO tournaments (id, title, slug, description, game_type, team_formation, max_players,
	              current_players, entry_fee, prize_pool, room_id, room_password, status, start_time)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.Title, t.Slug, t.Description, t.GameType, t.TeamFormation, t.MaxPlayers,
		t.CurrentPlayers, t.EntryFee, t.PrizePool, t.RoomID, t.RoomPassword, t.Status, t.StartTime,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("tournament with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgTournamentRepository.Create: %w", err)
	}
	return nil
}

func (r *pgTournamentRepository) Update(ctx context.Context, t *model.Tournament) error {
	query := `UPDATE tournaments SET
	              title = $1, slug = $2, description = $3, game_type = $4, team_formation = $5,
	              max_players = $6, entry_fee = $7, prize_pool = $8, room_id = $9, room_password = $10,
	              status = $11, start_time = $12, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $13
	          RETURNING current_players, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		t.Title, t.Slug, t.Description, t.GameType, t.TeamFormation, t.MaxPlayers, t.EntryFee,
		t.PrizePool, t.RoomID, t.RoomPassword, t.Status, t.StartTime, t.ID,
	).Scan(&t.CurrentPlayers, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("tournament with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgTournamentRepository.Update: %w", err)
	}
	return nil
}

func (r *pgTournamentRepository) UpdateStatus(ctx context.Context, id string, status model.TournamentStatus) (*model.Tournament, error) {
	query := `UPDATE tournaments SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2
	          RETURNING ` + tournamentColumns
	t, err := scanTournament(r.db.QueryRowContext(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTournamentRepository.UpdateStatus: %w", err)
	}
	return t, nil
}

func (r *pgTournamentRepository) FindByID(ctx context.Context, id string) (*model.Tournament, error) {
	t, err := scanTournament(r.db.QueryRowContext(ctx, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTournamentRepository.FindByID: %w", err)
	}
	return t, nil
}

func (r *pgTournamentRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`
	t, err := scanTournament(pick(r.db, tx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTournamentRepository.FindByIDForUpdate: %w", err)
	}
	return t, nil
}

func (r *pgTournamentRepository) IncrementPlayers(ctx context.Context, tx *sql.Tx, id string) error {
	query := `UPDATE tournaments SET current_players = current_players + 1, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $1 AND current_players < max_players`
	res, err := pick(r.db, tx).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("pgTournamentRepository.IncrementPlayers: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTournamentFull
	}
	return nil
}

func (r *pgTournamentRepository) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := pick(r.db, tx).ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgTournamentRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgTournamentRepository) ListOpen(ctx context.Context) ([]model.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments
	          WHERE status IN ('upcoming', 'active')
	          ORDER BY start_time ASC`
	return r.list(ctx, "ListOpen", query)
}

func (r *pgTournamentRepository) ListAll(ctx context.Context) ([]model.Tournament, error) {
	return r.list(ctx, "ListAll", `SELECT `+tournamentColumns+` FROM tournaments ORDER BY created_at DESC`)
}

func (r *pgTournamentRepository) ListJoinedByUser(ctx context.Context, userID string) ([]model.Tournament, error) {
	query := `SELECT t.id, t.title, t.slug, t.description, t.game_type, t.team_formation, t.max_players,
	                 t.current_players, t.entry_fee, t.prize_pool, t.room_id, t.room_password, t.status,
	                 t.start_time, t.created_at, t.updated_at
	          FROM tournaments t
	          JOIN tournament_participants tp ON tp.tournament_id = t.id
	          WHERE tp.user_id = $1
	          ORDER BY t.start_time DESC`
	return r.list(ctx, "ListJoinedByUser", query, userID)
}

// DashboardStats aggregates the admin overview in one round trip.
// Revenue is the sum of entry_fee * current_players over all tournaments.
func (r *pgTournamentRepository) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	query := `SELECT
	              (SELECT COUNT(*) FROM users),
	              (SELECT COUNT(*) FROM tournaments WHERE status IN ('upcoming', 'active')),
	              (SELECT COUNT(*) FROM balance_requests WHERE status = 'pending') +
	              (SELECT COUNT(*) FROM withdraw_requests WHERE status = 'pending'),
	              (SELECT COALESCE(SUM(entry_fee * current_players), 0) FROM tournaments)`
	stats := &model.DashboardStats{}
	var revenue decimal.Decimal
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalUsers, &stats.ActiveTournaments, &stats.PendingRequests, &revenue,
	)
	if err != nil {
		return nil, fmt.Errorf("pgTournamentRepository.DashboardStats: %w", err)
	}
	stats.TotalRevenue = revenue
	return stats, nil
}
