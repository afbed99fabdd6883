package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ffclash/internal/common"
	"ffclash/internal/domain/model"
)

type ParticipantRepository interface {
	Create(ctx context.Context, tx *sql.Tx, p *model.TournamentParticipant) error
	Exists(ctx context.Context, tx *sql.Tx, tournamentID, userID string) (bool, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]model.TournamentParticipant, error)
	DeleteByTournament(ctx context.Context, tx *sql.Tx, tournamentID string) error
}

var (
	// ErrAlreadyJoined is returned when a user registers twice for the same tournament.
	ErrAlreadyJoined  = common.NewError(common.ErrBadRequest, "already registered for this tournament")
	ErrTournamentFull = common.NewError(common.ErrBadRequest, "tournament is full")
)

type pgParticipantRepository struct {
	db *sql.DB
}

func NewPgParticipantRepository(db *sql.DB) ParticipantRepository {
	return &pgParticipantRepository{db: db}
}

func (r *pgParticipantRepository) Create(ctx context.Context, tx *sql.Tx, p *model.TournamentParticipant) error {
	query := `INSERT INTO tournament_participants (id, tournament_id, user_id, free_fire_uid)
	          VALUES ($1, $2, $3, $4)
	          RETURNING joined_at`
	err := pick(r.db, tx).QueryRowContext(ctx, query, p.ID, p.TournamentID, p.UserID, p.FreeFireUID).Scan(&p.JoinedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return ErrAlreadyJoined
		}
		return fmt.Errorf("pgParticipantRepository.Create: %w", err)
	}
	return nil
}

func (r *pgParticipantRepository) Exists(ctx context.Context, tx *sql.Tx, tournamentID, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM tournament_participants WHERE tournament_id = $1 AND user_id = $2)`
	var exists bool
	if err := pick(r.db, tx).QueryRowContext(ctx, query, tournamentID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgParticipantRepository.Exists: %w", err)
	}
	return exists, nil
}

func (r *pgParticipantRepository) ListByTournament(ctx context.Context, tournamentID string) ([]model.TournamentParticipant, error) {
	query := `SELECT tp.id, tp.tournament_id, tp.user_id, tp.free_fire_uid, tp.joined_at, u.username
	          FROM tournament_participants tp
	          LEFT JOIN users u ON u.id = tp.user_id
	          WHERE tp.tournament_id = $1
	          ORDER BY tp.joined_at ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("pgParticipantRepository.ListByTournament: %w", err)
	}
	defer rows.Close()

	participants := []model.TournamentParticipant{}
	for rows.Next() {
		var p model.TournamentParticipant
		if err := rows.Scan(&p.ID, &p.TournamentID, &p.UserID, &p.FreeFireUID, &p.JoinedAt, &p.Username); err != nil {
			return nil, fmt.Errorf("pgParticipantRepository.ListByTournament scan: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *pgParticipantRepository) DeleteByTournament(ctx context.Context, tx *sql.Tx, tournamentID string) error {
	if _, err := pick(r.db, tx).ExecContext(ctx, `DELETE FROM tournament_participants WHERE tournament_id = $1`, tournamentID); err != nil {
		return fmt.Errorf("pgParticipantRepository.DeleteByTournament: %w", err)
	}
	return nil
}
