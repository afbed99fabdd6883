package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ffclash/internal/common"
	"ffclash/internal/domain/model"
	"ffclash/internal/domain/repository"
	"ffclash/internal/platform/database"
	"ffclash/internal/platform/logger"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var errTournamentClosed = common.NewError(common.ErrBadRequest, "tournament is not open for registration")

type TournamentService struct {
	tournamentRepo  repository.TournamentRepository
	participantRepo repository.ParticipantRepository
	userRepo        repository.UserRepository
	balance         *BalanceService
	tx              database.Transactor
}

func NewTournamentService(
	tournamentRepo repository.TournamentRepository,
	participantRepo repository.ParticipantRepository,
	userRepo repository.UserRepository,
	balance *BalanceService,
	tx database.Transactor,
) *TournamentService {
	return &TournamentService{
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		balance:         balance,
		tx:              tx,
	}
}

type CreateTournamentRequest struct {
	Title         string                 `json:"title" validate:"required,max=200"`
	Description   string                 `json:"description"`
	GameType      model.GameType         `json:"game_type" validate:"required,oneof=battle_royale clash_squad lone_wolf"`
	TeamFormation model.TeamFormation    `json:"team_formation" validate:"omitempty,oneof=solo duo squad 1v1 2v2 4v4"`
	MaxPlayers    int                    `json:"max_players" validate:"omitempty,min=1"`
	EntryFee      decimal.Decimal        `json:"entry_fee"`
	PrizePool     decimal.Decimal        `json:"prize_pool"`
	RoomID        *string                `json:"room_id,omitempty"`
	RoomPassword  *string                `json:"room_password,omitempty"`
	Status        model.TournamentStatus `json:"status" validate:"omitempty,oneof=upcoming active started waiting finished completed cancelled"`
	StartTime     time.Time              `json:"start_time" validate:"required"`
}

type UpdateTournamentRequest struct {
	Title         *string                 `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string                 `json:"description,omitempty"`
	GameType      *model.GameType         `json:"game_type,omitempty" validate:"omitempty,oneof=battle_royale clash_squad lone_wolf"`
	TeamFormation *model.TeamFormation    `json:"team_formation,omitempty" validate:"omitempty,oneof=solo duo squad 1v1 2v2 4v4"`
	MaxPlayers    *int                    `json:"max_players,omitempty" validate:"omitempty,min=1"`
	EntryFee      *decimal.Decimal        `json:"entry_fee,omitempty"`
	PrizePool     *decimal.Decimal        `json:"prize_pool,omitempty"`
	RoomID        *string                 `json:"room_id,omitempty"`
	RoomPassword  *string                 `json:"room_password,omitempty"`
	Status        *model.TournamentStatus `json:"status,omitempty" validate:"omitempty,oneof=upcoming active started waiting finished completed cancelled"`
	StartTime     *time.Time              `json:"start_time,omitempty"`
}

type UpdateTournamentStatusRequest struct {
	Status model.TournamentStatus `json:"status" validate:"required,oneof=upcoming active started waiting finished completed cancelled"`
}

type JoinResponse struct {
	Message     string                       `json:"message"`
	Participant *model.TournamentParticipant `json:"participant"`
	Balance     decimal.Decimal              `json:"balance"`
}

func validateMoney(fields map[string]decimal.Decimal) error {
	var details []string
	for name, v := range fields {
		if v.IsNegative() {
			details = append(details, name+" must not be negative")
		}
	}
	if len(details) > 0 {
		return common.NewValidationError(details...)
	}
	return nil
}

func (s *TournamentService) ListOpen(ctx context.Context) ([]model.Tournament, error) {
	tournaments, err := s.tournamentRepo.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *TournamentService) ListAll(ctx context.Context) ([]model.Tournament, error) {
	tournaments, err := s.tournamentRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *TournamentService) ListJoined(ctx context.Context, userID string) ([]model.Tournament, error) {
	tournaments, err := s.tournamentRepo.ListJoinedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list joined tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *TournamentService) Get(ctx context.Context, id string) (*model.Tournament, error) {
	t, err := s.tournamentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "tournament not found")
	}
	return t, nil
}

func (s *TournamentService) Participants(ctx context.Context, tournamentID string) ([]model.TournamentParticipant, error) {
	if _, err := s.Get(ctx, tournamentID); err != nil {
		return nil, err
	}
	participants, err := s.participantRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}

func (s *TournamentService) Create(ctx context.Context, req CreateTournamentRequest) (*model.Tournament, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := validateMoney(map[string]decimal.Decimal{"entry_fee": req.EntryFee, "prize_pool": req.PrizePool}); err != nil {
		return nil, err
	}

	t := &model.Tournament{
		ID:            uuid.NewString(),
		Title:         req.Title,
		Description:   req.Description,
		GameType:      req.GameType,
		TeamFormation: req.TeamFormation,
		MaxPlayers:    req.MaxPlayers,
		EntryFee:      req.EntryFee,
		PrizePool:     req.PrizePool,
		RoomID:        req.RoomID,
		RoomPassword:  req.RoomPassword,
		Status:        req.Status,
		StartTime:     req.StartTime,
	}
	if t.TeamFormation == "" {
		t.TeamFormation = model.FormationSolo
	}
	if t.MaxPlayers == 0 {
		t.MaxPlayers = 50
	}
	if t.Status == "" {
		t.Status = model.TournamentUpcoming
	}
	t.Slug = slug.Make(t.Title) + "-" + t.ID[:8]

	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	logger.WithField("tournament_id", t.ID).Info("tournament created")
	return t, nil
}

// Update applies the non-nil fields of req. The slug is kept stable.
func (s *TournamentService) Update(ctx context.Context, id string, req UpdateTournamentRequest) (*model.Tournament, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.GameType != nil {
		t.GameType = *req.GameType
	}
	if req.TeamFormation != nil {
		t.TeamFormation = *req.TeamFormation
	}
	if req.MaxPlayers != nil {
		if *req.MaxPlayers < t.CurrentPlayers {
			return nil, common.NewValidationError(fmt.Sprintf("max_players cannot be lower than current players (%d)", t.CurrentPlayers))
		}
		t.MaxPlayers = *req.MaxPlayers
	}
	if req.EntryFee != nil {
		t.EntryFee = *req.EntryFee
	}
	if req.PrizePool != nil {
		t.PrizePool = *req.PrizePool
	}
	if req.RoomID != nil {
		t.RoomID = req.RoomID
	}
	if req.RoomPassword != nil {
		t.RoomPassword = req.RoomPassword
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.StartTime != nil {
		t.StartTime = *req.StartTime
	}
	if err := validateMoney(map[string]decimal.Decimal{"entry_fee": t.EntryFee, "prize_pool": t.PrizePool}); err != nil {
		return nil, err
	}

	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		return nil, notFoundAs(err, "tournament not found")
	}
	return t, nil
}

func (s *TournamentService) UpdateStatus(ctx context.Context, id string, req UpdateTournamentStatusRequest) (*model.Tournament, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	t, err := s.tournamentRepo.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return nil, notFoundAs(err, "tournament not found")
	}
	logger.WithFields(logrus.Fields{"tournament_id": id, "status": req.Status}).Info("tournament status changed")
	return t, nil
}

// Delete removes the tournament and its participants together.
func (s *TournamentService) Delete(ctx context.Context, id string) error {
	err := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.tournamentRepo.FindByIDForUpdate(ctx, tx, id); err != nil {
			return err
		}
		if err := s.participantRepo.DeleteByTournament(ctx, tx, id); err != nil {
			return err
		}
		return s.tournamentRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return notFoundAs(err, "tournament not found")
	}
	logger.WithField("tournament_id", id).Info("tournament deleted")
	return nil
}

// Join registers userID and charges the entry fee in one transaction.
// The tournament row stays locked until commit, so occupancy checks and the
// counter increment cannot interleave with another join.
func (s *TournamentService) Join(ctx context.Context, tournamentID, userID string) (*JoinResponse, error) {
	var (
		participant *model.TournamentParticipant
		balance     decimal.Decimal
	)
	err := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		t, err := s.tournamentRepo.FindByIDForUpdate(ctx, tx, tournamentID)
		if err != nil {
			return notFoundAs(err, "tournament not found")
		}
		if !t.Status.Joinable() {
			return errTournamentClosed
		}
		if t.Full() {
			return repository.ErrTournamentFull
		}
		joined, err := s.participantRepo.Exists(ctx, tx, tournamentID, userID)
		if err != nil {
			return err
		}
		if joined {
			return repository.ErrAlreadyJoined
		}

		user, err := s.userRepo.FindByID(ctx, tx, userID)
		if err != nil {
			return notFoundAs(err, "user not found")
		}
		balance = user.Balance

		if t.EntryFee.IsPositive() {
			updated, err := s.balance.Apply(ctx, tx, userID, t.EntryFee, model.BalanceSubtract, model.ReasonTournamentEntry, &t.ID)
			if err != nil {
				return err
			}
			balance = updated.Balance
		}

		uid := user.FreeFireUID
		participant = &model.TournamentParticipant{
			ID:           uuid.NewString(),
			TournamentID: t.ID,
			UserID:       userID,
			FreeFireUID:  &uid,
			Username:     &user.Username,
		}
		if err := s.participantRepo.Create(ctx, tx, participant); err != nil {
			return err
		}
		return s.tournamentRepo.IncrementPlayers(ctx, tx, t.ID)
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{"tournament_id": tournamentID, "user_id": userID}).Info("user joined tournament")
	return &JoinResponse{
		Message:     "successfully joined tournament",
		Participant: participant,
		Balance:     balance,
	}, nil
}
