package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type GameType string

const (
	GameBattleRoyale GameType = "battle_royale"
	GameClashSquad   GameType = "clash_squad"
	GameLoneWolf     GameType = "lone_wolf"
)

type TeamFormation string

const (
	FormationSolo  TeamFormation = "solo"
	FormationDuo   TeamFormation = "duo"
	FormationSquad TeamFormation = "squad"
	Formation1v1   TeamFormation = "1v1"
	Formation2v2   TeamFormation = "2v2"
	Formation4v4   TeamFormation = "4v4"
)

type TournamentStatus string

const (
	TournamentUpcoming  TournamentStatus = "upcoming"
	TournamentActive    TournamentStatus = "active"
	TournamentStarted   TournamentStatus = "started"
	TournamentWaiting   TournamentStatus = "waiting"
	TournamentFinished  TournamentStatus = "finished"
	TournamentCompleted TournamentStatus = "completed"
	TournamentCancelled TournamentStatus = "cancelled"
)

// Joinable reports whether players may still register.
func (s TournamentStatus) Joinable() bool {
	return s == TournamentUpcoming || s == TournamentActive
}

func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentUpcoming, TournamentActive, TournamentStarted, TournamentWaiting,
		TournamentFinished, TournamentCompleted, TournamentCancelled:
		return true
	}
	return false
}

type Tournament struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Slug           string           `json:"slug"`
	Description    string           `json:"description"`
	GameType       GameType         `json:"game_type"`
	TeamFormation  TeamFormation    `json:"team_formation"`
	MaxPlayers     int              `json:"max_players"`
	CurrentPlayers int              `json:"current_players"`
	EntryFee       decimal.Decimal  `json:"entry_fee"`
	PrizePool      decimal.Decimal  `json:"prize_pool"`
	RoomID         *string          `json:"room_id,omitempty"`
	RoomPassword   *string          `json:"room_password,omitempty"`
	Status         TournamentStatus `json:"status"`
	StartTime      time.Time        `json:"start_time"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// Full reports whether every slot is taken.
func (t *Tournament) Full() bool {
	return t.CurrentPlayers >= t.MaxPlayers
}

type TournamentParticipant struct {
	ID           string    `json:"id"`
	TournamentID string    `json:"tournament_id"`
	UserID       string    `json:"user_id"`
	FreeFireUID  *string   `json:"free_fire_uid,omitempty"`
	JoinedAt     time.Time `json:"joined_at"`
	Username     *string   `json:"username,omitempty"` // For display
}
