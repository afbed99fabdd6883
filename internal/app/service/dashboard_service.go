package service

import (
	"context"
	"fmt"

	"ffclash/internal/domain/model"
	"ffclash/internal/domain/repository"
)

type DashboardService struct {
	tournamentRepo repository.TournamentRepository
}

func NewDashboardService(tournamentRepo repository.TournamentRepository) *DashboardService {
	return &DashboardService{tournamentRepo: tournamentRepo}
}

func (s *DashboardService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	stats, err := s.tournamentRepo.DashboardStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	return stats, nil
}
