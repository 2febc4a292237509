package service

import (
	"context"

	"github.com/ginona/tucalerta/internal/domain"
)

type statsService struct {
	repo StatsRepository
}

func NewStatsService(repo StatsRepository) StatsService {
	return &statsService{repo: repo}
}

func (s *statsService) GetStats(ctx context.Context) (*domain.AlertStats, error) {
	return s.repo.GetStats(ctx)
}
