package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ginona/tucalerta/internal/domain"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go

// AlertService is the boundary the HTTP layer calls into.
type AlertService interface {
	Create(ctx context.Context, req domain.CreateAlertRequest, deviceID string) (*domain.Alert, error)
	Vote(ctx context.Context, alertID uuid.UUID, deviceID string, vt domain.VoteType) (*domain.Alert, error)
	List(ctx context.Context, f domain.AlertFilters) ([]*domain.Alert, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Alert, error)
	CanDeviceReport(ctx context.Context, deviceID string) (bool, error)
	Localities(ctx context.Context) ([]*domain.Locality, error)
}

type StatsService interface {
	GetStats(ctx context.Context) (*domain.AlertStats, error)
}

// Collaborators the engine consumes. Implemented by internal/storage/postgres
// and internal/redis.

type AlertRepository interface {
	Create(ctx context.Context, alert *domain.Alert) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Alert, error)
	List(ctx context.Context, f domain.AlertFilters) ([]*domain.Alert, error)
	SaveVote(ctx context.Context, alert *domain.Alert, vote *domain.Vote) error
}

type LocalityRepository interface {
	Get(ctx context.Context, id string) (*domain.Locality, error)
	List(ctx context.Context) ([]*domain.Locality, error)
}

type DeviceRepository interface {
	Get(ctx context.Context, deviceID string) (*domain.DeviceValidation, error)
}

type AlertCache interface {
	GetVisible(ctx context.Context) ([]*domain.Alert, bool, error)
	SetVisible(ctx context.Context, alerts []*domain.Alert, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type StatsRepository interface {
	GetStats(ctx context.Context) (*domain.AlertStats, error)
}

type Service struct {
	AlertService AlertService
	StatsService StatsService
}

func NewService(alertService AlertService, statsService StatsService) *Service {
	return &Service{
		AlertService: alertService,
		StatsService: statsService,
	}
}
