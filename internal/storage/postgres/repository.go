package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/ginona/tucalerta/internal/domain"
)

type AlertRepository interface {
	// Create persists the alert and stamps the reporting device's
	// last_report_at in one transaction.
	Create(ctx context.Context, alert *domain.Alert) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Alert, error)
	// List applies the freshness horizon unconditionally, then the
	// optional filters. Verified first, then newest first.
	List(ctx context.Context, f domain.AlertFilters) ([]*domain.Alert, error)
	// SaveVote commits an already-applied vote: alert counters and voter
	// set, the ledger entry, and the device's last_vote_at, atomically.
	// Returns e.ErrConflict when a concurrent voter won the race.
	SaveVote(ctx context.Context, alert *domain.Alert, vote *domain.Vote) error
}

type LocalityRepository interface {
	Get(ctx context.Context, id string) (*domain.Locality, error)
	List(ctx context.Context) ([]*domain.Locality, error)
}

type DeviceRepository interface {
	// Get returns nil (no error) for a device that was never seen.
	Get(ctx context.Context, deviceID string) (*domain.DeviceValidation, error)
}

type StatsRepository interface {
	GetStats(ctx context.Context) (*domain.AlertStats, error)
}

func (p *Postgres) Alerts() AlertRepository        { return p.Alert }
func (p *Postgres) Localities() LocalityRepository { return p.Locality }
func (p *Postgres) Devices() DeviceRepository      { return p.Device }
func (p *Postgres) Stats() StatsRepository         { return p.Stat }
