package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/ginona/tucalerta/internal/domain"
	"github.com/ginona/tucalerta/pkg/e"
)

// voteRetries bounds the optimistic-concurrency loop when concurrent
// voters race on one alert.
const voteRetries = 3

type alertService struct {
	alerts     AlertRepository
	localities LocalityRepository
	guard      *DeviceGuard
	throttle   *CreationThrottle
	cache      AlertCache
	cacheTTL   time.Duration
	logger     *slog.Logger
}

func NewAlertService(
	alerts AlertRepository,
	localities LocalityRepository,
	guard *DeviceGuard,
	throttle *CreationThrottle,
	cache AlertCache,
	cacheTTL time.Duration,
	logger *slog.Logger,
) AlertService {
	return &alertService{
		alerts:     alerts,
		localities: localities,
		guard:      guard,
		throttle:   throttle,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

func (s *alertService) Create(ctx context.Context, req domain.CreateAlertRequest, deviceID string) (*domain.Alert, error) {
	const op = "service.Alert.Create"

	canReport, err := s.guard.CanReport(ctx, deviceID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if !canReport {
		s.logger.Warn("report cooldown active", slog.String("device_id", deviceID))
		return nil, fmt.Errorf("%s: %w", op, e.ErrRateLimited)
	}

	locality, err := s.localities.Get(ctx, req.LocalityID)
	if err != nil {
		return nil, err
	}

	if !s.throttle.Allow(time.Now().UTC()) {
		s.logger.Warn("global creation throttle tripped", slog.String("device_id", deviceID))
		return nil, fmt.Errorf("%s: %w", op, e.ErrRateLimited)
	}

	alert := &domain.Alert{
		ID:                 uuid.New(),
		Type:               req.Type,
		LocalityID:         req.LocalityID,
		Lat:                req.Coordinates[0],
		Lng:                req.Coordinates[1],
		Description:        req.Description,
		Severity:           req.Severity,
		DeviceFingerprints: []string{},
		ReportedBy:         deviceID,
		ImageURL:           req.ImageURL,
	}

	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}
	alert.Locality = locality

	s.invalidateCache(ctx)

	s.logger.Info("alert created",
		slog.String("id", alert.ID.String()),
		slog.String("type", string(alert.Type)),
		slog.String("locality", alert.LocalityID),
		slog.Int("severity", alert.Severity),
	)
	return alert, nil
}

func (s *alertService) Vote(ctx context.Context, alertID uuid.UUID, deviceID string, vt domain.VoteType) (*domain.Alert, error) {
	const op = "service.Alert.Vote"

	var lastErr error
	for attempt := 0; attempt < voteRetries; attempt++ {
		alert, err := s.alerts.Get(ctx, alertID)
		if err != nil {
			return nil, err
		}

		if err := alert.ApplyVote(deviceID, vt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		vote := &domain.Vote{
			AlertID:  alertID,
			DeviceID: deviceID,
			Type:     vt,
		}

		err = s.alerts.SaveVote(ctx, alert, vote)
		if err == nil {
			s.invalidateCache(ctx)
			s.logger.Info("vote recorded",
				slog.String("alert_id", alertID.String()),
				slog.String("vote_type", string(vt)),
				slog.Int("score", alert.ValidationScore),
				slog.Bool("verified", alert.IsVerified),
				slog.Bool("hidden", alert.AutoHidden),
			)
			return alert, nil
		}
		if !errors.Is(err, e.ErrConflict) {
			return nil, err
		}
		// another voter won the race, re-read and retry
		lastErr = err
	}

	s.logger.Error("vote retries exhausted", slog.String("alert_id", alertID.String()))
	return nil, e.Wrap(op, lastErr)
}

func (s *alertService) List(ctx context.Context, f domain.AlertFilters) ([]*domain.Alert, error) {
	if f.IsDefault() {
		alerts, ok, err := s.cache.GetVisible(ctx)
		if err != nil {
			s.logger.Error("cache read failed", slog.Any("error", err))
		} else if ok {
			return alerts, nil
		}
	}

	alerts, err := s.alerts.List(ctx, f)
	if err != nil {
		return nil, err
	}

	if f.IsDefault() {
		if err := s.cache.SetVisible(ctx, alerts, s.cacheTTL); err != nil {
			s.logger.Error("cache write failed", slog.Any("error", err))
		}
	}
	return alerts, nil
}

func (s *alertService) Get(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	return s.alerts.Get(ctx, id)
}

func (s *alertService) CanDeviceReport(ctx context.Context, deviceID string) (bool, error) {
	return s.guard.CanReport(ctx, deviceID)
}

func (s *alertService) Localities(ctx context.Context) ([]*domain.Locality, error) {
	return s.localities.List(ctx)
}

// cache staleness only delays listing freshness, never correctness, so
// invalidation failures are logged and swallowed
func (s *alertService) invalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Error("cache invalidate failed", slog.Any("error", err))
	}
}
