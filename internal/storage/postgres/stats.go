package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ginona/tucalerta/internal/domain"
	"github.com/ginona/tucalerta/pkg/e"
)

type StatsRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewStatsRepo(pool *pgxpool.Pool, logger *slog.Logger) *StatsRepo {
	return &StatsRepo{pool: pool, logger: logger}
}

// GetStats aggregates over the 24h freshness window, hidden included.
func (r *StatsRepo) GetStats(ctx context.Context) (*domain.AlertStats, error) {
	const op = "postgres.Stats.GetStats"

	since := time.Now().UTC().Add(-24 * time.Hour)

	const summaryQuery = `
		SELECT COUNT(*),
			   COUNT(*) FILTER (WHERE is_verified),
			   COUNT(*) FILTER (WHERE auto_hidden),
			   COUNT(DISTINCT reported_by)
		FROM alerts
		WHERE created_at >= $1
	`

	stats := &domain.AlertStats{ByType: make(map[string]int64)}
	err := r.pool.QueryRow(ctx, summaryQuery, since).Scan(
		&stats.Total, &stats.Verified, &stats.Hidden, &stats.ReportingDevices,
	)
	if err != nil {
		r.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	const byTypeQuery = `
		SELECT type, COUNT(*)
		FROM alerts
		WHERE created_at >= $1
		GROUP BY type
	`

	rows, err := r.pool.Query(ctx, byTypeQuery, since)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			alertType string
			count     int64
		)
		if err := rows.Scan(&alertType, &count); err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		stats.ByType[alertType] = count
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return stats, nil
}
