package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ginona/tucalerta/internal/domain"
	"github.com/ginona/tucalerta/pkg/e"
)

// DeviceRepo reads device throttling records. Writes happen inside the
// alert create/vote transactions, never here.
type DeviceRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewDeviceRepo(pool *pgxpool.Pool, logger *slog.Logger) *DeviceRepo {
	return &DeviceRepo{pool: pool, logger: logger}
}

func (r *DeviceRepo) Get(ctx context.Context, deviceID string) (*domain.DeviceValidation, error) {
	const op = "postgres.Device.Get"

	const query = `
		SELECT device_id, last_report_at, last_vote_at
		FROM device_validations
		WHERE device_id = $1
	`

	var d domain.DeviceValidation
	err := r.pool.QueryRow(ctx, query, deviceID).Scan(&d.DeviceID, &d.LastReportAt, &d.LastVoteAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// never-seen device: not an error, the guard treats it as free to act
			return nil, nil
		}
		r.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	return &d, nil
}
