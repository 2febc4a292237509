package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ginona/tucalerta/internal/domain"
	"github.com/ginona/tucalerta/pkg/e"
)

type LocalityRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewLocalityRepo(pool *pgxpool.Pool, logger *slog.Logger) *LocalityRepo {
	return &LocalityRepo{pool: pool, logger: logger}
}

func (r *LocalityRepo) Get(ctx context.Context, id string) (*domain.Locality, error) {
	const op = "postgres.Locality.Get"

	const query = `
		SELECT id, name, lat, lng, province
		FROM localities
		WHERE id = $1
	`

	var loc domain.Locality
	err := r.pool.QueryRow(ctx, query, id).Scan(&loc.ID, &loc.Name, &loc.Lat, &loc.Lng, &loc.Province)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidLocality)
		}
		r.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id))
		return nil, e.WrapError(ctx, op, err)
	}
	return &loc, nil
}

func (r *LocalityRepo) List(ctx context.Context) ([]*domain.Locality, error) {
	const op = "postgres.Locality.List"

	const query = `
		SELECT id, name, lat, lng, province
		FROM localities
		ORDER BY name ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	var localities []*domain.Locality
	for rows.Next() {
		var loc domain.Locality
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Lat, &loc.Lng, &loc.Province); err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		localities = append(localities, &loc)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return localities, nil
}
