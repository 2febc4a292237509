package postgres

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ginona/tucalerta/internal/config"
	"github.com/ginona/tucalerta/pkg/e"
)

type Postgres struct {
	Pool     *pgxpool.Pool
	Alert    AlertRepository
	Locality LocalityRepository
	Device   DeviceRepository
	Stat     StatsRepository
}

func NewPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Postgres, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Database,
		cfg.Postgres.SSLMode,
	)

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("Failed to parse pgx config", slog.String("error", err.Error()))
		return nil, e.Wrap("storage.pg.NewPostgres.ParseConfig", err)
	}
	poolCfg.MaxConns = cfg.Postgres.MaxConns
	poolCfg.MinConns = cfg.Postgres.MinConns
	poolCfg.MaxConnLifetime = cfg.Postgres.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Error("Failed to create pgx pool", slog.String("error", err.Error()))
		return nil, e.Wrap("storage.pg.NewPostgres.NewWithConfig", err)
	}

	if err := pool.Ping(ctx); err != nil {
		logger.Error("Failed to ping Postgres database", slog.String("error", err.Error()))
		pool.Close()
		return nil, e.Wrap("storage.pg.NewPostgres.Ping", err)
	}
	logger.Info("Connected to Postgres successfully")

	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, e.Wrap("storage.pg.NewPostgres.migrate", err)
	}

	pg := &Postgres{
		Pool:     pool,
		Alert:    NewAlertRepo(pool, logger).WithExpiryHorizon(cfg.Alerts.ExpiryHorizon),
		Locality: NewLocalityRepo(pool, logger),
		Device:   NewDeviceRepo(pool, logger),
		Stat:     NewStatsRepo(pool, logger),
	}

	if cfg.Alerts.SeedLocalities {
		if err := SeedLocalities(ctx, pool); err != nil {
			pool.Close()
			return nil, e.Wrap("storage.pg.NewPostgres.SeedLocalities", err)
		}
		logger.Info("Locality registry seeded")
	}

	logger.Info("Postgres repositories created")
	return pg, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS localities (
	id        text PRIMARY KEY,
	name      text NOT NULL UNIQUE,
	lat       double precision NOT NULL,
	lng       double precision NOT NULL,
	province  text NOT NULL
);

CREATE TABLE IF NOT EXISTS alerts (
	id                  uuid PRIMARY KEY,
	type                text NOT NULL,
	locality_id         text NOT NULL REFERENCES localities(id),
	lat                 double precision NOT NULL,
	lng                 double precision NOT NULL,
	description         text NOT NULL,
	severity            int NOT NULL CHECK (severity BETWEEN 1 AND 3),
	confirmations       int NOT NULL DEFAULT 0,
	rejections          int NOT NULL DEFAULT 0,
	validation_score    int NOT NULL DEFAULT 0,
	is_verified         boolean NOT NULL DEFAULT false,
	auto_hidden         boolean NOT NULL DEFAULT false,
	device_fingerprints text[] NOT NULL DEFAULT '{}',
	reported_by         text NOT NULL,
	image_url           text,
	created_at          timestamptz NOT NULL,
	updated_at          timestamptz NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_listing
	ON alerts (created_at DESC, is_verified DESC, auto_hidden);

CREATE TABLE IF NOT EXISTS votes (
	id         uuid PRIMARY KEY,
	alert_id   uuid NOT NULL REFERENCES alerts(id),
	device_id  text NOT NULL,
	vote_type  text NOT NULL,
	voted_at   timestamptz NOT NULL,
	UNIQUE (alert_id, device_id)
);

CREATE TABLE IF NOT EXISTS device_validations (
	device_id      text PRIMARY KEY,
	last_report_at timestamptz,
	last_vote_at   timestamptz
);
`
