package components

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ginona/tucalerta/internal/api"
	"github.com/ginona/tucalerta/internal/config"
	"github.com/ginona/tucalerta/internal/redis"
	"github.com/ginona/tucalerta/internal/service"
	"github.com/ginona/tucalerta/internal/storage/postgres"
	"github.com/ginona/tucalerta/pkg/logger"
)

type Components struct {
	logger     *slog.Logger
	HttpServer *api.Server
	Postgres   *postgres.Postgres
	Redis      *redis.Redis
}

func InitComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	logger.Info("Initializing Postgres")

	storage, err := postgres.NewPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to init postgres",
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	logger.Info("Initializing Redis")
	redisClient, err := redis.NewRedis(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init redis: %w", err)
	}

	alertCache := redis.NewAlertCache(redisClient)

	guard := service.NewDeviceGuard(storage.Devices(), cfg.Alerts.ReportCooldown)
	throttle := service.NewCreationThrottle(cfg.Alerts.GlobalCreateLimit, cfg.Alerts.GlobalCreateWindow)

	alertSvc := service.NewAlertService(
		storage.Alerts(),
		storage.Localities(),
		guard,
		throttle,
		alertCache,
		cfg.Redis.CacheTTL,
		logger,
	)
	statsSvc := service.NewStatsService(storage.Stats())

	srv := service.NewService(alertSvc, statsSvc)

	httpServer := api.NewServer(cfg, logger, srv)
	logger.Info("Initialized server")

	return &Components{
		logger:     logger,
		HttpServer: httpServer,
		Postgres:   storage,
		Redis:      redisClient,
	}, nil
}

func SetupLogger(env string) *slog.Logger {
	switch env {
	case "local":
		return logger.SetupPrettySlog()
	case "dev":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	default:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}
}

func (c *Components) ShutdownAll() {
	start := time.Now()
	c.logger.Info("Shutting down components")

	c.Postgres.Pool.Close()
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Error("Redis close failed", slog.String("err", err.Error()))
		}
	}

	c.logger.Info("All components stopped",
		slog.Duration("latency", time.Since(start)))
}
