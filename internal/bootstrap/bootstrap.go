// Package bootstrap assembles the infrastructure, repositories and services
// shared by the API server, the job worker and the management commands
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	docapp "github.com/datahub/backend/internal/application/document"
	"github.com/datahub/backend/internal/infrastructure/cache"
	"github.com/datahub/backend/internal/infrastructure/config"
	"github.com/datahub/backend/internal/infrastructure/logger"
	"github.com/datahub/backend/internal/infrastructure/metrics"
	"github.com/datahub/backend/internal/infrastructure/persistence"
	"github.com/datahub/backend/internal/infrastructure/queue"
	"github.com/datahub/backend/internal/infrastructure/storage"
	"github.com/datahub/backend/internal/infrastructure/telemetry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Infrastructure holds the connections opened for one process
type Infrastructure struct {
	Config    *config.Config
	Logger    *zap.Logger
	Telemetry *telemetry.Telemetry
	Database  *persistence.Database
	Redis     *redis.Client
	Metrics   *metrics.Metrics
	Queue     *queue.RedisQueue
	Storage   docapp.ObjectStorage
}

// Open connects everything cfg describes. serviceName labels telemetry and logs.
func Open(ctx context.Context, cfg *config.Config, serviceName string) (*Infrastructure, error) {
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	infra := &Infrastructure{Config: cfg, Logger: log}

	tel, err := telemetry.Setup(ctx, cfg.Telemetry, serviceName, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	infra.Telemetry = tel
	if tel.Logs != nil && tel.Logs.IsEnabled() {
		infra.Logger = tel.Logs.Bridge(log)
	}
	log = infra.Logger.With(zap.String("service", serviceName))
	infra.Logger = log

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(ctx, &cfg.Database, gormLog, log.Named("database"))
	if err != nil {
		return nil, errors.Join(err, infra.Close(ctx))
	}
	infra.Database = db
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracing(cfg.Telemetry), log); err != nil {
		return nil, errors.Join(err, infra.Close(ctx))
	}
	if sqlDB, err := db.DB.DB(); err == nil && tel.Meter != nil {
		if _, err := telemetry.RegisterDBPoolMetrics(tel.Meter.Meter(serviceName), sqlDB); err != nil {
			log.Warn("Failed to register database pool metrics", zap.Error(err))
		}
	}

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, errors.Join(err, infra.Close(ctx))
	}
	infra.Redis = client

	infra.Metrics = metrics.New()
	infra.Queue = queue.NewRedisQueue(client,
		queue.WithMetrics(infra.Metrics),
		queue.WithLogger(log.Named("queue")),
	)

	infra.Storage, err = openStorage(ctx, cfg, log)
	if err != nil {
		return nil, errors.Join(err, infra.Close(ctx))
	}

	log.Info("Infrastructure ready",
		zap.String("env", cfg.App.Env),
		zap.String("redis", cfg.Redis.Addr()),
		zap.Int("buckets", len(cfg.Storage.Buckets)),
	)
	return infra, nil
}

// openStorage uses S3 when buckets are configured. Local development without
// buckets falls back to an in-memory store.
func openStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (docapp.ObjectStorage, error) {
	if len(cfg.Storage.Buckets) == 0 && cfg.App.Env != "production" {
		log.Warn("No storage buckets configured, documents are kept in memory")
		return storage.NewStubDocumentStorage(), nil
	}
	s3, err := storage.NewS3DocumentStorage(ctx, &cfg.Storage,
		storage.WithLogger(log.Named("storage")),
		storage.WithPresignExpiration(cfg.Storage.PresignDuration),
	)
	if err != nil {
		return nil, err
	}
	return s3, nil
}

// Close releases every opened connection and flushes telemetry
func (i *Infrastructure) Close(ctx context.Context) error {
	var errs []error
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	if i.Database != nil {
		errs = append(errs, i.Database.Close())
	}
	if i.Telemetry != nil {
		errs = append(errs, i.Telemetry.Shutdown(ctx))
	}
	if i.Logger != nil {
		_ = logger.Sync(i.Logger)
	}
	return errors.Join(errs...)
}
