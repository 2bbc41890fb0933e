package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig configures gorm spans
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool
	SlowQueryThresh time.Duration
}

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin plus callbacks that mark
// slow and failed statements on the span
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	slow := slowQueryCallback(cfg.SlowQueryThresh, logger)
	cb := db.Callback()
	err := errors.Join(
		cb.Create().Before("gorm:create").Register("datahub:before_create", markQueryStart),
		cb.Create().After("gorm:create").Register("datahub:after_create", slow),
		cb.Query().Before("gorm:query").Register("datahub:before_query", markQueryStart),
		cb.Query().After("gorm:query").Register("datahub:after_query", slow),
		cb.Update().Before("gorm:update").Register("datahub:before_update", markQueryStart),
		cb.Update().After("gorm:update").Register("datahub:after_update", slow),
		cb.Delete().Before("gorm:delete").Register("datahub:before_delete", markQueryStart),
		cb.Delete().After("gorm:delete").Register("datahub:after_delete", slow),
		cb.Row().Before("gorm:row").Register("datahub:before_row", markQueryStart),
		cb.Row().After("gorm:row").Register("datahub:after_row", slow),
		cb.Raw().Before("gorm:raw").Register("datahub:before_raw", markQueryStart),
		cb.Raw().After("gorm:raw").Register("datahub:after_raw", slow),
	)
	if err != nil {
		return err
	}
	logger.Info("Database tracing enabled", zap.Duration("slow_query_threshold", cfg.SlowQueryThresh))
	return nil
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func slowQueryCallback(threshold time.Duration, logger *zap.Logger) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		span := trace.SpanFromContext(ctx)
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) && span.IsRecording() {
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}
		start, ok := ctx.Value(queryStartKey{}).(time.Time)
		if !ok {
			return
		}
		if elapsed := time.Since(start); elapsed > threshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			logger.Warn("Slow query",
				zap.String("table", db.Statement.Table),
				zap.Duration("elapsed", elapsed),
			)
		}
	}
}
