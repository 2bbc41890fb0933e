package telemetry

import (
	"context"
	"errors"

	"github.com/datahub/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Telemetry bundles the providers started for one process
type Telemetry struct {
	Tracer   *TracerProvider
	Logs     *LoggerProvider
	Meter    *MeterProvider
	Profiler *Profiler
}

// Setup starts the providers enabled in cfg. serviceName overrides the
// configured name so the API and the worker report separately.
func Setup(ctx context.Context, cfg config.TelemetryConfig, serviceName string, logger *zap.Logger) (*Telemetry, error) {
	if serviceName == "" {
		serviceName = cfg.ServiceName
	}
	base := Config{
		Enabled:           cfg.Enabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		SamplingRatio:     cfg.SamplingRatio,
		ServiceName:       serviceName,
		Insecure:          cfg.Insecure,
	}

	t := &Telemetry{}
	var err error
	if t.Tracer, err = NewTracerProvider(ctx, base, logger); err != nil {
		return nil, err
	}

	logsCfg := base
	logsCfg.Enabled = cfg.Enabled && cfg.LogsEnabled
	if t.Logs, err = NewLoggerProvider(ctx, logsCfg, logger); err != nil {
		return nil, errors.Join(err, t.Shutdown(ctx))
	}

	metricsCfg := base
	metricsCfg.Enabled = cfg.Enabled && cfg.MetricsEnabled
	if t.Meter, err = NewMeterProvider(ctx, metricsCfg, cfg.MetricsExportInterval, logger); err != nil {
		return nil, errors.Join(err, t.Shutdown(ctx))
	}

	t.Profiler, err = NewProfiler(ProfilerConfig{
		Enabled:         cfg.ProfilingEnabled,
		ServerAddress:   cfg.PyroscopeURL,
		ApplicationName: serviceName,
	}, logger)
	if err != nil {
		return nil, errors.Join(err, t.Shutdown(ctx))
	}
	if t.Profiler.IsEnabled() {
		t.Tracer.EnableSpanProfiles()
	}
	return t, nil
}

// DBTracing returns the gorm tracing settings for cfg
func DBTracing(cfg config.TelemetryConfig) DBTracingConfig {
	return DBTracingConfig{
		Enabled:         cfg.Enabled && cfg.DBTraceEnabled,
		LogFullSQL:      cfg.DBLogFullSQL,
		SlowQueryThresh: cfg.DBSlowQueryThresh,
	}
}

// Shutdown flushes and stops every started provider
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.Profiler != nil {
		errs = append(errs, t.Profiler.Stop())
	}
	if t.Meter != nil {
		errs = append(errs, t.Meter.Shutdown(ctx))
	}
	if t.Logs != nil {
		errs = append(errs, t.Logs.Shutdown(ctx))
	}
	if t.Tracer != nil {
		errs = append(errs, t.Tracer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
