package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	searchapp "github.com/datahub/backend/internal/application/search"
	"github.com/datahub/backend/internal/application/task"
	"github.com/datahub/backend/internal/bootstrap"
	"github.com/datahub/backend/internal/infrastructure/config"
	"github.com/datahub/backend/internal/infrastructure/queue"
	"github.com/datahub/backend/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

const serviceName = "datahub-worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()
	infra, err := bootstrap.Open(ctx, cfg, serviceName)
	if err != nil {
		panic("Failed to initialize infrastructure: " + err.Error())
	}
	log := infra.Logger
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := infra.Close(shutdownCtx); err != nil {
			log.Error("Error closing infrastructure", zap.Error(err))
		}
	}()

	repos := bootstrap.NewRepositories(infra.Database.DB, infra.Redis, log)
	services, err := bootstrap.NewServices(infra, repos)
	if err != nil {
		log.Fatal("Failed to initialize services", zap.Error(err))
	}
	if err := services.Bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	workerConfig := queue.DefaultWorkerConfig()
	if len(cfg.Queue.Names) > 0 {
		workerConfig.Queues = cfg.Queue.Names
	}
	if cfg.Queue.Concurrency > 0 {
		workerConfig.Concurrency = cfg.Queue.Concurrency
	}
	if cfg.Queue.PollInterval > 0 {
		workerConfig.PollInterval = cfg.Queue.PollInterval
	}
	if cfg.Queue.BlockTimeout > 0 {
		workerConfig.BlockTimeout = cfg.Queue.BlockTimeout
	}

	worker := queue.NewWorker(workerConfig, infra.Queue, infra.Metrics, log.Named("worker"))
	for _, handlers := range []map[string]task.Handler{
		services.DocumentJobs.Handlers(),
		services.Search.Handlers(),
		services.ExportWins.Handlers(),
	} {
		for function, h := range handlers {
			worker.Register(function, h)
		}
	}

	beat, err := newBeat(cfg, infra, log)
	if err != nil {
		log.Fatal("Invalid periodic job schedule", zap.Error(err))
	}

	if err := worker.Start(ctx); err != nil {
		log.Fatal("Failed to start worker", zap.Error(err))
	}
	if err := beat.Start(ctx); err != nil {
		log.Fatal("Failed to start beat", zap.Error(err))
	}

	metricsServer := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           infra.Metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Metrics server starting", zap.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Metrics server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := beat.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping beat", zap.Error(err))
	}
	if err := worker.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping worker", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error stopping metrics server", zap.Error(err))
	}
	if err := services.Bus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}

	log.Info("Worker exited gracefully")
}

// newBeat schedules a nightly reindex of every search app when configured
func newBeat(cfg *config.Config, infra *bootstrap.Infrastructure, log *zap.Logger) (*scheduler.Beat, error) {
	var entries []scheduler.Entry
	if cfg.Queue.SearchSyncSchedule != "" {
		daily, err := scheduler.ParseDaily(cfg.Queue.SearchSyncSchedule)
		if err != nil {
			return nil, err
		}
		for _, app := range searchapp.Apps() {
			entries = append(entries, scheduler.Entry{
				Name:     "search-sync-" + app,
				Schedule: daily,
				Function: task.FunctionSyncApp,
				Args:     task.SyncAppArgs{App: app},
				Options:  task.Options{Queue: task.QueueLongRunning},
			})
		}
	}
	return scheduler.NewBeat(scheduler.DefaultBeatConfig(), infra.Queue, infra.Redis, log.Named("beat"), entries...), nil
}
