package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/datahub/backend/internal/application/task"
	"github.com/datahub/backend/internal/infrastructure/metrics"
	"github.com/datahub/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

var (
	// ErrUnknownFunction is recorded on jobs no handler is registered for
	ErrUnknownFunction = errors.New("no handler registered for job function")

	// ErrNoQueues is returned when a worker is started without queues
	ErrNoQueues = errors.New("worker needs at least one queue")
)

// Job outcomes reported to metrics
const (
	OutcomeSucceeded = "succeeded"
	OutcomeRetried   = "retried"
	OutcomeFailed    = "failed"
)

// WorkerConfig holds worker configuration
type WorkerConfig struct {
	// Queues are polled in order, so earlier queues take priority
	Queues       []string
	Concurrency  int
	PollInterval time.Duration
	BlockTimeout time.Duration
	JobTimeout   time.Duration
}

// DefaultWorkerConfig returns default worker configuration
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Queues:       []string{task.QueueShortRunning, task.QueueLongRunning},
		Concurrency:  4,
		PollInterval: time.Second,
		BlockTimeout: 5 * time.Second,
		JobTimeout:   30 * time.Minute,
	}
}

// Worker runs jobs from a RedisQueue on a pool of goroutines
type Worker struct {
	config   WorkerConfig
	queue    *RedisQueue
	handlers map[string]task.Handler
	metrics  *metrics.Metrics
	logger   *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.RWMutex
	isRunning bool
}

// NewWorker creates a worker. Register handlers before calling Start.
func NewWorker(config WorkerConfig, queue *RedisQueue, m *metrics.Metrics, logger *zap.Logger) *Worker {
	defaults := DefaultWorkerConfig()
	if len(config.Queues) == 0 {
		config.Queues = defaults.Queues
	}
	if config.Concurrency <= 0 {
		config.Concurrency = defaults.Concurrency
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.BlockTimeout <= 0 {
		config.BlockTimeout = defaults.BlockTimeout
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = defaults.JobTimeout
	}
	return &Worker{
		config:   config,
		queue:    queue,
		handlers: make(map[string]task.Handler),
		metrics:  m,
		logger:   logger,
	}
}

// Register sets the handler for a job function
func (w *Worker) Register(function string, handler task.Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[function] = handler
}

func (w *Worker) handler(function string) (task.Handler, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	h, ok := w.handlers[function]
	return h, ok
}

// Start starts the worker pool and the retry promoter
func (w *Worker) Start(ctx context.Context) error {
	if len(w.config.Queues) == 0 {
		return ErrNoQueues
	}
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = true
	w.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	for i := 0; i < w.config.Concurrency; i++ {
		w.wg.Add(1)
		go w.work(ctx, i)
	}
	w.wg.Add(1)
	go w.promote(ctx)

	w.logger.Info("Job worker started",
		zap.Strings("queues", w.config.Queues),
		zap.Int("workers", w.config.Concurrency),
	)
	return nil
}

// Stop cancels the pool and waits for running jobs to return
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("Job worker stopped gracefully")
		return nil
	case <-ctx.Done():
		w.logger.Warn("Job worker stop timed out")
		return ctx.Err()
	}
}

func (w *Worker) work(ctx context.Context, workerID int) {
	defer w.wg.Done()
	w.logger.Debug("Worker started", zap.Int("worker_id", workerID))

	for {
		if ctx.Err() != nil {
			w.logger.Debug("Worker stopping", zap.Int("worker_id", workerID))
			return
		}
		job, err := w.queue.Dequeue(ctx, w.config.Queues, w.config.BlockTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("Failed to dequeue job", zap.Int("worker_id", workerID), zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.config.PollInterval):
			}
			continue
		}
		if job == nil {
			continue
		}
		// Jobs already taken off the queue finish even when the worker is stopping
		w.Process(context.WithoutCancel(ctx), job)
	}
}

func (w *Worker) promote(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := w.queue.PromoteDue(ctx, w.config.Queues, now)
			if err != nil && ctx.Err() == nil {
				w.logger.Error("Failed to promote scheduled jobs", zap.Error(err))
				continue
			}
			if n > 0 {
				w.logger.Debug("Promoted scheduled jobs", zap.Int("count", n))
			}
		}
	}
}

// Process runs a single job and schedules a retry or records the failure
func (w *Worker) Process(ctx context.Context, job *Job) {
	start := time.Now()
	fields := []zap.Field{
		zap.String("job_id", job.ID),
		zap.String("function", job.Function),
		zap.String("queue", job.Queue),
		zap.Int("attempt", job.Attempt),
	}

	err := w.run(ctx, job)
	if err == nil {
		w.metrics.JobProcessed(job.Queue, job.Function, OutcomeSucceeded, time.Since(start))
		w.logger.Info("Job completed successfully", fields...)
		return
	}

	w.logger.Error("Job failed", append(fields, zap.Error(err))...)
	if job.CanRetry() && !errors.Is(err, ErrUnknownFunction) {
		if rerr := w.queue.Retry(ctx, job, err); rerr != nil {
			w.logger.Error("Failed to schedule job retry", append(fields, zap.Error(rerr))...)
			return
		}
		w.metrics.JobProcessed(job.Queue, job.Function, OutcomeRetried, time.Since(start))
		w.logger.Info("Job scheduled for retry",
			zap.String("job_id", job.ID),
			zap.Int("retry_count", job.Attempt),
			zap.Int("max_retries", job.MaxRetries),
		)
		return
	}

	w.metrics.JobProcessed(job.Queue, job.Function, OutcomeFailed, time.Since(start))
	if ferr := w.queue.Fail(ctx, job, err); ferr != nil {
		w.logger.Error("Failed to record failed job", append(fields, zap.Error(ferr))...)
	}
}

func (w *Worker) run(ctx context.Context, job *Job) (err error) {
	handler, ok := w.handler(job.Function)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFunction, job.Function)
	}

	ctx, span := telemetry.StartJobSpan(ctx, job.Queue, job.Function, job.Attempt)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
		telemetry.EndSpan(span, err)
	}()

	jobCtx, cancel := context.WithTimeout(ctx, w.config.JobTimeout)
	defer cancel()
	return handler(jobCtx, job.Args)
}
