// Package scheduler enqueues periodic jobs on the task queue
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/datahub/backend/internal/application/task"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Entry is a job enqueued once a day
type Entry struct {
	Name     string
	Schedule Daily
	Function string
	Args     any
	Options  task.Options
}

// BeatConfig holds beat configuration
type BeatConfig struct {
	// CheckInterval is how often the clock is compared to the entries
	CheckInterval time.Duration
	// ClaimTTL keeps other replicas from enqueuing an entry twice
	ClaimTTL time.Duration
}

// DefaultBeatConfig returns the default beat configuration
func DefaultBeatConfig() BeatConfig {
	return BeatConfig{
		CheckInterval: 20 * time.Second,
		ClaimTTL:      2 * time.Minute,
	}
}

// Beat enqueues its entries when they fall due. Every worker replica may run
// a beat; a Redis claim makes sure only one of them enqueues each run.
type Beat struct {
	config    BeatConfig
	entries   []Entry
	scheduler task.Scheduler
	redis     redis.UniversalClient
	logger    *zap.Logger
	now       func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastRun   map[string]string
}

// NewBeat creates a beat. A nil redis client disables the claim.
func NewBeat(config BeatConfig, scheduler task.Scheduler, client redis.UniversalClient, logger *zap.Logger, entries ...Entry) *Beat {
	defaults := DefaultBeatConfig()
	if config.CheckInterval <= 0 {
		config.CheckInterval = defaults.CheckInterval
	}
	if config.ClaimTTL <= 0 {
		config.ClaimTTL = defaults.ClaimTTL
	}
	return &Beat{
		config:    config,
		entries:   entries,
		scheduler: scheduler,
		redis:     client,
		logger:    logger,
		now:       time.Now,
		lastRun:   map[string]string{},
	}
}

// Entries returns the configured entries
func (b *Beat) Entries() []Entry {
	return b.entries
}

// Start starts the beat loop
func (b *Beat) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.isRunning {
		b.mu.Unlock()
		return nil
	}
	b.isRunning = true
	b.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel

	b.wg.Add(1)
	go b.loop(ctx)

	for _, e := range b.entries {
		b.logger.Info("Periodic job scheduled",
			zap.String("name", e.Name),
			zap.String("schedule", e.Schedule.String()),
			zap.Time("next_run", e.Schedule.Next(b.now())),
		)
	}
	return nil
}

// Stop stops the beat loop
func (b *Beat) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.isRunning {
		b.mu.Unlock()
		return nil
	}
	b.isRunning = false
	b.mu.Unlock()

	if b.cancel != nil {
		b.cancel()
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("Beat stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Beat) loop(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Tick(ctx)
		}
	}
}

// Tick enqueues every entry due at the current time that has not run today
func (b *Beat) Tick(ctx context.Context) {
	now := b.now()
	today := now.Format(time.DateOnly)

	for _, e := range b.entries {
		if !e.Schedule.Due(now) {
			continue
		}
		b.mu.Lock()
		done := b.lastRun[e.Name] == today
		b.lastRun[e.Name] = today
		b.mu.Unlock()
		if done {
			continue
		}

		claimed, err := b.claim(ctx, e.Name, today)
		if err != nil {
			b.logger.Error("Failed to claim periodic job", zap.String("name", e.Name), zap.Error(err))
			continue
		}
		if !claimed {
			b.logger.Debug("Periodic job enqueued by another replica", zap.String("name", e.Name))
			continue
		}

		id, err := b.scheduler.Schedule(ctx, e.Function, e.Args, e.Options)
		if err != nil {
			b.logger.Error("Failed to enqueue periodic job", zap.String("name", e.Name), zap.Error(err))
			continue
		}
		b.logger.Info("Periodic job enqueued", zap.String("name", e.Name), zap.String("job_id", id))
	}
}

func (b *Beat) claim(ctx context.Context, name, day string) (bool, error) {
	if b.redis == nil {
		return true, nil
	}
	return b.redis.SetNX(ctx, "datahub:beat:"+name+":"+day, b.now().Unix(), b.config.ClaimTTL).Result()
}
