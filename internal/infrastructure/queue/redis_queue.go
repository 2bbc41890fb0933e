package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/datahub/backend/internal/application/task"
	"github.com/datahub/backend/internal/infrastructure/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Ensure RedisQueue implements task.Scheduler
var _ task.Scheduler = (*RedisQueue)(nil)

const defaultKeyPrefix = "datahub:"

// RedisQueue stores jobs in Redis.
//
// Ready jobs sit in a list per queue. Retries wait in a sorted set per queue
// scored by the unix time they become due, and jobs that exhaust their
// retries are kept in a failed list for inspection.
type RedisQueue struct {
	client    redis.UniversalClient
	keyPrefix string
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// RedisQueueOption configures a RedisQueue
type RedisQueueOption func(*RedisQueue)

// WithKeyPrefix sets the prefix for every key the queue uses
func WithKeyPrefix(prefix string) RedisQueueOption {
	return func(q *RedisQueue) {
		q.keyPrefix = prefix
	}
}

// WithMetrics records enqueued jobs
func WithMetrics(m *metrics.Metrics) RedisQueueOption {
	return func(q *RedisQueue) {
		q.metrics = m
	}
}

// WithLogger sets the queue logger
func WithLogger(logger *zap.Logger) RedisQueueOption {
	return func(q *RedisQueue) {
		q.logger = logger
	}
}

// NewRedisQueue creates a queue on an existing client
func NewRedisQueue(client redis.UniversalClient, opts ...RedisQueueOption) *RedisQueue {
	q := &RedisQueue{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *RedisQueue) readyKey(queue string) string {
	return q.keyPrefix + "queue:" + queue
}

func (q *RedisQueue) scheduledKey(queue string) string {
	return q.keyPrefix + "scheduled:" + queue
}

func (q *RedisQueue) failedKey(queue string) string {
	return q.keyPrefix + "failed:" + queue
}

// Schedule enqueues a job and returns its id
func (q *RedisQueue) Schedule(ctx context.Context, function string, args any, opts task.Options) (string, error) {
	job, err := NewJob(function, args, opts)
	if err != nil {
		return "", fmt.Errorf("failed to encode job arguments: %w", err)
	}
	if err := q.Enqueue(ctx, job); err != nil {
		return "", err
	}
	q.metrics.JobEnqueued(job.Queue, job.Function)
	q.logger.Debug("Job scheduled",
		zap.String("job_id", job.ID),
		zap.String("function", job.Function),
		zap.String("queue", job.Queue),
	)
	return job.ID, nil
}

// Enqueue pushes a job onto its ready list
func (q *RedisQueue) Enqueue(ctx context.Context, job *Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	if err := q.client.LPush(ctx, q.readyKey(job.Queue), payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// Dequeue blocks for up to timeout waiting for a job on any of the queues.
// Queues are checked in the order given. It returns nil when nothing arrived.
func (q *RedisQueue) Dequeue(ctx context.Context, queues []string, timeout time.Duration) (*Job, error) {
	keys := make([]string, len(queues))
	for i, name := range queues {
		keys[i] = q.readyKey(name)
	}
	res, err := q.client.BRPop(ctx, timeout, keys...).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue job: %w", err)
	}
	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to decode job: %w", err)
	}
	return &job, nil
}

// Retry schedules the next attempt of a failed job after its retry delay
func (q *RedisQueue) Retry(ctx context.Context, job *Job, cause error) error {
	delay := job.RetryDelay()
	job.Attempt++
	if cause != nil {
		job.LastError = cause.Error()
	}
	if delay <= 0 {
		return q.Enqueue(ctx, job)
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	due := time.Now().Add(delay).Unix()
	err = q.client.ZAdd(ctx, q.scheduledKey(job.Queue), redis.Z{Score: float64(due), Member: payload}).Err()
	if err != nil {
		return fmt.Errorf("failed to schedule retry: %w", err)
	}
	return nil
}

// Fail moves a job to the failed list of its queue
func (q *RedisQueue) Fail(ctx context.Context, job *Job, cause error) error {
	if cause != nil {
		job.LastError = cause.Error()
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	if err := q.client.LPush(ctx, q.failedKey(job.Queue), payload).Err(); err != nil {
		return fmt.Errorf("failed to record failed job: %w", err)
	}
	return nil
}

// PromoteDue moves retries whose time has come back onto their ready lists.
// Only the caller that removes a job from the sorted set pushes it, so
// several workers can poll the same queues.
func (q *RedisQueue) PromoteDue(ctx context.Context, queues []string, now time.Time) (int, error) {
	promoted := 0
	max := strconv.FormatInt(now.Unix(), 10)
	for _, name := range queues {
		key := q.scheduledKey(name)
		due, err := q.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{Min: "-inf", Max: max}).Result()
		if err != nil {
			return promoted, fmt.Errorf("failed to read scheduled jobs: %w", err)
		}
		for _, payload := range due {
			removed, err := q.client.ZRem(ctx, key, payload).Result()
			if err != nil {
				return promoted, fmt.Errorf("failed to claim scheduled job: %w", err)
			}
			if removed == 0 {
				continue
			}
			if err := q.client.LPush(ctx, q.readyKey(name), payload).Err(); err != nil {
				return promoted, fmt.Errorf("failed to promote scheduled job: %w", err)
			}
			promoted++
		}
	}
	return promoted, nil
}

// Stats reports the number of ready, scheduled and failed jobs in a queue
type Stats struct {
	Ready     int64
	Scheduled int64
	Failed    int64
}

// Stats returns the job counts of a queue
func (q *RedisQueue) Stats(ctx context.Context, queue string) (Stats, error) {
	pipe := q.client.Pipeline()
	ready := pipe.LLen(ctx, q.readyKey(queue))
	scheduled := pipe.ZCard(ctx, q.scheduledKey(queue))
	failed := pipe.LLen(ctx, q.failedKey(queue))
	if _, err := pipe.Exec(ctx); err != nil {
		return Stats{}, fmt.Errorf("failed to read queue stats: %w", err)
	}
	return Stats{Ready: ready.Val(), Scheduled: scheduled.Val(), Failed: failed.Val()}, nil
}
