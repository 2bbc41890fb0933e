// Package queue runs background jobs from Redis lists. Jobs that fail are
// retried after a delay through a sorted set of scheduled jobs.
package queue

import (
	"encoding/json"
	"time"

	"github.com/datahub/backend/internal/application/task"
	"github.com/google/uuid"
)

// Job is the JSON document stored on a queue
type Job struct {
	ID             string          `json:"id"`
	Function       string          `json:"function"`
	Args           json.RawMessage `json:"args"`
	Queue          string          `json:"queue"`
	Attempt        int             `json:"attempt"`
	MaxRetries     int             `json:"max_retries"`
	RetryIntervals []int           `json:"retry_intervals"`
	EnqueuedAt     time.Time       `json:"enqueued_at"`
	LastError      string          `json:"last_error,omitempty"`
}

// NewJob builds a job for function with the retry policy from opts
func NewJob(function string, args any, opts task.Options) (*Job, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	queueName := opts.Queue
	if queueName == "" {
		queueName = task.QueueShortRunning
	}
	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = task.DefaultMaxRetries
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Job{
		ID:             uuid.NewString(),
		Function:       function,
		Args:           raw,
		Queue:          queueName,
		MaxRetries:     maxRetries,
		RetryIntervals: CalculateRetryIntervals(maxRetries, opts.RetryIntervals, opts.RetryBackoff),
		EnqueuedAt:     time.Now().UTC(),
	}, nil
}

// CanRetry reports whether the job has retries left after its current attempt
func (j *Job) CanRetry() bool {
	return j.Attempt < j.MaxRetries
}

// RetryDelay returns the wait before the next attempt. The last interval is
// reused once the list runs out.
func (j *Job) RetryDelay() time.Duration {
	if len(j.RetryIntervals) == 0 {
		return 0
	}
	idx := j.Attempt
	if idx >= len(j.RetryIntervals) {
		idx = len(j.RetryIntervals) - 1
	}
	return time.Duration(j.RetryIntervals[idx]) * time.Second
}

// CalculateRetryIntervals returns the delays in seconds between attempts.
//
// A backoff of 1 yields 1, 4, 9, ... seconds. A backoff above 1 starts with
// that value followed by the squares of the following integers. Either way
// the list is cut to maxRetries entries. Without backoff the explicit
// intervals are returned unchanged.
func CalculateRetryIntervals(maxRetries int, intervals []int, backoff int) []int {
	if backoff < 1 || maxRetries <= 0 {
		return intervals
	}
	var result []int
	start := 1
	if backoff > 1 {
		result = append(result, backoff)
		start = backoff + 1
	}
	for i := start; i < maxRetries+start; i++ {
		result = append(result, i*i)
	}
	return result[:maxRetries]
}
