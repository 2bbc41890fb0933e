// Package audit records versions of changed records, announces the changes
// and builds changelogs from the stored versions.
package audit

import (
	"context"
	"fmt"

	"github.com/datahub/backend/internal/domain/audit"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/domain/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recorder writes audit versions and publishes record change events
type Recorder struct {
	versions  audit.Repository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewRecorder creates a Recorder. publisher may be nil.
func NewRecorder(versions audit.Repository, publisher shared.EventPublisher, logger *zap.Logger) *Recorder {
	return &Recorder{
		versions:  versions,
		publisher: publisher,
		logger:    logger,
	}
}

// Record stores a version of record. Call it inside the transaction that saves the record.
func (r *Recorder) Record(ctx context.Context, objectType string, id uuid.UUID, record any, by *uuid.UUID, comment string) error {
	data, err := validation.ToMap(record)
	if err != nil {
		return fmt.Errorf("failed to serialize %s %s: %w", objectType, id, err)
	}
	return r.versions.Save(ctx, audit.NewVersion(objectType, id, data, by, comment))
}

// Saved announces that records were created or updated. Call it after the
// transaction commits. Failures are logged and not returned.
func (r *Recorder) Saved(ctx context.Context, objectType string, ids ...uuid.UUID) {
	events := make([]shared.DomainEvent, 0, len(ids))
	for _, id := range ids {
		events = append(events, shared.NewRecordSavedEvent(objectType, id))
	}
	r.publish(ctx, events)
}

// Deleted announces that records were removed
func (r *Recorder) Deleted(ctx context.Context, objectType string, ids ...uuid.UUID) {
	events := make([]shared.DomainEvent, 0, len(ids))
	for _, id := range ids {
		events = append(events, shared.NewRecordDeletedEvent(objectType, id))
	}
	r.publish(ctx, events)
}

func (r *Recorder) publish(ctx context.Context, events []shared.DomainEvent) {
	if r.publisher == nil || len(events) == 0 {
		return
	}
	if err := r.publisher.Publish(ctx, events...); err != nil {
		r.logger.Error("Failed to publish record events",
			zap.String("aggregate_type", events[0].AggregateType()),
			zap.Int("count", len(events)),
			zap.Error(err))
	}
}
