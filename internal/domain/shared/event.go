package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents an event that occurred in the domain
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// BaseDomainEvent provides common fields for all domain events
type BaseDomainEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	AggID     uuid.UUID `json:"aggregate_id"`
	AggType   string    `json:"aggregate_type"`
}

// EventID returns the unique event identifier
func (e *BaseDomainEvent) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the type of the event
func (e *BaseDomainEvent) EventType() string {
	return e.Type
}

// OccurredAt returns when the event occurred
func (e *BaseDomainEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID returns the ID of the aggregate that produced this event
func (e *BaseDomainEvent) AggregateID() uuid.UUID {
	return e.AggID
}

// AggregateType returns the type of the aggregate
func (e *BaseDomainEvent) AggregateType() string {
	return e.AggType
}

// NewBaseDomainEvent creates a new base domain event
func NewBaseDomainEvent(eventType, aggType string, aggID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		AggID:     aggID,
		AggType:   aggType,
	}
}

// Event types published when records change
const (
	EventTypeRecordSaved   = "record.saved"
	EventTypeRecordDeleted = "record.deleted"
)

// RecordSavedEvent is published after a searchable record is created or updated
type RecordSavedEvent struct {
	BaseDomainEvent
}

// NewRecordSavedEvent creates a RecordSavedEvent for the given record
func NewRecordSavedEvent(aggType string, id uuid.UUID) *RecordSavedEvent {
	return &RecordSavedEvent{BaseDomainEvent: NewBaseDomainEvent(EventTypeRecordSaved, aggType, id)}
}

// RecordDeletedEvent is published after a record is removed from the database
type RecordDeletedEvent struct {
	BaseDomainEvent
}

// NewRecordDeletedEvent creates a RecordDeletedEvent for the given record
func NewRecordDeletedEvent(aggType string, id uuid.UUID) *RecordDeletedEvent {
	return &RecordDeletedEvent{BaseDomainEvent: NewBaseDomainEvent(EventTypeRecordDeleted, aggType, id)}
}
