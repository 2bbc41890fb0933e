// Package userevent records notable actions taken by advisers
package userevent

import (
	"context"
	"time"

	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Type classifies a user event
type Type string

const (
	TypePropositionDocumentDelete Type = "proposition_document_delete"
	TypeSearchExport              Type = "search_export"
	TypeOneListFieldsUpdate       Type = "one_list_fields_update"
)

// UserEvent is an action recorded for later review
type UserEvent struct {
	ID         uuid.UUID      `json:"id"`
	AdviserID  uuid.UUID      `json:"adviser"`
	Type       Type           `json:"type"`
	APIURLPath string         `json:"api_url_path"`
	Data       map[string]any `json:"data"`
	Timestamp  time.Time      `json:"timestamp"`
}

// New creates a user event stamped with the current time
func New(adviserID uuid.UUID, eventType Type, path string, data map[string]any) *UserEvent {
	return &UserEvent{
		ID:         uuid.New(),
		AdviserID:  adviserID,
		Type:       eventType,
		APIURLPath: path,
		Data:       data,
		Timestamp:  time.Now().UTC(),
	}
}

// Repository persists user events
type Repository interface {
	// Save stores an event
	Save(ctx context.Context, e *UserEvent) error

	// FindAll lists events newest first. Supports adviser_id and type filters.
	FindAll(ctx context.Context, filter shared.Filter) ([]UserEvent, int64, error)
}
