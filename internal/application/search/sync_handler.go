package search

import (
	"context"

	"github.com/datahub/backend/internal/domain/shared"
)

// SyncHandler keeps the search indexes in step with record changes by
// scheduling sync and delete jobs for searchable records
type SyncHandler struct {
	service *Service
}

// NewSyncHandler creates a handler scheduling jobs through service
func NewSyncHandler(service *Service) *SyncHandler {
	return &SyncHandler{service: service}
}

// EventTypes returns the record change events the handler listens to
func (h *SyncHandler) EventTypes() []string {
	return []string{shared.EventTypeRecordSaved, shared.EventTypeRecordDeleted}
}

// Handle schedules a sync for saved records and a delete for removed ones.
// Records of apps that are not searchable are ignored.
func (h *SyncHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	app := event.AggregateType()
	if _, ok := h.service.loaders[app]; !ok {
		return nil
	}
	id := event.AggregateID().String()
	switch event.EventType() {
	case shared.EventTypeRecordSaved:
		return h.service.ScheduleSync(ctx, app, id)
	case shared.EventTypeRecordDeleted:
		return h.service.ScheduleDelete(ctx, app, []string{id})
	}
	return nil
}

var _ shared.EventHandler = (*SyncHandler)(nil)
