// Package userevent lists the actions recorded against advisers
package userevent

import (
	"context"

	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/domain/userevent"
)

// Service handles user event use cases
type Service struct {
	events userevent.Repository
}

// NewService creates a Service
func NewService(events userevent.Repository) *Service {
	return &Service{events: events}
}

// List lists user events newest first
func (s *Service) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[userevent.UserEvent], error) {
	items, total, err := s.events.FindAll(ctx, filter.Normalize())
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(items, total)
	return &result, nil
}
