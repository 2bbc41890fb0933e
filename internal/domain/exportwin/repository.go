package exportwin

import (
	"context"
	"time"

	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository persists export wins with their breakdowns and customer response
type Repository interface {
	// FindByID finds a win by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Win, error)

	// FindForAdviser lists wins the adviser reported, leads or is a team member of
	FindForAdviser(ctx context.Context, adviserID uuid.UUID, filter shared.Filter) ([]Win, int64, error)

	// Save creates or updates a win
	Save(ctx context.Context, w *Win) error

	// ReassignCompany moves every win of one company to another and returns the count
	ReassignCompany(ctx context.Context, from, to uuid.UUID) (int64, error)

	// ReplaceTokens expires the contact's current tokens for a response and stores a new one
	ReplaceTokens(ctx context.Context, token *CustomerResponseToken, now time.Time) error
}
