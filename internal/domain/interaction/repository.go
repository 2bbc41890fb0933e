package interaction

import (
	"context"
	"time"

	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository persists interactions
type Repository interface {
	// FindByID finds an interaction by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Interaction, error)

	// FindAll lists interactions ordered by -date, -created_on.
	// Supports company_id, contact_id, investment_project_id and kind filters.
	FindAll(ctx context.Context, filter shared.Filter) ([]Interaction, int64, error)

	// Save creates or updates an interaction together with its participants,
	// contacts, policy areas and export countries
	Save(ctx context.Context, i *Interaction) error

	// Delete removes an interaction
	Delete(ctx context.Context, id uuid.UUID) error

	// ReassignCompany moves every interaction of one company to another and returns the count
	ReassignCompany(ctx context.Context, from, to uuid.UUID) (int64, error)

	// IsReferenced reports whether a referral was completed with the interaction
	IsReferenced(ctx context.Context, id uuid.UUID) (bool, error)

	// FindArchivedBefore lists archived interactions not modified since the cutoff
	FindArchivedBefore(ctx context.Context, cutoff time.Time) ([]Interaction, error)

	// Iterate calls fn with batches of interactions ordered by id
	Iterate(ctx context.Context, batchSize int, fn func([]Interaction) error) error
}
