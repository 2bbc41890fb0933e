package company

import (
	"context"
	"time"

	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository persists companies
type Repository interface {
	// FindByID finds a company by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)

	// FindByIDs finds companies by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Company, error)

	// FindAll lists companies. Supports name, archived, sector_id and uk_region_id filters.
	FindAll(ctx context.Context, filter shared.Filter) ([]Company, int64, error)

	// FindWithOneListFields lists companies with a classification or One List account owner
	FindWithOneListFields(ctx context.Context) ([]Company, error)

	// FindArchivedBefore lists archived companies modified before the cutoff
	FindArchivedBefore(ctx context.Context, cutoff time.Time) ([]Company, error)

	// IsReferenced reports whether other records point at the company
	IsReferenced(ctx context.Context, id uuid.UUID) (bool, error)

	// CountSubsidiaries counts companies whose global headquarters is id
	CountSubsidiaries(ctx context.Context, id uuid.UUID) (int64, error)

	// Save creates or updates a company
	Save(ctx context.Context, c *Company) error

	// Delete removes a company
	Delete(ctx context.Context, id uuid.UUID) error

	// Iterate calls fn with batches of companies ordered by id
	Iterate(ctx context.Context, batchSize int, fn func([]Company) error) error
}

// ContactRepository persists contacts
type ContactRepository interface {
	// FindByID finds a contact by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Contact, error)

	// FindByIDs finds contacts by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Contact, error)

	// FindAll lists contacts. Supports the company_id and archived filters.
	FindAll(ctx context.Context, filter shared.Filter) ([]Contact, int64, error)

	// Save creates or updates a contact
	Save(ctx context.Context, c *Contact) error

	// ReassignCompany moves every contact of one company to another and returns the count
	ReassignCompany(ctx context.Context, from, to uuid.UUID) (int64, error)

	// Iterate calls fn with batches of contacts ordered by id
	Iterate(ctx context.Context, batchSize int, fn func([]Contact) error) error
}

// ReferralRepository persists company referrals
type ReferralRepository interface {
	// FindByID finds a referral by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Referral, error)

	// FindForAdviser lists referrals the adviser sent or received
	FindForAdviser(ctx context.Context, adviserID uuid.UUID, filter shared.Filter) ([]Referral, int64, error)

	// Save creates or updates a referral
	Save(ctx context.Context, r *Referral) error

	// ReassignCompany moves every referral of one company to another and returns the count
	ReassignCompany(ctx context.Context, from, to uuid.UUID) (int64, error)
}
