package investment

import (
	"context"

	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProjectRepository persists investment projects
type ProjectRepository interface {
	// FindByID finds a project by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)

	// Exists reports whether a project exists
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// FindAll lists projects. Supports investor_company_id, stage_id and status filters.
	FindAll(ctx context.Context, filter shared.Filter) ([]Project, int64, error)

	// NextProjectNumber takes the next value of the project code sequence
	NextProjectNumber(ctx context.Context) (int64, error)

	// Save creates or updates a project
	Save(ctx context.Context, p *Project) error

	// ReassignCompany moves investor and intermediate company links from one company to another
	ReassignCompany(ctx context.Context, from, to uuid.UUID) (int64, error)

	// Iterate calls fn with batches of projects ordered by id
	Iterate(ctx context.Context, batchSize int, fn func([]Project) error) error
}

// PropositionRepository persists propositions
type PropositionRepository interface {
	// FindByID finds a proposition within a project
	FindByID(ctx context.Context, projectID, id uuid.UUID) (*Proposition, error)

	// FindAll lists propositions ordered by -deadline, -created_on unless the filter orders them.
	// Supports investment_project_id, adviser_id and status filters.
	FindAll(ctx context.Context, filter shared.Filter) ([]Proposition, int64, error)

	// Save creates or updates a proposition
	Save(ctx context.Context, p *Proposition) error

	// CountScannedDocuments counts documents of the proposition that passed virus scanning
	CountScannedDocuments(ctx context.Context, propositionID uuid.UUID) (int64, error)
}

// PropositionDocumentRepository persists proposition documents with their underlying documents
type PropositionDocumentRepository interface {
	// FindByID finds a document of a proposition, excluding those pending deletion
	FindByID(ctx context.Context, propositionID, id uuid.UUID) (*PropositionDocument, error)

	// FindAll lists the documents of a proposition, excluding those pending deletion
	FindAll(ctx context.Context, propositionID uuid.UUID, filter shared.Filter) ([]PropositionDocument, int64, error)

	// Save creates or updates the entity document and its document
	Save(ctx context.Context, d *PropositionDocument) error

	// Delete removes the entity document
	Delete(ctx context.Context, id uuid.UUID) error
}
