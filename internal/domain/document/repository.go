package document

import (
	"context"

	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository persists Document records
type Repository interface {
	// FindByID finds a document by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Document, error)

	// Save creates or updates a document
	Save(ctx context.Context, doc *Document) error

	// Delete removes a document and, through cascading foreign keys, the entity documents pointing at it
	Delete(ctx context.Context, id uuid.UUID) error
}

// UploadableDocumentRepository persists UploadableDocument records
type UploadableDocumentRepository interface {
	// FindByID finds an uploadable document and loads its Document
	FindByID(ctx context.Context, id uuid.UUID) (*UploadableDocument, error)

	// Save creates or updates an uploadable document and its Document
	Save(ctx context.Context, doc *UploadableDocument) error
}

// SharePointDocumentRepository persists SharePointDocument records
type SharePointDocumentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SharePointDocument, error)
	Save(ctx context.Context, doc *SharePointDocument) error
}

// GenericDocumentRepository persists GenericDocument records
type GenericDocumentRepository interface {
	// FindByID finds a non-archived generic document
	FindByID(ctx context.Context, id uuid.UUID) (*GenericDocument, error)

	// FindAll lists non-archived generic documents. Supports the related_object_id filter.
	FindAll(ctx context.Context, filter shared.Filter) ([]GenericDocument, int64, error)

	// Save creates or updates a generic document
	Save(ctx context.Context, doc *GenericDocument) error
}
