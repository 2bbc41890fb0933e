package persistence

import (
	"context"
	"errors"

	"github.com/datahub/backend/internal/domain/document"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDocumentRepository implements document.Repository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByID finds a document by its ID
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	var model models.DocumentModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a document
func (r *GormDocumentRepository) Save(ctx context.Context, doc *document.Document) error {
	return conn(ctx, r.db).Save(models.DocumentModelFromDomain(doc)).Error
}

// Delete removes a document together with the entity documents pointing at it
func (r *GormDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return NewGormTransactionManager(r.db).WithinTransaction(ctx, func(ctx context.Context) error {
		db := conn(ctx, r.db)
		if err := db.Delete(&models.PropositionDocumentModel{}, "document_id = ?", id).Error; err != nil {
			return err
		}
		if err := db.Delete(&models.UploadableDocumentModel{}, "document_id = ?", id).Error; err != nil {
			return err
		}
		result := db.Delete(&models.DocumentModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// GormUploadableDocumentRepository implements document.UploadableDocumentRepository using GORM
type GormUploadableDocumentRepository struct {
	db        *gorm.DB
	documents *GormDocumentRepository
}

// NewGormUploadableDocumentRepository creates a new GormUploadableDocumentRepository
func NewGormUploadableDocumentRepository(db *gorm.DB) *GormUploadableDocumentRepository {
	return &GormUploadableDocumentRepository{db: db, documents: NewGormDocumentRepository(db)}
}

// FindByID finds an uploadable document and loads its Document
func (r *GormUploadableDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.UploadableDocument, error) {
	var model models.UploadableDocumentModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	var doc models.DocumentModel
	if err := conn(ctx, r.db).First(&doc, "id = ?", model.DocumentID).Error; err != nil {
		return nil, err
	}
	model.Document = &doc
	return model.ToDomain(), nil
}

// Save creates or updates an uploadable document and its Document
func (r *GormUploadableDocumentRepository) Save(ctx context.Context, d *document.UploadableDocument) error {
	return NewGormTransactionManager(r.db).WithinTransaction(ctx, func(ctx context.Context) error {
		if d.Document != nil {
			if err := r.documents.Save(ctx, d.Document); err != nil {
				return err
			}
		}
		return conn(ctx, r.db).Omit(clause.Associations).Save(models.UploadableDocumentModelFromDomain(d)).Error
	})
}

// GormSharePointDocumentRepository implements document.SharePointDocumentRepository using GORM
type GormSharePointDocumentRepository struct {
	db *gorm.DB
}

// NewGormSharePointDocumentRepository creates a new GormSharePointDocumentRepository
func NewGormSharePointDocumentRepository(db *gorm.DB) *GormSharePointDocumentRepository {
	return &GormSharePointDocumentRepository{db: db}
}

// FindByID finds a SharePoint document by its ID
func (r *GormSharePointDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.SharePointDocument, error) {
	var model models.SharePointDocumentModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a SharePoint document
func (r *GormSharePointDocumentRepository) Save(ctx context.Context, d *document.SharePointDocument) error {
	return conn(ctx, r.db).Save(models.SharePointDocumentModelFromDomain(d)).Error
}

// GormGenericDocumentRepository implements document.GenericDocumentRepository using GORM
type GormGenericDocumentRepository struct {
	db *gorm.DB
}

// NewGormGenericDocumentRepository creates a new GormGenericDocumentRepository
func NewGormGenericDocumentRepository(db *gorm.DB) *GormGenericDocumentRepository {
	return &GormGenericDocumentRepository{db: db}
}

// FindByID finds a non-archived generic document
func (r *GormGenericDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.GenericDocument, error) {
	var model models.GenericDocumentModel
	if err := conn(ctx, r.db).Where("archived = ?", false).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists non-archived generic documents
func (r *GormGenericDocumentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]document.GenericDocument, int64, error) {
	rows, total, err := findPage[models.GenericDocumentModel](
		conn(ctx, r.db), filter,
		orderClause(filter, CommonSortFields, "created_on DESC"),
		func(q *gorm.DB) *gorm.DB {
			q = q.Where("archived = ?", false)
			if v, ok := filter.Filters["related_object_id"]; ok {
				q = q.Where("related_object_id = ?", v)
			}
			if v, ok := filter.Filters["document_type"]; ok {
				q = q.Where("document_type = ?", v)
			}
			return q
		},
	)
	if err != nil {
		return nil, 0, err
	}
	docs := make([]document.GenericDocument, len(rows))
	for i := range rows {
		docs[i] = *rows[i].ToDomain()
	}
	return docs, total, nil
}

// Save creates or updates a generic document
func (r *GormGenericDocumentRepository) Save(ctx context.Context, d *document.GenericDocument) error {
	return conn(ctx, r.db).Save(models.GenericDocumentModelFromDomain(d)).Error
}

// Ensure the repositories implement their domain interfaces
var (
	_ document.Repository                   = (*GormDocumentRepository)(nil)
	_ document.UploadableDocumentRepository = (*GormUploadableDocumentRepository)(nil)
	_ document.SharePointDocumentRepository = (*GormSharePointDocumentRepository)(nil)
	_ document.GenericDocumentRepository    = (*GormGenericDocumentRepository)(nil)
)
