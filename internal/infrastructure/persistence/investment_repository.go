package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/datahub/backend/internal/domain/document"
	"github.com/datahub/backend/internal/domain/investment"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// projectCodeSequence backs investment project codes on Postgres
const projectCodeSequence = "investment_project_code_seq"

// GormInvestmentProjectRepository implements investment.ProjectRepository using GORM
type GormInvestmentProjectRepository struct {
	db *gorm.DB
}

// NewGormInvestmentProjectRepository creates a new GormInvestmentProjectRepository
func NewGormInvestmentProjectRepository(db *gorm.DB) *GormInvestmentProjectRepository {
	return &GormInvestmentProjectRepository{db: db}
}

// FindByID finds a project by its ID
func (r *GormInvestmentProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*investment.Project, error) {
	var model models.InvestmentProjectModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Exists reports whether a project exists
func (r *GormInvestmentProjectRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.InvestmentProjectModel{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// FindAll lists projects matching the filter
func (r *GormInvestmentProjectRepository) FindAll(ctx context.Context, filter shared.Filter) ([]investment.Project, int64, error) {
	rows, total, err := findPage[models.InvestmentProjectModel](
		conn(ctx, r.db), filter,
		orderClause(filter, ProjectSortFields, "created_on DESC"),
		func(q *gorm.DB) *gorm.DB {
			if filter.Search != "" {
				q = q.Where("LOWER(name) LIKE LOWER(?) OR project_code = ?", "%"+filter.Search+"%", filter.Search)
			}
			for key, value := range filter.Filters {
				switch key {
				case "investor_company_id":
					q = q.Where("investor_company_id = ?", value)
				case "stage_id":
					q = q.Where("stage_id = ?", value)
				case "status":
					q = q.Where("status = ?", value)
				}
			}
			return q
		},
	)
	if err != nil {
		return nil, 0, err
	}
	return projectsToDomain(rows), total, nil
}

// NextProjectNumber takes the next value of the project code sequence
func (r *GormInvestmentProjectRepository) NextProjectNumber(ctx context.Context) (int64, error) {
	db := conn(ctx, r.db)
	var next int64
	if db.Dialector.Name() == "postgres" {
		err := db.Raw("SELECT nextval(?::regclass)", projectCodeSequence).Scan(&next).Error
		return next, err
	}
	var count int64
	if err := db.Model(&models.InvestmentProjectModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count + 1, nil
}

// Save creates or updates a project
func (r *GormInvestmentProjectRepository) Save(ctx context.Context, p *investment.Project) error {
	return conn(ctx, r.db).Save(models.InvestmentProjectModelFromDomain(p)).Error
}

// ReassignCompany moves investor and intermediate company links from one company to another
func (r *GormInvestmentProjectRepository) ReassignCompany(ctx context.Context, from, to uuid.UUID) (int64, error) {
	now := time.Now().UTC()
	investor := conn(ctx, r.db).Model(&models.InvestmentProjectModel{}).
		Where("investor_company_id = ?", from).
		Updates(map[string]any{"investor_company_id": to, "modified_on": now})
	if investor.Error != nil {
		return 0, investor.Error
	}
	intermediate := conn(ctx, r.db).Model(&models.InvestmentProjectModel{}).
		Where("intermediate_company_id = ?", from).
		Updates(map[string]any{"intermediate_company_id": to, "modified_on": now})
	if intermediate.Error != nil {
		return 0, intermediate.Error
	}
	return investor.RowsAffected + intermediate.RowsAffected, nil
}

// Iterate calls fn with batches of projects ordered by id
func (r *GormInvestmentProjectRepository) Iterate(ctx context.Context, batchSize int, fn func([]investment.Project) error) error {
	return iterate(conn(ctx, r.db), batchSize, noScope, func(rows []models.InvestmentProjectModel) error {
		return fn(projectsToDomain(rows))
	})
}

func projectsToDomain(rows []models.InvestmentProjectModel) []investment.Project {
	projects := make([]investment.Project, len(rows))
	for i := range rows {
		projects[i] = *rows[i].ToDomain()
	}
	return projects
}

// GormPropositionRepository implements investment.PropositionRepository using GORM
type GormPropositionRepository struct {
	db *gorm.DB
}

// NewGormPropositionRepository creates a new GormPropositionRepository
func NewGormPropositionRepository(db *gorm.DB) *GormPropositionRepository {
	return &GormPropositionRepository{db: db}
}

// FindByID finds a proposition within a project
func (r *GormPropositionRepository) FindByID(ctx context.Context, projectID, id uuid.UUID) (*investment.Proposition, error) {
	var model models.PropositionModel
	if err := conn(ctx, r.db).
		Where("investment_project_id = ? AND id = ?", projectID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists propositions ordered by -deadline, -created_on unless the filter orders them
func (r *GormPropositionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]investment.Proposition, int64, error) {
	rows, total, err := findPage[models.PropositionModel](
		conn(ctx, r.db), filter,
		orderClause(filter, PropositionSortFields, "deadline DESC, created_on DESC"),
		func(q *gorm.DB) *gorm.DB {
			for key, value := range filter.Filters {
				switch key {
				case "investment_project_id":
					q = q.Where("investment_project_id = ?", value)
				case "adviser_id":
					q = q.Where("adviser_id = ?", value)
				case "status":
					q = q.Where("status = ?", value)
				}
			}
			return q
		},
	)
	if err != nil {
		return nil, 0, err
	}
	propositions := make([]investment.Proposition, len(rows))
	for i := range rows {
		propositions[i] = *rows[i].ToDomain()
	}
	return propositions, total, nil
}

// Save creates or updates a proposition
func (r *GormPropositionRepository) Save(ctx context.Context, p *investment.Proposition) error {
	return conn(ctx, r.db).Save(models.PropositionModelFromDomain(p)).Error
}

// CountScannedDocuments counts documents of the proposition that passed virus scanning
func (r *GormPropositionRepository) CountScannedDocuments(ctx context.Context, propositionID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.PropositionDocumentModel{}).
		Joins("JOIN documents ON documents.id = proposition_documents.document_id").
		Where("proposition_documents.proposition_id = ? AND documents.status = ?", propositionID, document.StatusVirusScanned).
		Count(&count).Error
	return count, err
}

// GormPropositionDocumentRepository implements investment.PropositionDocumentRepository using GORM
type GormPropositionDocumentRepository struct {
	db        *gorm.DB
	documents *GormDocumentRepository
}

// NewGormPropositionDocumentRepository creates a new GormPropositionDocumentRepository
func NewGormPropositionDocumentRepository(db *gorm.DB) *GormPropositionDocumentRepository {
	return &GormPropositionDocumentRepository{db: db, documents: NewGormDocumentRepository(db)}
}

// FindByID finds a document of a proposition, excluding those pending deletion
func (r *GormPropositionDocumentRepository) FindByID(ctx context.Context, propositionID, id uuid.UUID) (*investment.PropositionDocument, error) {
	var model models.PropositionDocumentModel
	if err := r.visible(conn(ctx, r.db).Model(&models.PropositionDocumentModel{})).
		Where("proposition_documents.proposition_id = ? AND proposition_documents.id = ?", propositionID, id).
		First(&model).Error; err != nil {
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

// FindAll lists the documents of a proposition, excluding those pending deletion
func (r *GormPropositionDocumentRepository) FindAll(ctx context.Context, propositionID uuid.UUID, filter shared.Filter) ([]investment.PropositionDocument, int64, error) {
	rows, total, err := findPage[models.PropositionDocumentModel](
		conn(ctx, r.db), filter, "proposition_documents.created_on DESC, proposition_documents.id ASC",
		func(q *gorm.DB) *gorm.DB {
			return r.visible(q).Where("proposition_documents.proposition_id = ?", propositionID)
		},
	)
	if err != nil {
		return nil, 0, err
	}

	documentIDs := make([]uuid.UUID, len(rows))
	for i := range rows {
		documentIDs[i] = rows[i].DocumentID
	}
	var documentModels []models.DocumentModel
	if len(documentIDs) > 0 {
		if err := conn(ctx, r.db).Where("id IN ?", documentIDs).Find(&documentModels).Error; err != nil {
			return nil, 0, err
		}
	}
	byID := make(map[uuid.UUID]*models.DocumentModel, len(documentModels))
	for i := range documentModels {
		byID[documentModels[i].ID] = &documentModels[i]
	}

	docs := make([]investment.PropositionDocument, len(rows))
	for i := range rows {
		rows[i].Document = byID[rows[i].DocumentID]
		docs[i] = *rows[i].ToDomain()
	}
	return docs, total, nil
}

// Save creates or updates the entity document and its document
func (r *GormPropositionDocumentRepository) Save(ctx context.Context, d *investment.PropositionDocument) error {
	return NewGormTransactionManager(r.db).WithinTransaction(ctx, func(ctx context.Context) error {
		if d.Document != nil {
			if err := r.documents.Save(ctx, d.Document); err != nil {
				return err
			}
		}
		return conn(ctx, r.db).Omit(clause.Associations).Save(models.PropositionDocumentModelFromDomain(d)).Error
	})
}

// Delete removes the entity document
func (r *GormPropositionDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Delete(&models.PropositionDocumentModel{}, "id = ?", id).Error
}

func (r *GormPropositionDocumentRepository) visible(q *gorm.DB) *gorm.DB {
	return q.Joins("JOIN documents ON documents.id = proposition_documents.document_id").
		Where("documents.status <> ?", document.StatusDeletionPending)
}

// Ensure the repositories implement their domain interfaces
var (
	_ investment.ProjectRepository             = (*GormInvestmentProjectRepository)(nil)
	_ investment.PropositionRepository         = (*GormPropositionRepository)(nil)
	_ investment.PropositionDocumentRepository = (*GormPropositionDocumentRepository)(nil)
)
