package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/datahub/backend/internal/domain/interaction"
	"github.com/datahub/backend/internal/domain/metadata"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInteractionRepository implements interaction.Repository using GORM
type GormInteractionRepository struct {
	db *gorm.DB
}

// NewGormInteractionRepository creates a new GormInteractionRepository
func NewGormInteractionRepository(db *gorm.DB) *GormInteractionRepository {
	return &GormInteractionRepository{db: db}
}

// FindByID finds an interaction by its ID
func (r *GormInteractionRepository) FindByID(ctx context.Context, id uuid.UUID) (*interaction.Interaction, error) {
	var model models.InteractionModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists interactions ordered by -date, -created_on unless the filter orders them
func (r *GormInteractionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]interaction.Interaction, int64, error) {
	rows, total, err := findPage[models.InteractionModel](
		conn(ctx, r.db), filter,
		orderClause(filter, InteractionSortFields, "date DESC, created_on DESC"),
		func(q *gorm.DB) *gorm.DB { return r.applyFilter(q, filter) },
	)
	if err != nil {
		return nil, 0, err
	}
	return interactionsToDomain(rows), total, nil
}

// Save creates or updates an interaction. Participants, contacts, policy areas
// and export countries are stored on the interaction row.
func (r *GormInteractionRepository) Save(ctx context.Context, i *interaction.Interaction) error {
	return conn(ctx, r.db).Save(models.InteractionModelFromDomain(i)).Error
}

// IsReferenced reports whether a company referral links to the interaction
func (r *GormInteractionRepository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.ReferralModel{}).
		Where("interaction_id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// Delete removes an interaction
func (r *GormInteractionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&models.InteractionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ReassignCompany moves every interaction of one company to another
func (r *GormInteractionRepository) ReassignCompany(ctx context.Context, from, to uuid.UUID) (int64, error) {
	result := conn(ctx, r.db).Model(&models.InteractionModel{}).
		Where("company_id = ?", from).
		Updates(map[string]any{"company_id": to, "modified_on": time.Now().UTC()})
	return result.RowsAffected, result.Error
}

// FindArchivedBefore lists archived interactions not modified since the cutoff
func (r *GormInteractionRepository) FindArchivedBefore(ctx context.Context, cutoff time.Time) ([]interaction.Interaction, error) {
	var rows []models.InteractionModel
	if err := conn(ctx, r.db).
		Where("archived = ? AND modified_on < ?", true, cutoff).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return interactionsToDomain(rows), nil
}

// Iterate calls fn with batches of interactions ordered by id
func (r *GormInteractionRepository) Iterate(ctx context.Context, batchSize int, fn func([]interaction.Interaction) error) error {
	return iterate(conn(ctx, r.db), batchSize, noScope, func(rows []models.InteractionModel) error {
		return fn(interactionsToDomain(rows))
	})
}

func (r *GormInteractionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(subject) LIKE LOWER(?)", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "company_id":
			query = query.Where("company_id = ?", value)
		case "contact_id":
			query = whereJSONContains(query, "contact_ids", toString(value))
		case "investment_project_id":
			query = query.Where("investment_project_id = ?", value)
		case "kind":
			query = query.Where("kind = ?", value)
		}
	}
	return query
}

func interactionsToDomain(rows []models.InteractionModel) []interaction.Interaction {
	interactions := make([]interaction.Interaction, len(rows))
	for i := range rows {
		interactions[i] = *rows[i].ToDomain()
	}
	return interactions
}

// GormInteractionLookup resolves the reference data interaction validation needs
type GormInteractionLookup struct {
	meta *GormMetadataRepository
	db   *gorm.DB
}

// NewGormInteractionLookup creates a new GormInteractionLookup
func NewGormInteractionLookup(db *gorm.DB) *GormInteractionLookup {
	return &GormInteractionLookup{meta: NewGormMetadataRepository(db), db: db}
}

// ServiceQuestions lists the questions configured for a service
func (l *GormInteractionLookup) ServiceQuestions(ctx context.Context, serviceID uuid.UUID) ([]metadata.ServiceQuestion, error) {
	return l.meta.FindServiceQuestions(ctx, serviceID)
}

// ServiceHasChildren reports whether a service has child services
func (l *GormInteractionLookup) ServiceHasChildren(ctx context.Context, serviceID uuid.UUID) (bool, error) {
	return l.meta.HasChildren(ctx, metadata.KindService, serviceID)
}

// ContactCompanies maps contact ids to the company each contact belongs to
func (l *GormInteractionLookup) ContactCompanies(ctx context.Context, contactIDs []uuid.UUID) (map[uuid.UUID]*uuid.UUID, error) {
	result := make(map[uuid.UUID]*uuid.UUID, len(contactIDs))
	if len(contactIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		ID        uuid.UUID
		CompanyID *uuid.UUID
	}
	if err := conn(ctx, l.db).Model(&models.ContactModel{}).
		Select("id, company_id").
		Where("id IN ?", contactIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ID] = row.CompanyID
	}
	return result, nil
}

// Ensure the repositories implement their domain interfaces
var (
	_ interaction.Repository = (*GormInteractionRepository)(nil)
	_ interaction.Lookup     = (*GormInteractionLookup)(nil)
)
