package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/datahub/backend/internal/domain/company"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCompanyRepository implements company.Repository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByID finds a company by its ID
func (r *GormCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	var model models.CompanyModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds companies by their IDs
func (r *GormCompanyRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]company.Company, error) {
	if len(ids) == 0 {
		return []company.Company{}, nil
	}
	var companyModels []models.CompanyModel
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&companyModels).Error; err != nil {
		return nil, err
	}
	return companiesToDomain(companyModels), nil
}

// FindAll lists companies matching the filter
func (r *GormCompanyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]company.Company, int64, error) {
	rows, total, err := findPage[models.CompanyModel](
		conn(ctx, r.db), filter,
		orderClause(filter, CompanySortFields, "name ASC"),
		func(q *gorm.DB) *gorm.DB { return r.applyFilter(q, filter) },
	)
	if err != nil {
		return nil, 0, err
	}
	return companiesToDomain(rows), total, nil
}

// FindWithOneListFields lists companies carrying a classification or a One List account owner
func (r *GormCompanyRepository) FindWithOneListFields(ctx context.Context) ([]company.Company, error) {
	var companyModels []models.CompanyModel
	if err := conn(ctx, r.db).
		Where("classification_id IS NOT NULL OR one_list_account_owner_id IS NOT NULL").
		Order("id ASC").
		Find(&companyModels).Error; err != nil {
		return nil, err
	}
	return companiesToDomain(companyModels), nil
}

// FindArchivedBefore lists archived companies not modified since the cutoff
func (r *GormCompanyRepository) FindArchivedBefore(ctx context.Context, cutoff time.Time) ([]company.Company, error) {
	var companyModels []models.CompanyModel
	if err := conn(ctx, r.db).
		Where("archived = ? AND modified_on < ?", true, cutoff).
		Order("id ASC").
		Find(&companyModels).Error; err != nil {
		return nil, err
	}
	return companiesToDomain(companyModels), nil
}

// IsReferenced reports whether contacts, interactions, referrals, projects,
// wins or other companies point at the company
func (r *GormCompanyRepository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	var referenced bool
	err := conn(ctx, r.db).Raw(`SELECT
		EXISTS (SELECT 1 FROM contacts WHERE company_id = @id)
		OR EXISTS (SELECT 1 FROM interactions WHERE company_id = @id)
		OR EXISTS (SELECT 1 FROM company_referrals WHERE company_id = @id)
		OR EXISTS (SELECT 1 FROM investment_projects WHERE investor_company_id = @id OR intermediate_company_id = @id)
		OR EXISTS (SELECT 1 FROM export_wins WHERE company_id = @id)
		OR EXISTS (SELECT 1 FROM companies WHERE global_headquarters_id = @id OR transferred_to_id = @id)`,
		sql.Named("id", id),
	).Scan(&referenced).Error
	return referenced, err
}

// CountSubsidiaries counts companies whose global headquarters is id
func (r *GormCompanyRepository) CountSubsidiaries(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.CompanyModel{}).
		Where("global_headquarters_id = ?", id).
		Count(&count).Error
	return count, err
}

// Save creates or updates a company
func (r *GormCompanyRepository) Save(ctx context.Context, c *company.Company) error {
	return conn(ctx, r.db).Save(models.CompanyModelFromDomain(c)).Error
}

// Delete removes a company
func (r *GormCompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&models.CompanyModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Iterate calls fn with batches of companies ordered by id
func (r *GormCompanyRepository) Iterate(ctx context.Context, batchSize int, fn func([]company.Company) error) error {
	return iterate(conn(ctx, r.db), batchSize, noScope, func(rows []models.CompanyModel) error {
		return fn(companiesToDomain(rows))
	})
}

func (r *GormCompanyRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "name":
			query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+toString(value)+"%")
		case "archived":
			query = query.Where("archived = ?", value)
		case "sector_id":
			query = query.Where("sector_id = ?", value)
		case "uk_region_id":
			query = query.Where("uk_region_id = ?", value)
		case "global_headquarters_id":
			query = query.Where("global_headquarters_id = ?", value)
		}
	}
	return query
}

func companiesToDomain(rows []models.CompanyModel) []company.Company {
	companies := make([]company.Company, len(rows))
	for i := range rows {
		companies[i] = *rows[i].ToDomain()
	}
	return companies
}

// GormContactRepository implements company.ContactRepository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// FindByID finds a contact by its ID
func (r *GormContactRepository) FindByID(ctx context.Context, id uuid.UUID) (*company.Contact, error) {
	var model models.ContactModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds contacts by their IDs
func (r *GormContactRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]company.Contact, error) {
	if len(ids) == 0 {
		return []company.Contact{}, nil
	}
	var contactModels []models.ContactModel
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&contactModels).Error; err != nil {
		return nil, err
	}
	return contactsToDomain(contactModels), nil
}

// FindAll lists contacts matching the filter
func (r *GormContactRepository) FindAll(ctx context.Context, filter shared.Filter) ([]company.Contact, int64, error) {
	rows, total, err := findPage[models.ContactModel](
		conn(ctx, r.db), filter,
		orderClause(filter, ContactSortFields, "last_name ASC, first_name ASC"),
		func(q *gorm.DB) *gorm.DB { return r.applyFilter(q, filter) },
	)
	if err != nil {
		return nil, 0, err
	}
	return contactsToDomain(rows), total, nil
}

// Save creates or updates a contact
func (r *GormContactRepository) Save(ctx context.Context, c *company.Contact) error {
	return conn(ctx, r.db).Save(models.ContactModelFromDomain(c)).Error
}

// ReassignCompany moves every contact of one company to another
func (r *GormContactRepository) ReassignCompany(ctx context.Context, from, to uuid.UUID) (int64, error) {
	result := conn(ctx, r.db).Model(&models.ContactModel{}).
		Where("company_id = ?", from).
		Updates(map[string]any{"company_id": to, "modified_on": time.Now().UTC()})
	return result.RowsAffected, result.Error
}

// Iterate calls fn with batches of contacts ordered by id
func (r *GormContactRepository) Iterate(ctx context.Context, batchSize int, fn func([]company.Contact) error) error {
	return iterate(conn(ctx, r.db), batchSize, noScope, func(rows []models.ContactModel) error {
		return fn(contactsToDomain(rows))
	})
}

func (r *GormContactRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)",
			pattern, pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "company_id":
			query = query.Where("company_id = ?", value)
		case "archived":
			query = query.Where("archived = ?", value)
		}
	}
	return query
}

func contactsToDomain(rows []models.ContactModel) []company.Contact {
	contacts := make([]company.Contact, len(rows))
	for i := range rows {
		contacts[i] = *rows[i].ToDomain()
	}
	return contacts
}

// GormReferralRepository implements company.ReferralRepository using GORM
type GormReferralRepository struct {
	db *gorm.DB
}

// NewGormReferralRepository creates a new GormReferralRepository
func NewGormReferralRepository(db *gorm.DB) *GormReferralRepository {
	return &GormReferralRepository{db: db}
}

// FindByID finds a referral by its ID
func (r *GormReferralRepository) FindByID(ctx context.Context, id uuid.UUID) (*company.Referral, error) {
	var model models.ReferralModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForAdviser lists referrals the adviser sent or received, newest first
func (r *GormReferralRepository) FindForAdviser(ctx context.Context, adviserID uuid.UUID, filter shared.Filter) ([]company.Referral, int64, error) {
	rows, total, err := findPage[models.ReferralModel](
		conn(ctx, r.db), filter,
		orderClause(filter, CommonSortFields, "created_on DESC"),
		func(q *gorm.DB) *gorm.DB {
			q = q.Where("created_by_id = ? OR recipient_id = ?", adviserID, adviserID)
			if status, ok := filter.Filters["status"]; ok {
				q = q.Where("status = ?", status)
			}
			return q
		},
	)
	if err != nil {
		return nil, 0, err
	}
	referrals := make([]company.Referral, len(rows))
	for i := range rows {
		referrals[i] = *rows[i].ToDomain()
	}
	return referrals, total, nil
}

// Save creates or updates a referral
func (r *GormReferralRepository) Save(ctx context.Context, ref *company.Referral) error {
	return conn(ctx, r.db).Save(models.ReferralModelFromDomain(ref)).Error
}

// ReassignCompany moves every referral of one company to another
func (r *GormReferralRepository) ReassignCompany(ctx context.Context, from, to uuid.UUID) (int64, error) {
	result := conn(ctx, r.db).Model(&models.ReferralModel{}).
		Where("company_id = ?", from).
		Updates(map[string]any{"company_id": to, "modified_on": time.Now().UTC()})
	return result.RowsAffected, result.Error
}

// Ensure the repositories implement their domain interfaces
var (
	_ company.Repository         = (*GormCompanyRepository)(nil)
	_ company.ContactRepository  = (*GormContactRepository)(nil)
	_ company.ReferralRepository = (*GormReferralRepository)(nil)
)
