package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/datahub/backend/internal/domain/exportwin"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormExportWinRepository implements exportwin.Repository using GORM
type GormExportWinRepository struct {
	db *gorm.DB
}

// NewGormExportWinRepository creates a new GormExportWinRepository
func NewGormExportWinRepository(db *gorm.DB) *GormExportWinRepository {
	return &GormExportWinRepository{db: db}
}

// FindByID finds a win by its ID
func (r *GormExportWinRepository) FindByID(ctx context.Context, id uuid.UUID) (*exportwin.Win, error) {
	var model models.ExportWinModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForAdviser lists wins the adviser reported, leads or is a team member of
func (r *GormExportWinRepository) FindForAdviser(ctx context.Context, adviserID uuid.UUID, filter shared.Filter) ([]exportwin.Win, int64, error) {
	rows, total, err := findPage[models.ExportWinModel](
		conn(ctx, r.db), filter,
		orderClause(filter, CommonSortFields, "created_on DESC"),
		func(q *gorm.DB) *gorm.DB {
			memberCond, memberArg := jsonContains(q, "team_member_ids", adviserID.String())
			q = q.Where("adviser_id = ? OR lead_officer_id = ? OR "+memberCond, adviserID, adviserID, memberArg)
			if v, ok := filter.Filters["company_id"]; ok {
				q = q.Where("company_id = ?", v)
			}
			return q
		},
	)
	if err != nil {
		return nil, 0, err
	}
	wins := make([]exportwin.Win, len(rows))
	for i := range rows {
		wins[i] = *rows[i].ToDomain()
	}
	return wins, total, nil
}

// Save creates or updates a win
func (r *GormExportWinRepository) Save(ctx context.Context, w *exportwin.Win) error {
	return conn(ctx, r.db).Save(models.ExportWinModelFromDomain(w)).Error
}

// ReassignCompany moves every win of one company to another
func (r *GormExportWinRepository) ReassignCompany(ctx context.Context, from, to uuid.UUID) (int64, error) {
	result := conn(ctx, r.db).Model(&models.ExportWinModel{}).
		Where("company_id = ?", from).
		Updates(map[string]any{"company_id": to, "modified_on": time.Now().UTC()})
	return result.RowsAffected, result.Error
}

// ReplaceTokens expires the contact's unexpired tokens for the response and stores token
func (r *GormExportWinRepository) ReplaceTokens(ctx context.Context, token *exportwin.CustomerResponseToken, now time.Time) error {
	return NewGormTransactionManager(r.db).WithinTransaction(ctx, func(ctx context.Context) error {
		db := conn(ctx, r.db)
		if err := db.Model(&models.CustomerResponseTokenModel{}).
			Where("customer_response_id = ? AND company_contact_id = ? AND expires_on > ?",
				token.CustomerResponseID, token.CompanyContactID, now).
			Update("expires_on", now).Error; err != nil {
			return err
		}
		return db.Create(models.CustomerResponseTokenModelFromDomain(token)).Error
	})
}

// FindToken finds a customer response token by its ID
func (r *GormExportWinRepository) FindToken(ctx context.Context, id uuid.UUID) (*exportwin.CustomerResponseToken, error) {
	var model models.CustomerResponseTokenModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormExportWinRepository implements exportwin.Repository
var _ exportwin.Repository = (*GormExportWinRepository)(nil)
