package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/datahub/backend/internal/domain/adviser"
	"github.com/datahub/backend/internal/domain/audit"
	"github.com/datahub/backend/internal/domain/metadata"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/domain/userevent"
	"github.com/datahub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMetadataRepository implements metadata.Repository using GORM
type GormMetadataRepository struct {
	db *gorm.DB
}

// NewGormMetadataRepository creates a new GormMetadataRepository
func NewGormMetadataRepository(db *gorm.DB) *GormMetadataRepository {
	return &GormMetadataRepository{db: db}
}

// FindAll lists all items of a kind ordered by name
func (r *GormMetadataRepository) FindAll(ctx context.Context, kind metadata.Kind) ([]metadata.Item, error) {
	var rows []models.MetadataItemModel
	if err := conn(ctx, r.db).Where("kind = ?", kind).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]metadata.Item, len(rows))
	for i := range rows {
		items[i] = rows[i].ToDomain()
	}
	return items, nil
}

// FindByID finds a single item of a kind
func (r *GormMetadataRepository) FindByID(ctx context.Context, kind metadata.Kind, id uuid.UUID) (*metadata.Item, error) {
	var model models.MetadataItemModel
	if err := conn(ctx, r.db).Where("kind = ? AND id = ?", kind, id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	item := model.ToDomain()
	return &item, nil
}

// Names maps ids of any kind to their display names
func (r *GormMetadataRepository) Names(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var rows []models.MetadataItemModel
	if err := conn(ctx, r.db).Select("id", "name").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

// Upsert inserts or updates items
func (r *GormMetadataRepository) Upsert(ctx context.Context, items []metadata.Item) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]*models.MetadataItemModel, len(items))
	for i, item := range items {
		rows[i] = models.MetadataItemModelFromDomain(item)
	}
	return conn(ctx, r.db).Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(rows, 500).Error
}

// FindServiceQuestions lists the questions configured for a service
func (r *GormMetadataRepository) FindServiceQuestions(ctx context.Context, serviceID uuid.UUID) ([]metadata.ServiceQuestion, error) {
	var rows []models.ServiceQuestionModel
	if err := conn(ctx, r.db).Where("service_id = ?", serviceID).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	questions := make([]metadata.ServiceQuestion, len(rows))
	for i := range rows {
		questions[i] = rows[i].ToDomain()
	}
	return questions, nil
}

// HasChildren reports whether an item has child items
func (r *GormMetadataRepository) HasChildren(ctx context.Context, kind metadata.Kind, id uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.MetadataItemModel{}).
		Where("kind = ? AND parent_id = ?", kind, id).
		Count(&count).Error
	return count > 0, err
}

// UpsertServiceQuestions inserts or updates service questions
func (r *GormMetadataRepository) UpsertServiceQuestions(ctx context.Context, questions []metadata.ServiceQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	rows := make([]*models.ServiceQuestionModel, len(questions))
	for i, q := range questions {
		rows[i] = models.ServiceQuestionModelFromDomain(q)
	}
	return conn(ctx, r.db).Clauses(clause.OnConflict{UpdateAll: true}).Create(rows).Error
}

// GormAdviserRepository implements adviser.Repository using GORM
type GormAdviserRepository struct {
	db *gorm.DB
}

// NewGormAdviserRepository creates a new GormAdviserRepository
func NewGormAdviserRepository(db *gorm.DB) *GormAdviserRepository {
	return &GormAdviserRepository{db: db}
}

// FindByID finds an adviser by ID
func (r *GormAdviserRepository) FindByID(ctx context.Context, id uuid.UUID) (*adviser.Adviser, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByIDs finds advisers by their IDs
func (r *GormAdviserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]adviser.Adviser, error) {
	if len(ids) == 0 {
		return []adviser.Adviser{}, nil
	}
	var rows []models.AdviserModel
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return advisersToDomain(rows), nil
}

// FindByEmail finds an adviser by email, ignoring case
func (r *GormAdviserRepository) FindByEmail(ctx context.Context, email string) (*adviser.Adviser, error) {
	return r.findOne(ctx, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)))
}

// FindBySSOEmailUserID finds an adviser by their SSO email user ID
func (r *GormAdviserRepository) FindBySSOEmailUserID(ctx context.Context, ssoEmailUserID string) (*adviser.Adviser, error) {
	return r.findOne(ctx, "sso_email_user_id = ?", ssoEmailUserID)
}

// FindAll lists advisers ordered by name
func (r *GormAdviserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]adviser.Adviser, int64, error) {
	rows, total, err := findPage[models.AdviserModel](
		conn(ctx, r.db), filter,
		orderClause(filter, AdviserSortFields, "first_name ASC, last_name ASC"),
		func(q *gorm.DB) *gorm.DB {
			if v, ok := filter.Filters["is_active"]; ok {
				q = q.Where("is_active = ?", v)
			}
			term := filter.Search
			if v, ok := filter.Filters["autocomplete"]; ok {
				term = toString(v)
			}
			for _, word := range strings.Fields(term) {
				pattern := strings.ToLower(word) + "%"
				q = q.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern, pattern)
			}
			return q
		},
	)
	if err != nil {
		return nil, 0, err
	}
	return advisersToDomain(rows), total, nil
}

// Save creates or updates an adviser
func (r *GormAdviserRepository) Save(ctx context.Context, a *adviser.Adviser) error {
	return conn(ctx, r.db).Save(models.AdviserModelFromDomain(a)).Error
}

// UpdateLastLogin records a successful login
func (r *GormAdviserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return conn(ctx, r.db).Model(&models.AdviserModel{}).
		Where("id = ?", id).
		Update("last_login", at).Error
}

func (r *GormAdviserRepository) findOne(ctx context.Context, query string, args ...any) (*adviser.Adviser, error) {
	var model models.AdviserModel
	if err := conn(ctx, r.db).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func advisersToDomain(rows []models.AdviserModel) []adviser.Adviser {
	advisers := make([]adviser.Adviser, len(rows))
	for i := range rows {
		advisers[i] = *rows[i].ToDomain()
	}
	return advisers
}

// GormVersionRepository implements audit.Repository using GORM
type GormVersionRepository struct {
	db *gorm.DB
}

// NewGormVersionRepository creates a new GormVersionRepository
func NewGormVersionRepository(db *gorm.DB) *GormVersionRepository {
	return &GormVersionRepository{db: db}
}

// Save stores a version
func (r *GormVersionRepository) Save(ctx context.Context, version *audit.Version) error {
	return conn(ctx, r.db).Create(models.VersionModelFromDomain(version)).Error
}

// FindForObject lists versions of an object newest first. A negative limit returns all of them.
func (r *GormVersionRepository) FindForObject(ctx context.Context, objectType string, objectID uuid.UUID, offset, limit int) ([]audit.Version, error) {
	query := conn(ctx, r.db).
		Where("object_type = ? AND object_id = ?", objectType, objectID).
		Order("revision_date_created DESC, id DESC")
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit >= 0 {
		query = query.Limit(limit)
	}
	var rows []models.VersionModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	versions := make([]audit.Version, len(rows))
	for i := range rows {
		versions[i] = rows[i].ToDomain()
	}
	return versions, nil
}

// CountForObject counts the versions of an object
func (r *GormVersionRepository) CountForObject(ctx context.Context, objectType string, objectID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.VersionModel{}).
		Where("object_type = ? AND object_id = ?", objectType, objectID).
		Count(&count).Error
	return count, err
}

// GormUserEventRepository implements userevent.Repository using GORM
type GormUserEventRepository struct {
	db *gorm.DB
}

// NewGormUserEventRepository creates a new GormUserEventRepository
func NewGormUserEventRepository(db *gorm.DB) *GormUserEventRepository {
	return &GormUserEventRepository{db: db}
}

// Save stores an event
func (r *GormUserEventRepository) Save(ctx context.Context, e *userevent.UserEvent) error {
	return conn(ctx, r.db).Create(models.UserEventModelFromDomain(e)).Error
}

// FindAll lists events newest first
func (r *GormUserEventRepository) FindAll(ctx context.Context, filter shared.Filter) ([]userevent.UserEvent, int64, error) {
	rows, total, err := findPage[models.UserEventModel](
		conn(ctx, r.db), filter, "timestamp DESC, id ASC",
		func(q *gorm.DB) *gorm.DB {
			for key, value := range filter.Filters {
				switch key {
				case "adviser_id":
					q = q.Where("adviser_id = ?", value)
				case "type":
					q = q.Where("type = ?", value)
				}
			}
			return q
		},
	)
	if err != nil {
		return nil, 0, err
	}
	events := make([]userevent.UserEvent, len(rows))
	for i := range rows {
		events[i] = *rows[i].ToDomain()
	}
	return events, total, nil
}

// Ensure the repositories implement their domain interfaces
var (
	_ metadata.Repository  = (*GormMetadataRepository)(nil)
	_ adviser.Repository   = (*GormAdviserRepository)(nil)
	_ audit.Repository     = (*GormVersionRepository)(nil)
	_ userevent.Repository = (*GormUserEventRepository)(nil)
)
