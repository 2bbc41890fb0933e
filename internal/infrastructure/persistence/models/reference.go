package models

import (
	"time"

	"github.com/datahub/backend/internal/domain/adviser"
	"github.com/datahub/backend/internal/domain/audit"
	"github.com/datahub/backend/internal/domain/metadata"
	"github.com/datahub/backend/internal/domain/userevent"
	"github.com/google/uuid"
)

// AdviserModel is the persistence model for advisers.
type AdviserModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email           string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	FirstName       string     `gorm:"type:varchar(255)"`
	LastName        string     `gorm:"type:varchar(255)"`
	TelephoneNumber string     `gorm:"type:varchar(255)"`
	ContactEmail    string     `gorm:"type:varchar(255)"`
	DITTeamID       *uuid.UUID `gorm:"column:dit_team_id;type:uuid"`
	IsActive        bool       `gorm:"not null;default:true"`
	IsStaff         bool       `gorm:"not null;default:false"`
	IsSuperuser     bool       `gorm:"not null;default:false"`
	DateJoined      time.Time  `gorm:"not null"`
	SSOEmailUserID  *string    `gorm:"column:sso_email_user_id;type:varchar(255);uniqueIndex"`
	PasswordHash    string     `gorm:"type:varchar(255)"`
	LastLogin       *time.Time
}

// TableName returns the table name for GORM
func (AdviserModel) TableName() string {
	return "advisers"
}

// ToDomain converts the persistence model to a domain Adviser.
func (m *AdviserModel) ToDomain() *adviser.Adviser {
	return &adviser.Adviser{
		ID:              m.ID,
		Email:           m.Email,
		FirstName:       m.FirstName,
		LastName:        m.LastName,
		TelephoneNumber: m.TelephoneNumber,
		ContactEmail:    m.ContactEmail,
		DITTeamID:       m.DITTeamID,
		IsActive:        m.IsActive,
		IsStaff:         m.IsStaff,
		IsSuperuser:     m.IsSuperuser,
		DateJoined:      m.DateJoined,
		SSOEmailUserID:  m.SSOEmailUserID,
		PasswordHash:    m.PasswordHash,
		LastLogin:       m.LastLogin,
	}
}

// AdviserModelFromDomain creates a new persistence model from a domain Adviser.
func AdviserModelFromDomain(a *adviser.Adviser) *AdviserModel {
	return &AdviserModel{
		ID:              a.ID,
		Email:           a.Email,
		FirstName:       a.FirstName,
		LastName:        a.LastName,
		TelephoneNumber: a.TelephoneNumber,
		ContactEmail:    a.ContactEmail,
		DITTeamID:       a.DITTeamID,
		IsActive:        a.IsActive,
		IsStaff:         a.IsStaff,
		IsSuperuser:     a.IsSuperuser,
		DateJoined:      a.DateJoined,
		SSOEmailUserID:  a.SSOEmailUserID,
		PasswordHash:    a.PasswordHash,
		LastLogin:       a.LastLogin,
	}
}

// MetadataItemModel stores every kind of reference data in one table.
type MetadataItemModel struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey"`
	Kind       metadata.Kind `gorm:"type:varchar(64);not null;index"`
	Name       string        `gorm:"type:varchar(255);not null"`
	DisabledOn *time.Time
	ParentID   *uuid.UUID `gorm:"type:uuid;index"`
	UKRegionID *uuid.UUID `gorm:"column:uk_region_id;type:uuid"`
}

// TableName returns the table name for GORM
func (MetadataItemModel) TableName() string {
	return "metadata_items"
}

// ToDomain converts the persistence model to a domain Item.
func (m *MetadataItemModel) ToDomain() metadata.Item {
	return metadata.Item{
		ID:         m.ID,
		Kind:       m.Kind,
		Name:       m.Name,
		DisabledOn: m.DisabledOn,
		ParentID:   m.ParentID,
		UKRegionID: m.UKRegionID,
	}
}

// MetadataItemModelFromDomain creates a new persistence model from a domain Item.
func MetadataItemModelFromDomain(i metadata.Item) *MetadataItemModel {
	return &MetadataItemModel{
		ID:         i.ID,
		Kind:       i.Kind,
		Name:       i.Name,
		DisabledOn: i.DisabledOn,
		ParentID:   i.ParentID,
		UKRegionID: i.UKRegionID,
	}
}

// ServiceQuestionModel is the persistence model for service questions.
type ServiceQuestionModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ServiceID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Name          string    `gorm:"type:varchar(255);not null"`
	AnswerOptions UUIDList  `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (ServiceQuestionModel) TableName() string {
	return "service_questions"
}

// ToDomain converts the persistence model to a domain ServiceQuestion.
func (m *ServiceQuestionModel) ToDomain() metadata.ServiceQuestion {
	return metadata.ServiceQuestion{
		ID:            m.ID,
		ServiceID:     m.ServiceID,
		Name:          m.Name,
		AnswerOptions: uuids(m.AnswerOptions),
	}
}

// ServiceQuestionModelFromDomain creates a new persistence model from a domain ServiceQuestion.
func ServiceQuestionModelFromDomain(q metadata.ServiceQuestion) *ServiceQuestionModel {
	return &ServiceQuestionModel{
		ID:            q.ID,
		ServiceID:     q.ServiceID,
		Name:          q.Name,
		AnswerOptions: NewUUIDList(q.AnswerOptions),
	}
}

// VersionModel stores one audit snapshot together with its revision.
type VersionModel struct {
	ID                  uuid.UUID            `gorm:"type:uuid;primaryKey"`
	ObjectType          string               `gorm:"type:varchar(64);not null;index:idx_version_object,priority:1"`
	ObjectID            uuid.UUID            `gorm:"type:uuid;not null;index:idx_version_object,priority:2"`
	SerializedData      JSON[map[string]any] `gorm:"type:jsonb;not null"`
	RevisionID          uuid.UUID            `gorm:"type:uuid;not null"`
	RevisionDateCreated time.Time            `gorm:"not null;index"`
	RevisionUserID      *uuid.UUID           `gorm:"type:uuid"`
	RevisionComment     string               `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (VersionModel) TableName() string {
	return "versions"
}

// ToDomain converts the persistence model to a domain Version.
func (m *VersionModel) ToDomain() audit.Version {
	return audit.Version{
		ID:             m.ID,
		ObjectType:     m.ObjectType,
		ObjectID:       m.ObjectID,
		SerializedData: m.SerializedData.Data,
		Revision: audit.Revision{
			ID:          m.RevisionID,
			DateCreated: m.RevisionDateCreated,
			UserID:      m.RevisionUserID,
			Comment:     m.RevisionComment,
		},
	}
}

// VersionModelFromDomain creates a new persistence model from a domain Version.
func VersionModelFromDomain(v *audit.Version) *VersionModel {
	return &VersionModel{
		ID:                  v.ID,
		ObjectType:          v.ObjectType,
		ObjectID:            v.ObjectID,
		SerializedData:      NewJSON(v.SerializedData),
		RevisionID:          v.Revision.ID,
		RevisionDateCreated: v.Revision.DateCreated,
		RevisionUserID:      v.Revision.UserID,
		RevisionComment:     v.Revision.Comment,
	}
}

// UserEventModel is the persistence model for user events.
type UserEventModel struct {
	ID         uuid.UUID            `gorm:"type:uuid;primaryKey"`
	AdviserID  uuid.UUID            `gorm:"type:uuid;not null;index"`
	Type       userevent.Type       `gorm:"type:varchar(255);not null;index"`
	APIURLPath string               `gorm:"column:api_url_path;type:varchar(5000)"`
	Data       JSON[map[string]any] `gorm:"type:jsonb"`
	Timestamp  time.Time            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (UserEventModel) TableName() string {
	return "user_events"
}

// ToDomain converts the persistence model to a domain UserEvent.
func (m *UserEventModel) ToDomain() *userevent.UserEvent {
	return &userevent.UserEvent{
		ID:         m.ID,
		AdviserID:  m.AdviserID,
		Type:       m.Type,
		APIURLPath: m.APIURLPath,
		Data:       m.Data.Data,
		Timestamp:  m.Timestamp,
	}
}

// UserEventModelFromDomain creates a new persistence model from a domain UserEvent.
func UserEventModelFromDomain(e *userevent.UserEvent) *UserEventModel {
	return &UserEventModel{
		ID:         e.ID,
		AdviserID:  e.AdviserID,
		Type:       e.Type,
		APIURLPath: e.APIURLPath,
		Data:       NewJSON(e.Data),
		Timestamp:  e.Timestamp,
	}
}

// AllModels lists every model, in dependency order, for AutoMigrate in tests and tools.
func AllModels() []any {
	return []any{
		&AdviserModel{},
		&MetadataItemModel{},
		&ServiceQuestionModel{},
		&CompanyModel{},
		&ContactModel{},
		&ReferralModel{},
		&InteractionModel{},
		&InvestmentProjectModel{},
		&PropositionModel{},
		&DocumentModel{},
		&UploadableDocumentModel{},
		&SharePointDocumentModel{},
		&GenericDocumentModel{},
		&PropositionDocumentModel{},
		&ExportWinModel{},
		&CustomerResponseTokenModel{},
		&VersionModel{},
		&UserEventModel{},
	}
}
