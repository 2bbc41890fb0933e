package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CreatedOn    time.Time  `gorm:"not null;index"`
	ModifiedOn   time.Time  `gorm:"not null"`
	CreatedByID  *uuid.UUID `gorm:"type:uuid"`
	ModifiedByID *uuid.UUID `gorm:"type:uuid"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:           m.ID,
		CreatedOn:    m.CreatedOn,
		ModifiedOn:   m.ModifiedOn,
		CreatedByID:  m.CreatedByID,
		ModifiedByID: m.ModifiedByID,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedOn = e.CreatedOn
	m.ModifiedOn = e.ModifiedOn
	m.CreatedByID = e.CreatedByID
	m.ModifiedByID = e.ModifiedByID
}

// ArchivableModel holds the soft-deletion columns
type ArchivableModel struct {
	Archived       bool `gorm:"not null;default:false;index"`
	ArchivedOn     *time.Time
	ArchivedReason string     `gorm:"type:text"`
	ArchivedByID   *uuid.UUID `gorm:"type:uuid"`
}

// ToDomain converts ArchivableModel to domain Archivable
func (m *ArchivableModel) ToDomain() shared.Archivable {
	return shared.Archivable{
		Archived:       m.Archived,
		ArchivedOn:     m.ArchivedOn,
		ArchivedReason: m.ArchivedReason,
		ArchivedByID:   m.ArchivedByID,
	}
}

// FromDomainArchivable populates ArchivableModel from domain Archivable
func (m *ArchivableModel) FromDomainArchivable(a shared.Archivable) {
	m.Archived = a.Archived
	m.ArchivedOn = a.ArchivedOn
	m.ArchivedReason = a.ArchivedReason
	m.ArchivedByID = a.ArchivedByID
}

// JSON stores any JSON-serialisable value in a jsonb column
type JSON[T any] struct {
	Data T
}

// NewJSON wraps v for storage
func NewJSON[T any](v T) JSON[T] {
	return JSON[T]{Data: v}
}

// Value implements driver.Valuer interface for GORM to store as JSONB
func (j JSON[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.Data)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (j *JSON[T]) Scan(value any) error {
	var zero T
	j.Data = zero
	if value == nil {
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("failed to scan JSON column: unsupported type")
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, &j.Data)
}

// UUIDList is a list of ids stored as a JSON array
type UUIDList = JSON[[]uuid.UUID]

// NewUUIDList wraps ids for storage, never storing null
func NewUUIDList(ids []uuid.UUID) UUIDList {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return NewJSON(ids)
}

// uuids returns the stored ids, never nil
func uuids(l UUIDList) []uuid.UUID {
	if l.Data == nil {
		return []uuid.UUID{}
	}
	return l.Data
}
