package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() uuid.UUID
}

// BaseEntity provides the id and bookkeeping fields shared by every record
type BaseEntity struct {
	ID           uuid.UUID  `json:"id"`
	CreatedOn    time.Time  `json:"created_on"`
	ModifiedOn   time.Time  `json:"modified_on"`
	CreatedByID  *uuid.UUID `json:"created_by,omitempty"`
	ModifiedByID *uuid.UUID `json:"modified_by,omitempty"`
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// Touch records a modification by the given adviser
func (e *BaseEntity) Touch(by *uuid.UUID) {
	e.ModifiedOn = time.Now().UTC()
	if by != nil {
		id := *by
		e.ModifiedByID = &id
	}
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity(by *uuid.UUID) BaseEntity {
	now := time.Now().UTC()
	e := BaseEntity{
		ID:         uuid.New(),
		CreatedOn:  now,
		ModifiedOn: now,
	}
	if by != nil {
		id := *by
		e.CreatedByID = &id
		e.ModifiedByID = &id
	}
	return e
}
