// Package audit records snapshots of records on every save and turns
// consecutive snapshots into a human readable changelog.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Revision groups the versions written by a single save
type Revision struct {
	ID          uuid.UUID  `json:"id"`
	DateCreated time.Time  `json:"date_created"`
	UserID      *uuid.UUID `json:"user_id"`
	Comment     string     `json:"comment"`
}

// Version is a serialized snapshot of a record at one point in time
type Version struct {
	ID             uuid.UUID      `json:"id"`
	ObjectType     string         `json:"object_type"`
	ObjectID       uuid.UUID      `json:"object_id"`
	SerializedData map[string]any `json:"serialized_data"`
	Revision       Revision       `json:"revision"`
}

// NewVersion creates a version for a record snapshot
func NewVersion(objectType string, objectID uuid.UUID, data map[string]any, userID *uuid.UUID, comment string) *Version {
	return &Version{
		ID:             uuid.New(),
		ObjectType:     objectType,
		ObjectID:       objectID,
		SerializedData: data,
		Revision: Revision{
			ID:          uuid.New(),
			DateCreated: time.Now().UTC(),
			UserID:      userID,
			Comment:     comment,
		},
	}
}

// Repository persists versions
type Repository interface {
	// Save writes a version. Call inside the transaction saving the record.
	Save(ctx context.Context, version *Version) error

	// FindForObject returns versions newest first, starting at offset.
	// A negative limit returns all remaining versions.
	FindForObject(ctx context.Context, objectType string, objectID uuid.UUID, offset, limit int) ([]Version, error)

	// CountForObject counts the versions of a record
	CountForObject(ctx context.Context, objectType string, objectID uuid.UUID) (int64, error)
}
