package shared

import (
	"time"

	"github.com/google/uuid"
)

// ErrAlreadyArchived is returned when archiving an archived record
var ErrAlreadyArchived = NewDomainError("ALREADY_ARCHIVED", "This record has already been archived.")

// Archivable holds soft-deletion state. Archived records stay readable.
type Archivable struct {
	Archived       bool       `json:"archived"`
	ArchivedOn     *time.Time `json:"archived_on"`
	ArchivedReason string     `json:"archived_reason"`
	ArchivedByID   *uuid.UUID `json:"archived_by"`
}

// Archive marks the record as archived
func (a *Archivable) Archive(by *uuid.UUID, reason string) error {
	if a.Archived {
		return ErrAlreadyArchived
	}
	now := time.Now().UTC()
	a.Archived = true
	a.ArchivedOn = &now
	a.ArchivedReason = reason
	a.ArchivedByID = by
	return nil
}

// Unarchive clears the archived state
func (a *Archivable) Unarchive() {
	a.Archived = false
	a.ArchivedOn = nil
	a.ArchivedReason = ""
	a.ArchivedByID = nil
}
