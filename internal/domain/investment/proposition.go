package investment

import (
	"fmt"
	"strings"

	"github.com/datahub/backend/internal/domain/document"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PropositionAggregateType identifies propositions in audit versions
const PropositionAggregateType = "proposition"

// PropositionDocumentBucket is the storage bucket for proposition documents
const PropositionDocumentBucket = "investment"

// PropositionStatus is the state of a proposition
type PropositionStatus string

const (
	PropositionStatusOngoing   PropositionStatus = "ongoing"
	PropositionStatusCompleted PropositionStatus = "completed"
	PropositionStatusAbandoned PropositionStatus = "abandoned"
)

var (
	// ErrProjectNotFound is returned for proposition routes under an unknown project
	ErrProjectNotFound = shared.NewNotFoundError("Specified investment project does not exist")
	// ErrPropositionNotFound is returned for document routes under an unknown proposition
	ErrPropositionNotFound = shared.NewNotFoundError("Specified proposition does not exist")
	// ErrNoDocuments is returned when completing a proposition without scanned documents
	ErrNoDocuments = shared.NewNonFieldError("Proposition has no documents uploaded.")
)

// Proposition is a piece of work offered to an investor within a project
type Proposition struct {
	shared.BaseEntity
	InvestmentProjectID uuid.UUID         `json:"investment_project"`
	AdviserID           uuid.UUID         `json:"adviser"`
	Deadline            shared.Date       `json:"deadline"`
	Status              PropositionStatus `json:"status"`
	Name                string            `json:"name"`
	Scope               string            `json:"scope"`
	Details             string            `json:"details"`
}

// NewProposition creates an ongoing proposition
func NewProposition(projectID, adviserID uuid.UUID, deadline shared.Date, name, scope string, by *uuid.UUID) (*Proposition, error) {
	errs := shared.NewValidationErrors()
	if adviserID == uuid.Nil {
		errs.Add("adviser", "This field is required.")
	}
	if deadline.IsZero() {
		errs.Add("deadline", "This field is required.")
	}
	if strings.TrimSpace(name) == "" {
		errs.Add("name", "This field is required.")
	}
	if strings.TrimSpace(scope) == "" {
		errs.Add("scope", "This field is required.")
	}
	if errs.HasErrors() {
		return nil, errs
	}
	return &Proposition{
		BaseEntity:          shared.NewBaseEntity(by),
		InvestmentProjectID: projectID,
		AdviserID:           adviserID,
		Deadline:            deadline,
		Status:              PropositionStatusOngoing,
		Name:                name,
		Scope:               scope,
	}, nil
}

// Complete marks the proposition completed. At least one of its documents
// must have passed virus scanning.
func (p *Proposition) Complete(by *uuid.UUID, details string, scannedDocuments int64) error {
	if scannedDocuments == 0 {
		return ErrNoDocuments
	}
	return p.changeStatus(PropositionStatusCompleted, by, details)
}

// Abandon marks the proposition abandoned
func (p *Proposition) Abandon(by *uuid.UUID, details string) error {
	return p.changeStatus(PropositionStatusAbandoned, by, details)
}

func (p *Proposition) changeStatus(status PropositionStatus, by *uuid.UUID, details string) error {
	if p.Status != PropositionStatusOngoing {
		return shared.NewConflictError(
			fmt.Sprintf("The action cannot be performed in the current status %s.", p.Status),
		)
	}
	p.Status = status
	p.Details = details
	p.Touch(by)
	return nil
}

// PropositionDocument is a file attached to a proposition
type PropositionDocument struct {
	document.EntityDocument
	PropositionID uuid.UUID `json:"proposition"`
}

// NewPropositionDocument creates a document record for a file about to be uploaded
func NewPropositionDocument(propositionID uuid.UUID, originalFilename string, by *uuid.UUID) *PropositionDocument {
	return &PropositionDocument{
		EntityDocument: *document.NewEntityDocument(PropositionDocumentBucket, "propositiondocument", originalFilename, false, by),
		PropositionID:  propositionID,
	}
}
