package company

import (
	"strings"
	"time"

	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ReferralAggregateType identifies referrals in audit versions and events
const ReferralAggregateType = "company_referral"

// ReferralStatus is the state of a referral
type ReferralStatus string

const (
	ReferralStatusOutstanding ReferralStatus = "outstanding"
	ReferralStatusComplete    ReferralStatus = "complete"
	ReferralStatusClosed      ReferralStatus = "closed"
)

// ErrReferralNotOutstanding is returned when completing a referral that is closed or complete
var ErrReferralNotOutstanding = shared.NewNonFieldError(
	"This referral can’t be completed as it’s not in the outstanding status",
)

// Referral passes a company from one adviser to another
type Referral struct {
	shared.BaseEntity
	CompanyID     uuid.UUID      `json:"company"`
	ContactID     *uuid.UUID     `json:"contact"`
	RecipientID   uuid.UUID      `json:"recipient"`
	Subject       string         `json:"subject"`
	Notes         string         `json:"notes"`
	Status        ReferralStatus `json:"status"`
	CompletedOn   *time.Time     `json:"completed_on"`
	CompletedByID *uuid.UUID     `json:"completed_by"`
	InteractionID *uuid.UUID     `json:"interaction"`
}

// NewReferral creates an outstanding referral sent by the given adviser
func NewReferral(companyID, recipientID uuid.UUID, subject string, by *uuid.UUID) (*Referral, error) {
	errs := shared.NewValidationErrors()
	if companyID == uuid.Nil {
		errs.Add("company", "This field is required.")
	}
	if recipientID == uuid.Nil {
		errs.Add("recipient", "This field is required.")
	}
	if strings.TrimSpace(subject) == "" {
		errs.Add("subject", "This field is required.")
	}
	if errs.HasErrors() {
		return nil, errs
	}
	return &Referral{
		BaseEntity:  shared.NewBaseEntity(by),
		CompanyID:   companyID,
		RecipientID: recipientID,
		Subject:     subject,
		Status:      ReferralStatusOutstanding,
	}, nil
}

// CanComplete returns an error unless the referral is outstanding
func (r *Referral) CanComplete() error {
	if r.Status != ReferralStatusOutstanding {
		return ErrReferralNotOutstanding
	}
	return nil
}

// Complete links the interaction recording the outcome and marks the referral complete
func (r *Referral) Complete(interactionID uuid.UUID, by *uuid.UUID) error {
	if err := r.CanComplete(); err != nil {
		return err
	}
	now := time.Now().UTC()
	r.Status = ReferralStatusComplete
	r.InteractionID = &interactionID
	r.CompletedOn = &now
	r.CompletedByID = by
	r.Touch(by)
	return nil
}

// IsVisibleTo reports whether the adviser sent or received the referral
func (r *Referral) IsVisibleTo(adviserID uuid.UUID) bool {
	return r.RecipientID == adviserID || (r.CreatedByID != nil && *r.CreatedByID == adviserID)
}
