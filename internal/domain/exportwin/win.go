// Package exportwin models export wins reported by advisers and confirmed by customers
package exportwin

import (
	"fmt"
	"time"

	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/domain/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateType identifies export wins in audit versions
const AggregateType = "export_win"

// TokenLifetime is how long a customer response link stays valid
const TokenLifetime = 7 * 24 * time.Hour

// BreakdownType is the kind of value a breakdown row holds
type BreakdownType string

const (
	BreakdownExport    BreakdownType = "export"
	BreakdownNonExport BreakdownType = "non_export"
	BreakdownODI       BreakdownType = "odi"
)

// Breakdown is the value expected from a win in a single year
type Breakdown struct {
	ID    uuid.UUID       `json:"id"`
	Type  BreakdownType   `json:"type"`
	Year  int             `json:"year"`
	Value decimal.Decimal `json:"value"`
}

// CustomerResponse records the customer's confirmation of a win
type CustomerResponse struct {
	ID           uuid.UUID  `json:"id"`
	AgreeWithWin *bool      `json:"agree_with_win"`
	Comments     string     `json:"comments"`
	Name         string     `json:"name"`
	RespondedOn  *time.Time `json:"responded_on"`
}

// Win is an export success the department helped a company achieve
type Win struct {
	shared.BaseEntity
	AdviserID                   uuid.UUID         `json:"adviser"`
	CompanyID                   uuid.UUID         `json:"company"`
	CompanyContactIDs           []uuid.UUID       `json:"company_contacts"`
	CustomerName                string            `json:"customer_name"`
	CustomerEmailAddress        string            `json:"customer_email_address"`
	CountryID                   uuid.UUID         `json:"country"`
	SectorID                    uuid.UUID         `json:"sector"`
	Date                        shared.Date       `json:"date"`
	Description                 string            `json:"description"`
	BusinessPotentialID         *uuid.UUID        `json:"business_potential"`
	ExportExperienceID          *uuid.UUID        `json:"export_experience"`
	Breakdowns                  []Breakdown       `json:"breakdowns"`
	TotalExpectedExportValue    decimal.Decimal   `json:"total_expected_export_value"`
	TotalExpectedNonExportValue decimal.Decimal   `json:"total_expected_non_export_value"`
	TotalExpectedODIValue       decimal.Decimal   `json:"total_expected_odi_value"`
	IsPersonallyConfirmed       bool              `json:"is_personally_confirmed"`
	IsLineManagerConfirmed      bool              `json:"is_line_manager_confirmed"`
	LeadOfficerID               uuid.UUID         `json:"lead_officer"`
	TeamTypeID                  *uuid.UUID        `json:"team_type"`
	HQTeamID                    *uuid.UUID        `json:"hq_team"`
	TeamMemberIDs               []uuid.UUID       `json:"team_members"`
	CustomerResponse            *CustomerResponse `json:"customer_response"`
	FirstSent                   *time.Time        `json:"first_sent"`
	LastSent                    *time.Time        `json:"last_sent"`
}

// ReadOnlyFields cannot be changed through the API
var ReadOnlyFields = []string{
	"id", "created_on", "created_by", "modified_on", "modified_by",
	"total_expected_export_value", "total_expected_non_export_value", "total_expected_odi_value",
	"customer_response", "first_sent", "last_sent",
}

// RequiredFields must be supplied when creating a win
var RequiredFields = []string{
	"company", "company_contacts", "customer_name", "country", "sector",
	"date", "description", "lead_officer", "breakdowns",
}

// NewWin creates a win reported by the adviser, awaiting a customer response
func NewWin(adviserID uuid.UUID, by *uuid.UUID) *Win {
	return &Win{
		BaseEntity:        shared.NewBaseEntity(by),
		AdviserID:         adviserID,
		CompanyContactIDs: []uuid.UUID{},
		Breakdowns:        []Breakdown{},
		TeamMemberIDs:     []uuid.UUID{},
		CustomerResponse:  &CustomerResponse{ID: uuid.New()},
	}
}

// RecalculateTotals sums the breakdown values per type
func (w *Win) RecalculateTotals() {
	totals := map[BreakdownType]decimal.Decimal{}
	for i := range w.Breakdowns {
		if w.Breakdowns[i].ID == uuid.Nil {
			w.Breakdowns[i].ID = uuid.New()
		}
		b := w.Breakdowns[i]
		totals[b.Type] = totals[b.Type].Add(b.Value)
	}
	w.TotalExpectedExportValue = totals[BreakdownExport]
	w.TotalExpectedNonExportValue = totals[BreakdownNonExport]
	w.TotalExpectedODIValue = totals[BreakdownODI]
}

// IsComplete reports whether the customer has responded
func (w *Win) IsComplete() bool {
	return w.CustomerResponse != nil && w.CustomerResponse.RespondedOn != nil
}

// MarkSent records that customer emails were sent at the given time
func (w *Win) MarkSent(at time.Time) {
	if w.FirstSent == nil {
		w.FirstSent = &at
	}
	w.LastSent = &at
}

// IsVisibleTo reports whether the adviser reported, leads or helped with the win
func (w *Win) IsVisibleTo(adviserID uuid.UUID) bool {
	if w.AdviserID == adviserID || w.LeadOfficerID == adviserID {
		return true
	}
	for _, id := range w.TeamMemberIDs {
		if id == adviserID {
			return true
		}
	}
	return false
}

// CustomerResponseToken grants a customer contact access to respond to a win
type CustomerResponseToken struct {
	ID                 uuid.UUID `json:"id"`
	CustomerResponseID uuid.UUID `json:"customer_response"`
	CompanyContactID   uuid.UUID `json:"company_contact"`
	ExpiresOn          time.Time `json:"expires_on"`
}

// NewCustomerResponseToken creates a token valid for TokenLifetime from now
func NewCustomerResponseToken(responseID, contactID uuid.UUID, now time.Time) *CustomerResponseToken {
	return &CustomerResponseToken{
		ID:                 uuid.New(),
		CustomerResponseID: responseID,
		CompanyContactID:   contactID,
		ExpiresOn:          now.Add(TokenLifetime),
	}
}

// Validator returns the validators applied to win writes
func Validator() validation.Validator {
	return validation.ValidatorFunc(func(c *validation.DataCombiner) error {
		validators := []validation.Validator{validation.ValidatorFunc(validateBreakdowns)}
		if c.IsCreate() {
			validators = append(validators, validation.NewRequiredFieldsValidator(RequiredFields...))
		}
		return validation.Run(c, validators...)
	})
}

func validateBreakdowns(c *validation.DataCombiner) error {
	value, ok := c.DataValue("breakdowns")
	if !ok || value == nil {
		return nil
	}
	items := validation.AsSlice(value)
	if len(items) == 0 {
		return shared.NewFieldError("breakdowns", "This list may not be empty.")
	}
	errs := shared.NewValidationErrors()
	for _, item := range items {
		row, _ := item.(map[string]any)
		combiner := validation.NewDataCombiner(nil, row)
		if !validation.InRule("type", BreakdownExport, BreakdownNonExport, BreakdownODI).Evaluate(combiner) {
			errs.Add("breakdowns", fmt.Sprintf("\"%v\" is not a valid choice.", row["type"]))
		}
		amount, err := decimal.NewFromString(fmt.Sprint(row["value"]))
		if err != nil {
			errs.Add("breakdowns", "A valid number is required.")
			continue
		}
		if amount.IsNegative() {
			errs.Add("breakdowns", "Ensure this value is greater than or equal to 0.")
		}
	}
	return errs.OrNil()
}
