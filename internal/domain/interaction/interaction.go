// Package interaction models interactions and service deliveries recorded against companies
package interaction

import (
	"encoding/json"

	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateType identifies interactions in audit versions, events and search
const AggregateType = "interaction"

// Kind distinguishes interactions from service deliveries
type Kind string

const (
	KindInteraction     Kind = "interaction"
	KindServiceDelivery Kind = "service_delivery"
)

// IsValid reports whether the kind is known
func (k Kind) IsValid() bool {
	return k == KindInteraction || k == KindServiceDelivery
}

// Status is the completion state of an interaction
type Status string

const (
	StatusDraft    Status = "draft"
	StatusComplete Status = "complete"
)

// Theme is the business area an interaction relates to
type Theme string

const (
	ThemeExport     Theme = "export"
	ThemeInvestment Theme = "investment"
	ThemeOther      Theme = "other"
)

// ExportCountryStatus records a company's export interest in a country
type ExportCountryStatus string

const (
	ExportCountryCurrentlyExporting ExportCountryStatus = "currently_exporting"
	ExportCountryFutureInterest     ExportCountryStatus = "future_interest"
	ExportCountryNotInterested      ExportCountryStatus = "not_interested"
)

// DITParticipant is an adviser who took part, with the team they belonged to at the time
type DITParticipant struct {
	AdviserID uuid.UUID  `json:"adviser"`
	TeamID    *uuid.UUID `json:"team"`
}

// ExportCountry is a country discussed during an interaction
type ExportCountry struct {
	CountryID uuid.UUID           `json:"country"`
	Status    ExportCountryStatus `json:"status"`
}

// ServiceAnswers maps question ids to the selected answer option ids.
// Each option maps to an object holding additional answers.
type ServiceAnswers map[string]map[string]map[string]any

// Interaction is a meeting, call or service delivered to a company
type Interaction struct {
	shared.BaseEntity
	shared.Archivable
	Kind                      Kind             `json:"kind"`
	Status                    Status           `json:"status"`
	Theme                     *Theme           `json:"theme"`
	Date                      shared.Date      `json:"date"`
	CompanyID                 *uuid.UUID       `json:"company"`
	ContactIDs                []uuid.UUID      `json:"contacts"`
	DITParticipants           []DITParticipant `json:"dit_participants"`
	EventID                   *uuid.UUID       `json:"event"`
	ServiceID                 *uuid.UUID       `json:"service"`
	ServiceAnswers            ServiceAnswers   `json:"service_answers"`
	Subject                   string           `json:"subject"`
	Notes                     string           `json:"notes"`
	CommunicationChannelID    *uuid.UUID       `json:"communication_channel"`
	ServiceDeliveryStatusID   *uuid.UUID       `json:"service_delivery_status"`
	InvestmentProjectID       *uuid.UUID       `json:"investment_project"`
	GrantAmountOffered        *decimal.Decimal `json:"grant_amount_offered"`
	NetCompanyReceipt         *decimal.Decimal `json:"net_company_receipt"`
	WasPolicyFeedbackProvided bool             `json:"was_policy_feedback_provided"`
	PolicyAreaIDs             []uuid.UUID      `json:"policy_areas"`
	PolicyIssueTypeIDs        []uuid.UUID      `json:"policy_issue_types"`
	PolicyFeedbackNotes       string           `json:"policy_feedback_notes"`
	WereCountriesDiscussed    *bool            `json:"were_countries_discussed"`
	ExportCountries           []ExportCountry  `json:"export_countries"`
	Source                    map[string]any   `json:"source,omitempty"`
}

// ReadOnlyFields cannot be changed through the API
var ReadOnlyFields = []string{
	"id", "created_on", "created_by", "modified_on", "modified_by",
	"archived", "archived_on", "archived_reason", "archived_by", "is_event",
}

// New creates an interaction with the defaults applied to new records
func New(kind Kind, by *uuid.UUID) *Interaction {
	return &Interaction{
		BaseEntity:         shared.NewBaseEntity(by),
		Kind:               kind,
		Status:             StatusComplete,
		ContactIDs:         []uuid.UUID{},
		DITParticipants:    []DITParticipant{},
		PolicyAreaIDs:      []uuid.UUID{},
		PolicyIssueTypeIDs: []uuid.UUID{},
		ExportCountries:    []ExportCountry{},
	}
}

// ApplyCreateDefaults fills in request fields that default when creating an interaction
func ApplyCreateDefaults(data map[string]any) {
	if _, ok := data["status"]; !ok {
		data["status"] = string(StatusComplete)
	}
}

// IsEvent reports whether a service delivery is for an event.
// It is nil for interactions.
func (i *Interaction) IsEvent() *bool {
	if i.Kind != KindServiceDelivery {
		return nil
	}
	isEvent := i.EventID != nil
	return &isEvent
}

// String returns the subject
func (i *Interaction) String() string {
	return i.Subject
}

// AdviserIDs returns the ids of every participating adviser
func (i *Interaction) AdviserIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(i.DITParticipants))
	for _, p := range i.DITParticipants {
		ids = append(ids, p.AdviserID)
	}
	return ids
}

// SetParticipantTeams records each adviser's current team against new participants.
// Participants that were already on the interaction keep their recorded team.
func (i *Interaction) SetParticipantTeams(previous []DITParticipant, teams map[uuid.UUID]*uuid.UUID) {
	existing := make(map[uuid.UUID]*uuid.UUID, len(previous))
	for _, p := range previous {
		existing[p.AdviserID] = p.TeamID
	}
	for idx, p := range i.DITParticipants {
		if team, ok := existing[p.AdviserID]; ok {
			i.DITParticipants[idx].TeamID = team
			continue
		}
		i.DITParticipants[idx].TeamID = teams[p.AdviserID]
	}
}

// MarshalJSON adds the derived is_event field
func (i Interaction) MarshalJSON() ([]byte, error) {
	type plain Interaction
	return json.Marshal(struct {
		plain
		IsEvent *bool `json:"is_event"`
	}{plain: plain(i), IsEvent: i.IsEvent()})
}
