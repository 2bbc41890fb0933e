// Package metadata holds the reference data other records point at:
// countries, sectors, teams, services and the like.
package metadata

import (
	"context"
	"sort"
	"time"

	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Kind names a reference table
type Kind string

const (
	KindCountry                Kind = "country"
	KindUKRegion               Kind = "uk-region"
	KindSector                 Kind = "sector"
	KindTeam                   Kind = "team"
	KindBusinessType           Kind = "business-type"
	KindEmployeeRange          Kind = "employee-range"
	KindTurnoverRange          Kind = "turnover-range"
	KindService                Kind = "service"
	KindCommunicationChannel   Kind = "communication-channel"
	KindServiceDeliveryStatus  Kind = "service-delivery-status"
	KindPolicyArea             Kind = "policy-area"
	KindPolicyIssueType        Kind = "policy-issue-type"
	KindInvestmentType         Kind = "investment-type"
	KindInvestmentProjectStage Kind = "investment-project-stage"
	KindCompanyClassification  Kind = "company-classification"
	KindEvent                  Kind = "event"
)

// Kinds lists every reference table
var Kinds = []Kind{
	KindCountry,
	KindUKRegion,
	KindSector,
	KindTeam,
	KindBusinessType,
	KindEmployeeRange,
	KindTurnoverRange,
	KindService,
	KindCommunicationChannel,
	KindServiceDeliveryStatus,
	KindPolicyArea,
	KindPolicyIssueType,
	KindInvestmentType,
	KindInvestmentProjectStage,
	KindCompanyClassification,
	KindEvent,
}

// ParseKind validates a reference table name
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", shared.NewNotFoundError("Not found.")
}

// Item is a single reference data row
type Item struct {
	ID         uuid.UUID  `json:"id" yaml:"id"`
	Kind       Kind       `json:"-" yaml:"-"`
	Name       string     `json:"name" yaml:"name"`
	DisabledOn *time.Time `json:"disabled_on" yaml:"disabled_on,omitempty"`
	ParentID   *uuid.UUID `json:"parent,omitempty" yaml:"parent,omitempty"`
	UKRegionID *uuid.UUID `json:"uk_region,omitempty" yaml:"uk_region,omitempty"`
}

// IsDisabled reports whether the item is no longer offered for new records
func (i Item) IsDisabled() bool {
	return i.DisabledOn != nil && !i.DisabledOn.After(time.Now())
}

// SortByName orders items alphabetically
func SortByName(items []Item) {
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].Name < items[b].Name
	})
}

// ServiceQuestion is a question asked when recording a service
type ServiceQuestion struct {
	ID            uuid.UUID   `json:"id" yaml:"id"`
	ServiceID     uuid.UUID   `json:"service" yaml:"service"`
	Name          string      `json:"name" yaml:"name"`
	AnswerOptions []uuid.UUID `json:"answer_options" yaml:"answer_options"`
}

// HasAnswerOption reports whether option belongs to the question
func (q ServiceQuestion) HasAnswerOption(option uuid.UUID) bool {
	for _, o := range q.AnswerOptions {
		if o == option {
			return true
		}
	}
	return false
}

// Repository reads and writes reference data
type Repository interface {
	// FindAll lists all items of a kind ordered by name, including disabled ones
	FindAll(ctx context.Context, kind Kind) ([]Item, error)

	// FindByID finds a single item
	FindByID(ctx context.Context, kind Kind, id uuid.UUID) (*Item, error)

	// Names maps ids to display names for any kind
	Names(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)

	// Upsert inserts or updates items
	Upsert(ctx context.Context, items []Item) error

	// FindServiceQuestions lists the questions configured for a service
	FindServiceQuestions(ctx context.Context, serviceID uuid.UUID) ([]ServiceQuestion, error)

	// HasChildren reports whether an item has child items, used for tree shaped services and sectors
	HasChildren(ctx context.Context, kind Kind, id uuid.UUID) (bool, error)

	// UpsertServiceQuestions inserts or updates service questions
	UpsertServiceQuestions(ctx context.Context, questions []ServiceQuestion) error
}
