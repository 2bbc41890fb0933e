// Package investment models foreign direct investment projects and their propositions
package investment

import (
	"fmt"

	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/domain/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateType identifies investment projects in audit versions, events and search
const AggregateType = "investment_project"

// ProjectStatus is the commercial state of a project
type ProjectStatus string

const (
	ProjectStatusOngoing   ProjectStatus = "ongoing"
	ProjectStatusDelayed   ProjectStatus = "delayed"
	ProjectStatusDormant   ProjectStatus = "dormant"
	ProjectStatusLost      ProjectStatus = "lost"
	ProjectStatusAbandoned ProjectStatus = "abandoned"
	ProjectStatusWon       ProjectStatus = "won"
)

// ProjectStatuses lists valid project statuses
var ProjectStatuses = []ProjectStatus{
	ProjectStatusOngoing, ProjectStatusDelayed, ProjectStatusDormant,
	ProjectStatusLost, ProjectStatusAbandoned, ProjectStatusWon,
}

// Project is an investment project led by a foreign investor company
type Project struct {
	shared.BaseEntity
	Name                        string           `json:"name"`
	Description                 string           `json:"description"`
	NDASigned                   bool             `json:"nda_signed"`
	EstimatedLandDate           *shared.Date     `json:"estimated_land_date"`
	ActualLandDate              *shared.Date     `json:"actual_land_date"`
	InvestmentTypeID            *uuid.UUID       `json:"investment_type"`
	StageID                     *uuid.UUID       `json:"stage"`
	Status                      ProjectStatus    `json:"status"`
	InvestorCompanyID           *uuid.UUID       `json:"investor_company"`
	IntermediateCompanyID       *uuid.UUID       `json:"intermediate_company"`
	ClientContactIDs            []uuid.UUID      `json:"client_contacts"`
	ClientRelationshipManagerID *uuid.UUID       `json:"client_relationship_manager"`
	ReferralSourceAdviserID     *uuid.UUID       `json:"referral_source_adviser"`
	SectorID                    *uuid.UUID       `json:"sector"`
	TotalInvestment             *decimal.Decimal `json:"total_investment"`
	ForeignEquityInvestment     *decimal.Decimal `json:"foreign_equity_investment"`
	NumberNewJobs               *int             `json:"number_new_jobs"`
	LikelihoodToLandID          *uuid.UUID       `json:"likelihood_to_land"`
	ProjectManagerID            *uuid.UUID       `json:"project_manager"`
	ProjectAssuranceAdviserID   *uuid.UUID       `json:"project_assurance_adviser"`
	TeamMemberIDs               []uuid.UUID      `json:"team_members"`
	ProjectCode                 string           `json:"project_code"`
}

// ReadOnlyFields cannot be changed through the API
var ReadOnlyFields = []string{
	"id", "created_on", "created_by", "modified_on", "modified_by", "project_code",
}

// RequiredFields must be supplied when creating a project
var RequiredFields = []string{
	"name", "description", "investment_type", "stage", "investor_company",
	"client_contacts", "client_relationship_manager", "referral_source_adviser",
	"sector", "estimated_land_date",
}

// NewProject creates an ongoing project
func NewProject(name string, by *uuid.UUID) *Project {
	return &Project{
		BaseEntity:       shared.NewBaseEntity(by),
		Name:             name,
		Status:           ProjectStatusOngoing,
		ClientContactIDs: []uuid.UUID{},
		TeamMemberIDs:    []uuid.UUID{},
	}
}

// FormatProjectCode renders a project number as a user-facing code
func FormatProjectCode(number int64) string {
	return fmt.Sprintf("DHP-%08d", number)
}

// AssignProjectCode sets the code from the next value of the project number sequence
func (p *Project) AssignProjectCode(number int64) {
	p.ProjectCode = FormatProjectCode(number)
}

// String returns the project name
func (p *Project) String() string {
	return p.Name
}

// AssociatedAdviserIDs returns every adviser linked to the project
func (p *Project) AssociatedAdviserIDs() []uuid.UUID {
	var ids []uuid.UUID
	for _, id := range []*uuid.UUID{
		p.CreatedByID, p.ClientRelationshipManagerID, p.ReferralSourceAdviserID,
		p.ProjectManagerID, p.ProjectAssuranceAdviserID,
	} {
		if id != nil {
			ids = append(ids, *id)
		}
	}
	return append(ids, p.TeamMemberIDs...)
}

// ProjectValidator returns the validators applied to project writes
func ProjectValidator() validation.Validator {
	return validation.ValidatorFunc(func(c *validation.DataCombiner) error {
		validators := []validation.Validator{
			validation.ValidatorFunc(validateStatus),
			projectRules,
		}
		if c.IsCreate() {
			validators = append(validators, validation.NewRequiredFieldsValidator(RequiredFields...))
		}
		return validation.Run(c, validators...)
	})
}

var projectRules = validation.NewRulesBasedValidator(nil,
	validation.NewValidationRule("required",
		validation.OperatorRule("actual_land_date", validation.IsNotBlank),
	).When(validation.EqualsRule("status", ProjectStatusWon)),
	validation.NewValidationRule("required",
		validation.OperatorRule("client_contacts", validation.Truthy),
	).When(validation.IsFieldBeingUpdated("client_contacts")),
)

func validateStatus(c *validation.DataCombiner) error {
	value, ok := c.DataValue("status")
	if !ok {
		return nil
	}
	for _, s := range ProjectStatuses {
		if validation.Equal(value, s) {
			return nil
		}
	}
	return shared.NewFieldError("status", fmt.Sprintf("\"%v\" is not a valid choice.", value))
}
