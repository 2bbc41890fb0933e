// Package company models companies, their contacts and referrals between advisers
package company

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/datahub/backend/internal/domain/metadata"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/domain/validation"
	"github.com/google/uuid"
)

// AggregateType identifies companies in audit versions, events and search
const AggregateType = "company"

// TransferReason explains why a company was transferred to another record
type TransferReason string

const (
	TransferReasonDuplicate TransferReason = "duplicate"
)

// Display returns the human readable transfer reason
func (r TransferReason) Display() string {
	switch r {
	case TransferReasonDuplicate:
		return "Duplicate record"
	}
	return string(r)
}

var (
	// ErrInvalidMergeSource is returned when a company cannot be merged into another
	ErrInvalidMergeSource = shared.NewBadRequestError("The source company cannot be merged.")
	// ErrInvalidMergeTarget is returned when a company cannot receive a merge
	ErrInvalidMergeTarget = shared.NewBadRequestError("The target company cannot receive merged records.")
)

// Company is an organisation advisers interact with
type Company struct {
	shared.BaseEntity
	shared.Archivable
	Name                       string         `json:"name"`
	TradingNames               []string       `json:"trading_names"`
	CompanyNumber              string         `json:"company_number"`
	VATNumber                  string         `json:"vat_number"`
	ReferenceCode              string         `json:"reference_code"`
	BusinessTypeID             *uuid.UUID     `json:"business_type"`
	SectorID                   *uuid.UUID     `json:"sector"`
	EmployeeRangeID            *uuid.UUID     `json:"employee_range"`
	TurnoverRangeID            *uuid.UUID     `json:"turnover_range"`
	UKRegionID                 *uuid.UUID     `json:"uk_region"`
	Description                string         `json:"description"`
	Website                    string         `json:"website"`
	Address1                   string         `json:"address_1"`
	Address2                   string         `json:"address_2"`
	AddressTown                string         `json:"address_town"`
	AddressCounty              string         `json:"address_county"`
	AddressPostcode            string         `json:"address_postcode"`
	AddressCountryID           *uuid.UUID     `json:"address_country"`
	RegisteredAddress1         string         `json:"registered_address_1"`
	RegisteredAddress2         string         `json:"registered_address_2"`
	RegisteredAddressTown      string         `json:"registered_address_town"`
	RegisteredAddressCounty    string         `json:"registered_address_county"`
	RegisteredAddressPostcode  string         `json:"registered_address_postcode"`
	RegisteredAddressCountryID *uuid.UUID     `json:"registered_address_country"`
	HeadquarterTypeID          *uuid.UUID     `json:"headquarter_type"`
	GlobalHeadquartersID       *uuid.UUID     `json:"global_headquarters"`
	OneListAccountOwnerID      *uuid.UUID     `json:"one_list_account_owner"`
	ClassificationID           *uuid.UUID     `json:"classification"`
	ExportExperienceCategoryID *uuid.UUID     `json:"export_experience_category"`
	TransferredToID            *uuid.UUID     `json:"transferred_to"`
	TransferReason             TransferReason `json:"transfer_reason"`
	TransferredOn              *time.Time     `json:"transferred_on"`
	TransferredByID            *uuid.UUID     `json:"transferred_by"`
}

// ReadOnlyFields cannot be changed through the API
var ReadOnlyFields = []string{
	"id", "created_on", "created_by", "modified_on", "modified_by",
	"archived", "archived_on", "archived_reason", "archived_by",
	"reference_code", "transferred_to", "transfer_reason", "transferred_on", "transferred_by",
}

// NewCompany creates a company
func NewCompany(name string, by *uuid.UUID) *Company {
	return &Company{
		BaseEntity:   shared.NewBaseEntity(by),
		Name:         name,
		TradingNames: []string{},
	}
}

// String returns the display name
func (c *Company) String() string {
	return c.Name
}

// MarkAsTransferred archives the company and records that its data now lives in to
func (c *Company) MarkAsTransferred(to *Company, reason TransferReason, by *uuid.UUID) error {
	now := time.Now().UTC()
	toID := to.ID
	c.TransferReason = reason
	c.TransferredByID = by
	c.TransferredOn = &now
	c.TransferredToID = &toID

	archivedReason := fmt.Sprintf(
		"This record is no longer in use and its data has been transferred to %s for the following reason: %s.",
		to.Name, reason.Display(),
	)
	if err := c.Archive(by, archivedReason); err != nil {
		return err
	}
	c.Touch(by)
	return nil
}

// IsValidMergeTarget reports whether other companies may be merged into this one
func (c *Company) IsValidMergeTarget() bool {
	return !c.Archived && c.TransferredToID == nil
}

// IsValidMergeSource reports whether this company may be merged into another.
// Companies acting as a global headquarters for others cannot be merged.
func (c *Company) IsValidMergeSource(subsidiaryCount int64) bool {
	return c.TransferredToID == nil && subsidiaryCount == 0
}

// AddressValidationFields are required when a company address is given
var AddressValidationFields = []string{"address_1", "address_town", "address_country"}

var companyNumberCharacters = regexp.MustCompile(`^[A-Z0-9]*$`)

// Validator returns the cross-field validators applied to company writes
func Validator(partial bool) validation.Validator {
	return validation.ValidatorFunc(func(c *validation.DataCombiner) error {
		validators := []validation.Validator{
			validation.NewRequiredUnlessAlreadyBlankValidator(partial, "sector", "business_type"),
			companyRules,
			validation.ValidatorFunc(validateGlobalHeadquarters),
		}
		if c.IsCreate() {
			validators = append(validators, validation.NewRequiredFieldsValidator(append([]string{"name"}, AddressValidationFields...)...))
		}
		return validation.Run(c, validators...)
	})
}

var companyMessages = map[string]string{
	"invalid_uk_establishment_number_prefix":     "This must be a valid UK establishment number, beginning with BR.",
	"invalid_uk_establishment_number_characters": "This field can only contain the letters A to Z and numbers (no symbols, punctuation or spaces).",
	"uk_establishment_not_in_uk":                 "A UK establishment (branch of non-UK company) must be in the UK.",
	"invalid_global_headquarters":                "Global headquarters cannot point to itself.",
	"subsidiary_cannot_be_a_global_headquarters": "A company cannot both be and have a global headquarters.",
}

var companyRules = validation.NewRulesBasedValidator(companyMessages,
	validation.NewValidationRule("required",
		validation.OperatorRule("company_number", validation.Truthy),
	).When(validation.EqualsRule("business_type", metadata.BusinessTypeUKEstablishment)),
	validation.NewValidationRule("invalid_uk_establishment_number_characters",
		validation.OperatorRule("company_number", hasNoInvalidCompanyNumberCharacters),
	).When(validation.EqualsRule("business_type", metadata.BusinessTypeUKEstablishment)),
	validation.NewValidationRule("invalid_uk_establishment_number_prefix",
		validation.OperatorRule("company_number", hasUKEstablishmentNumberPrefix),
	).When(validation.EqualsRule("business_type", metadata.BusinessTypeUKEstablishment)),
	validation.NewValidationRule("required",
		validation.OperatorRule("uk_region", validation.Truthy),
	).When(validation.EqualsRule("address_country", metadata.CountryUnitedKingdom)),
	validation.NewValidationRule("uk_establishment_not_in_uk",
		validation.EqualsRule("address_country", metadata.CountryUnitedKingdom),
	).When(validation.EqualsRule("business_type", metadata.BusinessTypeUKEstablishment)),
	validation.NewValidationRule("subsidiary_cannot_be_a_global_headquarters",
		validation.OperatorRule("global_headquarters", validation.IsBlank),
	).When(validation.EqualsRule("headquarter_type", metadata.HeadquarterTypeGlobal)),
)

func validateGlobalHeadquarters(c *validation.DataCombiner) error {
	if c.IsCreate() || !c.InData("global_headquarters") {
		return nil
	}
	id, _ := c.InstanceValue("id")
	if validation.Equal(c.Get("global_headquarters"), id) {
		return shared.NewFieldError("global_headquarters", companyMessages["invalid_global_headquarters"])
	}
	return nil
}

func hasNoInvalidCompanyNumberCharacters(v any) bool {
	s, _ := v.(string)
	return s == "" || companyNumberCharacters.MatchString(s)
}

func hasUKEstablishmentNumberPrefix(v any) bool {
	s, _ := v.(string)
	return s == "" || strings.HasPrefix(s, "BR")
}
