package company

import (
	"strings"

	"github.com/datahub/backend/internal/domain/metadata"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/domain/validation"
	"github.com/google/uuid"
)

// ContactAggregateType identifies contacts in audit versions, events and search
const ContactAggregateType = "contact"

// Contact is a person at a company
type Contact struct {
	shared.BaseEntity
	shared.Archivable
	Title                string     `json:"title"`
	FirstName            string     `json:"first_name"`
	LastName             string     `json:"last_name"`
	JobTitle             string     `json:"job_title"`
	CompanyID            *uuid.UUID `json:"company"`
	Primary              bool       `json:"primary"`
	FullTelephoneNumber  string     `json:"full_telephone_number"`
	Email                string     `json:"email"`
	AddressSameAsCompany bool       `json:"address_same_as_company"`
	Address1             string     `json:"address_1"`
	Address2             string     `json:"address_2"`
	AddressTown          string     `json:"address_town"`
	AddressCounty        string     `json:"address_county"`
	AddressPostcode      string     `json:"address_postcode"`
	AddressCountryID     *uuid.UUID `json:"address_country"`
	AddressAreaID        *uuid.UUID `json:"address_area"`
	Notes                string     `json:"notes"`
}

// ContactReadOnlyFields cannot be changed through the API
var ContactReadOnlyFields = []string{
	"id", "created_on", "created_by", "modified_on", "modified_by",
	"archived", "archived_on", "archived_reason", "archived_by",
}

// NewContact creates a contact
func NewContact(firstName, lastName string, by *uuid.UUID) *Contact {
	return &Contact{
		BaseEntity: shared.NewBaseEntity(by),
		FirstName:  firstName,
		LastName:   lastName,
	}
}

// Name joins the non-empty parts of the contact's name
func (c *Contact) Name() string {
	parts := make([]string, 0, 2)
	for _, p := range []string{c.FirstName, c.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// ContactAddressFields are the fields making up a manually entered contact address
var ContactAddressFields = []string{
	"address_1", "address_2", "address_town", "address_county", "address_postcode", "address_country",
}

var contactMessages = map[string]string{
	"address_same_as_company_and_has_address": "Please select either address_same_as_company or enter an address manually, not both!",
	"no_address":                              "Please select either address_same_as_company or enter an address manually.",
}

var contactAddressRules = validation.NewRulesBasedValidator(contactMessages,
	validation.NewValidationRule("address_same_as_company_and_has_address",
		validation.OperatorRule("address_same_as_company", validation.Falsy),
	).When(validation.AnyIsNotBlankRule(ContactAddressFields...)),
	validation.NewValidationRule("no_address",
		validation.OperatorRule("address_same_as_company", validation.Truthy),
	).When(validation.AllIsBlankRule(ContactAddressFields...)),
)

var contactAreaRules = validation.NewRulesBasedValidator(nil,
	validation.NewValidationRule("required",
		validation.OperatorRule("address_area", validation.Truthy),
	).When(validation.InRule("address_country", metadata.CountryUnitedStates, metadata.CountryCanada)),
)

// ContactValidator returns the validators applied to contact writes.
// The address_same_as_company rules run before the address check.
func ContactValidator() validation.Validator {
	return validation.ValidatorFunc(func(c *validation.DataCombiner) error {
		if err := validation.NotArchivedValidator.Validate(c); err != nil {
			return err
		}
		return validation.Run(c,
			contactAddressRules,
			validation.NewAddressValidator(true, ContactAddressFields, "address_1", "address_town", "address_country"),
			contactAreaRules,
		)
	})
}
