package validation

import (
	"fmt"
	"strings"

	"github.com/datahub/backend/internal/domain/shared"
)

// Validator checks combined data and returns shared.ValidationErrors on failure
type Validator interface {
	Validate(c *DataCombiner) error
}

// ValidatorFunc adapts a function to the Validator interface
type ValidatorFunc func(c *DataCombiner) error

// Validate calls f
func (f ValidatorFunc) Validate(c *DataCombiner) error {
	return f(c)
}

// Run executes every validator and merges their validation errors.
// A non-validation error aborts immediately.
func Run(c *DataCombiner, validators ...Validator) error {
	errs := shared.NewValidationErrors()
	for _, v := range validators {
		err := v.Validate(c)
		if err == nil {
			continue
		}
		verrs, ok := shared.AsValidationErrors(err)
		if !ok {
			return err
		}
		errs.Merge(verrs)
	}
	return errs.OrNil()
}

// AnyOfValidator requires at least one of the listed fields to be non-blank
type AnyOfValidator struct {
	fields []string
}

// NewAnyOfValidator creates an AnyOfValidator
func NewAnyOfValidator(fields ...string) *AnyOfValidator {
	return &AnyOfValidator{fields: fields}
}

// Validate performs validation
func (v *AnyOfValidator) Validate(c *DataCombiner) error {
	for _, field := range v.fields {
		if IsNotBlank(c.Get(field)) {
			return nil
		}
	}
	return shared.NewNonFieldError(
		fmt.Sprintf("One or more of %s must be provided.", strings.Join(v.fields, ", ")),
	)
}

// RequiredUnlessAlreadyBlankValidator makes fields required, except for
// records where the stored value is already blank. Partial updates that omit a
// field are not checked.
type RequiredUnlessAlreadyBlankValidator struct {
	fields []string
	// Partial is true for PATCH requests
	Partial bool
}

// NewRequiredUnlessAlreadyBlankValidator creates a RequiredUnlessAlreadyBlankValidator
func NewRequiredUnlessAlreadyBlankValidator(partial bool, fields ...string) *RequiredUnlessAlreadyBlankValidator {
	return &RequiredUnlessAlreadyBlankValidator{fields: fields, Partial: partial}
}

// Validate performs validation
func (v *RequiredUnlessAlreadyBlankValidator) Validate(c *DataCombiner) error {
	errs := shared.NewValidationErrors()
	for _, field := range v.fields {
		if v.Partial && !c.InData(field) {
			continue
		}
		if !c.IsCreate() {
			if current, _ := c.InstanceValue(field); IsBlank(current) {
				continue
			}
		}
		if value, _ := c.DataValue(field); IsBlank(value) {
			errs.Add(field, MessageRequired)
		}
	}
	return errs.OrNil()
}

// RequiredFieldsValidator requires fields to be present and non-blank on create
type RequiredFieldsValidator struct {
	fields []string
}

// NewRequiredFieldsValidator creates a RequiredFieldsValidator
func NewRequiredFieldsValidator(fields ...string) *RequiredFieldsValidator {
	return &RequiredFieldsValidator{fields: fields}
}

// Validate reports "required" for missing fields and "null"/"blank" for
// fields that were supplied empty.
func (v *RequiredFieldsValidator) Validate(c *DataCombiner) error {
	errs := shared.NewValidationErrors()
	for _, field := range v.fields {
		value, ok := c.DataValue(field)
		switch {
		case !ok && c.IsCreate():
			errs.Add(field, MessageRequired)
		case ok && value == nil:
			errs.Add(field, MessageNull)
		case ok:
			if s, isString := value.(string); isString && strings.TrimSpace(s) == "" {
				errs.Add(field, MessageBlank)
			}
		}
	}
	return errs.OrNil()
}

// MessageArchived is reported when an archived record is edited
const MessageArchived = "This record has been archived and cannot be edited."

// NotArchivedValidator rejects updates to archived records
var NotArchivedValidator = ValidatorFunc(func(c *DataCombiner) error {
	if archived, _ := c.InstanceValue("archived"); Truthy(archived) {
		return shared.NewNonFieldError(MessageArchived)
	}
	return nil
})

// AddressValidator requires the mandatory address fields. When Lazy is set
// the check only applies once any address field has a value.
type AddressValidator struct {
	Lazy     bool
	Fields   []string
	Required map[string]bool
}

// NewAddressValidator creates an AddressValidator over fields, of which required must be set
func NewAddressValidator(lazy bool, fields []string, required ...string) *AddressValidator {
	req := make(map[string]bool, len(required))
	for _, f := range required {
		req[f] = true
	}
	return &AddressValidator{Lazy: lazy, Fields: fields, Required: req}
}

// Validate performs validation
func (v *AddressValidator) Validate(c *DataCombiner) error {
	if v.Lazy && AllIsBlankRule(v.Fields...).Evaluate(c) {
		return nil
	}
	errs := shared.NewValidationErrors()
	for _, field := range v.Fields {
		if v.Required[field] && IsBlank(c.Get(field)) {
			errs.Add(field, MessageRequired)
		}
	}
	return errs.OrNil()
}
