package interaction

import (
	"context"
	"fmt"

	"github.com/datahub/backend/internal/domain/metadata"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/domain/validation"
	"github.com/google/uuid"
)

// Validation messages
const (
	MessageInconsistentContacts = "The interaction contacts must belong to the specified company."
	MessageStatusCannotChange   = "The status of a complete interaction cannot change."
	MessageDuplicateCountry     = "A country that was discussed cannot be entered in multiple fields."
	MessageDuplicateAdviser     = "You cannot add the same adviser more than once."
	MessageServiceLeafNode      = "This field is valid for services without children services."

	MessageAnswersInvalidFormat = "Answers have invalid format."
	MessageAnswersNotRequired   = "Answers not required for given service value."
	MessageQuestionNotRelated   = "This question does not relate to selected service."
	MessageOnlyOneAnswer        = "Only one answer can be selected for this question."
	MessageAnswerOptionInvalid  = "The selected answer option is not valid for this question."
)

var messages = map[string]string{
	"invalid_for_investment":                       "This value can't be selected for investment interactions.",
	"invalid_for_non_service_delivery":             "This field is only valid for service deliveries.",
	"invalid_for_service_delivery":                 "This field is not valid for service deliveries.",
	"invalid_for_non_interaction":                  "This field is only valid for interactions.",
	"invalid_for_non_event":                        "This field is only valid for event service deliveries.",
	"invalid_when_no_policy_feedback":              "This field is only valid when policy feedback has been provided.",
	"too_many_contacts_for_event_service_delivery": "Only one contact can be provided for event service deliveries.",
	"cannot_unset_theme":                           "A theme can't be removed once set.",
	"invalid_when_feature_flag_off":                "export countries related fields are not valid when feature flag is off.",
	"invalid_when_no_countries_discussed":          "This field is only valid when countries were discussed.",
	"invalid_for_update":                           "This field is invalid for interaction updates.",
}

// Message returns the text for an error key
func Message(key string) string {
	return messages[key]
}

// Lookup resolves the related records the validators depend on
type Lookup interface {
	// ServiceQuestions lists the questions configured for a service
	ServiceQuestions(ctx context.Context, serviceID uuid.UUID) ([]metadata.ServiceQuestion, error)
	// ServiceHasChildren reports whether a service has child services
	ServiceHasChildren(ctx context.Context, serviceID uuid.UUID) (bool, error)
	// ContactCompanies maps contact ids to the company each contact belongs to
	ContactCompanies(ctx context.Context, contactIDs []uuid.UUID) (map[uuid.UUID]*uuid.UUID, error)
}

// Options tune interaction validation
type Options struct {
	// ExportCountriesEnabled allows were_countries_discussed and export_countries on new interactions
	ExportCountriesEnabled bool
}

// Validator returns the validator applied to interaction writes. Field level
// checks run first and object level checks only run when they pass.
func Validator(ctx context.Context, lookup Lookup, opts Options) validation.Validator {
	return validation.ValidatorFunc(func(c *validation.DataCombiner) error {
		if err := validation.Run(c,
			validation.ValidatorFunc(validateFieldsForUpdate),
			validation.ValidatorFunc(validateDITParticipants),
			serviceLeafNodeValidator(ctx, lookup),
			requiredFieldsValidator(),
		); err != nil {
			return err
		}
		if err := validateTheme(c); err != nil {
			return err
		}
		return validation.Run(c,
			validation.ValidatorFunc(validateHasAssociatedInvestmentProject),
			contactsBelongToCompanyValidator(ctx, lookup),
			validation.ValidatorFunc(validateStatusChange),
			serviceAnswersValidator(ctx, lookup),
			validation.ValidatorFunc(validateDuplicateExportCountry),
			rulesValidator(opts.ExportCountriesEnabled),
		)
	})
}

func requiredFieldsValidator() validation.Validator {
	required := validation.NewRequiredFieldsValidator(
		"company", "contacts", "date", "dit_participants", "kind", "subject", "was_policy_feedback_provided",
	)
	return validation.ValidatorFunc(func(c *validation.DataCombiner) error {
		errs := shared.NewValidationErrors()
		if err := required.Validate(c); err != nil {
			verrs, _ := shared.AsValidationErrors(err)
			errs.Merge(verrs)
		}
		for _, field := range []string{"contacts", "dit_participants"} {
			value, ok := c.DataValue(field)
			if ok && value != nil && validation.IsBlank(value) {
				errs.Add(field, "This list may not be empty.")
			}
		}
		checkChoice(c, errs, "kind", KindInteraction, KindServiceDelivery)
		checkChoice(c, errs, "status", StatusDraft, StatusComplete)
		checkChoice(c, errs, "theme", ThemeExport, ThemeInvestment, ThemeOther)
		for _, item := range validation.AsSlice(mustData(c, "export_countries")) {
			country, _ := item.(map[string]any)
			status := country["status"]
			if !validation.InRule("status", ExportCountryCurrentlyExporting, ExportCountryFutureInterest, ExportCountryNotInterested).
				Evaluate(validation.NewDataCombiner(nil, country)) {
				errs.Add("export_countries", fmt.Sprintf("\"%v\" is not a valid choice.", status))
			}
		}
		return errs.OrNil()
	})
}

func checkChoice[T ~string](c *validation.DataCombiner, errs shared.ValidationErrors, field string, choices ...T) {
	value, ok := c.DataValue(field)
	if !ok || value == nil {
		return
	}
	for _, choice := range choices {
		if validation.Equal(value, choice) {
			return
		}
	}
	errs.Add(field, fmt.Sprintf("\"%v\" is not a valid choice.", value))
}

func validateFieldsForUpdate(c *validation.DataCombiner) error {
	if c.IsCreate() {
		return nil
	}
	errs := shared.NewValidationErrors()
	for _, field := range []string{"were_countries_discussed", "export_countries"} {
		if c.InData(field) {
			errs.Add(field, messages["invalid_for_update"])
		}
	}
	return errs.OrNil()
}

func validateDITParticipants(c *validation.DataCombiner) error {
	seen := make(map[string]bool)
	for _, item := range validation.AsSlice(mustData(c, "dit_participants")) {
		participant, _ := item.(map[string]any)
		adviser := fmt.Sprint(participant["adviser"])
		if seen[adviser] {
			return shared.NewFieldError("dit_participants", MessageDuplicateAdviser)
		}
		seen[adviser] = true
	}
	return nil
}

func serviceLeafNodeValidator(ctx context.Context, lookup Lookup) validation.Validator {
	return validation.ValidatorFunc(func(c *validation.DataCombiner) error {
		id, ok := parseUUID(mustData(c, "service"))
		if !ok {
			return nil
		}
		hasChildren, err := lookup.ServiceHasChildren(ctx, id)
		if err != nil {
			return err
		}
		if hasChildren {
			return shared.NewFieldError("service", MessageServiceLeafNode)
		}
		return nil
	})
}

func validateTheme(c *validation.DataCombiner) error {
	if c.IsCreate() {
		return nil
	}
	current, _ := c.InstanceValue("theme")
	if validation.Truthy(current) && !validation.Truthy(c.Get("theme")) {
		return shared.NewFieldError("theme", messages["cannot_unset_theme"])
	}
	return nil
}

func validateHasAssociatedInvestmentProject(c *validation.DataCombiner) error {
	if validation.Equal(c.Get("theme"), ThemeInvestment) &&
		validation.Equal(c.Get("kind"), KindInteraction) &&
		validation.IsBlank(c.Get("investment_project")) {
		return shared.NewFieldError("investment_project", validation.MessageRequired)
	}
	return nil
}

func contactsBelongToCompanyValidator(ctx context.Context, lookup Lookup) validation.Validator {
	return validation.ValidatorFunc(func(c *validation.DataCombiner) error {
		companyChanged := c.IsCreate() || validation.IsFieldBeingUpdated("company").Evaluate(c)
		contactsChanged := c.IsCreate() || contactsBeingUpdated(c)
		if !companyChanged && !contactsChanged {
			return nil
		}
		company, _ := parseUUID(c.Get("company"))
		ids := parseUUIDs(c.GetToMany("contacts"))
		if len(ids) == 0 {
			return nil
		}
		companies, err := lookup.ContactCompanies(ctx, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			contactCompany := companies[id]
			if contactCompany == nil || *contactCompany != company {
				return shared.NewNonFieldError(MessageInconsistentContacts)
			}
		}
		return nil
	})
}

func contactsBeingUpdated(c *validation.DataCombiner) bool {
	value, ok := c.DataValue("contacts")
	if !ok {
		return false
	}
	current, _ := c.InstanceValue("contacts")
	return !sameSet(validation.AsSlice(value), validation.AsSlice(current))
}

func validateStatusChange(c *validation.DataCombiner) error {
	if c.IsCreate() {
		return nil
	}
	current, _ := c.InstanceValue("status")
	if validation.Equal(current, StatusComplete) && !validation.Equal(c.Get("status"), current) {
		return shared.NewNonFieldError(MessageStatusCannotChange)
	}
	return nil
}

func validateDuplicateExportCountry(c *validation.DataCombiner) error {
	seen := make(map[string]bool)
	for _, item := range validation.AsSlice(mustData(c, "export_countries")) {
		country, _ := item.(map[string]any)
		id := fmt.Sprint(country["country"])
		if seen[id] {
			return shared.NewNonFieldError(MessageDuplicateCountry)
		}
		seen[id] = true
	}
	return nil
}

func serviceAnswersValidator(ctx context.Context, lookup Lookup) validation.Validator {
	return validation.ValidatorFunc(func(c *validation.DataCombiner) error {
		var questions map[string]metadata.ServiceQuestion
		if serviceID, ok := parseUUID(c.Get("service")); ok {
			list, err := lookup.ServiceQuestions(ctx, serviceID)
			if err != nil {
				return err
			}
			questions = make(map[string]metadata.ServiceQuestion, len(list))
			for _, q := range list {
				questions[q.ID.String()] = q
			}
		}
		return ValidateServiceAnswers(questions, c.Get("service_answers"))
	})
}

// ValidateServiceAnswers checks answers against the questions of the selected service.
// Every question needs exactly one answer option belonging to it.
func ValidateServiceAnswers(questions map[string]metadata.ServiceQuestion, answers any) error {
	var provided map[string]any
	if answers != nil {
		m, ok := answers.(map[string]any)
		if !ok {
			return shared.NewFieldError("service_answers", MessageAnswersInvalidFormat)
		}
		provided = m
	}
	if len(questions) == 0 && len(provided) > 0 {
		return shared.NewFieldError("service_answers", MessageAnswersNotRequired)
	}
	if len(questions) > 0 && len(provided) == 0 {
		return shared.NewFieldError("service_answers", validation.MessageRequired)
	}
	if answers == nil {
		return nil
	}

	errs := shared.NewValidationErrors()
	for id := range questions {
		if _, ok := provided[id]; !ok {
			errs.Add(id, validation.MessageRequired)
		}
	}
	for id, options := range provided {
		question, ok := questions[id]
		if !ok {
			errs.Add(id, MessageQuestionNotRelated)
			continue
		}
		optionMap, _ := options.(map[string]any)
		switch len(optionMap) {
		case 0:
			errs.Add(id, validation.MessageRequired)
			continue
		case 1:
		default:
			errs.Add(id, MessageOnlyOneAnswer)
			continue
		}
		for optionID := range optionMap {
			option, err := uuid.Parse(optionID)
			if err != nil || !question.HasAnswerOption(option) {
				errs.Add(optionID, MessageAnswerOptionInvalid)
			}
		}
	}
	return errs.OrNil()
}

func rulesValidator(exportCountriesEnabled bool) validation.Validator {
	flagActive := validation.ConditionRule("IsFeatureFlagActive(interaction-add-countries)",
		func(*validation.DataCombiner) bool { return exportCountriesEnabled })
	exportOrOther := validation.InRule("theme", ThemeExport, ThemeOther)
	isInteraction := validation.EqualsRule("kind", KindInteraction)
	isServiceDelivery := validation.EqualsRule("kind", KindServiceDelivery)

	return validation.NewRulesBasedValidator(messages,
		validation.NewValidationRule("required",
			validation.OperatorRule("communication_channel", validation.Truthy),
		).When(validation.AndRule(isInteraction, validation.EqualsRule("status", StatusComplete))),
		validation.NewValidationRule("required",
			validation.OperatorRule("service", validation.Truthy),
		).When(validation.EqualsRule("status", StatusComplete)),
		validation.NewValidationRule("invalid_for_investment",
			isInteraction,
		).When(validation.EqualsRule("theme", ThemeInvestment)),
		validation.NewValidationRule("invalid_for_non_interaction",
			validation.OperatorRule("investment_project", validation.Falsy),
		).When(isServiceDelivery),
		validation.NewValidationRule("invalid_for_service_delivery",
			validation.OperatorRule("communication_channel", validation.Falsy),
		).When(isServiceDelivery),
		validation.NewValidationRule("invalid_for_non_service_delivery",
			validation.OperatorRule("is_event", validation.IsBlank),
			validation.OperatorRule("event", validation.IsBlank),
			validation.OperatorRule("service_delivery_status", validation.IsBlank),
		).When(isInteraction),
		validation.NewValidationRule("invalid_when_no_policy_feedback",
			validation.OperatorRule("policy_issue_types", validation.Falsy),
			validation.OperatorRule("policy_areas", validation.Falsy),
			validation.OperatorRule("policy_feedback_notes", validation.Falsy),
		).When(validation.OperatorRule("was_policy_feedback_provided", validation.Falsy)),
		validation.NewValidationRule("required",
			validation.OperatorRule("policy_areas", validation.Truthy),
			validation.OperatorRule("policy_issue_types", validation.Truthy),
			validation.OperatorRule("policy_feedback_notes", validation.IsNotBlank),
		).When(validation.OperatorRule("was_policy_feedback_provided", validation.Truthy)),
		validation.NewValidationRule("required",
			validation.OperatorRule("is_event", validation.IsNotBlank),
		).When(isServiceDelivery),
		validation.NewValidationRule("too_many_contacts_for_event_service_delivery",
			validation.OperatorRule("contacts", func(v any) bool { return len(validation.AsSlice(v)) <= 1 }),
		).When(validation.OperatorRule("is_event", validation.Truthy)),
		validation.NewValidationRule("invalid_when_feature_flag_off",
			validation.OperatorRule("were_countries_discussed", validation.IsBlank),
			validation.OperatorRule("export_countries", validation.IsBlank),
		).When(validation.AndRule(validation.IsObjectBeingCreated(), validation.NotRule(flagActive))),
		validation.NewValidationRule("invalid_for_investment",
			validation.OperatorRule("were_countries_discussed", validation.Falsy),
			validation.OperatorRule("export_countries", validation.Falsy),
		).When(validation.EqualsRule("theme", ThemeInvestment)),
		validation.NewValidationRule("required",
			validation.OperatorRule("were_countries_discussed", validation.IsNotBlank),
		).When(validation.AndRule(validation.IsObjectBeingCreated(), flagActive, exportOrOther)),
		validation.NewValidationRule("required",
			validation.OperatorRule("export_countries", validation.IsNotBlank),
		).When(validation.AndRule(validation.OperatorRule("were_countries_discussed", validation.Truthy), exportOrOther)),
		validation.NewValidationRule("invalid_when_no_countries_discussed",
			validation.OperatorRule("export_countries", validation.IsBlank),
		).When(validation.AndRule(
			validation.IsObjectBeingCreated(),
			flagActive,
			validation.OperatorRule("were_countries_discussed", validation.Falsy),
			exportOrOther,
		)),
		validation.NewValidationRule("required",
			validation.OperatorRule("event", validation.Truthy),
		).When(validation.AndRule(validation.OperatorRule("is_event", validation.Truthy), isServiceDelivery)),
		validation.NewValidationRule("invalid_for_non_event",
			validation.OperatorRule("event", validation.Falsy),
		).When(validation.AndRule(validation.OperatorRule("is_event", validation.Falsy), isServiceDelivery)),
	)
}

func mustData(c *validation.DataCombiner, field string) any {
	value, _ := c.DataValue(field)
	return value
}

func parseUUID(v any) (uuid.UUID, bool) {
	if v == nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(fmt.Sprint(v))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func parseUUIDs(values []any) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		if id, ok := parseUUID(v); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func sameSet(a, b []any) bool {
	set := make(map[string]int, len(a))
	for _, v := range a {
		set[fmt.Sprint(v)]++
	}
	other := make(map[string]int, len(b))
	for _, v := range b {
		other[fmt.Sprint(v)]++
	}
	if len(set) != len(other) {
		return false
	}
	for k := range set {
		if other[k] == 0 {
			return false
		}
	}
	return true
}
