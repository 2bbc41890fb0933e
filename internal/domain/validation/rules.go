package validation

import (
	"fmt"
	"strings"

	"github.com/datahub/backend/internal/domain/shared"
)

// Rule is a predicate evaluated against combined request and stored data.
// Field returns the field the rule reports errors against, or "" for rules
// that span several fields.
type Rule interface {
	Field() string
	Evaluate(c *DataCombiner) bool
}

type baseRule struct {
	field string
}

func (r baseRule) Field() string {
	return r.field
}

type funcRule struct {
	baseRule
	name string
	fn   func(c *DataCombiner) bool
}

func (r funcRule) Evaluate(c *DataCombiner) bool {
	return r.fn(c)
}

func (r funcRule) String() string {
	return r.name
}

func newRule(field, name string, fn func(c *DataCombiner) bool) Rule {
	return funcRule{baseRule: baseRule{field: field}, name: name, fn: fn}
}

// IsFieldBeingUpdated passes when the request changes the stored value of field
func IsFieldBeingUpdated(field string) Rule {
	return newRule(field, "IsFieldBeingUpdated("+field+")", func(c *DataCombiner) bool {
		value, ok := c.DataValue(field)
		if !ok || c.IsCreate() {
			return false
		}
		current, _ := c.InstanceValue(field)
		return !Equal(current, value)
	})
}

// IsFieldBeingUpdatedAndIsNotBlank passes when the request supplies a non-blank value for field
func IsFieldBeingUpdatedAndIsNotBlank(field string) Rule {
	return newRule(field, "IsFieldBeingUpdatedAndIsNotBlank("+field+")", func(c *DataCombiner) bool {
		value, ok := c.DataValue(field)
		if !ok {
			return false
		}
		return IsNotBlank(value)
	})
}

// IsFieldRule passes when the request supplies field and fn accepts its value
func IsFieldRule(field string, fn func(any) bool) Rule {
	return newRule(field, "IsFieldRule("+field+")", func(c *DataCombiner) bool {
		value, ok := c.DataValue(field)
		if !ok {
			return false
		}
		return fn(value)
	})
}

// OperatorRule passes when fn accepts the combined value of field
func OperatorRule(field string, fn func(any) bool) Rule {
	return newRule(field, "OperatorRule("+field+")", func(c *DataCombiner) bool {
		return fn(c.Get(field))
	})
}

// EqualsRule passes when the combined value of field equals value
func EqualsRule(field string, value any) Rule {
	return newRule(field, fmt.Sprintf("EqualsRule(%s, %v)", field, value), func(c *DataCombiner) bool {
		return Equal(c.Get(field), value)
	})
}

// InRule passes when the combined value of field equals one of values
func InRule(field string, values ...any) Rule {
	return newRule(field, fmt.Sprintf("InRule(%s, %v)", field, values), func(c *DataCombiner) bool {
		current := c.Get(field)
		for _, v := range values {
			if Equal(current, v) {
				return true
			}
		}
		return false
	})
}

// NotRule inverts rule
func NotRule(rule Rule) Rule {
	return newRule(rule.Field(), fmt.Sprintf("NotRule(%v)", rule), func(c *DataCombiner) bool {
		return !rule.Evaluate(c)
	})
}

// AndRule passes when all rules pass. It has no field of its own.
func AndRule(rules ...Rule) Rule {
	return newRule("", fmt.Sprintf("AndRule(%v)", rules), func(c *DataCombiner) bool {
		for _, rule := range rules {
			if !rule.Evaluate(c) {
				return false
			}
		}
		return true
	})
}

// AllIsBlankRule passes when every listed field is blank
func AllIsBlankRule(fields ...string) Rule {
	return newRule("", "AllIsBlankRule("+strings.Join(fields, ", ")+")", func(c *DataCombiner) bool {
		for _, field := range fields {
			if IsNotBlank(c.Get(field)) {
				return false
			}
		}
		return true
	})
}

// AnyIsNotBlankRule passes when at least one listed field is not blank
func AnyIsNotBlankRule(fields ...string) Rule {
	return newRule("", "AnyIsNotBlankRule("+strings.Join(fields, ", ")+")", func(c *DataCombiner) bool {
		for _, field := range fields {
			if IsNotBlank(c.Get(field)) {
				return true
			}
		}
		return false
	})
}

// IsObjectBeingCreated passes when there is no stored record
func IsObjectBeingCreated() Rule {
	return newRule("", "IsObjectBeingCreated()", func(c *DataCombiner) bool {
		return c.IsCreate()
	})
}

// ConditionRule wraps an arbitrary predicate, such as a feature flag check
func ConditionRule(name string, fn func(c *DataCombiner) bool) Rule {
	return newRule("", name, fn)
}

// ConditionalRule is a rule that is only checked when a condition is met.
// When the condition fails the rule passes.
type ConditionalRule struct {
	rule Rule
	when Rule
}

// NewConditionalRule creates a ConditionalRule. when may be nil.
func NewConditionalRule(rule, when Rule) ConditionalRule {
	return ConditionalRule{rule: rule, when: when}
}

// Field returns the field of the wrapped rule
func (r ConditionalRule) Field() string {
	return r.rule.Field()
}

// Evaluate checks the condition and then the wrapped rule
func (r ConditionalRule) Evaluate(c *DataCombiner) bool {
	if r.when != nil && !r.when.Evaluate(c) {
		return true
	}
	return r.rule.Evaluate(c)
}

// FieldAndError pairs a field with the key of the error raised against it
type FieldAndError struct {
	Field    string
	ErrorKey string
}

// ValidationRule produces errors for rules that fail
type ValidationRule interface {
	Check(c *DataCombiner) []FieldAndError
}

// SimpleValidationRule requires all of its rules to pass when its condition is met
type SimpleValidationRule struct {
	errorKey string
	rules    []Rule
	when     Rule
}

// NewValidationRule creates a rule that reports errorKey against the field of
// every failing rule. Use When to attach a condition.
func NewValidationRule(errorKey string, rules ...Rule) *SimpleValidationRule {
	return &SimpleValidationRule{errorKey: errorKey, rules: rules}
}

// When sets the condition under which the rules are checked
func (r *SimpleValidationRule) When(condition Rule) *SimpleValidationRule {
	r.when = condition
	return r
}

// Check evaluates the rules
func (r *SimpleValidationRule) Check(c *DataCombiner) []FieldAndError {
	var errs []FieldAndError
	for _, rule := range r.rules {
		conditional := NewConditionalRule(rule, r.when)
		if conditional.Evaluate(c) {
			continue
		}
		field := conditional.Field()
		if field == "" {
			field = shared.NonFieldErrorsKey
		}
		errs = append(errs, FieldAndError{Field: field, ErrorKey: r.errorKey})
	}
	return errs
}

// RulesBasedValidator aggregates validation rules and renders their errors
// using a table of error messages keyed by error key.
type RulesBasedValidator struct {
	rules    []ValidationRule
	messages map[string]string
}

// NewRulesBasedValidator creates a RulesBasedValidator
func NewRulesBasedValidator(messages map[string]string, rules ...ValidationRule) *RulesBasedValidator {
	return &RulesBasedValidator{rules: rules, messages: messages}
}

// Validate runs every rule and returns the aggregated errors, or nil
func (v *RulesBasedValidator) Validate(c *DataCombiner) error {
	errs := shared.NewValidationErrors()
	for _, rule := range v.rules {
		for _, fe := range rule.Check(c) {
			errs.Add(fe.Field, v.message(fe.ErrorKey))
		}
	}
	return errs.OrNil()
}

func (v *RulesBasedValidator) message(key string) string {
	if msg, ok := v.messages[key]; ok {
		return msg
	}
	if msg, ok := DefaultMessages[key]; ok {
		return msg
	}
	return key
}

// Standard error messages shared by all serializers
const (
	MessageRequired = "This field is required."
	MessageNull     = "This field may not be null."
	MessageBlank    = "This field may not be blank."
)

// DefaultMessages holds messages available to every validator
var DefaultMessages = map[string]string{
	"required": MessageRequired,
	"null":     MessageNull,
	"blank":    MessageBlank,
}
