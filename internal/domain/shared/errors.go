package shared

import (
	"errors"
	"sort"
	"strings"
)

// NonFieldErrorsKey is the key used for validation errors not bound to a single field
const NonFieldErrorsKey = "non_field_errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same error code
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound               = NewDomainError("NOT_FOUND", "Not found.")
	ErrAlreadyExists          = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput           = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConflict               = NewDomainError("CONFLICT", "The request conflicts with the current state of the resource")
	ErrUnauthorized           = NewDomainError("UNAUTHORIZED", "Authentication credentials were not provided.")
	ErrForbidden              = NewDomainError("FORBIDDEN", "You do not have permission to perform this action.")
	ErrInvalidState           = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrTemporarilyUnavailable = NewDomainError("TEMPORARILY_UNAVAILABLE", "Service temporarily unavailable, try again later.")
)

// NewNotFoundError returns a not found error with a specific message
func NewNotFoundError(message string) *DomainError {
	return NewDomainError(ErrNotFound.Code, message)
}

// NewConflictError returns a conflict error with a specific message
func NewConflictError(message string) *DomainError {
	return NewDomainError(ErrConflict.Code, message)
}

// NewForbiddenError returns a forbidden error with a specific message
func NewForbiddenError(message string) *DomainError {
	return NewDomainError(ErrForbidden.Code, message)
}

// NewBadRequestError returns an invalid input error with a specific message
func NewBadRequestError(message string) *DomainError {
	return NewDomainError(ErrInvalidInput.Code, message)
}

// ValidationErrors maps field names to the messages raised against them.
// Errors that are not bound to a field live under NonFieldErrorsKey.
type ValidationErrors map[string][]string

// NewValidationErrors creates an empty ValidationErrors
func NewValidationErrors() ValidationErrors {
	return make(ValidationErrors)
}

// NewFieldError creates ValidationErrors holding a single message for field
func NewFieldError(field, message string) ValidationErrors {
	return ValidationErrors{field: {message}}
}

// NewNonFieldError creates ValidationErrors holding a single non-field message
func NewNonFieldError(message string) ValidationErrors {
	return NewFieldError(NonFieldErrorsKey, message)
}

// Add appends a message for field
func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}

// Merge appends all messages from other
func (v ValidationErrors) Merge(other ValidationErrors) {
	for field, messages := range other {
		v[field] = append(v[field], messages...)
	}
}

// HasErrors reports whether any message was recorded
func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

// Fields returns the field names with errors in sorted order
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Error implements the error interface
func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, field := range v.Fields() {
		parts = append(parts, field+": "+strings.Join(v[field], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// OrNil returns nil when there are no errors so callers can return it directly
func (v ValidationErrors) OrNil() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

// AsValidationErrors extracts ValidationErrors from err
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
