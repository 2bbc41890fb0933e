// Package dto holds the request and response shapes shared by the HTTP handlers
package dto

import (
	"errors"
	"net/http"

	"github.com/datahub/backend/internal/domain/shared"
)

// WWWAuthenticate is sent with every 401 response
const WWWAuthenticate = `Bearer realm="api"`

// MessageServerError is the body of unexpected errors
const MessageServerError = "A server error occurred."

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.ErrNotFound.Code:               http.StatusNotFound,
	shared.ErrAlreadyExists.Code:          http.StatusConflict,
	shared.ErrInvalidInput.Code:           http.StatusBadRequest,
	shared.ErrConflict.Code:               http.StatusConflict,
	shared.ErrUnauthorized.Code:           http.StatusUnauthorized,
	shared.ErrForbidden.Code:              http.StatusForbidden,
	shared.ErrInvalidState.Code:           http.StatusBadRequest,
	shared.ErrAlreadyArchived.Code:        http.StatusBadRequest,
	shared.ErrTemporarilyUnavailable.Code: http.StatusServiceUnavailable,
}

// nonFieldCodes are state errors rendered like validation errors
var nonFieldCodes = map[string]bool{
	shared.ErrInvalidState.Code:    true,
	shared.ErrAlreadyArchived.Code: true,
}

// ErrorResponse is the body of every error that is not a validation error
type ErrorResponse struct {
	Detail string `json:"detail" example:"Not found."`
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorBody returns the status code and body an error is rendered with.
// Validation errors render as the field map, domain errors as a detail
// message and anything else as a generic 500.
func ErrorBody(err error) (int, any) {
	if verrs, ok := shared.AsValidationErrors(err); ok {
		return http.StatusBadRequest, verrs
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := GetHTTPStatus(domainErr.Code)
		if status == http.StatusInternalServerError {
			return status, ErrorResponse{Detail: MessageServerError}
		}
		if nonFieldCodes[domainErr.Code] {
			return status, shared.NewNonFieldError(domainErr.Message)
		}
		return status, ErrorResponse{Detail: domainErr.Message}
	}
	return http.StatusInternalServerError, ErrorResponse{Detail: MessageServerError}
}
