package validation

import (
	"encoding/json"
	"errors"
	"slices"
	"strings"

	"github.com/datahub/backend/internal/domain/shared"
)

// MessageInvalidValue is reported for values of the wrong type
const MessageInvalidValue = "Invalid value."

// Apply validates data against the current state of target and then copies
// the writable fields of data onto target. When isCreate is set target is
// treated as a record that does not exist yet. Fields listed in readOnly are
// dropped from data.
func Apply(target any, isCreate bool, data map[string]any, readOnly []string, validators ...Validator) error {
	writable := make(map[string]any, len(data))
	for k, v := range data {
		if !slices.Contains(readOnly, k) {
			writable[k] = v
		}
	}

	var instance map[string]any
	if !isCreate {
		var err error
		if instance, err = ToMap(target); err != nil {
			return err
		}
	}
	if err := Run(NewDataCombiner(instance, writable), validators...); err != nil {
		return err
	}

	if err := FromMap(writable, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if idx := strings.Index(field, "."); idx >= 0 {
				field = field[:idx]
			}
			if field == "" {
				field = shared.NonFieldErrorsKey
			}
			return shared.NewFieldError(field, MessageInvalidValue)
		}
		return shared.NewNonFieldError(MessageInvalidValue)
	}
	return nil
}
