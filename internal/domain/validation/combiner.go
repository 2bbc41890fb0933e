// Package validation implements cross-field validation over request data
// combined with the stored state of the record being changed.
package validation

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// DataCombiner resolves field values from incoming request data, falling back
// to the existing record for fields the request does not mention.
//
// Both maps use the JSON field names of the API representation. The instance
// map is nil when a new record is being created.
type DataCombiner struct {
	instance map[string]any
	data     map[string]any
}

// NewDataCombiner creates a DataCombiner
func NewDataCombiner(instance, data map[string]any) *DataCombiner {
	if data == nil {
		data = map[string]any{}
	}
	return &DataCombiner{instance: instance, data: data}
}

// Get returns the value from the request data if present, else the stored value
func (c *DataCombiner) Get(field string) any {
	if v, ok := c.data[field]; ok {
		return v
	}
	if c.instance == nil {
		return nil
	}
	return c.instance[field]
}

// GetToMany returns a to-many value as a slice, treating nil as empty
func (c *DataCombiner) GetToMany(field string) []any {
	return AsSlice(c.Get(field))
}

// GetString returns the value as a string, or "" when it is not a string
func (c *DataCombiner) GetString(field string) string {
	s, _ := c.Get(field).(string)
	return s
}

// InData reports whether the request data supplies field
func (c *DataCombiner) InData(field string) bool {
	_, ok := c.data[field]
	return ok
}

// DataValue returns the raw request value for field
func (c *DataCombiner) DataValue(field string) (any, bool) {
	v, ok := c.data[field]
	return v, ok
}

// InstanceValue returns the stored value for field
func (c *DataCombiner) InstanceValue(field string) (any, bool) {
	if c.instance == nil {
		return nil, false
	}
	v, ok := c.instance[field]
	return v, ok
}

// IsCreate reports whether there is no stored record
func (c *DataCombiner) IsCreate() bool {
	return c.instance == nil
}

// Data returns the request data
func (c *DataCombiner) Data() map[string]any {
	return c.data
}

// Merged returns the stored record overlaid with the request data
func (c *DataCombiner) Merged() map[string]any {
	merged := make(map[string]any, len(c.instance)+len(c.data))
	for k, v := range c.instance {
		merged[k] = v
	}
	for k, v := range c.data {
		merged[k] = v
	}
	return merged
}

// ToMap converts a value into its JSON object representation so that it can
// be used as the instance side of a DataCombiner.
func ToMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal instance: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal instance: %w", err)
	}
	return m, nil
}

// FromMap decodes a JSON object representation into target
func FromMap(m map[string]any, target any) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal data: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	return nil
}

// AsSlice converts a to-many value into a slice
func AsSlice(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// IsBlank reports whether a value is nil, an empty string or an empty collection
func IsBlank(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	case reflect.String:
		return rv.Len() == 0
	}
	return false
}

// IsNotBlank is the negation of IsBlank
func IsNotBlank(v any) bool {
	return !IsBlank(v)
}

// Truthy reports whether a value is considered set: non-zero numbers,
// true, non-empty strings and non-empty collections.
func Truthy(v any) bool {
	switch t := normalize(v).(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	}
	return IsNotBlank(v)
}

// Falsy is the negation of Truthy
func Falsy(v any) bool {
	return !Truthy(v)
}

// normalize converts named string and numeric types to their JSON equivalents
// so values supplied by Go code compare equal to decoded request values.
func normalize(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return v
}

// Equal compares two values after normalisation
func Equal(a, b any) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}
