package shared

import (
	"context"
)

const (
	// DefaultPageSize is used when a request does not specify a limit
	DefaultPageSize = 100
	// MaxPageSize caps the limit a client may request
	MaxPageSize = 1000
)

// Filter represents query filter options.
// Offset based pagination mirrors the limit/offset parameters of the REST API.
type Filter struct {
	Offset   int
	Limit    int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]any
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Limit:    DefaultPageSize,
		OrderBy:  "created_on",
		OrderDir: "desc",
		Filters:  make(map[string]any),
	}
}

// Normalize clamps offset and limit into their allowed range
func (f Filter) Normalize() Filter {
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Filters == nil {
		f.Filters = make(map[string]any)
	}
	return f
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Count   int64 `json:"count"`
	Results []T   `json:"results"`
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](items []T, total int64) Paginated[T] {
	if items == nil {
		items = []T{}
	}
	return Paginated[T]{
		Count:   total,
		Results: items,
	}
}

// TransactionManager runs fn inside a database transaction carried by ctx.
// Repositories called with that ctx join the transaction.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
