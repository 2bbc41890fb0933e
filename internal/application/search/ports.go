// Package search keeps the search index in step with the database and
// answers entity searches against it.
package search

import (
	"context"
	"encoding/json"
)

// Searchable apps
const (
	AppCompany           = "company"
	AppContact           = "contact"
	AppInteraction       = "interaction"
	AppInvestmentProject = "investment_project"
)

// Apps lists every searchable app in the order they are synced
func Apps() []string {
	return []string{AppCompany, AppContact, AppInteraction, AppInvestmentProject}
}

// DefaultBatchSize is the number of rows indexed per bulk request when syncing an app
const DefaultBatchSize = 2000

// MaxResults caps offset+limit of a search
const MaxResults = 10000

// Document is the JSON body indexed for a record. It always has an "id" key.
type Document map[string]any

// ID returns the document id
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// Query describes an entity search
type Query struct {
	Term    string
	Filters map[string]any
	// SortBy is "field" or "field:asc|desc"
	SortBy       string
	Offset       int
	Limit        int
	Aggregations []string
}

// Result is one page of matching documents
type Result struct {
	Count        int64                    `json:"count"`
	Results      []json.RawMessage        `json:"results"`
	Aggregations map[string][]BucketCount `json:"aggregations,omitempty"`
}

// BucketCount is a single terms aggregation bucket
type BucketCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// BasicResult is the result of a search across every app
type BasicResult struct {
	Count        int64             `json:"count"`
	Results      []json.RawMessage `json:"results"`
	Aggregations []BucketCount     `json:"aggregations"`
}

// Engine is the search backend
type Engine interface {
	// CreateIndex creates the index and alias of an app if they do not exist
	CreateIndex(ctx context.Context, app string) error
	// Index writes documents, replacing existing ones with the same id
	Index(ctx context.Context, app string, docs []Document) error
	// Delete removes documents. Missing documents are ignored.
	Delete(ctx context.Context, app string, ids []string) error
	// Search runs a filtered search in one app
	Search(ctx context.Context, app string, q Query) (*Result, error)
	// BasicSearch searches every app and counts the matches per app.
	// Results only include documents from entity.
	BasicSearch(ctx context.Context, entity string, q Query) (*BasicResult, error)
}

// Loader reads records of one app as search documents
type Loader interface {
	// Load returns the document for a record or a not found error
	Load(ctx context.Context, id string) (Document, error)
	// Iterate calls fn with batches of documents for every record
	Iterate(ctx context.Context, batchSize int, fn func([]Document) error) error
}
