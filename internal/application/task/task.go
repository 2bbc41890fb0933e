// Package task declares the background jobs the application schedules and
// the scheduler port the queue implements.
package task

import (
	"context"
	"encoding/json"
)

// Queue names
const (
	QueueShortRunning = "short-running"
	QueueLongRunning  = "long-running"
)

// Function names registered with the worker
const (
	FunctionVirusScanDocument    = "virus_scan_document"
	FunctionDeleteDocument       = "delete_document"
	FunctionSyncObject           = "sync_object"
	FunctionSyncApp              = "sync_app"
	FunctionDeleteSearchDocument = "delete_search_document"
	FunctionSendExportWinEmail   = "send_export_win_customer_email"
)

// DefaultMaxRetries is used when Options leaves MaxRetries at zero
const DefaultMaxRetries = 3

// Options control where a job runs and how it is retried
type Options struct {
	Queue      string
	MaxRetries int
	// RetryBackoff of 1 retries after 1, 4, 9... seconds. A value above 1
	// starts the sequence at that many seconds instead. Zero disables it.
	RetryBackoff int
	// RetryIntervals are used as given when RetryBackoff is zero. A single
	// value is repeated for every retry.
	RetryIntervals []int
}

// Scheduler enqueues jobs for the worker
type Scheduler interface {
	Schedule(ctx context.Context, function string, args any, opts Options) (string, error)
}

// Handler runs a job. Returning an error makes the job eligible for a retry.
type Handler func(ctx context.Context, args json.RawMessage) error

// DocumentArgs identifies the document a document job works on
type DocumentArgs struct {
	DocumentID string `json:"document_id"`
}

// SyncObjectArgs identifies the record a search sync job indexes
type SyncObjectArgs struct {
	App string `json:"app"`
	ID  string `json:"id"`
}

// SyncAppArgs names the app a full search sync job reindexes
type SyncAppArgs struct {
	App       string `json:"app"`
	BatchSize int    `json:"batch_size,omitempty"`
}

// DeleteSearchDocumentsArgs identifies the search documents to remove
type DeleteSearchDocumentsArgs struct {
	App string   `json:"app"`
	IDs []string `json:"ids"`
}

// ExportWinEmailArgs identifies the win and contact a customer email goes to
type ExportWinEmailArgs struct {
	WinID     string `json:"win_id"`
	ContactID string `json:"contact_id"`
	TokenID   string `json:"token_id"`
}

// Decode unmarshals job arguments into v
func Decode[T any](args json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(args, &v)
	return v, err
}
