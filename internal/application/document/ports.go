package document

import (
	"context"
	"io"
)

// ObjectStorage stores document files in buckets identified by bucket id
type ObjectStorage interface {
	// SignUploadURL returns a presigned PUT URL for key
	SignUploadURL(ctx context.Context, bucketID, key string) (string, error)
	// SignDownloadURL returns a presigned GET URL for key
	SignDownloadURL(ctx context.Context, bucketID, key string) (string, error)
	// Open streams the object stored at key
	Open(ctx context.Context, bucketID, key string) (io.ReadCloser, error)
	// Delete removes the object stored at key
	Delete(ctx context.Context, bucketID, key string) error
}

// ScanResult is the verdict of the antivirus service
type ScanResult struct {
	Malware bool   `json:"malware"`
	Reason  string `json:"reason"`
}

// VirusScanner sends file contents to the antivirus service
type VirusScanner interface {
	Scan(ctx context.Context, filename string, body io.Reader) (*ScanResult, error)
}

// Locker runs fn while holding a named lock. It reports false without
// running fn when the lock is held elsewhere.
type Locker interface {
	TryWithLock(ctx context.Context, key string, fn func(ctx context.Context) error) (bool, error)
}
