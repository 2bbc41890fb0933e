package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	documentapp "github.com/datahub/backend/internal/application/document"
)

// Ensure StubDocumentStorage implements ObjectStorage
var _ documentapp.ObjectStorage = (*StubDocumentStorage)(nil)

// ErrObjectNotFound is returned by StubDocumentStorage for keys that were never uploaded
var ErrObjectNotFound = errors.New("object not found")

// StubDocumentStorage keeps objects in memory and hands out fake signed URLs.
// Use it for local development without S3 and in tests.
type StubDocumentStorage struct {
	// BaseURL prefixes the generated URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
	deleted []string
}

// NewStubDocumentStorage creates an empty StubDocumentStorage
func NewStubDocumentStorage() *StubDocumentStorage {
	return &StubDocumentStorage{
		BaseURL: "https://storage.example.com",
		objects: make(map[string][]byte),
	}
}

func objectKey(bucketID, key string) string {
	return bucketID + "/" + key
}

// Put stores an object
func (s *StubDocumentStorage) Put(bucketID, key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectKey(bucketID, key)] = data
}

// Has reports whether an object is stored
func (s *StubDocumentStorage) Has(bucketID, key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[objectKey(bucketID, key)]
	return ok
}

// Deleted returns the bucket/key pairs deleted so far
func (s *StubDocumentStorage) Deleted() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.deleted...)
}

func (s *StubDocumentStorage) signedURL(action, bucketID, key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	expires := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	return fmt.Sprintf("%s/%s/%s/%s?expires=%s", s.BaseURL, action, bucketID, key, url.QueryEscape(expires)), nil
}

// SignUploadURL returns a fake upload URL
func (s *StubDocumentStorage) SignUploadURL(_ context.Context, bucketID, key string) (string, error) {
	return s.signedURL("upload", bucketID, key)
}

// SignDownloadURL returns a fake download URL
func (s *StubDocumentStorage) SignDownloadURL(_ context.Context, bucketID, key string) (string, error) {
	return s.signedURL("download", bucketID, key)
}

// Open returns the stored object
func (s *StubDocumentStorage) Open(_ context.Context, bucketID, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[objectKey(bucketID, key)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, objectKey(bucketID, key))
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes the object and records the deletion
func (s *StubDocumentStorage) Delete(_ context.Context, bucketID, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectKey(bucketID, key))
	s.deleted = append(s.deleted, objectKey(bucketID, key))
	return nil
}
