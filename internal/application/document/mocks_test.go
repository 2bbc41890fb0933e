package document

import (
	"context"
	"io"

	"github.com/datahub/backend/internal/application/task"
	"github.com/datahub/backend/internal/domain/document"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MockDocumentRepository is a mock implementation of document.Repository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) Save(ctx context.Context, doc *document.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUploadableRepository is a mock implementation of document.UploadableDocumentRepository
type MockUploadableRepository struct {
	mock.Mock
}

func (m *MockUploadableRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.UploadableDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.UploadableDocument), args.Error(1)
}

func (m *MockUploadableRepository) Save(ctx context.Context, doc *document.UploadableDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

// MockSharePointRepository is a mock implementation of document.SharePointDocumentRepository
type MockSharePointRepository struct {
	mock.Mock
}

func (m *MockSharePointRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.SharePointDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.SharePointDocument), args.Error(1)
}

func (m *MockSharePointRepository) Save(ctx context.Context, doc *document.SharePointDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

// MockGenericRepository is a mock implementation of document.GenericDocumentRepository
type MockGenericRepository struct {
	mock.Mock
}

func (m *MockGenericRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.GenericDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.GenericDocument), args.Error(1)
}

func (m *MockGenericRepository) FindAll(ctx context.Context, filter shared.Filter) ([]document.GenericDocument, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]document.GenericDocument), args.Get(1).(int64), args.Error(2)
}

func (m *MockGenericRepository) Save(ctx context.Context, doc *document.GenericDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

// MockObjectStorage is a mock implementation of ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) SignUploadURL(ctx context.Context, bucketID, key string) (string, error) {
	args := m.Called(ctx, bucketID, key)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) SignDownloadURL(ctx context.Context, bucketID, key string) (string, error) {
	args := m.Called(ctx, bucketID, key)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) Open(ctx context.Context, bucketID, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, bucketID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockObjectStorage) Delete(ctx context.Context, bucketID, key string) error {
	args := m.Called(ctx, bucketID, key)
	return args.Error(0)
}

// MockVirusScanner is a mock implementation of VirusScanner
type MockVirusScanner struct {
	mock.Mock
}

func (m *MockVirusScanner) Scan(ctx context.Context, filename string, body io.Reader) (*ScanResult, error) {
	args := m.Called(ctx, filename, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ScanResult), args.Error(1)
}

// MockLocker runs fn unless it is told the lock is held elsewhere
type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) TryWithLock(ctx context.Context, key string, fn func(ctx context.Context) error) (bool, error) {
	args := m.Called(ctx, key)
	if !args.Bool(0) {
		return false, args.Error(1)
	}
	return true, fn(ctx)
}

// MockScheduler is a mock implementation of task.Scheduler
type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Schedule(ctx context.Context, function string, args any, opts task.Options) (string, error) {
	a := m.Called(ctx, function, args, opts)
	return a.String(0), a.Error(1)
}

// MockScanObserver records scan results
type MockScanObserver struct {
	mock.Mock
}

func (m *MockScanObserver) DocumentScanned(result string) {
	m.Called(result)
}
