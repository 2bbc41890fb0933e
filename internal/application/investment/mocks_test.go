package investment

import (
	"context"
	"io"

	"github.com/datahub/backend/internal/application/task"
	"github.com/datahub/backend/internal/domain/audit"
	"github.com/datahub/backend/internal/domain/document"
	"github.com/datahub/backend/internal/domain/investment"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/domain/userevent"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MockProjectRepository is a mock implementation of investment.ProjectRepository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*investment.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*investment.Project), args.Error(1)
}

func (m *MockProjectRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProjectRepository) FindAll(ctx context.Context, filter shared.Filter) ([]investment.Project, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]investment.Project), args.Get(1).(int64), args.Error(2)
}

func (m *MockProjectRepository) NextProjectNumber(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProjectRepository) Save(ctx context.Context, p *investment.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepository) ReassignCompany(ctx context.Context, from, to uuid.UUID) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProjectRepository) Iterate(ctx context.Context, batchSize int, fn func([]investment.Project) error) error {
	args := m.Called(ctx, batchSize, fn)
	return args.Error(0)
}

// MockPropositionRepository is a mock implementation of investment.PropositionRepository
type MockPropositionRepository struct {
	mock.Mock
}

func (m *MockPropositionRepository) FindByID(ctx context.Context, projectID, id uuid.UUID) (*investment.Proposition, error) {
	args := m.Called(ctx, projectID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*investment.Proposition), args.Error(1)
}

func (m *MockPropositionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]investment.Proposition, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]investment.Proposition), args.Get(1).(int64), args.Error(2)
}

func (m *MockPropositionRepository) Save(ctx context.Context, p *investment.Proposition) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPropositionRepository) CountScannedDocuments(ctx context.Context, propositionID uuid.UUID) (int64, error) {
	args := m.Called(ctx, propositionID)
	return args.Get(0).(int64), args.Error(1)
}

// MockPropositionDocumentRepository is a mock implementation of investment.PropositionDocumentRepository
type MockPropositionDocumentRepository struct {
	mock.Mock
}

func (m *MockPropositionDocumentRepository) FindByID(ctx context.Context, propositionID, id uuid.UUID) (*investment.PropositionDocument, error) {
	args := m.Called(ctx, propositionID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*investment.PropositionDocument), args.Error(1)
}

func (m *MockPropositionDocumentRepository) FindAll(ctx context.Context, propositionID uuid.UUID, filter shared.Filter) ([]investment.PropositionDocument, int64, error) {
	args := m.Called(ctx, propositionID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]investment.PropositionDocument), args.Get(1).(int64), args.Error(2)
}

func (m *MockPropositionDocumentRepository) Save(ctx context.Context, d *investment.PropositionDocument) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockPropositionDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserEventRepository is a mock implementation of userevent.Repository
type MockUserEventRepository struct {
	mock.Mock
}

func (m *MockUserEventRepository) Save(ctx context.Context, e *userevent.UserEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockUserEventRepository) FindAll(ctx context.Context, filter shared.Filter) ([]userevent.UserEvent, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]userevent.UserEvent), args.Get(1).(int64), args.Error(2)
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

// MockObjectStorage signs URLs; the file operations are unused here
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

// MockScheduler is a mock implementation of task.Scheduler
type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Schedule(ctx context.Context, function string, args any, opts task.Options) (string, error) {
	a := m.Called(ctx, function, args, opts)
	return a.String(0), a.Error(1)
}

// MockVersionRepository is a mock implementation of audit.Repository
type MockVersionRepository struct {
	mock.Mock
}

func (m *MockVersionRepository) Save(ctx context.Context, v *audit.Version) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVersionRepository) FindForObject(ctx context.Context, objectType string, objectID uuid.UUID, offset, limit int) ([]audit.Version, error) {
	args := m.Called(ctx, objectType, objectID, offset, limit)
	return args.Get(0).([]audit.Version), args.Error(1)
}

func (m *MockVersionRepository) CountForObject(ctx context.Context, objectType string, objectID uuid.UUID) (int64, error) {
	args := m.Called(ctx, objectType, objectID)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
