package management

import (
	"context"
	"io"
	"time"

	"github.com/datahub/backend/internal/application/audit"
	auditdomain "github.com/datahub/backend/internal/domain/audit"
	"github.com/datahub/backend/internal/domain/company"
	"github.com/datahub/backend/internal/domain/interaction"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockCompanyRepository is a mock implementation of company.Repository
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]company.Company, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]company.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]company.Company, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]company.Company), args.Get(1).(int64), args.Error(2)
}

func (m *MockCompanyRepository) FindWithOneListFields(ctx context.Context) ([]company.Company, error) {
	args := m.Called(ctx)
	return args.Get(0).([]company.Company), args.Error(1)
}

func (m *MockCompanyRepository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCompanyRepository) FindArchivedBefore(ctx context.Context, cutoff time.Time) ([]company.Company, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]company.Company), args.Error(1)
}

func (m *MockCompanyRepository) CountSubsidiaries(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCompanyRepository) Save(ctx context.Context, c *company.Company) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCompanyRepository) Iterate(ctx context.Context, batchSize int, fn func([]company.Company) error) error {
	return m.Called(ctx, batchSize, fn).Error(0)
}

// MockContactRepository is a mock implementation of company.ContactRepository
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) FindByID(ctx context.Context, id uuid.UUID) (*company.Contact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Contact), args.Error(1)
}

func (m *MockContactRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]company.Contact, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]company.Contact), args.Error(1)
}

func (m *MockContactRepository) FindAll(ctx context.Context, filter shared.Filter) ([]company.Contact, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]company.Contact), args.Get(1).(int64), args.Error(2)
}

func (m *MockContactRepository) Save(ctx context.Context, c *company.Contact) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockContactRepository) ReassignCompany(ctx context.Context, from, to uuid.UUID) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContactRepository) Iterate(ctx context.Context, batchSize int, fn func([]company.Contact) error) error {
	return m.Called(ctx, batchSize, fn).Error(0)
}

// MockInteractionRepository is a mock implementation of interaction.Repository
type MockInteractionRepository struct {
	mock.Mock
}

func (m *MockInteractionRepository) FindByID(ctx context.Context, id uuid.UUID) (*interaction.Interaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interaction.Interaction), args.Error(1)
}

func (m *MockInteractionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]interaction.Interaction, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]interaction.Interaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockInteractionRepository) Save(ctx context.Context, i *interaction.Interaction) error {
	return m.Called(ctx, i).Error(0)
}

func (m *MockInteractionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockInteractionRepository) ReassignCompany(ctx context.Context, from, to uuid.UUID) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInteractionRepository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockInteractionRepository) FindArchivedBefore(ctx context.Context, cutoff time.Time) ([]interaction.Interaction, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]interaction.Interaction), args.Error(1)
}

func (m *MockInteractionRepository) Iterate(ctx context.Context, batchSize int, fn func([]interaction.Interaction) error) error {
	return m.Called(ctx, batchSize, fn).Error(0)
}


// MockObjectReader is a mock implementation of ObjectReader
type MockObjectReader struct {
	mock.Mock
}

func (m *MockObjectReader) Open(ctx context.Context, bucketID, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, bucketID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockVersionRepository is a mock implementation of audit.Repository
type MockVersionRepository struct {
	mock.Mock
}

func (m *MockVersionRepository) Save(ctx context.Context, version *auditdomain.Version) error {
	return m.Called(ctx, version).Error(0)
}

func (m *MockVersionRepository) FindForObject(ctx context.Context, objectType string, objectID uuid.UUID, offset, limit int) ([]auditdomain.Version, error) {
	args := m.Called(ctx, objectType, objectID, offset, limit)
	return args.Get(0).([]auditdomain.Version), args.Error(1)
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
	return m.Called(ctx, events).Error(0)
}

// recordingTx runs fn directly and remembers whether it asked for a rollback
type recordingTx struct {
	calls      int
	rolledBack bool
}

func (t *recordingTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	err := fn(ctx)
	if err != nil {
		t.rolledBack = true
	}
	return err
}

func newRecorder() (*audit.Recorder, *MockVersionRepository, *MockEventPublisher) {
	versions := new(MockVersionRepository)
	publisher := new(MockEventPublisher)
	return audit.NewRecorder(versions, publisher, zap.NewNop()), versions, publisher
}
