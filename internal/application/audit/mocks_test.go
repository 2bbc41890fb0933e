package audit

import (
	"context"
	"sort"
	"time"

	"github.com/datahub/backend/internal/domain/adviser"
	"github.com/datahub/backend/internal/domain/audit"
	"github.com/datahub/backend/internal/domain/company"
	"github.com/datahub/backend/internal/domain/metadata"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// versionStore is an in-memory audit.Repository
type versionStore struct {
	versions []audit.Version
	saved    []context.Context
}

func (s *versionStore) Save(ctx context.Context, version *audit.Version) error {
	s.versions = append(s.versions, *version)
	s.saved = append(s.saved, ctx)
	return nil
}

func (s *versionStore) matching(objectType string, objectID uuid.UUID) []audit.Version {
	var out []audit.Version
	for _, v := range s.versions {
		if v.ObjectType == objectType && v.ObjectID == objectID {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Revision.DateCreated.After(out[j].Revision.DateCreated)
	})
	return out
}

func (s *versionStore) FindForObject(_ context.Context, objectType string, objectID uuid.UUID, offset, limit int) ([]audit.Version, error) {
	all := s.matching(objectType, objectID)
	if offset >= len(all) {
		return []audit.Version{}, nil
	}
	all = all[offset:]
	if limit >= 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *versionStore) CountForObject(_ context.Context, objectType string, objectID uuid.UUID) (int64, error) {
	return int64(len(s.matching(objectType, objectID))), nil
}

// MockVersionRepository is a mock implementation of audit.Repository
type MockVersionRepository struct {
	mock.Mock
}

func (m *MockVersionRepository) Save(ctx context.Context, version *audit.Version) error {
	return m.Called(ctx, version).Error(0)
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
	return m.Called(ctx, events).Error(0)
}

// MockAdviserRepository is a mock implementation of adviser.Repository
type MockAdviserRepository struct {
	mock.Mock
}

func (m *MockAdviserRepository) FindByID(ctx context.Context, id uuid.UUID) (*adviser.Adviser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*adviser.Adviser), args.Error(1)
}

func (m *MockAdviserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]adviser.Adviser, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]adviser.Adviser), args.Error(1)
}

func (m *MockAdviserRepository) FindByEmail(ctx context.Context, email string) (*adviser.Adviser, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*adviser.Adviser), args.Error(1)
}

func (m *MockAdviserRepository) FindBySSOEmailUserID(ctx context.Context, ssoEmailUserID string) (*adviser.Adviser, error) {
	args := m.Called(ctx, ssoEmailUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*adviser.Adviser), args.Error(1)
}

func (m *MockAdviserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]adviser.Adviser, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]adviser.Adviser), args.Get(1).(int64), args.Error(2)
}

func (m *MockAdviserRepository) Save(ctx context.Context, a *adviser.Adviser) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAdviserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

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

func (m *MockCompanyRepository) FindArchivedBefore(ctx context.Context, cutoff time.Time) ([]company.Company, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]company.Company), args.Error(1)
}

func (m *MockCompanyRepository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
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

// MockMetadataRepository is a mock implementation of metadata.Repository
type MockMetadataRepository struct {
	mock.Mock
}

func (m *MockMetadataRepository) FindAll(ctx context.Context, kind metadata.Kind) ([]metadata.Item, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).([]metadata.Item), args.Error(1)
}

func (m *MockMetadataRepository) FindByID(ctx context.Context, kind metadata.Kind, id uuid.UUID) (*metadata.Item, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*metadata.Item), args.Error(1)
}

func (m *MockMetadataRepository) Names(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[uuid.UUID]string), args.Error(1)
}

func (m *MockMetadataRepository) Upsert(ctx context.Context, items []metadata.Item) error {
	return m.Called(ctx, items).Error(0)
}

func (m *MockMetadataRepository) FindServiceQuestions(ctx context.Context, serviceID uuid.UUID) ([]metadata.ServiceQuestion, error) {
	args := m.Called(ctx, serviceID)
	return args.Get(0).([]metadata.ServiceQuestion), args.Error(1)
}

func (m *MockMetadataRepository) HasChildren(ctx context.Context, kind metadata.Kind, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, kind, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockMetadataRepository) UpsertServiceQuestions(ctx context.Context, questions []metadata.ServiceQuestion) error {
	return m.Called(ctx, questions).Error(0)
}
