package company

import (
	"context"
	"time"

	"github.com/datahub/backend/internal/domain/audit"
	"github.com/datahub/backend/internal/domain/company"
	"github.com/datahub/backend/internal/domain/exportwin"
	"github.com/datahub/backend/internal/domain/interaction"
	"github.com/datahub/backend/internal/domain/investment"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
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

// MockReferralRepository is a mock implementation of company.ReferralRepository
type MockReferralRepository struct {
	mock.Mock
}

func (m *MockReferralRepository) FindByID(ctx context.Context, id uuid.UUID) (*company.Referral, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Referral), args.Error(1)
}

func (m *MockReferralRepository) FindForAdviser(ctx context.Context, adviserID uuid.UUID, filter shared.Filter) ([]company.Referral, int64, error) {
	args := m.Called(ctx, adviserID, filter)
	return args.Get(0).([]company.Referral), args.Get(1).(int64), args.Error(2)
}

func (m *MockReferralRepository) Save(ctx context.Context, r *company.Referral) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReferralRepository) ReassignCompany(ctx context.Context, from, to uuid.UUID) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

// MockInteractionRepository only implements the methods a merge needs
type MockInteractionRepository struct {
	interaction.Repository
	mock.Mock
}

func (m *MockInteractionRepository) ReassignCompany(ctx context.Context, from, to uuid.UUID) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

// MockProjectRepository only implements the methods a merge needs
type MockProjectRepository struct {
	investment.ProjectRepository
	mock.Mock
}

func (m *MockProjectRepository) ReassignCompany(ctx context.Context, from, to uuid.UUID) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

// MockWinRepository only implements the methods a merge needs
type MockWinRepository struct {
	exportwin.Repository
	mock.Mock
}

func (m *MockWinRepository) ReassignCompany(ctx context.Context, from, to uuid.UUID) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
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

// MockInteractionCreator is a mock implementation of InteractionCreator
type MockInteractionCreator struct {
	mock.Mock
}

func (m *MockInteractionCreator) CreateWithinTransaction(ctx context.Context, data map[string]any, by *uuid.UUID) (*interaction.Interaction, error) {
	args := m.Called(ctx, data, by)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interaction.Interaction), args.Error(1)
}

// passthroughTx runs fn directly
type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// savedEvents returns a matcher for a publish of saved events of aggregateType
func savedEvents(aggregateType string, ids ...uuid.UUID) any {
	return mock.MatchedBy(func(events []shared.DomainEvent) bool {
		if len(events) != len(ids) {
			return false
		}
		for i, e := range events {
			if e.EventType() != shared.EventTypeRecordSaved || e.AggregateType() != aggregateType || e.AggregateID() != ids[i] {
				return false
			}
		}
		return true
	})
}
