package exportwin

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/datahub/backend/internal/application/audit"
	"github.com/datahub/backend/internal/application/task"
	auditdomain "github.com/datahub/backend/internal/domain/audit"
	"github.com/datahub/backend/internal/domain/exportwin"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MockWinRepository is a mock implementation of exportwin.Repository
type MockWinRepository struct {
	mock.Mock
}

func (m *MockWinRepository) FindByID(ctx context.Context, id uuid.UUID) (*exportwin.Win, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exportwin.Win), args.Error(1)
}

func (m *MockWinRepository) FindForAdviser(ctx context.Context, adviserID uuid.UUID, filter shared.Filter) ([]exportwin.Win, int64, error) {
	args := m.Called(ctx, adviserID, filter)
	return args.Get(0).([]exportwin.Win), args.Get(1).(int64), args.Error(2)
}

func (m *MockWinRepository) Save(ctx context.Context, w *exportwin.Win) error {
	return m.Called(ctx, w).Error(0)
}

func (m *MockWinRepository) ReassignCompany(ctx context.Context, from, to uuid.UUID) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWinRepository) ReplaceTokens(ctx context.Context, token *exportwin.CustomerResponseToken, now time.Time) error {
	return m.Called(ctx, token, now).Error(0)
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

type fixture struct {
	service   *Service
	wins      *MockWinRepository
	scheduler *MockScheduler
	versions  *MockVersionRepository
	publisher *MockEventPublisher
}

func newFixture() *fixture {
	f := &fixture{
		wins:      new(MockWinRepository),
		scheduler: new(MockScheduler),
		versions:  new(MockVersionRepository),
		publisher: new(MockEventPublisher),
	}
	recorder := audit.NewRecorder(f.versions, f.publisher, zap.NewNop())
	f.service = NewService(passthroughTx{}, f.wins, f.scheduler, recorder, zap.NewNop())
	return f
}

func (f *fixture) expectAudit(ctx context.Context) {
	f.versions.On("Save", ctx, mock.Anything).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything).Return(nil)
}

func validWinData() map[string]any {
	return map[string]any{
		"company":          uuid.NewString(),
		"company_contacts": []any{uuid.NewString()},
		"customer_name":    "Acme Ltd",
		"country":          uuid.NewString(),
		"sector":           uuid.NewString(),
		"date":             "2026-03-01",
		"description":      "Exported widgets",
		"lead_officer":     uuid.NewString(),
		"breakdowns": []any{
			map[string]any{"type": "export", "year": 1, "value": "1000.50"},
			map[string]any{"type": "export", "year": 2, "value": "2000"},
			map[string]any{"type": "odi", "year": 1, "value": "300"},
		},
	}
}

func TestService_Create_CalculatesTotals(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	adviserID := uuid.New()
	f.wins.On("Save", ctx, mock.AnythingOfType("*exportwin.Win")).Return(nil)
	f.expectAudit(ctx)

	w, err := f.service.Create(ctx, validWinData(), adviserID)

	require.NoError(t, err)
	assert.Equal(t, adviserID, w.AdviserID)
	assert.True(t, decimal.RequireFromString("3000.50").Equal(w.TotalExpectedExportValue))
	assert.True(t, decimal.RequireFromString("300").Equal(w.TotalExpectedODIValue))
	assert.True(t, w.TotalExpectedNonExportValue.IsZero())
	for _, b := range w.Breakdowns {
		assert.NotEqual(t, uuid.Nil, b.ID)
	}
}

func TestService_Create_TotalsAreReadOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	data := validWinData()
	data["total_expected_export_value"] = "999999"
	f.wins.On("Save", ctx, mock.Anything).Return(nil)
	f.expectAudit(ctx)

	w, err := f.service.Create(ctx, data, uuid.New())

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("3000.50").Equal(w.TotalExpectedExportValue))
}

func TestService_Create_InvalidBreakdowns(t *testing.T) {
	f := newFixture()
	data := validWinData()
	data["breakdowns"] = []any{map[string]any{"type": "bribe", "year": 1, "value": "-1"}}

	_, err := f.service.Create(context.Background(), data, uuid.New())

	verrs, ok := shared.AsValidationErrors(err)
	require.True(t, ok)
	assert.Contains(t, verrs["breakdowns"], "\"bribe\" is not a valid choice.")
	assert.Contains(t, verrs["breakdowns"], "Ensure this value is greater than or equal to 0.")
}

func TestService_Get_NotVisible(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	w := exportwin.NewWin(uuid.New(), nil)
	f.wins.On("FindByID", ctx, w.ID).Return(w, nil)

	_, err := f.service.Get(ctx, w.ID, uuid.New())

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_ResendCustomerEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	adviserID := uuid.New()
	contactID := uuid.New()
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	f.service.now = func() time.Time { return now }
	w := exportwin.NewWin(adviserID, nil)
	w.CompanyContactIDs = []uuid.UUID{contactID}

	f.wins.On("FindByID", ctx, w.ID).Return(w, nil)
	f.wins.On("ReplaceTokens", ctx, mock.MatchedBy(func(token *exportwin.CustomerResponseToken) bool {
		return token.CompanyContactID == contactID &&
			token.CustomerResponseID == w.CustomerResponse.ID &&
			token.ExpiresOn.Equal(now.Add(exportwin.TokenLifetime))
	}), now).Return(nil)
	f.wins.On("Save", ctx, w).Return(nil)
	f.expectAudit(ctx)
	f.scheduler.On("Schedule", ctx, task.FunctionSendExportWinEmail,
		mock.MatchedBy(func(args task.ExportWinEmailArgs) bool {
			return args.WinID == w.ID.String() && args.ContactID == contactID.String()
		}),
		task.Options{Queue: task.QueueShortRunning, MaxRetries: EmailMaxRetries, RetryBackoff: 1},
	).Return("job", nil)

	got, err := f.service.ResendCustomerEmail(ctx, w.ID, adviserID)

	require.NoError(t, err)
	assert.Equal(t, &now, got.FirstSent)
	assert.Equal(t, &now, got.LastSent)
	f.scheduler.AssertExpectations(t)
}

func TestService_ResendCustomerEmail_AlreadyConfirmed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	adviserID := uuid.New()
	w := exportwin.NewWin(adviserID, nil)
	w.CompanyContactIDs = []uuid.UUID{uuid.New()}
	responded := time.Now()
	w.CustomerResponse.RespondedOn = &responded
	f.wins.On("FindByID", ctx, w.ID).Return(w, nil)

	_, err := f.service.ResendCustomerEmail(ctx, w.ID, adviserID)

	verrs, ok := shared.AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{MessageAlreadyConfirmed}, verrs[shared.NonFieldErrorsKey])
	f.scheduler.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_HandleSendCustomerEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	w := exportwin.NewWin(uuid.New(), nil)
	f.wins.On("FindByID", ctx, w.ID).Return(w, nil)
	raw, err := json.Marshal(task.ExportWinEmailArgs{WinID: w.ID.String(), ContactID: uuid.NewString()})
	require.NoError(t, err)

	assert.NoError(t, f.service.HandleSendCustomerEmail(ctx, raw))
	assert.Error(t, f.service.HandleSendCustomerEmail(ctx, json.RawMessage(`{"win_id":"x"}`)))
	assert.Contains(t, f.service.Handlers(), task.FunctionSendExportWinEmail)
}
