package search

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/datahub/backend/internal/application/task"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) CreateIndex(ctx context.Context, app string) error {
	return m.Called(ctx, app).Error(0)
}

func (m *MockEngine) Index(ctx context.Context, app string, docs []Document) error {
	return m.Called(ctx, app, docs).Error(0)
}

func (m *MockEngine) Delete(ctx context.Context, app string, ids []string) error {
	return m.Called(ctx, app, ids).Error(0)
}

func (m *MockEngine) Search(ctx context.Context, app string, q Query) (*Result, error) {
	args := m.Called(ctx, app, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Result), args.Error(1)
}

func (m *MockEngine) BasicSearch(ctx context.Context, entity string, q Query) (*BasicResult, error) {
	args := m.Called(ctx, entity, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BasicResult), args.Error(1)
}

type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(ctx context.Context, id string) (Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(Document), args.Error(1)
}

func (m *MockLoader) Iterate(ctx context.Context, batchSize int, fn func([]Document) error) error {
	args := m.Called(ctx, batchSize)
	for _, batch := range args.Get(0).([][]Document) {
		if err := fn(batch); err != nil {
			return err
		}
	}
	return args.Error(1)
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Schedule(ctx context.Context, function string, args any, opts task.Options) (string, error) {
	a := m.Called(ctx, function, args, opts)
	return a.String(0), a.Error(1)
}

func newTestService() (*Service, *MockEngine, *MockLoader, *MockScheduler) {
	engine := new(MockEngine)
	loader := new(MockLoader)
	scheduler := new(MockScheduler)
	svc := NewService(engine, map[string]Loader{AppCompany: loader}, scheduler, zap.NewNop())
	return svc, engine, loader, scheduler
}

func TestService_SyncObject(t *testing.T) {
	ctx := context.Background()

	t.Run("indexes the loaded document", func(t *testing.T) {
		svc, engine, loader, _ := newTestService()
		doc := Document{"id": "c1", "name": "Acme"}
		loader.On("Load", ctx, "c1").Return(doc, nil)
		engine.On("Index", ctx, AppCompany, []Document{doc}).Return(nil)

		require.NoError(t, svc.SyncObject(ctx, AppCompany, "c1"))
		engine.AssertExpectations(t)
	})

	t.Run("deletes records that no longer exist", func(t *testing.T) {
		svc, engine, loader, _ := newTestService()
		loader.On("Load", ctx, "gone").Return(nil, shared.ErrNotFound)
		engine.On("Delete", ctx, AppCompany, []string{"gone"}).Return(nil)

		require.NoError(t, svc.SyncObject(ctx, AppCompany, "gone"))
		engine.AssertExpectations(t)
		engine.AssertNotCalled(t, "Index", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("propagates load failures", func(t *testing.T) {
		svc, _, loader, _ := newTestService()
		loader.On("Load", ctx, "c1").Return(nil, errors.New("db down"))

		err := svc.SyncObject(ctx, AppCompany, "c1")
		assert.ErrorContains(t, err, "db down")
	})

	t.Run("unknown app", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		assert.ErrorIs(t, svc.SyncObject(ctx, "order", "1"), shared.ErrNotFound)
	})
}

func TestService_SyncApp(t *testing.T) {
	ctx := context.Background()
	svc, engine, loader, _ := newTestService()

	first := []Document{{"id": "1"}, {"id": "2"}}
	second := []Document{{"id": "3"}}
	loader.On("Iterate", ctx, 2).Return([][]Document{first, second, {}}, nil)
	engine.On("Index", ctx, AppCompany, first).Return(nil)
	engine.On("Index", ctx, AppCompany, second).Return(nil)

	n, err := svc.SyncApp(ctx, AppCompany, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	engine.AssertNumberOfCalls(t, "Index", 2)
}

func TestService_SyncApp_StopsOnIndexError(t *testing.T) {
	ctx := context.Background()
	svc, engine, loader, _ := newTestService()

	batch := []Document{{"id": "1"}}
	loader.On("Iterate", ctx, DefaultBatchSize).Return([][]Document{batch, batch}, nil)
	engine.On("Index", ctx, AppCompany, batch).Return(errors.New("bulk failed"))

	n, err := svc.SyncApp(ctx, AppCompany, 0)
	assert.ErrorContains(t, err, "bulk failed")
	assert.Zero(t, n)
	engine.AssertNumberOfCalls(t, "Index", 1)
}

func TestService_ScheduleSync(t *testing.T) {
	ctx := context.Background()
	svc, _, _, scheduler := newTestService()

	scheduler.On("Schedule", ctx, task.FunctionSyncObject, task.SyncObjectArgs{App: AppCompany, ID: "c1"}, task.Options{
		Queue:        task.QueueShortRunning,
		RetryBackoff: 1,
	}).Return("job-1", nil)

	require.NoError(t, svc.ScheduleSync(ctx, AppCompany, "c1"))
	scheduler.AssertExpectations(t)
}

func TestService_ScheduleDelete_NothingToDo(t *testing.T) {
	svc, _, _, scheduler := newTestService()

	require.NoError(t, svc.ScheduleDelete(context.Background(), AppCompany, nil))
	scheduler.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Search_ClipsPaging(t *testing.T) {
	ctx := context.Background()
	svc, engine, _, _ := newTestService()

	expected := Query{Term: "acme", Offset: 9990, Limit: 10}
	engine.On("Search", ctx, AppCompany, expected).Return(&Result{Count: 1}, nil)

	res, err := svc.Search(ctx, AppCompany, Query{Term: "acme", Offset: 9990, Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Count)
}

func TestClip(t *testing.T) {
	tests := []struct {
		offset, limit         int
		wantOffset, wantLimit int
	}{
		{0, 0, 0, shared.DefaultPageSize},
		{0, 50, 0, 50},
		{-5, 10, 0, 10},
		{9995, 100, 9995, 5},
		{20000, 10, 20000, 0},
	}
	for _, tt := range tests {
		offset, limit := clip(tt.offset, tt.limit)
		assert.Equal(t, tt.wantOffset, offset)
		assert.Equal(t, tt.wantLimit, limit)
	}
}

func TestService_HandleDeleteDocuments(t *testing.T) {
	ctx := context.Background()
	svc, engine, _, _ := newTestService()
	engine.On("Delete", ctx, AppCompany, []string{"a", "b"}).Return(nil)

	raw, err := json.Marshal(task.DeleteSearchDocumentsArgs{App: AppCompany, IDs: []string{"a", "b"}})
	require.NoError(t, err)
	require.NoError(t, svc.HandleDeleteDocuments(ctx, raw))
	engine.AssertExpectations(t)
}

func TestService_HandleSyncApp(t *testing.T) {
	ctx := context.Background()
	svc, engine, loader, _ := newTestService()
	batch := []Document{{"id": "1"}}
	loader.On("Iterate", ctx, 25).Return([][]Document{batch}, nil)
	engine.On("Index", ctx, AppCompany, batch).Return(nil)

	raw, err := json.Marshal(task.SyncAppArgs{App: AppCompany, BatchSize: 25})
	require.NoError(t, err)
	require.NoError(t, svc.HandleSyncApp(ctx, raw))
	engine.AssertExpectations(t)
}

func TestService_Handlers(t *testing.T) {
	svc, _, _, _ := newTestService()

	handlers := svc.Handlers()

	assert.Len(t, handlers, 3)
	for _, fn := range []string{task.FunctionSyncObject, task.FunctionSyncApp, task.FunctionDeleteSearchDocument} {
		assert.Contains(t, handlers, fn)
	}
}
