package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/datahub/backend/internal/application/task"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Schedule(ctx context.Context, function string, args any, opts task.Options) (string, error) {
	a := m.Called(ctx, function, args, opts)
	return a.String(0), a.Error(1)
}

func TestParseDaily(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		want    Daily
		wantErr bool
	}{
		{name: "3:30am", expr: "30 3 * * *", want: Daily{Hour: 3, Minute: 30}},
		{name: "midnight", expr: "0 0", want: Daily{}},
		{name: "extra whitespace", expr: "  15   4   *   *   *  ", want: Daily{Hour: 4, Minute: 15}},
		{name: "empty", expr: "", wantErr: true},
		{name: "minute out of range", expr: "60 1 * * *", wantErr: true},
		{name: "hour out of range", expr: "0 24 * * *", wantErr: true},
		{name: "wildcard hour", expr: "0 * * * *", wantErr: true},
		{name: "weekly", expr: "0 2 * * 1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDaily(tt.expr)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSchedule)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDaily_Next(t *testing.T) {
	d := Daily{Hour: 2, Minute: 30}

	before := time.Date(2026, 1, 15, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 15, 2, 30, 0, 0, time.UTC), d.Next(before))

	at := time.Date(2026, 1, 15, 2, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 16, 2, 30, 0, 0, time.UTC), d.Next(at))

	assert.True(t, d.Due(at.Add(45*time.Second)))
	assert.False(t, d.Due(at.Add(time.Minute)))
	assert.Equal(t, "30 2 * * *", d.String())
}

func newTestBeat(client redis.UniversalClient, now time.Time) (*Beat, *MockScheduler) {
	s := new(MockScheduler)
	b := NewBeat(BeatConfig{}, s, client, zap.NewNop(), Entry{
		Name:     "search-sync",
		Schedule: Daily{Hour: 3},
		Function: task.FunctionSyncApp,
		Args:     task.SyncAppArgs{App: "company"},
		Options:  task.Options{Queue: task.QueueLongRunning},
	})
	b.now = func() time.Time { return now }
	return b, s
}

func TestBeat_TickEnqueuesOncePerDay(t *testing.T) {
	ctx := context.Background()
	b, s := newTestBeat(nil, time.Date(2026, 3, 1, 3, 0, 10, 0, time.UTC))
	s.On("Schedule", ctx, task.FunctionSyncApp, task.SyncAppArgs{App: "company"}, task.Options{Queue: task.QueueLongRunning}).
		Return("job-1", nil)

	b.Tick(ctx)
	b.Tick(ctx)

	s.AssertNumberOfCalls(t, "Schedule", 1)
}

func TestBeat_TickSkipsWhenNotDue(t *testing.T) {
	b, s := newTestBeat(nil, time.Date(2026, 3, 1, 4, 0, 0, 0, time.UTC))

	b.Tick(context.Background())

	s.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBeat_ClaimIsSharedBetweenReplicas(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	now := time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)

	first, s1 := newTestBeat(client, now)
	second, s2 := newTestBeat(client, now)
	s1.On("Schedule", ctx, mock.Anything, mock.Anything, mock.Anything).Return("job-1", nil)

	first.Tick(ctx)
	second.Tick(ctx)

	s1.AssertNumberOfCalls(t, "Schedule", 1)
	s2.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.True(t, mr.Exists("datahub:beat:search-sync:2026-03-01"))
}

func TestBeat_ScheduleErrorIsLogged(t *testing.T) {
	ctx := context.Background()
	b, s := newTestBeat(nil, time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC))
	s.On("Schedule", ctx, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("redis down"))

	assert.NotPanics(t, func() { b.Tick(ctx) })
}

func TestBeat_StartStop(t *testing.T) {
	b, _ := newTestBeat(nil, time.Now())

	require.NoError(t, b.Start(context.Background()))
	require.NoError(t, b.Start(context.Background()))
	require.NoError(t, b.Stop(context.Background()))
	require.NoError(t, b.Stop(context.Background()))
}
