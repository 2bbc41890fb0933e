package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/datahub/backend/internal/application/task"
	"github.com/datahub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrUnknownApp is returned for app names that are not searchable
var ErrUnknownApp = shared.NewNotFoundError("Unknown search app.")

// Service syncs records into the search engine and runs searches
type Service struct {
	engine    Engine
	loaders   map[string]Loader
	scheduler task.Scheduler
	logger    *zap.Logger
}

// NewService creates a search service. loaders maps app names to their loaders.
func NewService(engine Engine, loaders map[string]Loader, scheduler task.Scheduler, logger *zap.Logger) *Service {
	return &Service{
		engine:    engine,
		loaders:   loaders,
		scheduler: scheduler,
		logger:    logger,
	}
}

func (s *Service) loader(app string) (Loader, error) {
	l, ok := s.loaders[app]
	if !ok {
		return nil, ErrUnknownApp
	}
	return l, nil
}

// ScheduleSync enqueues a sync of one record on the short-running queue
func (s *Service) ScheduleSync(ctx context.Context, app, id string) error {
	if _, err := s.loader(app); err != nil {
		return err
	}
	_, err := s.scheduler.Schedule(ctx, task.FunctionSyncObject, task.SyncObjectArgs{App: app, ID: id}, task.Options{
		Queue:        task.QueueShortRunning,
		RetryBackoff: 1,
	})
	return err
}

// ScheduleDelete enqueues removal of documents from an app's index
func (s *Service) ScheduleDelete(ctx context.Context, app string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.scheduler.Schedule(ctx, task.FunctionDeleteSearchDocument, task.DeleteSearchDocumentsArgs{App: app, IDs: ids}, task.Options{
		Queue:        task.QueueShortRunning,
		RetryBackoff: 1,
	})
	return err
}

// SyncObject indexes the current state of one record. A record that no
// longer exists is removed from the index.
func (s *Service) SyncObject(ctx context.Context, app, id string) error {
	l, err := s.loader(app)
	if err != nil {
		return err
	}
	doc, err := l.Load(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return s.engine.Delete(ctx, app, []string{id})
	}
	if err != nil {
		return fmt.Errorf("failed to load %s %s: %w", app, id, err)
	}
	return s.engine.Index(ctx, app, []Document{doc})
}

// SyncApp indexes every record of an app in batches and returns the number indexed
func (s *Service) SyncApp(ctx context.Context, app string, batchSize int) (int, error) {
	l, err := s.loader(app)
	if err != nil {
		return 0, err
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	total := 0
	err = l.Iterate(ctx, batchSize, func(docs []Document) error {
		if len(docs) == 0 {
			return nil
		}
		if err := s.engine.Index(ctx, app, docs); err != nil {
			return err
		}
		total += len(docs)
		s.logger.Debug("Indexed search batch", zap.String("app", app), zap.Int("count", len(docs)), zap.Int("total", total))
		return nil
	})
	if err != nil {
		return total, fmt.Errorf("failed to sync %s: %w", app, err)
	}
	s.logger.Info("Search app synced", zap.String("app", app), zap.Int("documents", total))
	return total, nil
}

// SyncApps syncs the given apps, or every app when none are given
func (s *Service) SyncApps(ctx context.Context, apps []string, batchSize int) error {
	if len(apps) == 0 {
		apps = Apps()
	}
	for _, app := range apps {
		if _, err := s.SyncApp(ctx, app, batchSize); err != nil {
			return err
		}
	}
	return nil
}

// CreateIndexes creates the index of every app
func (s *Service) CreateIndexes(ctx context.Context) error {
	for _, app := range Apps() {
		if err := s.engine.CreateIndex(ctx, app); err != nil {
			return fmt.Errorf("failed to create %s index: %w", app, err)
		}
	}
	return nil
}

// DeleteDocuments removes documents from an app's index
func (s *Service) DeleteDocuments(ctx context.Context, app string, ids []string) error {
	if _, err := s.loader(app); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	return s.engine.Delete(ctx, app, ids)
}

// Search runs a filtered search in one app
func (s *Service) Search(ctx context.Context, app string, q Query) (*Result, error) {
	if _, err := s.loader(app); err != nil {
		return nil, err
	}
	q.Offset, q.Limit = clip(q.Offset, q.Limit)
	return s.engine.Search(ctx, app, q)
}

// BasicSearch searches every app, returning results of entity and match counts per app
func (s *Service) BasicSearch(ctx context.Context, entity string, q Query) (*BasicResult, error) {
	if entity == "" {
		entity = AppCompany
	}
	if _, err := s.loader(entity); err != nil {
		return nil, err
	}
	q.Offset, q.Limit = clip(q.Offset, q.Limit)
	return s.engine.BasicSearch(ctx, entity, q)
}

// clip keeps offset+limit within MaxResults
func clip(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = shared.DefaultPageSize
	}
	limit = min(limit, MaxResults-offset)
	return offset, max(limit, 0)
}

// HandleSyncObject runs a sync_object job
func (s *Service) HandleSyncObject(ctx context.Context, args json.RawMessage) error {
	a, err := task.Decode[task.SyncObjectArgs](args)
	if err != nil {
		return err
	}
	return s.SyncObject(ctx, a.App, a.ID)
}

// HandleSyncApp runs a sync_app job
func (s *Service) HandleSyncApp(ctx context.Context, args json.RawMessage) error {
	a, err := task.Decode[task.SyncAppArgs](args)
	if err != nil {
		return err
	}
	_, err = s.SyncApp(ctx, a.App, a.BatchSize)
	return err
}

// Handlers returns the job handlers of the search service keyed by function name
func (s *Service) Handlers() map[string]task.Handler {
	return map[string]task.Handler{
		task.FunctionSyncObject:           s.HandleSyncObject,
		task.FunctionSyncApp:              s.HandleSyncApp,
		task.FunctionDeleteSearchDocument: s.HandleDeleteDocuments,
	}
}

// HandleDeleteDocuments runs a delete_search_document job
func (s *Service) HandleDeleteDocuments(ctx context.Context, args json.RawMessage) error {
	a, err := task.Decode[task.DeleteSearchDocumentsArgs](args)
	if err != nil {
		return err
	}
	return s.DeleteDocuments(ctx, a.App, a.IDs)
}
