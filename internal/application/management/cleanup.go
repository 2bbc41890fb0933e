package management

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/datahub/backend/internal/application/audit"
	"github.com/datahub/backend/internal/domain/company"
	"github.com/datahub/backend/internal/domain/interaction"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Models supported by delete-old-records
const (
	ModelInteraction = "interaction"
	ModelCompany     = "company"
)

// errSimulated rolls back a simulated run
var errSimulated = errors.New("simulated run rolled back")

// ErrUnknownModel is returned for models that cannot be cleaned up
var ErrUnknownModel = shared.NewBadRequestError("Model must be one of: interaction, company.")

// archivedStore is the part of a repository used to remove old archived records
type archivedStore interface {
	archivedBefore(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
	isReferenced(ctx context.Context, id uuid.UUID) (bool, error)
	delete(ctx context.Context, id uuid.UUID) error
}

type interactionStore struct{ repo interaction.Repository }

func (s interactionStore) archivedBefore(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	items, err := s.repo.FindArchivedBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, i := range items {
		ids = append(ids, i.ID)
	}
	return ids, nil
}

func (s interactionStore) isReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.IsReferenced(ctx, id)
}

func (s interactionStore) delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

type companyStore struct{ repo company.Repository }

func (s companyStore) archivedBefore(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	items, err := s.repo.FindArchivedBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, c := range items {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (s companyStore) isReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.IsReferenced(ctx, id)
}

func (s companyStore) delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Cleaner deletes archived records that nothing references any more
type Cleaner struct {
	tx       shared.TransactionManager
	stores   map[string]archivedStore
	recorder *audit.Recorder
	logger   *zap.Logger
}

// NewCleaner creates a Cleaner
func NewCleaner(
	tx shared.TransactionManager,
	interactions interaction.Repository,
	companies company.Repository,
	recorder *audit.Recorder,
	logger *zap.Logger,
) *Cleaner {
	return &Cleaner{
		tx: tx,
		stores: map[string]archivedStore{
			ModelInteraction: interactionStore{repo: interactions},
			ModelCompany:     companyStore{repo: companies},
		},
		recorder: recorder,
		logger:   logger,
	}
}

// DeleteOldRecords deletes unreferenced records of model archived before the
// cutoff. All deletions share one transaction, which is rolled back when
// simulate is set.
func (c *Cleaner) DeleteOldRecords(ctx context.Context, model string, before time.Time, simulate bool) (*Summary, error) {
	store, ok := c.stores[model]
	if !ok {
		return nil, ErrUnknownModel
	}
	ids, err := store.archivedBefore(ctx, before)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived %s records: %w", model, err)
	}

	summary := &Summary{}
	var deleted []uuid.UUID
	err = c.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, id := range ids {
			referenced, err := store.isReferenced(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to check references of %s %s: %w", model, id, err)
			}
			if referenced {
				continue
			}
			if err := store.delete(ctx, id); err != nil {
				return fmt.Errorf("failed to delete %s %s: %w", model, id, err)
			}
			deleted = append(deleted, id)
		}
		if simulate {
			return errSimulated
		}
		return nil
	})
	switch {
	case errors.Is(err, errSimulated):
		summary.Succeeded = len(deleted)
		c.logger.Info("Simulated deletion of old records",
			zap.String("model", model),
			zap.Int("count", len(deleted)),
		)
		return summary, nil
	case err != nil:
		summary.Failed = len(ids)
		return summary, err
	}

	summary.Succeeded = len(deleted)
	c.recorder.Deleted(ctx, model, deleted...)
	c.logger.Info("Deleted old records",
		zap.String("model", model),
		zap.Int("count", len(deleted)),
		zap.Time("before", before),
	)
	return summary, nil
}
