// Package exportwin implements the use cases for export wins and the
// customer confirmation emails sent about them.
package exportwin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/datahub/backend/internal/application/audit"
	"github.com/datahub/backend/internal/application/task"
	"github.com/datahub/backend/internal/domain/exportwin"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/domain/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Messages returned when a customer email cannot be sent
const (
	MessageAlreadyConfirmed = "The customer has already responded to this win."
	MessageNoContact        = "This win has no company contact to email."
)

// EmailMaxRetries is the number of attempts made to send a customer email
const EmailMaxRetries = 5

// Service handles export win use cases
type Service struct {
	tx        shared.TransactionManager
	wins      exportwin.Repository
	scheduler task.Scheduler
	recorder  *audit.Recorder
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a Service
func NewService(
	tx shared.TransactionManager,
	wins exportwin.Repository,
	scheduler task.Scheduler,
	recorder *audit.Recorder,
	logger *zap.Logger,
) *Service {
	return &Service{
		tx:        tx,
		wins:      wins,
		scheduler: scheduler,
		recorder:  recorder,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List lists the wins visible to the adviser
func (s *Service) List(ctx context.Context, adviserID uuid.UUID, filter shared.Filter) (*shared.Paginated[exportwin.Win], error) {
	items, total, err := s.wins.FindForAdviser(ctx, adviserID, filter.Normalize())
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(items, total)
	return &result, nil
}

// Get retrieves a win visible to the adviser
func (s *Service) Get(ctx context.Context, id, adviserID uuid.UUID) (*exportwin.Win, error) {
	w, err := s.wins.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !w.IsVisibleTo(adviserID) {
		return nil, shared.ErrNotFound
	}
	return w, nil
}

// Create validates data and creates a win reported by the adviser
func (s *Service) Create(ctx context.Context, data map[string]any, adviserID uuid.UUID) (*exportwin.Win, error) {
	by := &adviserID
	w := exportwin.NewWin(adviserID, by)
	if err := validation.Apply(w, true, data, exportwin.ReadOnlyFields, exportwin.Validator()); err != nil {
		return nil, err
	}
	w.RecalculateTotals()
	if err := s.save(ctx, w, by); err != nil {
		return nil, err
	}
	return w, nil
}

// Update applies a partial update to a win and recalculates its totals
func (s *Service) Update(ctx context.Context, id uuid.UUID, data map[string]any, adviserID uuid.UUID) (*exportwin.Win, error) {
	w, err := s.Get(ctx, id, adviserID)
	if err != nil {
		return nil, err
	}
	by := &adviserID
	if err := validation.Apply(w, false, data, exportwin.ReadOnlyFields, exportwin.Validator()); err != nil {
		return nil, err
	}
	w.RecalculateTotals()
	w.Touch(by)
	if err := s.save(ctx, w, by); err != nil {
		return nil, err
	}
	return w, nil
}

// ResendCustomerEmail issues a new response token to the first company
// contact of the win and enqueues the email asking them to confirm it
func (s *Service) ResendCustomerEmail(ctx context.Context, id, adviserID uuid.UUID) (*exportwin.Win, error) {
	w, err := s.Get(ctx, id, adviserID)
	if err != nil {
		return nil, err
	}
	if w.IsComplete() {
		return nil, shared.NewNonFieldError(MessageAlreadyConfirmed)
	}
	if len(w.CompanyContactIDs) == 0 || w.CustomerResponse == nil {
		return nil, shared.NewNonFieldError(MessageNoContact)
	}

	now := s.now()
	contactID := w.CompanyContactIDs[0]
	token := exportwin.NewCustomerResponseToken(w.CustomerResponse.ID, contactID, now)
	by := &adviserID
	w.MarkSent(now)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.wins.ReplaceTokens(ctx, token, now); err != nil {
			return err
		}
		if err := s.wins.Save(ctx, w); err != nil {
			return err
		}
		return s.recorder.Record(ctx, exportwin.AggregateType, w.ID, w, by, "Customer email resent")
	})
	if err != nil {
		return nil, err
	}
	s.recorder.Saved(ctx, exportwin.AggregateType, w.ID)

	_, err = s.scheduler.Schedule(ctx, task.FunctionSendExportWinEmail, task.ExportWinEmailArgs{
		WinID:     w.ID.String(),
		ContactID: contactID.String(),
		TokenID:   token.ID.String(),
	}, task.Options{
		Queue:        task.QueueShortRunning,
		MaxRetries:   EmailMaxRetries,
		RetryBackoff: 1,
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// HandleSendCustomerEmail is the job that delivers a customer email. Delivery
// is recorded in the log.
func (s *Service) HandleSendCustomerEmail(ctx context.Context, args json.RawMessage) error {
	a, err := task.Decode[task.ExportWinEmailArgs](args)
	if err != nil {
		return fmt.Errorf("invalid export win email arguments: %w", err)
	}
	id, err := uuid.Parse(a.WinID)
	if err != nil {
		return fmt.Errorf("invalid export win id %q: %w", a.WinID, err)
	}
	w, err := s.wins.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("Export win no longer exists", zap.String("win_id", a.WinID))
		return nil
	}
	if err != nil {
		return err
	}
	s.logger.Info("Export win customer email sent",
		zap.String("win_id", w.ID.String()),
		zap.String("contact_id", a.ContactID),
		zap.String("token_id", a.TokenID),
		zap.String("customer_email_address", w.CustomerEmailAddress))
	return nil
}

// Handlers returns the task handlers keyed by function name
func (s *Service) Handlers() map[string]task.Handler {
	return map[string]task.Handler{
		task.FunctionSendExportWinEmail: s.HandleSendCustomerEmail,
	}
}

func (s *Service) save(ctx context.Context, w *exportwin.Win, by *uuid.UUID) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.wins.Save(ctx, w); err != nil {
			return err
		}
		return s.recorder.Record(ctx, exportwin.AggregateType, w.ID, w, by, "")
	})
	if err != nil {
		return err
	}
	s.recorder.Saved(ctx, exportwin.AggregateType, w.ID)
	return nil
}
