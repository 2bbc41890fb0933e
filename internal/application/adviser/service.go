// Package adviser implements the use cases for advisers
package adviser

import (
	"context"
	"errors"
	"strings"

	"github.com/datahub/backend/internal/application/audit"
	appauth "github.com/datahub/backend/internal/application/auth"
	"github.com/datahub/backend/internal/domain/adviser"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MessageEmailTaken is returned when the email already belongs to an adviser
const MessageEmailTaken = "An adviser with this email already exists."

// Service handles adviser use cases
type Service struct {
	tx       shared.TransactionManager
	advisers adviser.Repository
	recorder *audit.Recorder
}

// NewService creates a Service
func NewService(tx shared.TransactionManager, advisers adviser.Repository, recorder *audit.Recorder) *Service {
	return &Service{
		tx:       tx,
		advisers: advisers,
		recorder: recorder,
	}
}

// List lists advisers
func (s *Service) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[adviser.Adviser], error) {
	items, total, err := s.advisers.FindAll(ctx, filter.Normalize())
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(items, total)
	return &result, nil
}

// Get retrieves an adviser
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*adviser.Adviser, error) {
	return s.advisers.FindByID(ctx, id)
}

// CreateSuperuser creates an active staff adviser who can log in with password
func (s *Service) CreateSuperuser(ctx context.Context, email, password, firstName, lastName string) (*adviser.Adviser, error) {
	if strings.TrimSpace(password) == "" {
		return nil, shared.NewFieldError("password", "This field is required.")
	}
	a, err := adviser.NewAdviser(email, firstName, lastName)
	if err != nil {
		return nil, err
	}
	existing, err := s.advisers.FindByEmail(ctx, a.Email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewFieldError("email", MessageEmailTaken)
	}

	hash, err := appauth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	a.PasswordHash = hash
	a.IsStaff = true
	a.IsSuperuser = true

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.advisers.Save(ctx, a); err != nil {
			return err
		}
		return s.recorder.Record(ctx, adviser.AggregateType, a.ID, a, nil, "")
	})
	if err != nil {
		return nil, err
	}
	s.recorder.Saved(ctx, adviser.AggregateType, a.ID)
	return a, nil
}
