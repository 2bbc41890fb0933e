package company

import (
	"context"
	"strings"

	"github.com/datahub/backend/internal/application/audit"
	"github.com/datahub/backend/internal/domain/company"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/domain/validation"
	"github.com/google/uuid"
)

// ContactService handles contact use cases
type ContactService struct {
	tx       shared.TransactionManager
	contacts company.ContactRepository
	recorder *audit.Recorder
}

// NewContactService creates a ContactService
func NewContactService(tx shared.TransactionManager, contacts company.ContactRepository, recorder *audit.Recorder) *ContactService {
	return &ContactService{
		tx:       tx,
		contacts: contacts,
		recorder: recorder,
	}
}

// List lists contacts
func (s *ContactService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[company.Contact], error) {
	items, total, err := s.contacts.FindAll(ctx, filter.Normalize())
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(items, total)
	return &result, nil
}

// Get retrieves a contact
func (s *ContactService) Get(ctx context.Context, id uuid.UUID) (*company.Contact, error) {
	return s.contacts.FindByID(ctx, id)
}

// Create validates data and creates a contact
func (s *ContactService) Create(ctx context.Context, data map[string]any, by *uuid.UUID) (*company.Contact, error) {
	c := company.NewContact("", "", by)
	if err := validation.Apply(c, true, data, company.ContactReadOnlyFields, company.ContactValidator()); err != nil {
		return nil, err
	}
	if err := s.save(ctx, c, by); err != nil {
		return nil, err
	}
	return c, nil
}

// Update applies a partial update to a contact
func (s *ContactService) Update(ctx context.Context, id uuid.UUID, data map[string]any, by *uuid.UUID) (*company.Contact, error) {
	c, err := s.contacts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validation.Apply(c, false, data, company.ContactReadOnlyFields, company.ContactValidator()); err != nil {
		return nil, err
	}
	c.Touch(by)
	if err := s.save(ctx, c, by); err != nil {
		return nil, err
	}
	return c, nil
}

// Archive archives a contact. A reason is required.
func (s *ContactService) Archive(ctx context.Context, id uuid.UUID, reason string, by *uuid.UUID) (*company.Contact, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, shared.NewFieldError("reason", MessageReasonRequired)
	}
	c, err := s.contacts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Archive(by, reason); err != nil {
		return nil, err
	}
	c.Touch(by)
	if err := s.save(ctx, c, by); err != nil {
		return nil, err
	}
	return c, nil
}

// Unarchive restores an archived contact
func (s *ContactService) Unarchive(ctx context.Context, id uuid.UUID, by *uuid.UUID) (*company.Contact, error) {
	c, err := s.contacts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Unarchive()
	c.Touch(by)
	if err := s.save(ctx, c, by); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContactService) save(ctx context.Context, c *company.Contact, by *uuid.UUID) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.contacts.Save(ctx, c); err != nil {
			return err
		}
		return s.recorder.Record(ctx, company.ContactAggregateType, c.ID, c, by, "")
	})
	if err != nil {
		return err
	}
	s.recorder.Saved(ctx, company.ContactAggregateType, c.ID)
	return nil
}
