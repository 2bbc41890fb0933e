package company

import (
	"context"

	"github.com/datahub/backend/internal/application/audit"
	"github.com/datahub/backend/internal/domain/company"
	"github.com/datahub/backend/internal/domain/interaction"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CreateReferralRequest holds the fields of a new referral
type CreateReferralRequest struct {
	CompanyID   uuid.UUID  `json:"company"`
	ContactID   *uuid.UUID `json:"contact"`
	RecipientID uuid.UUID  `json:"recipient"`
	Subject     string     `json:"subject"`
	Notes       string     `json:"notes"`
}

// InteractionCreator creates interactions inside a caller's transaction
type InteractionCreator interface {
	// CreateWithinTransaction validates data and saves a new interaction
	// without announcing it. The caller announces it after committing.
	CreateWithinTransaction(ctx context.Context, data map[string]any, by *uuid.UUID) (*interaction.Interaction, error)
}

// ReferralService handles company referral use cases
type ReferralService struct {
	tx           shared.TransactionManager
	referrals    company.ReferralRepository
	interactions InteractionCreator
	recorder     *audit.Recorder
}

// NewReferralService creates a ReferralService
func NewReferralService(tx shared.TransactionManager, referrals company.ReferralRepository, interactions InteractionCreator, recorder *audit.Recorder) *ReferralService {
	return &ReferralService{
		tx:           tx,
		referrals:    referrals,
		interactions: interactions,
		recorder:     recorder,
	}
}

// List lists the referrals the adviser sent or received
func (s *ReferralService) List(ctx context.Context, adviserID uuid.UUID, filter shared.Filter) (*shared.Paginated[company.Referral], error) {
	items, total, err := s.referrals.FindForAdviser(ctx, adviserID, filter.Normalize())
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(items, total)
	return &result, nil
}

// Get retrieves a referral the adviser sent or received.
// Other referrals are reported as not found.
func (s *ReferralService) Get(ctx context.Context, id, adviserID uuid.UUID) (*company.Referral, error) {
	r, err := s.referrals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.IsVisibleTo(adviserID) {
		return nil, shared.ErrNotFound
	}
	return r, nil
}

// Create sends a referral from the adviser
func (s *ReferralService) Create(ctx context.Context, req CreateReferralRequest, by *uuid.UUID) (*company.Referral, error) {
	r, err := company.NewReferral(req.CompanyID, req.RecipientID, req.Subject, by)
	if err != nil {
		return nil, err
	}
	r.ContactID = req.ContactID
	r.Notes = req.Notes
	if err := s.referrals.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Complete records the outcome of a referral as a new interaction and marks
// the referral complete. The interaction defaults to the referral's company.
func (s *ReferralService) Complete(ctx context.Context, id uuid.UUID, interactionData map[string]any, by *uuid.UUID) (*company.Referral, error) {
	var adviserID uuid.UUID
	if by != nil {
		adviserID = *by
	}
	r, err := s.Get(ctx, id, adviserID)
	if err != nil {
		return nil, err
	}
	if err := r.CanComplete(); err != nil {
		return nil, err
	}
	if interactionData == nil {
		interactionData = map[string]any{}
	}
	if _, ok := interactionData["company"]; !ok {
		interactionData["company"] = r.CompanyID.String()
	}

	var created *interaction.Interaction
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if created, err = s.interactions.CreateWithinTransaction(ctx, interactionData, by); err != nil {
			return err
		}
		if err := r.Complete(created.ID, by); err != nil {
			return err
		}
		return s.referrals.Save(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	s.recorder.Saved(ctx, interaction.AggregateType, created.ID)
	return r, nil
}
