// Package interaction implements the use cases for interactions and service deliveries
package interaction

import (
	"context"
	"maps"
	"strings"

	"github.com/datahub/backend/internal/application/audit"
	"github.com/datahub/backend/internal/domain/adviser"
	"github.com/datahub/backend/internal/domain/interaction"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/domain/validation"
	"github.com/google/uuid"
)

// MessageReasonRequired is returned when archiving without a reason
const MessageReasonRequired = "This field is required."

// Service handles interaction use cases
type Service struct {
	tx           shared.TransactionManager
	interactions interaction.Repository
	advisers     adviser.Repository
	lookup       interaction.Lookup
	recorder     *audit.Recorder
	opts         interaction.Options
}

// NewService creates a Service
func NewService(
	tx shared.TransactionManager,
	interactions interaction.Repository,
	advisers adviser.Repository,
	lookup interaction.Lookup,
	recorder *audit.Recorder,
	opts interaction.Options,
) *Service {
	return &Service{
		tx:           tx,
		interactions: interactions,
		advisers:     advisers,
		lookup:       lookup,
		recorder:     recorder,
		opts:         opts,
	}
}

// List lists interactions
func (s *Service) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[interaction.Interaction], error) {
	items, total, err := s.interactions.FindAll(ctx, filter.Normalize())
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(items, total)
	return &result, nil
}

// Get retrieves an interaction
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*interaction.Interaction, error) {
	return s.interactions.FindByID(ctx, id)
}

// Create validates data and creates an interaction
func (s *Service) Create(ctx context.Context, data map[string]any, by *uuid.UUID) (*interaction.Interaction, error) {
	var created *interaction.Interaction
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.CreateWithinTransaction(ctx, data, by)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recorder.Saved(ctx, interaction.AggregateType, created.ID)
	return created, nil
}

// CreateWithinTransaction validates data and saves a new interaction using
// the transaction carried by ctx. It does not announce the new record.
func (s *Service) CreateWithinTransaction(ctx context.Context, data map[string]any, by *uuid.UUID) (*interaction.Interaction, error) {
	data = maps.Clone(data)
	if data == nil {
		data = map[string]any{}
	}
	interaction.ApplyCreateDefaults(data)

	i := interaction.New(interaction.KindInteraction, by)
	if err := validation.Apply(i, true, data, interaction.ReadOnlyFields, interaction.Validator(ctx, s.lookup, s.opts)); err != nil {
		return nil, err
	}
	if err := s.setParticipantTeams(ctx, i, nil); err != nil {
		return nil, err
	}
	if err := s.interactions.Save(ctx, i); err != nil {
		return nil, err
	}
	if err := s.recorder.Record(ctx, interaction.AggregateType, i.ID, i, by, ""); err != nil {
		return nil, err
	}
	return i, nil
}

// Update applies a partial update to an interaction. Participants already on
// the interaction keep the team recorded when they were added.
func (s *Service) Update(ctx context.Context, id uuid.UUID, data map[string]any, by *uuid.UUID) (*interaction.Interaction, error) {
	i, err := s.interactions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := append([]interaction.DITParticipant(nil), i.DITParticipants...)
	if err := validation.Apply(i, false, data, interaction.ReadOnlyFields, interaction.Validator(ctx, s.lookup, s.opts)); err != nil {
		return nil, err
	}
	if _, ok := data["dit_participants"]; ok {
		if err := s.setParticipantTeams(ctx, i, previous); err != nil {
			return nil, err
		}
	}
	i.Touch(by)
	if err := s.save(ctx, i, by); err != nil {
		return nil, err
	}
	return i, nil
}

// Archive archives an interaction. A reason is required.
func (s *Service) Archive(ctx context.Context, id uuid.UUID, reason string, by *uuid.UUID) (*interaction.Interaction, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, shared.NewFieldError("reason", MessageReasonRequired)
	}
	i, err := s.interactions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := i.Archive(by, reason); err != nil {
		return nil, err
	}
	i.Touch(by)
	if err := s.save(ctx, i, by); err != nil {
		return nil, err
	}
	return i, nil
}

// Unarchive restores an archived interaction
func (s *Service) Unarchive(ctx context.Context, id uuid.UUID, by *uuid.UUID) (*interaction.Interaction, error) {
	i, err := s.interactions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	i.Unarchive()
	i.Touch(by)
	if err := s.save(ctx, i, by); err != nil {
		return nil, err
	}
	return i, nil
}

func (s *Service) save(ctx context.Context, i *interaction.Interaction, by *uuid.UUID) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.interactions.Save(ctx, i); err != nil {
			return err
		}
		return s.recorder.Record(ctx, interaction.AggregateType, i.ID, i, by, "")
	})
	if err != nil {
		return err
	}
	s.recorder.Saved(ctx, interaction.AggregateType, i.ID)
	return nil
}

// setParticipantTeams looks up the current team of each participating adviser
func (s *Service) setParticipantTeams(ctx context.Context, i *interaction.Interaction, previous []interaction.DITParticipant) error {
	ids := i.AdviserIDs()
	if len(ids) == 0 {
		return nil
	}
	advisers, err := s.advisers.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	teams := make(map[uuid.UUID]*uuid.UUID, len(advisers))
	for _, a := range advisers {
		teams[a.ID] = a.DITTeamID
	}
	i.SetParticipantTeams(previous, teams)
	return nil
}
