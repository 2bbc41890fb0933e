// Package investment implements the use cases for investment projects,
// their propositions and proposition documents.
package investment

import (
	"context"

	"github.com/datahub/backend/internal/application/audit"
	"github.com/datahub/backend/internal/domain/investment"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/domain/validation"
	"github.com/google/uuid"
)

// ProjectService handles investment project use cases
type ProjectService struct {
	tx       shared.TransactionManager
	projects investment.ProjectRepository
	recorder *audit.Recorder
}

// NewProjectService creates a ProjectService
func NewProjectService(tx shared.TransactionManager, projects investment.ProjectRepository, recorder *audit.Recorder) *ProjectService {
	return &ProjectService{
		tx:       tx,
		projects: projects,
		recorder: recorder,
	}
}

// List lists investment projects
func (s *ProjectService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[investment.Project], error) {
	items, total, err := s.projects.FindAll(ctx, filter.Normalize())
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(items, total)
	return &result, nil
}

// Get retrieves an investment project
func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*investment.Project, error) {
	return s.projects.FindByID(ctx, id)
}

// Create validates data and creates a project. The project code is taken
// from the project number sequence in the same transaction.
func (s *ProjectService) Create(ctx context.Context, data map[string]any, by *uuid.UUID) (*investment.Project, error) {
	p := investment.NewProject("", by)
	if err := validation.Apply(p, true, data, investment.ReadOnlyFields, investment.ProjectValidator()); err != nil {
		return nil, err
	}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		number, err := s.projects.NextProjectNumber(ctx)
		if err != nil {
			return err
		}
		p.AssignProjectCode(number)
		if err := s.projects.Save(ctx, p); err != nil {
			return err
		}
		return s.recorder.Record(ctx, investment.AggregateType, p.ID, p, by, "")
	})
	if err != nil {
		return nil, err
	}
	s.recorder.Saved(ctx, investment.AggregateType, p.ID)
	return p, nil
}

// Update applies a partial update to a project
func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, data map[string]any, by *uuid.UUID) (*investment.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validation.Apply(p, false, data, investment.ReadOnlyFields, investment.ProjectValidator()); err != nil {
		return nil, err
	}
	p.Touch(by)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.projects.Save(ctx, p); err != nil {
			return err
		}
		return s.recorder.Record(ctx, investment.AggregateType, p.ID, p, by, "")
	})
	if err != nil {
		return nil, err
	}
	s.recorder.Saved(ctx, investment.AggregateType, p.ID)
	return p, nil
}
