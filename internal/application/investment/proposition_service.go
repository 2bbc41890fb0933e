package investment

import (
	"context"
	"strings"

	"github.com/datahub/backend/internal/application/audit"
	"github.com/datahub/backend/internal/domain/investment"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MessageRequired is returned for missing request fields
const MessageRequired = "This field is required."

// CreatePropositionRequest is the body of a proposition create request
type CreatePropositionRequest struct {
	AdviserID uuid.UUID   `json:"adviser"`
	Deadline  shared.Date `json:"deadline"`
	Name      string      `json:"name"`
	Scope     string      `json:"scope"`
}

// PropositionService handles proposition use cases
type PropositionService struct {
	tx           shared.TransactionManager
	projects     investment.ProjectRepository
	propositions investment.PropositionRepository
	recorder     *audit.Recorder
}

// NewPropositionService creates a PropositionService
func NewPropositionService(
	tx shared.TransactionManager,
	projects investment.ProjectRepository,
	propositions investment.PropositionRepository,
	recorder *audit.Recorder,
) *PropositionService {
	return &PropositionService{
		tx:           tx,
		projects:     projects,
		propositions: propositions,
		recorder:     recorder,
	}
}

// List lists the propositions of a project
func (s *PropositionService) List(ctx context.Context, projectID uuid.UUID, filter shared.Filter) (*shared.Paginated[investment.Proposition], error) {
	if err := s.checkProject(ctx, projectID); err != nil {
		return nil, err
	}
	filter = filter.Normalize()
	filter.Filters["investment_project_id"] = projectID
	items, total, err := s.propositions.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(items, total)
	return &result, nil
}

// Get retrieves a proposition of a project
func (s *PropositionService) Get(ctx context.Context, projectID, id uuid.UUID) (*investment.Proposition, error) {
	if err := s.checkProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.propositions.FindByID(ctx, projectID, id)
}

// Create creates an ongoing proposition within a project
func (s *PropositionService) Create(ctx context.Context, projectID uuid.UUID, req CreatePropositionRequest, by *uuid.UUID) (*investment.Proposition, error) {
	if err := s.checkProject(ctx, projectID); err != nil {
		return nil, err
	}
	p, err := investment.NewProposition(projectID, req.AdviserID, req.Deadline, req.Name, req.Scope, by)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, p, by); err != nil {
		return nil, err
	}
	return p, nil
}

// Complete completes a proposition. At least one of its documents must have passed scanning.
func (s *PropositionService) Complete(ctx context.Context, projectID, id uuid.UUID, details string, by *uuid.UUID) (*investment.Proposition, error) {
	p, err := s.findForStatusChange(ctx, projectID, id, details)
	if err != nil {
		return nil, err
	}
	scanned, err := s.propositions.CountScannedDocuments(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if err := p.Complete(by, details, scanned); err != nil {
		return nil, err
	}
	if err := s.save(ctx, p, by); err != nil {
		return nil, err
	}
	return p, nil
}

// Abandon abandons a proposition
func (s *PropositionService) Abandon(ctx context.Context, projectID, id uuid.UUID, details string, by *uuid.UUID) (*investment.Proposition, error) {
	p, err := s.findForStatusChange(ctx, projectID, id, details)
	if err != nil {
		return nil, err
	}
	if err := p.Abandon(by, details); err != nil {
		return nil, err
	}
	if err := s.save(ctx, p, by); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PropositionService) findForStatusChange(ctx context.Context, projectID, id uuid.UUID, details string) (*investment.Proposition, error) {
	if strings.TrimSpace(details) == "" {
		return nil, shared.NewFieldError("details", MessageRequired)
	}
	return s.Get(ctx, projectID, id)
}

func (s *PropositionService) checkProject(ctx context.Context, projectID uuid.UUID) error {
	exists, err := s.projects.Exists(ctx, projectID)
	if err != nil {
		return err
	}
	if !exists {
		return investment.ErrProjectNotFound
	}
	return nil
}

func (s *PropositionService) save(ctx context.Context, p *investment.Proposition, by *uuid.UUID) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.propositions.Save(ctx, p); err != nil {
			return err
		}
		return s.recorder.Record(ctx, investment.PropositionAggregateType, p.ID, p, by, "")
	})
	if err != nil {
		return err
	}
	s.recorder.Saved(ctx, investment.PropositionAggregateType, p.ID)
	return nil
}
