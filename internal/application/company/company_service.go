// Package company implements the use cases for companies, their contacts and
// referrals between advisers.
package company

import (
	"context"
	"fmt"
	"strings"

	"github.com/datahub/backend/internal/application/audit"
	"github.com/datahub/backend/internal/domain/company"
	"github.com/datahub/backend/internal/domain/exportwin"
	"github.com/datahub/backend/internal/domain/interaction"
	"github.com/datahub/backend/internal/domain/investment"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/domain/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessageReasonRequired is returned when archiving without a reason
const MessageReasonRequired = "This field is required."

// MergeComment is recorded against the versions written by a merge
const MergeComment = "Company merged"

// Repositories groups the repositories holding records that point at companies
type Repositories struct {
	Companies    company.Repository
	Contacts     company.ContactRepository
	Referrals    company.ReferralRepository
	Interactions interaction.Repository
	Projects     investment.ProjectRepository
	Wins         exportwin.Repository
}

// CompanyService handles company use cases
type CompanyService struct {
	tx       shared.TransactionManager
	repos    Repositories
	recorder *audit.Recorder
	logger   *zap.Logger
}

// NewCompanyService creates a CompanyService
func NewCompanyService(tx shared.TransactionManager, repos Repositories, recorder *audit.Recorder, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		tx:       tx,
		repos:    repos,
		recorder: recorder,
		logger:   logger,
	}
}

// List lists companies
func (s *CompanyService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[company.Company], error) {
	items, total, err := s.repos.Companies.FindAll(ctx, filter.Normalize())
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(items, total)
	return &result, nil
}

// Get retrieves a company
func (s *CompanyService) Get(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	return s.repos.Companies.FindByID(ctx, id)
}

// Create validates data and creates a company
func (s *CompanyService) Create(ctx context.Context, data map[string]any, by *uuid.UUID) (*company.Company, error) {
	c := company.NewCompany("", by)
	if err := validation.Apply(c, true, data, company.ReadOnlyFields, company.Validator(false)); err != nil {
		return nil, err
	}
	if err := s.save(ctx, c, by, ""); err != nil {
		return nil, err
	}
	return c, nil
}

// Update applies a partial update to a company
func (s *CompanyService) Update(ctx context.Context, id uuid.UUID, data map[string]any, by *uuid.UUID) (*company.Company, error) {
	c, err := s.repos.Companies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validation.Apply(c, false, data, company.ReadOnlyFields, company.Validator(true)); err != nil {
		return nil, err
	}
	c.Touch(by)
	if err := s.save(ctx, c, by, ""); err != nil {
		return nil, err
	}
	return c, nil
}

// Archive archives a company. A reason is required.
func (s *CompanyService) Archive(ctx context.Context, id uuid.UUID, reason string, by *uuid.UUID) (*company.Company, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, shared.NewFieldError("reason", MessageReasonRequired)
	}
	c, err := s.repos.Companies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Archive(by, reason); err != nil {
		return nil, err
	}
	c.Touch(by)
	if err := s.save(ctx, c, by, ""); err != nil {
		return nil, err
	}
	return c, nil
}

// Unarchive restores an archived company
func (s *CompanyService) Unarchive(ctx context.Context, id uuid.UUID, by *uuid.UUID) (*company.Company, error) {
	c, err := s.repos.Companies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Unarchive()
	c.Touch(by)
	if err := s.save(ctx, c, by, ""); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CompanyService) save(ctx context.Context, c *company.Company, by *uuid.UUID, comment string) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repos.Companies.Save(ctx, c); err != nil {
			return err
		}
		return s.recorder.Record(ctx, company.AggregateType, c.ID, c, by, comment)
	})
	if err != nil {
		return err
	}
	s.recorder.Saved(ctx, company.AggregateType, c.ID)
	return nil
}

// MergeResult counts the records moved by a merge
type MergeResult struct {
	Contacts     int64 `json:"contacts"`
	Interactions int64 `json:"interactions"`
	Referrals    int64 `json:"referrals"`
	Projects     int64 `json:"investment_projects"`
	ExportWins   int64 `json:"export_wins"`
}

// Merge moves every record of the source company to the target and marks the
// source as transferred to the target as a duplicate
func (s *CompanyService) Merge(ctx context.Context, sourceID, targetID uuid.UUID, by *uuid.UUID) (*MergeResult, error) {
	if sourceID == targetID {
		return nil, company.ErrInvalidMergeSource
	}
	source, err := s.repos.Companies.FindByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	target, err := s.repos.Companies.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	subsidiaries, err := s.repos.Companies.CountSubsidiaries(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if !source.IsValidMergeSource(subsidiaries) {
		return nil, company.ErrInvalidMergeSource
	}
	if !target.IsValidMergeTarget() {
		return nil, company.ErrInvalidMergeTarget
	}

	result := &MergeResult{}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		moves := []struct {
			name  string
			count *int64
			fn    func(ctx context.Context, from, to uuid.UUID) (int64, error)
		}{
			{"contacts", &result.Contacts, s.repos.Contacts.ReassignCompany},
			{"interactions", &result.Interactions, s.repos.Interactions.ReassignCompany},
			{"referrals", &result.Referrals, s.repos.Referrals.ReassignCompany},
			{"investment projects", &result.Projects, s.repos.Projects.ReassignCompany},
			{"export wins", &result.ExportWins, s.repos.Wins.ReassignCompany},
		}
		for _, m := range moves {
			n, err := m.fn(ctx, sourceID, targetID)
			if err != nil {
				return fmt.Errorf("failed to move %s: %w", m.name, err)
			}
			*m.count = n
		}

		if err := source.MarkAsTransferred(target, company.TransferReasonDuplicate, by); err != nil {
			return err
		}
		if err := s.repos.Companies.Save(ctx, source); err != nil {
			return err
		}
		return s.recorder.Record(ctx, company.AggregateType, source.ID, source, by, MergeComment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Companies merged",
		zap.String("source_id", sourceID.String()),
		zap.String("target_id", targetID.String()),
		zap.Int64("contacts", result.Contacts),
		zap.Int64("interactions", result.Interactions),
		zap.Int64("referrals", result.Referrals),
		zap.Int64("investment_projects", result.Projects),
		zap.Int64("export_wins", result.ExportWins),
	)
	s.recorder.Saved(ctx, company.AggregateType, source.ID, target.ID)
	return result, nil
}
