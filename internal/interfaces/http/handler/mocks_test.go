package handler

import (
	"context"

	companyapp "github.com/datahub/backend/internal/application/company"
	docapp "github.com/datahub/backend/internal/application/document"
	investmentapp "github.com/datahub/backend/internal/application/investment"
	"github.com/datahub/backend/internal/application/search"
	"github.com/datahub/backend/internal/domain/company"
	"github.com/datahub/backend/internal/domain/exportwin"
	"github.com/datahub/backend/internal/domain/investment"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCompanyService is a mock implementation of CompanyService
type MockCompanyService struct {
	mock.Mock
}

func (m *MockCompanyService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[company.Company], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[company.Company]), args.Error(1)
}

func (m *MockCompanyService) Get(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Company), args.Error(1)
}

func (m *MockCompanyService) Create(ctx context.Context, data map[string]any, by *uuid.UUID) (*company.Company, error) {
	args := m.Called(ctx, data, by)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Company), args.Error(1)
}

func (m *MockCompanyService) Update(ctx context.Context, id uuid.UUID, data map[string]any, by *uuid.UUID) (*company.Company, error) {
	args := m.Called(ctx, id, data, by)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Company), args.Error(1)
}

func (m *MockCompanyService) Archive(ctx context.Context, id uuid.UUID, reason string, by *uuid.UUID) (*company.Company, error) {
	args := m.Called(ctx, id, reason, by)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Company), args.Error(1)
}

func (m *MockCompanyService) Unarchive(ctx context.Context, id uuid.UUID, by *uuid.UUID) (*company.Company, error) {
	args := m.Called(ctx, id, by)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Company), args.Error(1)
}

// MockReferralService is a mock implementation of ReferralService
type MockReferralService struct {
	mock.Mock
}

func (m *MockReferralService) List(ctx context.Context, adviserID uuid.UUID, filter shared.Filter) (*shared.Paginated[company.Referral], error) {
	args := m.Called(ctx, adviserID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[company.Referral]), args.Error(1)
}

func (m *MockReferralService) Get(ctx context.Context, id, adviserID uuid.UUID) (*company.Referral, error) {
	args := m.Called(ctx, id, adviserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Referral), args.Error(1)
}

func (m *MockReferralService) Create(ctx context.Context, req companyapp.CreateReferralRequest, by *uuid.UUID) (*company.Referral, error) {
	args := m.Called(ctx, req, by)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Referral), args.Error(1)
}

func (m *MockReferralService) Complete(ctx context.Context, id uuid.UUID, interactionData map[string]any, by *uuid.UUID) (*company.Referral, error) {
	args := m.Called(ctx, id, interactionData, by)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Referral), args.Error(1)
}

// MockPropositionService is a mock implementation of PropositionService
type MockPropositionService struct {
	mock.Mock
}

func (m *MockPropositionService) List(ctx context.Context, projectID uuid.UUID, filter shared.Filter) (*shared.Paginated[investment.Proposition], error) {
	args := m.Called(ctx, projectID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[investment.Proposition]), args.Error(1)
}

func (m *MockPropositionService) Get(ctx context.Context, projectID, id uuid.UUID) (*investment.Proposition, error) {
	args := m.Called(ctx, projectID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*investment.Proposition), args.Error(1)
}

func (m *MockPropositionService) Create(ctx context.Context, projectID uuid.UUID, req investmentapp.CreatePropositionRequest, by *uuid.UUID) (*investment.Proposition, error) {
	args := m.Called(ctx, projectID, req, by)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*investment.Proposition), args.Error(1)
}

func (m *MockPropositionService) Complete(ctx context.Context, projectID, id uuid.UUID, details string, by *uuid.UUID) (*investment.Proposition, error) {
	args := m.Called(ctx, projectID, id, details, by)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*investment.Proposition), args.Error(1)
}

func (m *MockPropositionService) Abandon(ctx context.Context, projectID, id uuid.UUID, details string, by *uuid.UUID) (*investment.Proposition, error) {
	args := m.Called(ctx, projectID, id, details, by)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*investment.Proposition), args.Error(1)
}

// MockPropositionDocumentService is a mock implementation of PropositionDocumentService
type MockPropositionDocumentService struct {
	mock.Mock
}

func (m *MockPropositionDocumentService) view(args mock.Arguments) (*investmentapp.PropositionDocumentView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*investmentapp.PropositionDocumentView), args.Error(1)
}

func (m *MockPropositionDocumentService) List(ctx context.Context, projectID, propositionID uuid.UUID, filter shared.Filter) (*shared.Paginated[investmentapp.PropositionDocumentView], error) {
	args := m.Called(ctx, projectID, propositionID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[investmentapp.PropositionDocumentView]), args.Error(1)
}

func (m *MockPropositionDocumentService) Get(ctx context.Context, projectID, propositionID, id uuid.UUID) (*investmentapp.PropositionDocumentView, error) {
	return m.view(m.Called(ctx, projectID, propositionID, id))
}

func (m *MockPropositionDocumentService) Create(ctx context.Context, projectID, propositionID uuid.UUID, originalFilename string, by *uuid.UUID) (*investmentapp.PropositionDocumentView, error) {
	return m.view(m.Called(ctx, projectID, propositionID, originalFilename, by))
}

func (m *MockPropositionDocumentService) UploadCallback(ctx context.Context, projectID, propositionID, id uuid.UUID) (*investmentapp.PropositionDocumentView, error) {
	return m.view(m.Called(ctx, projectID, propositionID, id))
}

func (m *MockPropositionDocumentService) Download(ctx context.Context, projectID, propositionID, id uuid.UUID) (*investmentapp.PropositionDocumentView, error) {
	return m.view(m.Called(ctx, projectID, propositionID, id))
}

func (m *MockPropositionDocumentService) Delete(ctx context.Context, projectID, propositionID, id uuid.UUID, by uuid.UUID, path string) error {
	return m.Called(ctx, projectID, propositionID, id, by, path).Error(0)
}

// MockDocumentService is a mock implementation of DocumentService
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) details(args mock.Arguments) (*docapp.Details, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*docapp.Details), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[docapp.Details], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[docapp.Details]), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id uuid.UUID) (*docapp.Details, error) {
	return m.details(m.Called(ctx, id))
}

func (m *MockDocumentService) Create(ctx context.Context, req docapp.CreateRequest, by *uuid.UUID) (*docapp.CreateResult, error) {
	args := m.Called(ctx, req, by)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*docapp.CreateResult), args.Error(1)
}

func (m *MockDocumentService) UpdateTitle(ctx context.Context, id uuid.UUID, title string, by *uuid.UUID) (*docapp.Details, error) {
	return m.details(m.Called(ctx, id, title, by))
}

func (m *MockDocumentService) UploadCallback(ctx context.Context, id uuid.UUID) (*docapp.Details, error) {
	return m.details(m.Called(ctx, id))
}

func (m *MockDocumentService) Download(ctx context.Context, id uuid.UUID) (*docapp.DownloadResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*docapp.DownloadResult), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id uuid.UUID, by *uuid.UUID) error {
	return m.Called(ctx, id, by).Error(0)
}

// MockExportWinService is a mock implementation of ExportWinService
type MockExportWinService struct {
	mock.Mock
}

func (m *MockExportWinService) win(args mock.Arguments) (*exportwin.Win, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exportwin.Win), args.Error(1)
}

func (m *MockExportWinService) List(ctx context.Context, adviserID uuid.UUID, filter shared.Filter) (*shared.Paginated[exportwin.Win], error) {
	args := m.Called(ctx, adviserID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[exportwin.Win]), args.Error(1)
}

func (m *MockExportWinService) Get(ctx context.Context, id, adviserID uuid.UUID) (*exportwin.Win, error) {
	return m.win(m.Called(ctx, id, adviserID))
}

func (m *MockExportWinService) Create(ctx context.Context, data map[string]any, adviserID uuid.UUID) (*exportwin.Win, error) {
	return m.win(m.Called(ctx, data, adviserID))
}

func (m *MockExportWinService) Update(ctx context.Context, id uuid.UUID, data map[string]any, adviserID uuid.UUID) (*exportwin.Win, error) {
	return m.win(m.Called(ctx, id, data, adviserID))
}

func (m *MockExportWinService) ResendCustomerEmail(ctx context.Context, id, adviserID uuid.UUID) (*exportwin.Win, error) {
	return m.win(m.Called(ctx, id, adviserID))
}

// MockSearchService is a mock implementation of SearchService
type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, app string, q search.Query) (*search.Result, error) {
	args := m.Called(ctx, app, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*search.Result), args.Error(1)
}

func (m *MockSearchService) BasicSearch(ctx context.Context, entity string, q search.Query) (*search.BasicResult, error) {
	args := m.Called(ctx, entity, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*search.BasicResult), args.Error(1)
}
