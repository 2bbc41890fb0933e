package investment

import (
	"context"
	"errors"
	"strings"

	docapp "github.com/datahub/backend/internal/application/document"
	"github.com/datahub/backend/internal/domain/investment"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/domain/userevent"
	"github.com/datahub/backend/internal/domain/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PropositionDocumentView is a proposition document with the state of its file
type PropositionDocumentView struct {
	*investment.PropositionDocument
	Status          string `json:"status"`
	SignedUploadURL string `json:"signed_upload_url,omitempty"`
	DocumentURL     string `json:"document_url,omitempty"`
}

// PropositionDocumentService handles the files attached to propositions
type PropositionDocumentService struct {
	propositions investment.PropositionRepository
	documents    investment.PropositionDocumentRepository
	events       userevent.Repository
	lifecycle    *docapp.Lifecycle
	logger       *zap.Logger
}

// NewPropositionDocumentService creates a PropositionDocumentService
func NewPropositionDocumentService(
	propositions investment.PropositionRepository,
	documents investment.PropositionDocumentRepository,
	events userevent.Repository,
	lifecycle *docapp.Lifecycle,
	logger *zap.Logger,
) *PropositionDocumentService {
	return &PropositionDocumentService{
		propositions: propositions,
		documents:    documents,
		events:       events,
		lifecycle:    lifecycle,
		logger:       logger,
	}
}

// List lists the documents of a proposition
func (s *PropositionDocumentService) List(ctx context.Context, projectID, propositionID uuid.UUID, filter shared.Filter) (*shared.Paginated[PropositionDocumentView], error) {
	if err := s.checkProposition(ctx, projectID, propositionID); err != nil {
		return nil, err
	}
	items, total, err := s.documents.FindAll(ctx, propositionID, filter.Normalize())
	if err != nil {
		return nil, err
	}
	views := make([]PropositionDocumentView, len(items))
	for i := range items {
		views[i] = *newPropositionDocumentView(&items[i])
	}
	result := shared.NewPaginated(views, total)
	return &result, nil
}

// Get retrieves a document of a proposition
func (s *PropositionDocumentService) Get(ctx context.Context, projectID, propositionID, id uuid.UUID) (*PropositionDocumentView, error) {
	d, err := s.find(ctx, projectID, propositionID, id)
	if err != nil {
		return nil, err
	}
	return newPropositionDocumentView(d), nil
}

// Create creates a document record and returns the URL the file is uploaded to
func (s *PropositionDocumentService) Create(ctx context.Context, projectID, propositionID uuid.UUID, originalFilename string, by *uuid.UUID) (*PropositionDocumentView, error) {
	if strings.TrimSpace(originalFilename) == "" {
		return nil, shared.NewFieldError("original_filename", MessageRequired)
	}
	if err := s.checkProposition(ctx, projectID, propositionID); err != nil {
		return nil, err
	}
	d := investment.NewPropositionDocument(propositionID, originalFilename, by)
	if err := s.documents.Save(ctx, d); err != nil {
		return nil, err
	}
	url, err := s.lifecycle.SignedUploadURL(ctx, d.Document)
	if err != nil {
		return nil, err
	}
	view := newPropositionDocumentView(d)
	view.SignedUploadURL = url
	return view, nil
}

// UploadCallback schedules the antivirus scan of an uploaded file
func (s *PropositionDocumentService) UploadCallback(ctx context.Context, projectID, propositionID, id uuid.UUID) (*PropositionDocumentView, error) {
	d, err := s.find(ctx, projectID, propositionID, id)
	if err != nil {
		return nil, err
	}
	if err := s.lifecycle.ScheduleAVScan(ctx, d.Document); err != nil {
		return nil, err
	}
	return newPropositionDocumentView(d), nil
}

// Download returns a presigned URL for a clean file
func (s *PropositionDocumentService) Download(ctx context.Context, projectID, propositionID, id uuid.UUID) (*PropositionDocumentView, error) {
	d, err := s.find(ctx, projectID, propositionID, id)
	if err != nil {
		return nil, err
	}
	url, err := s.lifecycle.SignedDownloadURL(ctx, d.Document)
	if err != nil {
		return nil, err
	}
	view := newPropositionDocumentView(d)
	view.DocumentURL = url
	return view, nil
}

// Delete records who deleted the document and schedules removal of the file
func (s *PropositionDocumentService) Delete(ctx context.Context, projectID, propositionID, id uuid.UUID, by uuid.UUID, path string) error {
	d, err := s.find(ctx, projectID, propositionID, id)
	if err != nil {
		return err
	}
	data, err := validation.ToMap(d)
	if err != nil {
		return err
	}
	if err := s.events.Save(ctx, userevent.New(by, userevent.TypePropositionDocumentDelete, path, data)); err != nil {
		return err
	}
	if err := s.lifecycle.ScheduleDeletion(ctx, d.Document); err != nil {
		return err
	}
	s.logger.Info("Proposition document deletion scheduled",
		zap.String("proposition_id", propositionID.String()),
		zap.String("document_id", d.DocumentID.String()))
	return nil
}

func (s *PropositionDocumentService) find(ctx context.Context, projectID, propositionID, id uuid.UUID) (*investment.PropositionDocument, error) {
	if err := s.checkProposition(ctx, projectID, propositionID); err != nil {
		return nil, err
	}
	return s.documents.FindByID(ctx, propositionID, id)
}

func (s *PropositionDocumentService) checkProposition(ctx context.Context, projectID, propositionID uuid.UUID) error {
	_, err := s.propositions.FindByID(ctx, projectID, propositionID)
	if err == nil {
		return nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		return investment.ErrPropositionNotFound
	}
	return err
}

func newPropositionDocumentView(d *investment.PropositionDocument) *PropositionDocumentView {
	v := &PropositionDocumentView{PropositionDocument: d}
	if d.Document != nil {
		v.Status = string(d.Document.Status)
	}
	return v
}
