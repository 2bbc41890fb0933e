// Package document implements the generic document API together with the
// upload, scan and deletion lifecycle shared by every kind of document.
package document

import (
	"context"
	"strings"

	"github.com/datahub/backend/internal/domain/document"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Document kinds accepted when creating a generic document
const (
	KindUploadable = "uploadable"
	KindSharePoint = "sharepoint"
)

// MessageRequired is returned for missing request fields
const MessageRequired = "This field is required."

// Repositories groups the repositories the Service needs
type Repositories struct {
	Uploadables document.UploadableDocumentRepository
	SharePoints document.SharePointDocumentRepository
	Generics    document.GenericDocumentRepository
}

// DocumentData describes the specific document of a create request
type DocumentData struct {
	Title            string `json:"title"`
	OriginalFilename string `json:"original_filename"`
	URL              string `json:"url"`
}

// CreateRequest is the body of a generic document create request
type CreateRequest struct {
	DocumentType      string       `json:"document_type"`
	RelatedObjectType string       `json:"related_object_type"`
	RelatedObjectID   uuid.UUID    `json:"related_object_id"`
	DocumentData      DocumentData `json:"document_data"`
}

// UploadableView is an uploadable document with the state of its file
type UploadableView struct {
	*document.UploadableDocument
	Status document.UploadStatus `json:"status"`
}

// Details is a generic document with its specific document
type Details struct {
	*document.GenericDocument
	Document any `json:"document"`
}

// CreateResult is returned after creating a document
type CreateResult struct {
	*Details
	SignedUploadURL string `json:"signed_upload_url,omitempty"`
}

// DownloadResult carries the URL a clean file is downloaded from
type DownloadResult struct {
	*Details
	DocumentURL string `json:"document_url"`
}

// Service handles generic document use cases
type Service struct {
	tx        shared.TransactionManager
	repos     Repositories
	lifecycle *Lifecycle
	bucketID  string
}

// NewService creates a Service storing uploaded files in bucketID
func NewService(tx shared.TransactionManager, repos Repositories, lifecycle *Lifecycle, bucketID string) *Service {
	if bucketID == "" {
		bucketID = document.DefaultBucketID
	}
	return &Service{
		tx:        tx,
		repos:     repos,
		lifecycle: lifecycle,
		bucketID:  bucketID,
	}
}

// List lists non-archived generic documents, newest first
func (s *Service) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[Details], error) {
	filter = filter.Normalize()
	if filter.OrderBy == "" {
		filter.OrderBy = "created_on"
		filter.OrderDir = "desc"
	}
	items, total, err := s.repos.Generics.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	details := make([]Details, 0, len(items))
	for i := range items {
		d, err := s.details(ctx, &items[i])
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	result := shared.NewPaginated(details, total)
	return &result, nil
}

// Get retrieves a generic document with its specific document
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Details, error) {
	g, err := s.repos.Generics.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, g)
}

// Create creates a specific document and the generic document pointing at it.
// Uploadable documents come back with the URL the file is uploaded to.
func (s *Service) Create(ctx context.Context, req CreateRequest, by *uuid.UUID) (*CreateResult, error) {
	switch req.DocumentType {
	case KindUploadable:
		return s.createUploadable(ctx, req, by)
	case KindSharePoint:
		return s.createSharePoint(ctx, req, by)
	case "":
		return nil, shared.NewFieldError("document_type", MessageRequired)
	default:
		return nil, shared.NewFieldError("document_type", "\""+req.DocumentType+"\" is not a valid choice.")
	}
}

func (s *Service) createUploadable(ctx context.Context, req CreateRequest, by *uuid.UUID) (*CreateResult, error) {
	if strings.TrimSpace(req.DocumentData.OriginalFilename) == "" {
		return nil, shared.NewFieldError("original_filename", MessageRequired)
	}
	u := document.NewUploadableDocument(s.bucketID, req.DocumentData.Title, req.DocumentData.OriginalFilename, by)
	g, err := document.NewGenericDocument(document.TypeUploadable, u.ID, req.RelatedObjectType, req.RelatedObjectID, by)
	if err != nil {
		return nil, err
	}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repos.Uploadables.Save(ctx, u); err != nil {
			return err
		}
		return s.repos.Generics.Save(ctx, g)
	})
	if err != nil {
		return nil, err
	}
	url, err := s.lifecycle.SignedUploadURL(ctx, u.Document)
	if err != nil {
		return nil, err
	}
	return &CreateResult{
		Details:         &Details{GenericDocument: g, Document: uploadableView(u)},
		SignedUploadURL: url,
	}, nil
}

func (s *Service) createSharePoint(ctx context.Context, req CreateRequest, by *uuid.UUID) (*CreateResult, error) {
	sp, err := document.NewSharePointDocument(req.DocumentData.Title, req.DocumentData.URL, by)
	if err != nil {
		return nil, err
	}
	g, err := document.NewGenericDocument(document.TypeSharePoint, sp.ID, req.RelatedObjectType, req.RelatedObjectID, by)
	if err != nil {
		return nil, err
	}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repos.SharePoints.Save(ctx, sp); err != nil {
			return err
		}
		return s.repos.Generics.Save(ctx, g)
	})
	if err != nil {
		return nil, err
	}
	return &CreateResult{Details: &Details{GenericDocument: g, Document: sp}}, nil
}

// UpdateTitle changes the title of the specific document
func (s *Service) UpdateTitle(ctx context.Context, id uuid.UUID, title string, by *uuid.UUID) (*Details, error) {
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewFieldError("title", MessageRequired)
	}
	g, err := s.repos.Generics.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var specific any
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if g.IsUploadable() {
			u, err := s.findUploadable(ctx, g)
			if err != nil {
				return err
			}
			u.Title = title
			u.Touch(by)
			if err := s.repos.Uploadables.Save(ctx, u); err != nil {
				return err
			}
			specific = uploadableView(u)
		} else {
			sp, err := s.repos.SharePoints.FindByID(ctx, g.DocumentObjectID)
			if err != nil {
				return err
			}
			sp.Title = title
			sp.Touch(by)
			if err := s.repos.SharePoints.Save(ctx, sp); err != nil {
				return err
			}
			specific = sp
		}
		g.Touch(by)
		return s.repos.Generics.Save(ctx, g)
	})
	if err != nil {
		return nil, err
	}
	return &Details{GenericDocument: g, Document: specific}, nil
}

// UploadCallback is called once the client has uploaded the file. It
// schedules the antivirus scan.
func (s *Service) UploadCallback(ctx context.Context, id uuid.UUID) (*Details, error) {
	g, err := s.repos.Generics.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !g.IsUploadable() {
		return nil, document.ErrNotUploadable
	}
	u, err := s.findUploadable(ctx, g)
	if err != nil {
		return nil, err
	}
	if err := s.lifecycle.ScheduleAVScan(ctx, u.Document); err != nil {
		return nil, err
	}
	return &Details{GenericDocument: g, Document: uploadableView(u)}, nil
}

// Download returns a presigned URL for a clean uploaded file
func (s *Service) Download(ctx context.Context, id uuid.UUID) (*DownloadResult, error) {
	g, err := s.repos.Generics.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !g.IsUploadable() {
		return nil, document.ErrNotUploadable
	}
	u, err := s.findUploadable(ctx, g)
	if err != nil {
		return nil, err
	}
	url, err := s.lifecycle.SignedDownloadURL(ctx, u.Document)
	if err != nil {
		return nil, err
	}
	return &DownloadResult{
		Details:     &Details{GenericDocument: g, Document: uploadableView(u)},
		DocumentURL: url,
	}, nil
}

// Delete archives the generic document. An uploaded file is marked for
// deletion and removed by a background job. SharePoint documents are archived.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, by *uuid.UUID) error {
	g, err := s.repos.Generics.FindByID(ctx, id)
	if err != nil {
		return err
	}

	var pending *document.Document
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if g.IsUploadable() {
			u, err := s.findUploadable(ctx, g)
			if err != nil {
				return err
			}
			u.Document.MarkDeletionPending()
			if err := s.repos.Uploadables.Save(ctx, u); err != nil {
				return err
			}
			pending = u.Document
		} else {
			sp, err := s.repos.SharePoints.FindByID(ctx, g.DocumentObjectID)
			if err != nil {
				return err
			}
			if !sp.Archived {
				if err := sp.Archive(by, document.ArchiveOnDeleteReason); err != nil {
					return err
				}
				sp.Touch(by)
				if err := s.repos.SharePoints.Save(ctx, sp); err != nil {
					return err
				}
			}
		}
		if err := g.Archive(by, document.ArchiveOnDeleteReason); err != nil {
			return err
		}
		g.Touch(by)
		return s.repos.Generics.Save(ctx, g)
	})
	if err != nil {
		return err
	}
	if pending != nil {
		return s.lifecycle.scheduleDelete(ctx, pending.ID)
	}
	return nil
}

func (s *Service) details(ctx context.Context, g *document.GenericDocument) (*Details, error) {
	if g.IsUploadable() {
		u, err := s.findUploadable(ctx, g)
		if err != nil {
			return nil, err
		}
		return &Details{GenericDocument: g, Document: uploadableView(u)}, nil
	}
	sp, err := s.repos.SharePoints.FindByID(ctx, g.DocumentObjectID)
	if err != nil {
		return nil, err
	}
	return &Details{GenericDocument: g, Document: sp}, nil
}

// findUploadable loads the uploadable document of g, hiding files pending deletion
func (s *Service) findUploadable(ctx context.Context, g *document.GenericDocument) (*document.UploadableDocument, error) {
	u, err := s.repos.Uploadables.FindByID(ctx, g.DocumentObjectID)
	if err != nil {
		return nil, err
	}
	if u.IsDeletionPending() {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func uploadableView(u *document.UploadableDocument) *UploadableView {
	v := &UploadableView{UploadableDocument: u}
	if u.Document != nil {
		v.Status = u.Document.Status
	}
	return v
}
