package document

import (
	"strings"

	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Content type labels accepted for generic documents
const (
	TypeUploadable = "documents.uploadabledocument"
	TypeSharePoint = "documents.sharepointdocument"
)

// RelatedObjectTypes lists the records a generic document can be attached to
var RelatedObjectTypes = []string{
	"company.company",
	"company.contact",
	"interaction.interaction",
	"investment.investmentproject",
}

// ArchiveOnDeleteReason is recorded when a DELETE request archives a document
const ArchiveOnDeleteReason = "Archived instead of deleting when DELETE request received"

// ErrNotUploadable is returned for upload and download actions on non-uploadable documents
var ErrNotUploadable = shared.NewBadRequestError("This action is only available for uploadable documents")

// EntityDocument links a record to an uploaded Document
type EntityDocument struct {
	shared.BaseEntity
	OriginalFilename string    `json:"original_filename"`
	DocumentID       uuid.UUID `json:"document_id"`
	Document         *Document `json:"-"`
}

// NewEntityDocument creates an entity document together with its Document.
// entityName is the path prefix under which the file is stored.
func NewEntityDocument(bucketID, entityName, originalFilename string, useDefaultCredentials bool, by *uuid.UUID) *EntityDocument {
	doc := NewDocument(bucketID, entityName, originalFilename, useDefaultCredentials, by)
	return &EntityDocument{
		BaseEntity:       shared.NewBaseEntity(by),
		OriginalFilename: originalFilename,
		DocumentID:       doc.ID,
		Document:         doc,
	}
}

// IsDeletionPending reports whether the underlying file is being deleted.
// Such documents are hidden from clients.
func (e *EntityDocument) IsDeletionPending() bool {
	return e.Document != nil && e.Document.Status == StatusDeletionPending
}

// UploadableDocument is a titled file uploaded through the generic document API
type UploadableDocument struct {
	EntityDocument
	Title string `json:"title"`
}

// NewUploadableDocument creates an UploadableDocument stored in bucketID
func NewUploadableDocument(bucketID, title, originalFilename string, by *uuid.UUID) *UploadableDocument {
	return &UploadableDocument{
		EntityDocument: *NewEntityDocument(bucketID, "uploadabledocument", originalFilename, true, by),
		Title:          title,
	}
}

// String returns the display name
func (u *UploadableDocument) String() string {
	return u.OriginalFilename
}

// SharePointDocument references a document held in SharePoint
type SharePointDocument struct {
	shared.BaseEntity
	shared.Archivable
	Title string `json:"title"`
	URL   string `json:"url"`
}

// NewSharePointDocument creates a SharePointDocument
func NewSharePointDocument(title, url string, by *uuid.UUID) (*SharePointDocument, error) {
	if strings.TrimSpace(url) == "" {
		return nil, shared.NewFieldError("url", "This field is required.")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, shared.NewFieldError("url", "Enter a valid URL.")
	}
	return &SharePointDocument{
		BaseEntity: shared.NewBaseEntity(by),
		Title:      title,
		URL:        url,
	}, nil
}

// String returns the display name
func (s *SharePointDocument) String() string {
	return s.Title
}

// GenericDocument is the single point of access to documents of any type
// attached to any record.
type GenericDocument struct {
	shared.BaseEntity
	shared.Archivable
	DocumentType      string    `json:"document_type"`
	DocumentObjectID  uuid.UUID `json:"document_object_id"`
	RelatedObjectType string    `json:"related_object_type"`
	RelatedObjectID   uuid.UUID `json:"related_object_id"`
}

// NewGenericDocument validates the content types and creates a GenericDocument
func NewGenericDocument(documentType string, documentObjectID uuid.UUID, relatedObjectType string, relatedObjectID uuid.UUID, by *uuid.UUID) (*GenericDocument, error) {
	errs := shared.NewValidationErrors()
	if !IsValidDocumentType(documentType) {
		errs.Add("document_type", "Invalid document type.")
	}
	if !IsValidRelatedObjectType(relatedObjectType) {
		errs.Add("related_object_type", "Invalid related object type.")
	}
	if errs.HasErrors() {
		return nil, errs
	}
	return &GenericDocument{
		BaseEntity:        shared.NewBaseEntity(by),
		DocumentType:      documentType,
		DocumentObjectID:  documentObjectID,
		RelatedObjectType: relatedObjectType,
		RelatedObjectID:   relatedObjectID,
	}, nil
}

// IsUploadable reports whether the specific document is an UploadableDocument
func (g *GenericDocument) IsUploadable() bool {
	return g.DocumentType == TypeUploadable
}

// IsValidDocumentType reports whether t is a supported document content type
func IsValidDocumentType(t string) bool {
	return t == TypeUploadable || t == TypeSharePoint
}

// IsValidRelatedObjectType reports whether t is a record documents may be attached to
func IsValidRelatedObjectType(t string) bool {
	for _, allowed := range RelatedObjectTypes {
		if allowed == t {
			return true
		}
	}
	return false
}
