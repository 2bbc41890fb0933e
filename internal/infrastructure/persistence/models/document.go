package models

import (
	"time"

	"github.com/datahub/backend/internal/domain/document"
	"github.com/google/uuid"
)

// DocumentModel is the persistence model for an uploaded file.
type DocumentModel struct {
	BaseModel
	BucketID              string `gorm:"type:varchar(255);not null;default:'default';uniqueIndex:idx_document_bucket_path,priority:1"`
	UseDefaultCredentials bool   `gorm:"not null;default:false"`
	Path                  string `gorm:"type:text;not null;uniqueIndex:idx_document_bucket_path,priority:2"`
	UploadedOn            *time.Time
	ScanInitiatedOn       *time.Time
	ScannedOn             *time.Time
	AVClean               *bool                 `gorm:"column:av_clean"`
	AVReason              string                `gorm:"column:av_reason;type:text"`
	Status                document.UploadStatus `gorm:"type:varchar(255);not null;default:'not_virus_scanned'"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// ToDomain converts the persistence model to a domain Document entity.
func (m *DocumentModel) ToDomain() *document.Document {
	return &document.Document{
		BaseEntity:            m.BaseModel.ToDomain(),
		BucketID:              m.BucketID,
		UseDefaultCredentials: m.UseDefaultCredentials,
		Path:                  m.Path,
		UploadedOn:            m.UploadedOn,
		ScanInitiatedOn:       m.ScanInitiatedOn,
		ScannedOn:             m.ScannedOn,
		AVClean:               m.AVClean,
		AVReason:              m.AVReason,
		Status:                m.Status,
	}
}

// DocumentModelFromDomain creates a new persistence model from a domain Document entity.
func DocumentModelFromDomain(d *document.Document) *DocumentModel {
	m := &DocumentModel{
		BucketID:              d.BucketID,
		UseDefaultCredentials: d.UseDefaultCredentials,
		Path:                  d.Path,
		UploadedOn:            d.UploadedOn,
		ScanInitiatedOn:       d.ScanInitiatedOn,
		ScannedOn:             d.ScannedOn,
		AVClean:               d.AVClean,
		AVReason:              d.AVReason,
		Status:                d.Status,
	}
	m.FromDomainBaseEntity(d.BaseEntity)
	return m
}

// EntityDocumentModel holds the columns shared by records linking to a document.
type EntityDocumentModel struct {
	BaseModel
	OriginalFilename string         `gorm:"type:varchar(255);not null"`
	DocumentID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	Document         *DocumentModel `gorm:"foreignKey:DocumentID"`
}

// ToDomain converts the persistence model to a domain EntityDocument.
func (m *EntityDocumentModel) ToDomain() document.EntityDocument {
	e := document.EntityDocument{
		BaseEntity:       m.BaseModel.ToDomain(),
		OriginalFilename: m.OriginalFilename,
		DocumentID:       m.DocumentID,
	}
	if m.Document != nil {
		e.Document = m.Document.ToDomain()
	}
	return e
}

// FromDomainEntityDocument populates the shared columns. The linked Document is saved separately.
func (m *EntityDocumentModel) FromDomainEntityDocument(e document.EntityDocument) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.OriginalFilename = e.OriginalFilename
	m.DocumentID = e.DocumentID
}

// UploadableDocumentModel is the persistence model for uploadable documents.
type UploadableDocumentModel struct {
	EntityDocumentModel
	Title string `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (UploadableDocumentModel) TableName() string {
	return "uploadable_documents"
}

// ToDomain converts the persistence model to a domain UploadableDocument.
func (m *UploadableDocumentModel) ToDomain() *document.UploadableDocument {
	return &document.UploadableDocument{
		EntityDocument: m.EntityDocumentModel.ToDomain(),
		Title:          m.Title,
	}
}

// UploadableDocumentModelFromDomain creates a new persistence model from a domain UploadableDocument.
func UploadableDocumentModelFromDomain(d *document.UploadableDocument) *UploadableDocumentModel {
	m := &UploadableDocumentModel{Title: d.Title}
	m.FromDomainEntityDocument(d.EntityDocument)
	return m
}

// SharePointDocumentModel is the persistence model for SharePoint links.
type SharePointDocumentModel struct {
	BaseModel
	ArchivableModel
	Title string `gorm:"type:varchar(255)"`
	URL   string `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (SharePointDocumentModel) TableName() string {
	return "sharepoint_documents"
}

// ToDomain converts the persistence model to a domain SharePointDocument.
func (m *SharePointDocumentModel) ToDomain() *document.SharePointDocument {
	return &document.SharePointDocument{
		BaseEntity: m.BaseModel.ToDomain(),
		Archivable: m.ArchivableModel.ToDomain(),
		Title:      m.Title,
		URL:        m.URL,
	}
}

// SharePointDocumentModelFromDomain creates a new persistence model from a domain SharePointDocument.
func SharePointDocumentModelFromDomain(d *document.SharePointDocument) *SharePointDocumentModel {
	m := &SharePointDocumentModel{Title: d.Title, URL: d.URL}
	m.FromDomainBaseEntity(d.BaseEntity)
	m.FromDomainArchivable(d.Archivable)
	return m
}

// GenericDocumentModel is the persistence model for the generic document index.
type GenericDocumentModel struct {
	BaseModel
	ArchivableModel
	DocumentType      string    `gorm:"type:varchar(255);not null"`
	DocumentObjectID  uuid.UUID `gorm:"type:uuid;not null;index"`
	RelatedObjectType string    `gorm:"type:varchar(255);not null"`
	RelatedObjectID   uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (GenericDocumentModel) TableName() string {
	return "generic_documents"
}

// ToDomain converts the persistence model to a domain GenericDocument.
func (m *GenericDocumentModel) ToDomain() *document.GenericDocument {
	return &document.GenericDocument{
		BaseEntity:        m.BaseModel.ToDomain(),
		Archivable:        m.ArchivableModel.ToDomain(),
		DocumentType:      m.DocumentType,
		DocumentObjectID:  m.DocumentObjectID,
		RelatedObjectType: m.RelatedObjectType,
		RelatedObjectID:   m.RelatedObjectID,
	}
}

// GenericDocumentModelFromDomain creates a new persistence model from a domain GenericDocument.
func GenericDocumentModelFromDomain(d *document.GenericDocument) *GenericDocumentModel {
	m := &GenericDocumentModel{
		DocumentType:      d.DocumentType,
		DocumentObjectID:  d.DocumentObjectID,
		RelatedObjectType: d.RelatedObjectType,
		RelatedObjectID:   d.RelatedObjectID,
	}
	m.FromDomainBaseEntity(d.BaseEntity)
	m.FromDomainArchivable(d.Archivable)
	return m
}
