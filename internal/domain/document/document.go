// Package document models uploaded files, their antivirus scan lifecycle and
// the entity-specific records that point at them.
package document

import (
	"fmt"
	"time"

	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UploadStatus is the lifecycle state of an uploaded document
type UploadStatus string

const (
	StatusNotVirusScanned         UploadStatus = "not_virus_scanned"
	StatusVirusScanningScheduled  UploadStatus = "virus_scanning_scheduled"
	StatusVirusScanningInProgress UploadStatus = "virus_scanning_in_progress"
	StatusVirusScanningFailed     UploadStatus = "virus_scanning_failed"
	StatusVirusScanned            UploadStatus = "virus_scanned"
	StatusDeletionPending         UploadStatus = "deletion_pending"
)

// DefaultBucketID is the storage bucket used when none is configured for an entity
const DefaultBucketID = "default"

// AggregateType identifies documents in events and jobs
const AggregateType = "document"

var (
	// ErrScanAlreadyInitiated is returned when an upload URL is requested after scanning started
	ErrScanAlreadyInitiated = shared.NewDomainError("INVALID_STATE", "The document has already been uploaded.")
	// ErrNotScanned is returned when a download is requested before the scan finished
	ErrNotScanned = shared.NewDomainError("TEMPORARILY_UNAVAILABLE", "Service temporarily unavailable, try again later.")
)

// Document tracks a single file stored in an S3 bucket
type Document struct {
	shared.BaseEntity
	BucketID              string       `json:"bucket_id"`
	UseDefaultCredentials bool         `json:"use_default_credentials"`
	Path                  string       `json:"path"`
	UploadedOn            *time.Time   `json:"uploaded_on"`
	ScanInitiatedOn       *time.Time   `json:"scan_initiated_on"`
	ScannedOn             *time.Time   `json:"scanned_on"`
	AVClean               *bool        `json:"av_clean"`
	AVReason              string       `json:"av_reason"`
	Status                UploadStatus `json:"status"`
}

// NewDocument creates a document record for a file that is about to be uploaded.
// The path embeds the entity name, the current date and the document id.
func NewDocument(bucketID, entityName, originalFilename string, useDefaultCredentials bool, by *uuid.UUID) *Document {
	if bucketID == "" {
		bucketID = DefaultBucketID
	}
	base := shared.NewBaseEntity(by)
	return &Document{
		BaseEntity:            base,
		BucketID:              bucketID,
		UseDefaultCredentials: useDefaultCredentials,
		Path:                  BuildPath(entityName, base.CreatedOn, base.ID, originalFilename),
		Status:                StatusNotVirusScanned,
	}
}

// BuildPath returns the object key for a document
func BuildPath(entityName string, on time.Time, id uuid.UUID, originalFilename string) string {
	return fmt.Sprintf("%s/%s/%s/%s", entityName, on.Format("2006-01-02"), id, originalFilename)
}

// Name returns the display name of the document
func (d *Document) Name() string {
	return d.Path
}

// ScheduleAVScan marks the document as scheduled for scanning. It reports
// whether a scan job needs to be enqueued, which is only the case when no scan
// has been initiated yet.
func (d *Document) ScheduleAVScan() bool {
	if d.ScanInitiatedOn != nil {
		return false
	}
	now := time.Now().UTC()
	d.UploadedOn = &now
	d.setStatus(StatusVirusScanningScheduled)
	return true
}

// MarkScanInitiated records that the antivirus scan has started
func (d *Document) MarkScanInitiated() {
	now := time.Now().UTC()
	d.ScanInitiatedOn = &now
	d.setStatus(StatusVirusScanningInProgress)
}

// MarkScanFailed records a failed scan attempt
func (d *Document) MarkScanFailed(reason string) {
	d.AVReason = reason
	d.setStatus(StatusVirusScanningFailed)
}

// MarkAsScanned records the scan result
func (d *Document) MarkAsScanned(clean bool, reason string) {
	now := time.Now().UTC()
	d.ScannedOn = &now
	d.AVClean = &clean
	d.AVReason = reason
	d.setStatus(StatusVirusScanned)
}

// MarkDeletionPending flags the document for removal by the deletion job
func (d *Document) MarkDeletionPending() {
	d.setStatus(StatusDeletionPending)
}

// IsClean reports whether the file passed antivirus scanning
func (d *Document) IsClean() bool {
	return d.AVClean != nil && *d.AVClean
}

// CanSignDownload reports whether a download URL may be generated
func (d *Document) CanSignDownload(allowUnsafe bool) bool {
	return d.IsClean() || allowUnsafe
}

// CanSignUpload reports whether an upload URL may be generated
func (d *Document) CanSignUpload() error {
	if d.ScanInitiatedOn != nil {
		return ErrScanAlreadyInitiated
	}
	return nil
}

// CheckDownloadable returns an error when the file cannot be handed out yet.
// message is used for files that failed scanning.
func (d *Document) CheckDownloadable(message string) error {
	if d.ScannedOn == nil {
		return ErrNotScanned
	}
	if !d.IsClean() {
		return shared.NewForbiddenError(message)
	}
	return nil
}

func (d *Document) setStatus(status UploadStatus) {
	d.Status = status
	d.ModifiedOn = time.Now().UTC()
}
