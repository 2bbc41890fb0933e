package document

import (
	"context"

	"github.com/datahub/backend/internal/application/task"
	"github.com/datahub/backend/internal/domain/document"
	"github.com/google/uuid"
)

// MessageFailedScan is returned when downloading a file that did not pass scanning
const MessageFailedScan = "Document did not pass virus scanning."

// Lifecycle moves documents through upload, scanning and deletion
type Lifecycle struct {
	documents document.Repository
	storage   ObjectStorage
	scheduler task.Scheduler
}

// NewLifecycle creates a Lifecycle
func NewLifecycle(documents document.Repository, storage ObjectStorage, scheduler task.Scheduler) *Lifecycle {
	return &Lifecycle{
		documents: documents,
		storage:   storage,
		scheduler: scheduler,
	}
}

// SignedUploadURL returns a URL the client uploads the file to.
// It fails once scanning has started.
func (l *Lifecycle) SignedUploadURL(ctx context.Context, d *document.Document) (string, error) {
	if err := d.CanSignUpload(); err != nil {
		return "", err
	}
	return l.storage.SignUploadURL(ctx, d.BucketID, d.Path)
}

// ScheduleAVScan records that the file was uploaded and enqueues a scan on the
// long-running queue. Documents whose scan already started are left alone.
func (l *Lifecycle) ScheduleAVScan(ctx context.Context, d *document.Document) error {
	if !d.ScheduleAVScan() {
		return nil
	}
	if err := l.documents.Save(ctx, d); err != nil {
		return err
	}
	_, err := l.scheduler.Schedule(ctx, task.FunctionVirusScanDocument, task.DocumentArgs{DocumentID: d.ID.String()}, task.Options{
		Queue:        task.QueueLongRunning,
		MaxRetries:   task.DefaultMaxRetries,
		RetryBackoff: 1,
	})
	return err
}

// SignedDownloadURL returns a URL the client downloads a clean file from
func (l *Lifecycle) SignedDownloadURL(ctx context.Context, d *document.Document) (string, error) {
	if err := d.CheckDownloadable(MessageFailedScan); err != nil {
		return "", err
	}
	return l.storage.SignDownloadURL(ctx, d.BucketID, d.Path)
}

// ScheduleDeletion hides the document from clients and enqueues removal of
// the file and its records
func (l *Lifecycle) ScheduleDeletion(ctx context.Context, d *document.Document) error {
	d.MarkDeletionPending()
	if err := l.documents.Save(ctx, d); err != nil {
		return err
	}
	return l.scheduleDelete(ctx, d.ID)
}

func (l *Lifecycle) scheduleDelete(ctx context.Context, id uuid.UUID) error {
	_, err := l.scheduler.Schedule(ctx, task.FunctionDeleteDocument, task.DocumentArgs{DocumentID: id.String()}, task.Options{
		Queue:        task.QueueLongRunning,
		MaxRetries:   task.DefaultMaxRetries,
		RetryBackoff: 1,
	})
	return err
}
