package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/datahub/backend/internal/application/task"
	"github.com/datahub/backend/internal/domain/document"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scan results reported to the ScanObserver
const (
	ScanClean    = "clean"
	ScanInfected = "infected"
	ScanFailed   = "failed"
)

// ScanObserver is told about every finished scan attempt
type ScanObserver interface {
	DocumentScanned(result string)
}

// Jobs runs the background work for documents
type Jobs struct {
	documents document.Repository
	storage   ObjectStorage
	scanner   VirusScanner
	locker    Locker
	observer  ScanObserver
	logger    *zap.Logger

	deleteAttempts uint
	deleteDelay    time.Duration
}

// NewJobs creates Jobs. observer may be nil.
func NewJobs(
	documents document.Repository,
	storage ObjectStorage,
	scanner VirusScanner,
	locker Locker,
	observer ScanObserver,
	logger *zap.Logger,
) *Jobs {
	return &Jobs{
		documents:      documents,
		storage:        storage,
		scanner:        scanner,
		locker:         locker,
		observer:       observer,
		logger:         logger,
		deleteAttempts: 3,
		deleteDelay:    time.Second,
	}
}

// Handlers returns the task handlers keyed by function name
func (j *Jobs) Handlers() map[string]task.Handler {
	return map[string]task.Handler{
		task.FunctionVirusScanDocument: j.HandleVirusScan,
		task.FunctionDeleteDocument:    j.HandleDelete,
	}
}

// HandleVirusScan scans the file of a document and stores the verdict.
// A failed attempt is recorded on the document and returned so the job is retried.
func (j *Jobs) HandleVirusScan(ctx context.Context, args json.RawMessage) error {
	id, err := decodeDocumentID(args)
	if err != nil {
		return err
	}

	var doc *document.Document
	acquired, err := j.locker.TryWithLock(ctx, "av-scan-"+id.String(), func(ctx context.Context) error {
		d, err := j.documents.FindByID(ctx, id)
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if d.Status == document.StatusDeletionPending {
			return nil
		}
		if d.ScanInitiatedOn != nil && d.Status != document.StatusVirusScanningFailed {
			return nil
		}
		d.MarkScanInitiated()
		if err := j.documents.Save(ctx, d); err != nil {
			return err
		}
		doc = d
		return nil
	})
	if err != nil {
		return err
	}
	if !acquired {
		j.logger.Info("Virus scan already in progress", zap.String("document_id", id.String()))
		return nil
	}
	if doc == nil {
		j.logger.Info("Skipping virus scan", zap.String("document_id", id.String()))
		return nil
	}

	result, err := j.scan(ctx, doc)
	if err != nil {
		j.observe(ScanFailed)
		doc.MarkScanFailed(err.Error())
		if saveErr := j.documents.Save(ctx, doc); saveErr != nil {
			j.logger.Error("Failed to record virus scan failure",
				zap.String("document_id", id.String()),
				zap.Error(saveErr))
		}
		j.logger.Warn("Virus scan failed", zap.String("document_id", id.String()), zap.Error(err))
		return fmt.Errorf("virus scan of document %s failed: %w", id, err)
	}

	doc.MarkAsScanned(!result.Malware, result.Reason)
	if err := j.documents.Save(ctx, doc); err != nil {
		return err
	}
	if result.Malware {
		j.observe(ScanInfected)
		j.logger.Warn("Virus found in document",
			zap.String("document_id", id.String()),
			zap.String("reason", result.Reason))
	} else {
		j.observe(ScanClean)
		j.logger.Info("Virus scan completed", zap.String("document_id", id.String()))
	}
	return nil
}

func (j *Jobs) scan(ctx context.Context, doc *document.Document) (*ScanResult, error) {
	body, err := j.storage.Open(ctx, doc.BucketID, doc.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer body.Close()
	return j.scanner.Scan(ctx, doc.Path, body)
}

// HandleDelete removes the file of a document pending deletion and then the
// document record, which cascades to the records pointing at it
func (j *Jobs) HandleDelete(ctx context.Context, args json.RawMessage) error {
	id, err := decodeDocumentID(args)
	if err != nil {
		return err
	}
	doc, err := j.documents.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if doc.Status != document.StatusDeletionPending {
		j.logger.Info("Document is not pending deletion", zap.String("document_id", id.String()))
		return nil
	}

	err = retry.Do(
		func() error {
			return j.storage.Delete(ctx, doc.BucketID, doc.Path)
		},
		retry.Context(ctx),
		retry.Attempts(j.deleteAttempts),
		retry.Delay(j.deleteDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			j.logger.Warn("Retrying file deletion",
				zap.String("document_id", id.String()),
				zap.Uint("attempt", attempt),
				zap.Error(err))
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to delete file of document %s: %w", id, err)
	}
	if err := j.documents.Delete(ctx, id); err != nil {
		return err
	}
	j.logger.Info("Document deleted", zap.String("document_id", id.String()))
	return nil
}

func (j *Jobs) observe(result string) {
	if j.observer != nil {
		j.observer.DocumentScanned(result)
	}
}

func decodeDocumentID(args json.RawMessage) (uuid.UUID, error) {
	a, err := task.Decode[task.DocumentArgs](args)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid document job arguments: %w", err)
	}
	id, err := uuid.Parse(a.DocumentID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid document id %q: %w", a.DocumentID, err)
	}
	return id, nil
}
