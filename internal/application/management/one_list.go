// Package management implements the data maintenance commands run by cmd/manage
package management

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/datahub/backend/internal/application/audit"
	"github.com/datahub/backend/internal/domain/company"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OneListComment is the audit comment written for every corrected company
const OneListComment = "Classification and One List account owner correction."

var oneListHeader = []string{"id", "classification_id", "one_list_account_owner_id"}

// Summary counts the outcome of a command
type Summary struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// ObjectReader opens objects stored in a bucket
type ObjectReader interface {
	Open(ctx context.Context, bucketID, key string) (io.ReadCloser, error)
}

// OneListUpdater corrects company classifications and One List account owners
type OneListUpdater struct {
	tx        shared.TransactionManager
	companies company.Repository
	storage   ObjectReader
	recorder  *audit.Recorder
	logger    *zap.Logger
}

// NewOneListUpdater creates a OneListUpdater
func NewOneListUpdater(
	tx shared.TransactionManager,
	companies company.Repository,
	storage ObjectReader,
	recorder *audit.Recorder,
	logger *zap.Logger,
) *OneListUpdater {
	return &OneListUpdater{
		tx:        tx,
		companies: companies,
		storage:   storage,
		recorder:  recorder,
		logger:    logger,
	}
}

// OneListOptions configures an update run
type OneListOptions struct {
	BucketID       string
	Key            string
	Simulate       bool
	ResetUnmatched bool
}

type oneListRow struct {
	id             uuid.UUID
	classification *uuid.UUID
	owner          *uuid.UUID
}

// Run applies the CSV stored at opts.Key. Rows that fail are logged and
// counted; the remaining rows are still applied.
func (u *OneListUpdater) Run(ctx context.Context, opts OneListOptions) (*Summary, error) {
	body, err := u.storage.Open(ctx, opts.BucketID, opts.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", opts.Key, err)
	}
	defer body.Close()

	reader := csv.NewReader(body)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	summary := &Summary{}
	seen := make(map[uuid.UUID]struct{})
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err == nil {
			var row *oneListRow
			row, err = parseOneListRow(record)
			if err == nil {
				seen[row.id] = struct{}{}
				err = u.apply(ctx, row.id, row.classification, row.owner, opts.Simulate)
			}
		}
		if err != nil {
			summary.Failed++
			u.logger.Warn("Failed to update company",
				zap.Int("line", line),
				zap.Error(err),
			)
			continue
		}
		summary.Succeeded++
	}

	if opts.ResetUnmatched {
		u.resetUnmatched(ctx, seen, opts.Simulate, summary)
	}

	u.logger.Info("Finished updating One List fields",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Bool("simulate", opts.Simulate),
	)
	return summary, nil
}

func (u *OneListUpdater) resetUnmatched(ctx context.Context, seen map[uuid.UUID]struct{}, simulate bool, summary *Summary) {
	companies, err := u.companies.FindWithOneListFields(ctx)
	if err != nil {
		summary.Failed++
		u.logger.Error("Failed to list companies with One List fields", zap.Error(err))
		return
	}
	for _, c := range companies {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		if err := u.apply(ctx, c.ID, nil, nil, simulate); err != nil {
			summary.Failed++
			u.logger.Warn("Failed to reset company",
				zap.String("company_id", c.ID.String()),
				zap.Error(err),
			)
			continue
		}
		summary.Succeeded++
	}
}

func (u *OneListUpdater) apply(ctx context.Context, id uuid.UUID, classification, owner *uuid.UUID, simulate bool) error {
	c, err := u.companies.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("company %s: %w", id, err)
	}
	if sameID(c.ClassificationID, classification) && sameID(c.OneListAccountOwnerID, owner) {
		return nil
	}
	if simulate {
		u.logger.Info("Would update company", zap.String("company_id", id.String()))
		return nil
	}

	c.ClassificationID = classification
	c.OneListAccountOwnerID = owner
	c.Touch(nil)
	err = u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := u.companies.Save(ctx, c); err != nil {
			return err
		}
		return u.recorder.Record(ctx, company.AggregateType, c.ID, c, nil, OneListComment)
	})
	if err != nil {
		return fmt.Errorf("company %s: %w", id, err)
	}
	u.recorder.Saved(ctx, company.AggregateType, c.ID)
	return nil
}

func checkHeader(header []string) error {
	if len(header) != len(oneListHeader) {
		return fmt.Errorf("expected CSV columns %s", strings.Join(oneListHeader, ","))
	}
	for i, col := range oneListHeader {
		if strings.TrimSpace(header[i]) != col {
			return fmt.Errorf("expected CSV columns %s", strings.Join(oneListHeader, ","))
		}
	}
	return nil
}

func parseOneListRow(record []string) (*oneListRow, error) {
	id, err := uuid.Parse(strings.TrimSpace(record[0]))
	if err != nil {
		return nil, fmt.Errorf("invalid id %q: %w", record[0], err)
	}
	classification, err := parseOptionalID(record[1])
	if err != nil {
		return nil, fmt.Errorf("invalid classification_id: %w", err)
	}
	owner, err := parseOptionalID(record[2])
	if err != nil {
		return nil, fmt.Errorf("invalid one_list_account_owner_id: %w", err)
	}
	return &oneListRow{id: id, classification: classification, owner: owner}, nil
}

func parseOptionalID(value string) (*uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
