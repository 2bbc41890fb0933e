package management

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	auditdomain "github.com/datahub/backend/internal/domain/audit"
	"github.com/datahub/backend/internal/domain/company"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func csvBody(lines ...string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func TestOneListUpdater_Run(t *testing.T) {
	ctx := context.Background()
	companies := new(MockCompanyRepository)
	storage := new(MockObjectReader)
	recorder, versions, publisher := newRecorder()
	updater := NewOneListUpdater(&recordingTx{}, companies, storage, recorder, zap.NewNop())

	matched := company.NewCompany("Matched Ltd", nil)
	missingID := uuid.New()
	classification := uuid.New()
	owner := uuid.New()

	storage.On("Open", ctx, "default", "one-list.csv").Return(csvBody(
		"id,classification_id,one_list_account_owner_id",
		matched.ID.String()+","+classification.String()+","+owner.String(),
		"not-a-uuid,,",
		missingID.String()+",,",
	), nil)
	companies.On("FindByID", ctx, matched.ID).Return(matched, nil)
	companies.On("FindByID", ctx, missingID).Return(nil, shared.ErrNotFound)
	companies.On("Save", ctx, matched).Return(nil)
	versions.On("Save", ctx, mock.MatchedBy(func(v *auditdomain.Version) bool {
		return v.ObjectID == matched.ID && v.Revision.Comment == OneListComment
	})).Return(nil)
	publisher.On("Publish", ctx, mock.Anything).Return(nil)

	summary, err := updater.Run(ctx, OneListOptions{BucketID: "default", Key: "one-list.csv"})

	require.NoError(t, err)
	assert.Equal(t, Summary{Succeeded: 1, Failed: 2}, *summary)
	assert.Equal(t, classification, *matched.ClassificationID)
	assert.Equal(t, owner, *matched.OneListAccountOwnerID)
	versions.AssertExpectations(t)
	companies.AssertNotCalled(t, "FindWithOneListFields", mock.Anything)
}

func TestOneListUpdater_Run_ResetUnmatched(t *testing.T) {
	ctx := context.Background()
	companies := new(MockCompanyRepository)
	storage := new(MockObjectReader)
	recorder, versions, publisher := newRecorder()
	updater := NewOneListUpdater(&recordingTx{}, companies, storage, recorder, zap.NewNop())

	owner := uuid.New()
	listed := company.NewCompany("Listed Ltd", nil)
	listed.OneListAccountOwnerID = &owner
	stale := company.NewCompany("Stale Ltd", nil)
	stale.OneListAccountOwnerID = &owner

	storage.On("Open", ctx, "default", "one-list.csv").Return(csvBody(
		"id,classification_id,one_list_account_owner_id",
		listed.ID.String()+",,"+owner.String(),
	), nil)
	companies.On("FindByID", ctx, listed.ID).Return(listed, nil)
	companies.On("FindByID", ctx, stale.ID).Return(stale, nil)
	companies.On("FindWithOneListFields", ctx).Return([]company.Company{*listed, *stale}, nil)
	companies.On("Save", ctx, stale).Return(nil)
	versions.On("Save", ctx, mock.Anything).Return(nil)
	publisher.On("Publish", ctx, mock.Anything).Return(nil)

	summary, err := updater.Run(ctx, OneListOptions{BucketID: "default", Key: "one-list.csv", ResetUnmatched: true})

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Nil(t, stale.OneListAccountOwnerID)
	companies.AssertNumberOfCalls(t, "Save", 1)
	versions.AssertNumberOfCalls(t, "Save", 1)
}

func TestOneListUpdater_Run_Simulate(t *testing.T) {
	ctx := context.Background()
	companies := new(MockCompanyRepository)
	storage := new(MockObjectReader)
	recorder, _, _ := newRecorder()
	tx := &recordingTx{}
	updater := NewOneListUpdater(tx, companies, storage, recorder, zap.NewNop())

	target := company.NewCompany("Target Ltd", nil)
	storage.On("Open", ctx, "default", "one-list.csv").Return(csvBody(
		"id,classification_id,one_list_account_owner_id",
		target.ID.String()+","+uuid.NewString()+",",
	), nil)
	companies.On("FindByID", ctx, target.ID).Return(target, nil)

	summary, err := updater.Run(ctx, OneListOptions{BucketID: "default", Key: "one-list.csv", Simulate: true})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Nil(t, target.ClassificationID)
	assert.Zero(t, tx.calls)
	companies.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOneListUpdater_Run_InvalidFile(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong header", func(t *testing.T) {
		storage := new(MockObjectReader)
		recorder, _, _ := newRecorder()
		updater := NewOneListUpdater(&recordingTx{}, new(MockCompanyRepository), storage, recorder, zap.NewNop())
		storage.On("Open", ctx, "default", "bad.csv").Return(csvBody("id,name"), nil)

		_, err := updater.Run(ctx, OneListOptions{BucketID: "default", Key: "bad.csv"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "id,classification_id,one_list_account_owner_id")
	})

	t.Run("missing object", func(t *testing.T) {
		storage := new(MockObjectReader)
		recorder, _, _ := newRecorder()
		updater := NewOneListUpdater(&recordingTx{}, new(MockCompanyRepository), storage, recorder, zap.NewNop())
		storage.On("Open", ctx, "default", "missing.csv").Return(nil, errors.New("no such key"))

		_, err := updater.Run(ctx, OneListOptions{BucketID: "default", Key: "missing.csv"})

		assert.ErrorContains(t, err, "no such key")
	})
}
