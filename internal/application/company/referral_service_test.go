package company

import (
	"context"
	"testing"

	"github.com/datahub/backend/internal/application/audit"
	"github.com/datahub/backend/internal/domain/company"
	"github.com/datahub/backend/internal/domain/interaction"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type referralFixture struct {
	service   *ReferralService
	referrals *MockReferralRepository
	creator   *MockInteractionCreator
	publisher *MockEventPublisher
}

func newReferralFixture() *referralFixture {
	f := &referralFixture{
		referrals: new(MockReferralRepository),
		creator:   new(MockInteractionCreator),
		publisher: new(MockEventPublisher),
	}
	recorder := audit.NewRecorder(new(MockVersionRepository), f.publisher, zap.NewNop())
	f.service = NewReferralService(passthroughTx{}, f.referrals, f.creator, recorder)
	return f
}

func TestReferralService_Create(t *testing.T) {
	f := newReferralFixture()
	ctx := context.Background()
	sender := uuid.New()
	f.referrals.On("Save", ctx, mock.AnythingOfType("*company.Referral")).Return(nil)

	r, err := f.service.Create(ctx, CreateReferralRequest{
		CompanyID:   uuid.New(),
		RecipientID: uuid.New(),
		Subject:     "Needs export help",
		Notes:       "Call them",
	}, &sender)

	require.NoError(t, err)
	assert.Equal(t, company.ReferralStatusOutstanding, r.Status)
	assert.Equal(t, "Call them", r.Notes)
	assert.True(t, r.IsVisibleTo(sender))
}

func TestReferralService_Create_RequiredFields(t *testing.T) {
	f := newReferralFixture()

	_, err := f.service.Create(context.Background(), CreateReferralRequest{}, nil)

	verrs, ok := shared.AsValidationErrors(err)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"company", "recipient", "subject"}, verrs.Fields())
}

func TestReferralService_Get_HiddenFromOtherAdvisers(t *testing.T) {
	f := newReferralFixture()
	ctx := context.Background()
	sender := uuid.New()
	r, err := company.NewReferral(uuid.New(), uuid.New(), "Subject", &sender)
	require.NoError(t, err)
	f.referrals.On("FindByID", ctx, r.ID).Return(r, nil)

	_, err = f.service.Get(ctx, r.ID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	got, err := f.service.Get(ctx, r.ID, r.RecipientID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
}

func TestReferralService_Complete(t *testing.T) {
	f := newReferralFixture()
	ctx := context.Background()
	recipient := uuid.New()
	r, err := company.NewReferral(uuid.New(), recipient, "Subject", nil)
	require.NoError(t, err)
	created := interaction.New(interaction.KindInteraction, &recipient)

	f.referrals.On("FindByID", ctx, r.ID).Return(r, nil)
	f.creator.On("CreateWithinTransaction", ctx, mock.MatchedBy(func(data map[string]any) bool {
		return data["company"] == r.CompanyID.String() && data["subject"] == "Follow up"
	}), &recipient).Return(created, nil)
	f.referrals.On("Save", ctx, r).Return(nil)
	f.publisher.On("Publish", ctx, savedEvents(interaction.AggregateType, created.ID)).Return(nil)

	got, err := f.service.Complete(ctx, r.ID, map[string]any{"subject": "Follow up"}, &recipient)

	require.NoError(t, err)
	assert.Equal(t, company.ReferralStatusComplete, got.Status)
	assert.Equal(t, &created.ID, got.InteractionID)
	assert.Equal(t, &recipient, got.CompletedByID)
	assert.NotNil(t, got.CompletedOn)
	f.publisher.AssertExpectations(t)
}

func TestReferralService_Complete_NotOutstanding(t *testing.T) {
	f := newReferralFixture()
	ctx := context.Background()
	recipient := uuid.New()
	r, err := company.NewReferral(uuid.New(), recipient, "Subject", nil)
	require.NoError(t, err)
	r.Status = company.ReferralStatusClosed
	f.referrals.On("FindByID", ctx, r.ID).Return(r, nil)

	_, err = f.service.Complete(ctx, r.ID, nil, &recipient)

	verrs, ok := shared.AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t,
		[]string{"This referral can’t be completed as it’s not in the outstanding status"},
		verrs[shared.NonFieldErrorsKey])
	f.creator.AssertNotCalled(t, "CreateWithinTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func TestReferralService_Complete_InteractionInvalid(t *testing.T) {
	f := newReferralFixture()
	ctx := context.Background()
	recipient := uuid.New()
	r, err := company.NewReferral(uuid.New(), recipient, "Subject", nil)
	require.NoError(t, err)
	f.referrals.On("FindByID", ctx, r.ID).Return(r, nil)
	f.creator.On("CreateWithinTransaction", ctx, mock.Anything, &recipient).
		Return(nil, shared.NewFieldError("date", "This field is required."))

	_, err = f.service.Complete(ctx, r.ID, map[string]any{}, &recipient)

	verrs, ok := shared.AsValidationErrors(err)
	require.True(t, ok)
	assert.Contains(t, verrs, "date")
	assert.Equal(t, company.ReferralStatusOutstanding, r.Status)
	f.referrals.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
