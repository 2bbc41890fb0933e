package company

import (
	"context"
	"errors"
	"testing"

	"github.com/datahub/backend/internal/application/audit"
	auditdomain "github.com/datahub/backend/internal/domain/audit"
	"github.com/datahub/backend/internal/domain/company"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type companyFixture struct {
	service      *CompanyService
	companies    *MockCompanyRepository
	contacts     *MockContactRepository
	referrals    *MockReferralRepository
	interactions *MockInteractionRepository
	projects     *MockProjectRepository
	wins         *MockWinRepository
	versions     *MockVersionRepository
	publisher    *MockEventPublisher
}

func newCompanyFixture() *companyFixture {
	f := &companyFixture{
		companies:    new(MockCompanyRepository),
		contacts:     new(MockContactRepository),
		referrals:    new(MockReferralRepository),
		interactions: new(MockInteractionRepository),
		projects:     new(MockProjectRepository),
		wins:         new(MockWinRepository),
		versions:     new(MockVersionRepository),
		publisher:    new(MockEventPublisher),
	}
	recorder := audit.NewRecorder(f.versions, f.publisher, zap.NewNop())
	f.service = NewCompanyService(passthroughTx{}, Repositories{
		Companies:    f.companies,
		Contacts:     f.contacts,
		Referrals:    f.referrals,
		Interactions: f.interactions,
		Projects:     f.projects,
		Wins:         f.wins,
	}, recorder, zap.NewNop())
	return f
}

func validCompanyData() map[string]any {
	return map[string]any{
		"name":            "Acme Ltd",
		"address_1":       "1 Main Street",
		"address_town":    "Paris",
		"address_country": uuid.NewString(),
		"sector":          uuid.NewString(),
		"business_type":   uuid.NewString(),
	}
}

func TestCompanyService_Create(t *testing.T) {
	f := newCompanyFixture()
	ctx := context.Background()
	by := uuid.New()

	f.companies.On("Save", ctx, mock.AnythingOfType("*company.Company")).Return(nil)
	f.versions.On("Save", ctx, mock.MatchedBy(func(v *auditdomain.Version) bool {
		return v.ObjectType == company.AggregateType && v.SerializedData["name"] == "Acme Ltd"
	})).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

	c, err := f.service.Create(ctx, validCompanyData(), &by)

	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", c.Name)
	assert.Equal(t, "Paris", c.AddressTown)
	assert.Equal(t, &by, c.CreatedByID)
	f.companies.AssertExpectations(t)
	f.versions.AssertExpectations(t)
	f.publisher.AssertCalled(t, "Publish", ctx, savedEvents(company.AggregateType, c.ID))
}

func TestCompanyService_Create_ValidationError(t *testing.T) {
	f := newCompanyFixture()
	data := validCompanyData()
	delete(data, "name")
	delete(data, "sector")

	_, err := f.service.Create(context.Background(), data, nil)

	verrs, ok := shared.AsValidationErrors(err)
	require.True(t, ok)
	assert.Contains(t, verrs, "name")
	assert.Contains(t, verrs, "sector")
	f.companies.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCompanyService_Create_IgnoresReadOnlyFields(t *testing.T) {
	f := newCompanyFixture()
	ctx := context.Background()
	f.companies.On("Save", ctx, mock.Anything).Return(nil)
	f.versions.On("Save", ctx, mock.Anything).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

	data := validCompanyData()
	data["reference_code"] = "ORG-1"
	data["archived"] = true

	c, err := f.service.Create(ctx, data, nil)

	require.NoError(t, err)
	assert.Empty(t, c.ReferenceCode)
	assert.False(t, c.Archived)
}

func TestCompanyService_Update(t *testing.T) {
	f := newCompanyFixture()
	ctx := context.Background()
	existing := company.NewCompany("Old name", nil)
	f.companies.On("FindByID", ctx, existing.ID).Return(existing, nil)
	f.companies.On("Save", ctx, existing).Return(nil)
	f.versions.On("Save", ctx, mock.Anything).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

	c, err := f.service.Update(ctx, existing.ID, map[string]any{"name": "New name"}, nil)

	require.NoError(t, err)
	assert.Equal(t, "New name", c.Name)
}

func TestCompanyService_Update_CannotClearSector(t *testing.T) {
	f := newCompanyFixture()
	ctx := context.Background()
	sector := uuid.New()
	existing := company.NewCompany("Acme", nil)
	existing.SectorID = &sector
	f.companies.On("FindByID", ctx, existing.ID).Return(existing, nil)

	_, err := f.service.Update(ctx, existing.ID, map[string]any{"sector": nil}, nil)

	verrs, ok := shared.AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{"This field is required."}, verrs["sector"])
}

func TestCompanyService_Update_NotFound(t *testing.T) {
	f := newCompanyFixture()
	id := uuid.New()
	f.companies.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := f.service.Update(context.Background(), id, map[string]any{}, nil)

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCompanyService_Archive(t *testing.T) {
	t.Run("requires a reason", func(t *testing.T) {
		f := newCompanyFixture()
		_, err := f.service.Archive(context.Background(), uuid.New(), "  ", nil)

		verrs, ok := shared.AsValidationErrors(err)
		require.True(t, ok)
		assert.Equal(t, []string{MessageReasonRequired}, verrs["reason"])
	})

	t.Run("archives", func(t *testing.T) {
		f := newCompanyFixture()
		ctx := context.Background()
		by := uuid.New()
		existing := company.NewCompany("Acme", nil)
		f.companies.On("FindByID", ctx, existing.ID).Return(existing, nil)
		f.companies.On("Save", ctx, existing).Return(nil)
		f.versions.On("Save", ctx, mock.Anything).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		c, err := f.service.Archive(ctx, existing.ID, "Dissolved", &by)

		require.NoError(t, err)
		assert.True(t, c.Archived)
		assert.Equal(t, "Dissolved", c.ArchivedReason)
		assert.Equal(t, &by, c.ArchivedByID)
	})

	t.Run("already archived", func(t *testing.T) {
		f := newCompanyFixture()
		ctx := context.Background()
		existing := company.NewCompany("Acme", nil)
		require.NoError(t, existing.Archive(nil, "first"))
		f.companies.On("FindByID", ctx, existing.ID).Return(existing, nil)

		_, err := f.service.Archive(ctx, existing.ID, "again", nil)

		assert.ErrorIs(t, err, shared.ErrAlreadyArchived)
	})
}

func TestCompanyService_Unarchive(t *testing.T) {
	f := newCompanyFixture()
	ctx := context.Background()
	existing := company.NewCompany("Acme", nil)
	require.NoError(t, existing.Archive(nil, "Dissolved"))
	f.companies.On("FindByID", ctx, existing.ID).Return(existing, nil)
	f.companies.On("Save", ctx, existing).Return(nil)
	f.versions.On("Save", ctx, mock.Anything).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

	c, err := f.service.Unarchive(ctx, existing.ID, nil)

	require.NoError(t, err)
	assert.False(t, c.Archived)
	assert.Empty(t, c.ArchivedReason)
}

func TestCompanyService_Save_VersionFailureIsReturned(t *testing.T) {
	f := newCompanyFixture()
	ctx := context.Background()
	f.companies.On("Save", ctx, mock.Anything).Return(nil)
	f.versions.On("Save", ctx, mock.Anything).Return(errors.New("db down"))

	_, err := f.service.Create(ctx, validCompanyData(), nil)

	assert.EqualError(t, err, "db down")
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCompanyService_Merge(t *testing.T) {
	f := newCompanyFixture()
	ctx := context.Background()
	by := uuid.New()
	source := company.NewCompany("Acme duplicate", nil)
	target := company.NewCompany("Acme", nil)

	f.companies.On("FindByID", ctx, source.ID).Return(source, nil)
	f.companies.On("FindByID", ctx, target.ID).Return(target, nil)
	f.companies.On("CountSubsidiaries", ctx, source.ID).Return(int64(0), nil)
	f.contacts.On("ReassignCompany", ctx, source.ID, target.ID).Return(int64(2), nil)
	f.interactions.On("ReassignCompany", ctx, source.ID, target.ID).Return(int64(5), nil)
	f.referrals.On("ReassignCompany", ctx, source.ID, target.ID).Return(int64(1), nil)
	f.projects.On("ReassignCompany", ctx, source.ID, target.ID).Return(int64(0), nil)
	f.wins.On("ReassignCompany", ctx, source.ID, target.ID).Return(int64(3), nil)
	f.companies.On("Save", ctx, source).Return(nil)
	f.versions.On("Save", ctx, mock.MatchedBy(func(v *auditdomain.Version) bool {
		return v.ObjectID == source.ID && v.Revision.Comment == MergeComment
	})).Return(nil)
	f.publisher.On("Publish", ctx, savedEvents(company.AggregateType, source.ID, target.ID)).Return(nil)

	result, err := f.service.Merge(ctx, source.ID, target.ID, &by)

	require.NoError(t, err)
	assert.Equal(t, &MergeResult{Contacts: 2, Interactions: 5, Referrals: 1, ExportWins: 3}, result)
	assert.True(t, source.Archived)
	assert.Equal(t, &target.ID, source.TransferredToID)
	assert.Equal(t, company.TransferReasonDuplicate, source.TransferReason)
	assert.Equal(t,
		"This record is no longer in use and its data has been transferred to Acme for the following reason: Duplicate record.",
		source.ArchivedReason)
	f.publisher.AssertExpectations(t)
}

func TestCompanyService_Merge_Invalid(t *testing.T) {
	ctx := context.Background()

	t.Run("source is a global headquarters", func(t *testing.T) {
		f := newCompanyFixture()
		source := company.NewCompany("HQ", nil)
		target := company.NewCompany("Other", nil)
		f.companies.On("FindByID", ctx, source.ID).Return(source, nil)
		f.companies.On("FindByID", ctx, target.ID).Return(target, nil)
		f.companies.On("CountSubsidiaries", ctx, source.ID).Return(int64(4), nil)

		_, err := f.service.Merge(ctx, source.ID, target.ID, nil)

		assert.ErrorIs(t, err, company.ErrInvalidMergeSource)
	})

	t.Run("target is archived", func(t *testing.T) {
		f := newCompanyFixture()
		source := company.NewCompany("Dup", nil)
		target := company.NewCompany("Archived", nil)
		require.NoError(t, target.Archive(nil, "gone"))
		f.companies.On("FindByID", ctx, source.ID).Return(source, nil)
		f.companies.On("FindByID", ctx, target.ID).Return(target, nil)
		f.companies.On("CountSubsidiaries", ctx, source.ID).Return(int64(0), nil)

		_, err := f.service.Merge(ctx, source.ID, target.ID, nil)

		assert.ErrorIs(t, err, company.ErrInvalidMergeTarget)
	})

	t.Run("same company", func(t *testing.T) {
		f := newCompanyFixture()
		id := uuid.New()

		_, err := f.service.Merge(ctx, id, id, nil)

		assert.ErrorIs(t, err, company.ErrInvalidMergeSource)
	})
}

func TestCompanyService_List_NormalizesFilter(t *testing.T) {
	f := newCompanyFixture()
	ctx := context.Background()
	f.companies.On("FindAll", ctx, mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Limit == shared.MaxPageSize && filter.Offset == 0
	})).Return([]company.Company{*company.NewCompany("Acme", nil)}, int64(1), nil)

	result, err := f.service.List(ctx, shared.Filter{Offset: -4, Limit: 5000})

	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Count)
	assert.Len(t, result.Results, 1)
}
