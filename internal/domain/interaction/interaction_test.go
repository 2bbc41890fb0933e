package interaction

import (
	"context"
	"errors"
	"testing"

	"github.com/datahub/backend/internal/domain/metadata"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/datahub/backend/internal/domain/validation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLookup struct {
	hasChildren    bool
	questions      []metadata.ServiceQuestion
	contactCompany *uuid.UUID
	err            error
}

func (s *stubLookup) ServiceQuestions(_ context.Context, _ uuid.UUID) ([]metadata.ServiceQuestion, error) {
	return s.questions, s.err
}

func (s *stubLookup) ServiceHasChildren(_ context.Context, _ uuid.UUID) (bool, error) {
	return s.hasChildren, s.err
}

func (s *stubLookup) ContactCompanies(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*uuid.UUID, error) {
	companies := make(map[uuid.UUID]*uuid.UUID, len(ids))
	for _, id := range ids {
		companies[id] = s.contactCompany
	}
	return companies, s.err
}

type fixture struct {
	company uuid.UUID
	contact uuid.UUID
	service uuid.UUID
	lookup  *stubLookup
}

func newFixture() *fixture {
	f := &fixture{
		company: uuid.New(),
		contact: uuid.New(),
		service: uuid.New(),
	}
	f.lookup = &stubLookup{contactCompany: &f.company}
	return f
}

func (f *fixture) data(overrides map[string]any) map[string]any {
	data := map[string]any{
		"kind":                         string(KindInteraction),
		"date":                         "2024-05-01",
		"subject":                      "Export advice",
		"company":                      f.company.String(),
		"contacts":                     []any{f.contact.String()},
		"dit_participants":             []any{map[string]any{"adviser": uuid.NewString()}},
		"communication_channel":        uuid.NewString(),
		"service":                      f.service.String(),
		"was_policy_feedback_provided": false,
		"theme":                        string(ThemeExport),
		"were_countries_discussed":     false,
	}
	for k, v := range overrides {
		if v == nil {
			delete(data, k)
			continue
		}
		data[k] = v
	}
	return data
}

func (f *fixture) validate(instance, data map[string]any, flag bool) (shared.ValidationErrors, error) {
	if instance == nil {
		ApplyCreateDefaults(data)
	}
	err := Validator(context.Background(), f.lookup, Options{ExportCountriesEnabled: flag}).
		Validate(validation.NewDataCombiner(instance, data))
	if err == nil {
		return nil, nil
	}
	verrs, ok := shared.AsValidationErrors(err)
	if !ok {
		return nil, err
	}
	return verrs, nil
}

func TestInteraction_IsEvent(t *testing.T) {
	i := New(KindInteraction, nil)
	assert.Nil(t, i.IsEvent())

	i.Kind = KindServiceDelivery
	require.NotNil(t, i.IsEvent())
	assert.False(t, *i.IsEvent())

	event := uuid.New()
	i.EventID = &event
	assert.True(t, *i.IsEvent())

	m, err := validation.ToMap(i)
	require.NoError(t, err)
	assert.Equal(t, true, m["is_event"])
	assert.Equal(t, string(StatusComplete), m["status"])
}

func TestInteraction_SetParticipantTeams(t *testing.T) {
	kept, added := uuid.New(), uuid.New()
	oldTeam, newTeam := uuid.New(), uuid.New()
	i := New(KindInteraction, nil)
	i.DITParticipants = []DITParticipant{{AdviserID: kept}, {AdviserID: added}}

	i.SetParticipantTeams(
		[]DITParticipant{{AdviserID: kept, TeamID: &oldTeam}},
		map[uuid.UUID]*uuid.UUID{kept: &newTeam, added: &newTeam},
	)

	assert.Equal(t, &oldTeam, i.DITParticipants[0].TeamID)
	assert.Equal(t, &newTeam, i.DITParticipants[1].TeamID)
	assert.Equal(t, []uuid.UUID{kept, added}, i.AdviserIDs())
}

func TestValidator_Create(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		flag      bool
		want      shared.ValidationErrors
	}{
		{
			name: "valid interaction",
			flag: true,
		},
		{
			name: "required fields",
			overrides: map[string]any{
				"date": nil, "subject": nil, "company": nil, "contacts": nil,
				"dit_participants": nil, "was_policy_feedback_provided": nil,
			},
			flag: true,
			want: shared.ValidationErrors{
				"date":                         {validation.MessageRequired},
				"subject":                      {validation.MessageRequired},
				"company":                      {validation.MessageRequired},
				"contacts":                     {validation.MessageRequired},
				"dit_participants":             {validation.MessageRequired},
				"was_policy_feedback_provided": {validation.MessageRequired},
			},
		},
		{
			name:      "empty participant list",
			overrides: map[string]any{"dit_participants": []any{}},
			flag:      true,
			want:      shared.ValidationErrors{"dit_participants": {"This list may not be empty."}},
		},
		{
			name:      "invalid status",
			overrides: map[string]any{"status": "foobar"},
			flag:      true,
			want:      shared.ValidationErrors{"status": {`"foobar" is not a valid choice.`}},
		},
		{
			name:      "service required for complete interaction",
			overrides: map[string]any{"service": nil},
			flag:      true,
			want:      shared.ValidationErrors{"service": {validation.MessageRequired}},
		},
		{
			name:      "communication channel required for complete interaction",
			overrides: map[string]any{"communication_channel": nil},
			flag:      true,
			want:      shared.ValidationErrors{"communication_channel": {validation.MessageRequired}},
		},
		{
			name:      "draft does not need service or channel",
			overrides: map[string]any{"status": "draft", "service": nil, "communication_channel": nil},
			flag:      true,
		},
		{
			name: "service delivery fields on interaction",
			overrides: map[string]any{
				"event":                   uuid.NewString(),
				"is_event":                true,
				"service_delivery_status": uuid.NewString(),
			},
			flag: true,
			want: shared.ValidationErrors{
				"is_event":                {Message("invalid_for_non_service_delivery")},
				"event":                   {Message("invalid_for_non_service_delivery")},
				"service_delivery_status": {Message("invalid_for_non_service_delivery")},
			},
		},
		{
			name: "service delivery rejects channel and requires is_event",
			overrides: map[string]any{
				"kind": string(KindServiceDelivery), "investment_project": uuid.NewString(),
			},
			flag: true,
			want: shared.ValidationErrors{
				"investment_project":    {Message("invalid_for_non_interaction")},
				"communication_channel": {Message("invalid_for_service_delivery")},
				"is_event":              {validation.MessageRequired},
			},
		},
		{
			name: "event service delivery",
			overrides: map[string]any{
				"kind": string(KindServiceDelivery), "communication_channel": nil,
				"is_event": true, "event": nil,
				"contacts": []any{uuid.NewString(), uuid.NewString()},
			},
			flag: true,
			want: shared.ValidationErrors{
				"contacts": {Message("too_many_contacts_for_event_service_delivery")},
				"event":    {validation.MessageRequired},
			},
		},
		{
			name: "non event service delivery with event",
			overrides: map[string]any{
				"kind": string(KindServiceDelivery), "communication_channel": nil,
				"is_event": false, "event": uuid.NewString(),
			},
			flag: true,
			want: shared.ValidationErrors{"event": {Message("invalid_for_non_event")}},
		},
		{
			name:      "policy feedback fields without feedback",
			overrides: map[string]any{"policy_feedback_notes": "notes", "policy_areas": []any{uuid.NewString()}},
			flag:      true,
			want: shared.ValidationErrors{
				"policy_feedback_notes": {Message("invalid_when_no_policy_feedback")},
				"policy_areas":          {Message("invalid_when_no_policy_feedback")},
			},
		},
		{
			name:      "policy feedback requires details",
			overrides: map[string]any{"was_policy_feedback_provided": true},
			flag:      true,
			want: shared.ValidationErrors{
				"policy_areas":          {validation.MessageRequired},
				"policy_issue_types":    {validation.MessageRequired},
				"policy_feedback_notes": {validation.MessageRequired},
			},
		},
		{
			name:      "countries discussed required for export theme",
			overrides: map[string]any{"were_countries_discussed": nil},
			flag:      true,
			want:      shared.ValidationErrors{"were_countries_discussed": {validation.MessageRequired}},
		},
		{
			name:      "export countries required when discussed",
			overrides: map[string]any{"were_countries_discussed": true},
			flag:      true,
			want:      shared.ValidationErrors{"export_countries": {validation.MessageRequired}},
		},
		{
			name: "export countries invalid when not discussed",
			overrides: map[string]any{"export_countries": []any{
				map[string]any{"country": uuid.NewString(), "status": "future_interest"},
			}},
			flag: true,
			want: shared.ValidationErrors{"export_countries": {Message("invalid_when_no_countries_discussed")}},
		},
		{
			name: "duplicate export countries",
			overrides: func() map[string]any {
				country := uuid.NewString()
				return map[string]any{
					"were_countries_discussed": true,
					"export_countries": []any{
						map[string]any{"country": country, "status": "future_interest"},
						map[string]any{"country": country, "status": "not_interested"},
					},
				}
			}(),
			flag: true,
			want: shared.ValidationErrors{shared.NonFieldErrorsKey: {MessageDuplicateCountry}},
		},
		{
			name:      "export countries rejected when feature flag off",
			overrides: map[string]any{"were_countries_discussed": false},
			flag:      false,
			want:      shared.ValidationErrors{"were_countries_discussed": {Message("invalid_when_feature_flag_off")}},
		},
		{
			name: "investment theme",
			overrides: map[string]any{
				"theme": string(ThemeInvestment), "were_countries_discussed": nil,
				"investment_project": uuid.NewString(),
			},
			flag: true,
		},
		{
			name: "investment theme service delivery",
			overrides: map[string]any{
				"kind": string(KindServiceDelivery), "theme": string(ThemeInvestment),
				"were_countries_discussed": nil, "communication_channel": nil, "is_event": false,
			},
			flag: true,
			want: shared.ValidationErrors{"kind": {Message("invalid_for_investment")}},
		},
		{
			name: "investment theme requires project",
			overrides: map[string]any{
				"theme": string(ThemeInvestment), "were_countries_discussed": nil,
			},
			flag: true,
			want: shared.ValidationErrors{"investment_project": {validation.MessageRequired}},
		},
		{
			name: "duplicate advisers",
			overrides: func() map[string]any {
				adviser := uuid.NewString()
				return map[string]any{"dit_participants": []any{
					map[string]any{"adviser": adviser},
					map[string]any{"adviser": adviser},
				}}
			}(),
			flag: true,
			want: shared.ValidationErrors{"dit_participants": {MessageDuplicateAdviser}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			verrs, err := f.validate(nil, f.data(tt.overrides), tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, verrs)
		})
	}
}

func TestValidator_ContactsBelongToCompany(t *testing.T) {
	f := newFixture()
	other := uuid.New()
	f.lookup.contactCompany = &other

	verrs, err := f.validate(nil, f.data(nil), true)
	require.NoError(t, err)
	assert.Equal(t, shared.ValidationErrors{shared.NonFieldErrorsKey: {MessageInconsistentContacts}}, verrs)
}

func TestValidator_LookupError(t *testing.T) {
	f := newFixture()
	boom := errors.New("db down")
	f.lookup.err = boom

	_, err := f.validate(nil, f.data(nil), true)
	assert.ErrorIs(t, err, boom)
}

func TestValidator_ServiceWithChildren(t *testing.T) {
	f := newFixture()
	f.lookup.hasChildren = true

	verrs, err := f.validate(nil, f.data(nil), true)
	require.NoError(t, err)
	assert.Equal(t, shared.ValidationErrors{"service": {MessageServiceLeafNode}}, verrs)
}

func TestValidator_Update(t *testing.T) {
	f := newFixture()
	theme := ThemeExport
	existing := New(KindInteraction, nil)
	existing.Theme = &theme
	existing.CompanyID = &f.company
	existing.ContactIDs = []uuid.UUID{f.contact}
	existing.Subject = "Export advice"
	channel := uuid.New()
	existing.CommunicationChannelID = &channel
	existing.ServiceID = &f.service
	instance, err := validation.ToMap(existing)
	require.NoError(t, err)

	t.Run("partial update of subject", func(t *testing.T) {
		verrs, err := f.validate(instance, map[string]any{"subject": "New subject"}, true)
		require.NoError(t, err)
		assert.Nil(t, verrs)
	})

	t.Run("cannot unset theme", func(t *testing.T) {
		verrs, err := f.validate(instance, map[string]any{"theme": nil}, true)
		require.NoError(t, err)
		assert.Equal(t, shared.ValidationErrors{"theme": {Message("cannot_unset_theme")}}, verrs)
	})

	t.Run("countries cannot be updated", func(t *testing.T) {
		verrs, err := f.validate(instance, map[string]any{"were_countries_discussed": true, "export_countries": []any{}}, true)
		require.NoError(t, err)
		assert.Equal(t, shared.ValidationErrors{
			"were_countries_discussed": {Message("invalid_for_update")},
			"export_countries":         {Message("invalid_for_update")},
		}, verrs)
	})

	t.Run("complete interaction status cannot change", func(t *testing.T) {
		verrs, err := f.validate(instance, map[string]any{"status": "draft"}, true)
		require.NoError(t, err)
		assert.Equal(t, shared.ValidationErrors{shared.NonFieldErrorsKey: {MessageStatusCannotChange}}, verrs)
	})
}

func TestValidateServiceAnswers(t *testing.T) {
	questionID := uuid.New()
	optionID := uuid.New()
	otherOption := uuid.New()
	questions := map[string]metadata.ServiceQuestion{
		questionID.String(): {ID: questionID, AnswerOptions: []uuid.UUID{optionID}},
	}

	tests := []struct {
		name      string
		questions map[string]metadata.ServiceQuestion
		answers   any
		want      shared.ValidationErrors
	}{
		{
			name:      "valid",
			questions: questions,
			answers:   map[string]any{questionID.String(): map[string]any{optionID.String(): map[string]any{}}},
		},
		{
			name:    "no questions no answers",
			answers: nil,
		},
		{
			name:      "invalid format",
			questions: questions,
			answers:   []any{"x"},
			want:      shared.ValidationErrors{"service_answers": {MessageAnswersInvalidFormat}},
		},
		{
			name:    "answers not required",
			answers: map[string]any{"q": map[string]any{}},
			want:    shared.ValidationErrors{"service_answers": {MessageAnswersNotRequired}},
		},
		{
			name:      "answers required",
			questions: questions,
			answers:   map[string]any{},
			want:      shared.ValidationErrors{"service_answers": {validation.MessageRequired}},
		},
		{
			name:      "unanswered and unexpected questions",
			questions: questions,
			answers:   map[string]any{"other": map[string]any{optionID.String(): map[string]any{}}},
			want: shared.ValidationErrors{
				questionID.String(): {validation.MessageRequired},
				"other":             {MessageQuestionNotRelated},
			},
		},
		{
			name:      "more than one answer",
			questions: questions,
			answers: map[string]any{questionID.String(): map[string]any{
				optionID.String(): map[string]any{}, otherOption.String(): map[string]any{},
			}},
			want: shared.ValidationErrors{questionID.String(): {MessageOnlyOneAnswer}},
		},
		{
			name:      "no answer option",
			questions: questions,
			answers:   map[string]any{questionID.String(): map[string]any{}},
			want:      shared.ValidationErrors{questionID.String(): {validation.MessageRequired}},
		},
		{
			name:      "answer option from another question",
			questions: questions,
			answers:   map[string]any{questionID.String(): map[string]any{otherOption.String(): map[string]any{}}},
			want:      shared.ValidationErrors{otherOption.String(): {MessageAnswerOptionInvalid}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateServiceAnswers(tt.questions, tt.answers)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			verrs, ok := shared.AsValidationErrors(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, verrs)
		})
	}
}
