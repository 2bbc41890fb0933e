package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Is(t *testing.T) {
	t.Run("matches sentinel with same code", func(t *testing.T) {
		err := NewNotFoundError("Specified proposition does not exist")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.False(t, errors.Is(err, ErrConflict))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		err := fmt.Errorf("load company: %w", ErrNotFound)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestValidationErrors(t *testing.T) {
	t.Run("empty errors collapse to nil", func(t *testing.T) {
		v := NewValidationErrors()
		assert.NoError(t, v.OrNil())
		assert.False(t, v.HasErrors())
	})

	t.Run("add and merge keep message order", func(t *testing.T) {
		v := NewFieldError("subject", "This field is required.")
		v.Add("subject", "second")
		v.Merge(NewNonFieldError("Proposition has no documents uploaded."))

		assert.Equal(t, []string{"This field is required.", "second"}, v["subject"])
		assert.Equal(t, []string{"Proposition has no documents uploaded."}, v[NonFieldErrorsKey])
		assert.Equal(t, []string{NonFieldErrorsKey, "subject"}, v.Fields())
	})

	t.Run("extracted from wrapped error", func(t *testing.T) {
		err := fmt.Errorf("create: %w", NewFieldError("kind", "This field is required."))
		v, ok := AsValidationErrors(err)
		require.True(t, ok)
		assert.Contains(t, v, "kind")
	})
}

func TestArchivable(t *testing.T) {
	by := uuid.New()
	var a Archivable

	require.NoError(t, a.Archive(&by, "duplicate"))
	assert.True(t, a.Archived)
	assert.NotNil(t, a.ArchivedOn)
	assert.Equal(t, "duplicate", a.ArchivedReason)
	assert.Equal(t, &by, a.ArchivedByID)

	assert.ErrorIs(t, a.Archive(&by, "again"), ErrAlreadyArchived)

	a.Unarchive()
	assert.False(t, a.Archived)
	assert.Nil(t, a.ArchivedOn)
	assert.Empty(t, a.ArchivedReason)
}

func TestFilter_Normalize(t *testing.T) {
	f := Filter{Offset: -3, Limit: 5000}.Normalize()
	assert.Equal(t, 0, f.Offset)
	assert.Equal(t, MaxPageSize, f.Limit)
	assert.NotNil(t, f.Filters)

	assert.Equal(t, DefaultPageSize, Filter{}.Normalize().Limit)
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	ts, err := ParseDate("2024-02-29T23:10:00Z")
	require.NoError(t, err)
	assert.Equal(t, d, ts)

	_, err = ParseDate("29/02/2024")
	assert.Error(t, err)

	raw, err := json.Marshal(struct {
		On   Date  `json:"on"`
		Till *Date `json:"till"`
		Zero Date  `json:"zero"`
	}{On: d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"on":"2024-02-29","till":null,"zero":null}`, string(raw))

	var decoded struct {
		On Date `json:"on"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"on":"2023-01-02"}`), &decoded))
	assert.Equal(t, NewDate(2023, time.January, 2), decoded.On)

	var scanned Date
	require.NoError(t, scanned.Scan(time.Date(2023, 1, 2, 15, 0, 0, 0, time.UTC)))
	assert.Equal(t, NewDate(2023, time.January, 2), scanned)
	require.NoError(t, scanned.Scan(nil))
	assert.True(t, scanned.IsZero())
}
