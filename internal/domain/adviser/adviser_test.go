package adviser

import (
	"testing"

	"github.com/datahub/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAdviser(t *testing.T) {
	a, err := NewAdviser(" ada@example.com ", "Ada", "Lovelace")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", a.Email)
	assert.True(t, a.IsActive)
	assert.False(t, a.IsStaff)

	_, err = NewAdviser("", "Ada", "Lovelace")
	verrs, ok := shared.AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{"This field is required."}, verrs["email"])
}

func TestAdviser_Name(t *testing.T) {
	tests := []struct {
		first, last, want string
	}{
		{"Ada", "Lovelace", "Ada Lovelace"},
		{"Ada", "", "Ada"},
		{"", "Lovelace", "Lovelace"},
		{" ", " ", ""},
	}
	for _, tt := range tests {
		a := &Adviser{FirstName: tt.first, LastName: tt.last}
		assert.Equal(t, tt.want, a.Name())
	}
}

func TestAdviser_CurrentEmail(t *testing.T) {
	a := &Adviser{Email: "login@example.com"}
	assert.Equal(t, "login@example.com", a.CurrentEmail())
	a.ContactEmail = "contact@example.com"
	assert.Equal(t, "contact@example.com", a.CurrentEmail())
}

func TestFoldEmail(t *testing.T) {
	assert.Equal(t, FoldEmail("Ada@Example.COM"), FoldEmail("ada@example.com"))
}
