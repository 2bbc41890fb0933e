// Package adviser models the staff users of the system
package adviser

import (
	"context"
	"strings"
	"time"

	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// AggregateType identifies advisers in audit versions and events
const AggregateType = "adviser"

var folder = cases.Fold()

// Adviser is a member of staff. Email doubles as the username.
type Adviser struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	TelephoneNumber string     `json:"telephone_number"`
	ContactEmail    string     `json:"contact_email"`
	DITTeamID       *uuid.UUID `json:"dit_team"`
	IsActive        bool       `json:"is_active"`
	IsStaff         bool       `json:"is_staff"`
	IsSuperuser     bool       `json:"is_superuser"`
	DateJoined      time.Time  `json:"date_joined"`
	SSOEmailUserID  *string    `json:"sso_email_user_id"`
	PasswordHash    string     `json:"-"`
	LastLogin       *time.Time `json:"last_login"`
}

// NewAdviser creates an active adviser
func NewAdviser(email, firstName, lastName string) (*Adviser, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, shared.NewFieldError("email", "This field is required.")
	}
	return &Adviser{
		ID:         uuid.New(),
		Email:      email,
		FirstName:  firstName,
		LastName:   lastName,
		IsActive:   true,
		DateJoined: time.Now().UTC(),
	}, nil
}

// Name joins the non-empty parts of the adviser's name
func (a *Adviser) Name() string {
	parts := make([]string, 0, 2)
	for _, p := range []string{a.FirstName, a.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// CurrentEmail returns the contact email if set, else the login email
func (a *Adviser) CurrentEmail() string {
	if a.ContactEmail != "" {
		return a.ContactEmail
	}
	return a.Email
}

// SetSSOEmailUserID links the adviser to an SSO identity
func (a *Adviser) SetSSOEmailUserID(id string) {
	a.SSOEmailUserID = &id
}

// RecordLogin updates the last login time
func (a *Adviser) RecordLogin(at time.Time) {
	a.LastLogin = &at
}

// FoldEmail returns the case-folded form of an email used for lookups
func FoldEmail(email string) string {
	return folder.String(strings.TrimSpace(email))
}

// Repository persists advisers
type Repository interface {
	// FindByID finds an adviser by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Adviser, error)

	// FindByIDs finds advisers by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Adviser, error)

	// FindByEmail finds an adviser by email, ignoring case
	FindByEmail(ctx context.Context, email string) (*Adviser, error)

	// FindBySSOEmailUserID finds an adviser by SSO email user id
	FindBySSOEmailUserID(ctx context.Context, ssoEmailUserID string) (*Adviser, error)

	// FindAll lists advisers. Supports is_active and autocomplete filters.
	FindAll(ctx context.Context, filter shared.Filter) ([]Adviser, int64, error)

	// Save creates or updates an adviser
	Save(ctx context.Context, a *Adviser) error

	// UpdateLastLogin sets last_login without touching other columns
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
