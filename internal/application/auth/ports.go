// Package auth authenticates advisers from bearer tokens
package auth

import (
	"context"
	"time"
)

// Introspection is what the SSO provider reports about an access token
type Introspection struct {
	Active      bool   `json:"active"`
	Username    string `json:"username"`
	EmailUserID string `json:"email_user_id"`
	Exp         int64  `json:"exp"`
}

// ExpiresAt returns the expiry time of the token
func (i *Introspection) ExpiresAt() time.Time {
	return time.Unix(i.Exp, 0)
}

// IsValidAt reports whether the token is active and unexpired at now
func (i *Introspection) IsValidAt(now time.Time) bool {
	return i.Active && i.Exp > now.Unix()
}

// Introspector asks the SSO provider about an access token
type Introspector interface {
	Introspect(ctx context.Context, token string) (*Introspection, error)
}
