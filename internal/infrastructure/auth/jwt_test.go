package auth

import (
	"testing"
	"time"

	"github.com/datahub/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test-issuer",
	})
}

func TestNewJWTService(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret", Issuer: "test-issuer"})

	assert.Equal(t, []byte("test-secret"), svc.secret)
	assert.Equal(t, 10*time.Hour, svc.expiration)
	assert.Equal(t, "test-issuer", svc.issuer)
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()
	adviserID := uuid.New()

	token, err := svc.GenerateAccessToken(adviserID, "ada@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), token.ExpiresAt, 5*time.Second)

	claims, err := svc.ValidateAccessToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, adviserID.String(), claims.AdviserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	parsed, err := claims.AdviserUUID()
	require.NoError(t, err)
	assert.Equal(t, adviserID, parsed)
}

func TestJWTService_UniqueTokenIDs(t *testing.T) {
	svc := newTestJWTService()
	adviserID := uuid.New()

	first, err := svc.GenerateAccessToken(adviserID, "a@example.com")
	require.NoError(t, err)
	second, err := svc.GenerateAccessToken(adviserID, "a@example.com")
	require.NoError(t, err)

	c1, err := svc.ValidateAccessToken(first.Token)
	require.NoError(t, err)
	c2, err := svc.ValidateAccessToken(second.Token)
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, c2.ID)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := newTestJWTService()
	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }

	token, err := svc.GenerateAccessToken(uuid.New(), "a@example.com")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(token.Token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_InvalidTokens(t *testing.T) {
	svc := newTestJWTService()
	other := NewJWTService(config.JWTConfig{Secret: "another-secret-key-at-least-32-chars", Issuer: "test-issuer"})
	foreign, err := other.GenerateAccessToken(uuid.New(), "a@example.com")
	require.NoError(t, err)

	wrongIssuer := NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", Issuer: "elsewhere"})
	elsewhere, err := wrongIssuer.GenerateAccessToken(uuid.New(), "a@example.com")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"wrong secret", foreign.Token},
		{"wrong issuer", elsewhere.Token},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWTService_RejectsNoneAlgorithm(t *testing.T) {
	svc := newTestJWTService()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		AdviserID: uuid.New().String(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_MissingAdviserID(t *testing.T) {
	svc := newTestJWTService()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrMissingAdviserID)
}

func TestJWTService_MissingSecret(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{})

	_, err := svc.GenerateAccessToken(uuid.New(), "a@example.com")
	assert.ErrorIs(t, err, ErrMissingSecret)
	_, err = svc.ValidateAccessToken("x")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestClaims_RemainingTTL(t *testing.T) {
	now := time.Now()
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))}}
	assert.InDelta(t, time.Minute.Seconds(), c.RemainingTTL(now).Seconds(), 1)
	assert.Equal(t, time.Duration(0), c.RemainingTTL(now.Add(time.Hour)))
	assert.Equal(t, time.Duration(0), (&Claims{}).RemainingTTL(now))
}
