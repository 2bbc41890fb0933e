package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/datahub/backend/internal/application/audit"
	"github.com/datahub/backend/internal/domain/adviser"
	"github.com/datahub/backend/internal/domain/shared"
	infraauth "github.com/datahub/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Authentication failure messages returned to API clients
const (
	MessageNotProvided        = "Authentication credentials were not provided."
	MessageIncorrectScheme    = "Incorrect authentication scheme."
	MessageInvalidCredentials = "Invalid authentication credentials."
)

// Authentication errors
var (
	ErrNotProvided        = shared.NewDomainError("UNAUTHORIZED", MessageNotProvided)
	ErrIncorrectScheme    = shared.NewDomainError("UNAUTHORIZED", MessageIncorrectScheme)
	ErrInvalidCredentials = shared.NewDomainError("UNAUTHORIZED", MessageInvalidCredentials)
	ErrLoginDisabled      = shared.NewForbiddenError("Password login is disabled while SSO is enabled.")
)

// MessageBadLogin is the validation error for a failed password login
const MessageBadLogin = "Unable to log in with provided credentials."

// LoginResult is returned after a successful password login
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Service authenticates advisers from bearer tokens. With an introspector
// tokens are checked against SSO, otherwise they must be locally issued JWTs.
type Service struct {
	advisers     adviser.Repository
	introspector Introspector
	jwt          *infraauth.JWTService
	revoked      infraauth.RevocationList
	tx           shared.TransactionManager
	recorder     *audit.Recorder
	logger       *zap.Logger
	now          func() time.Time
}

// ServiceOption configures the Service
type ServiceOption func(*Service)

// WithIntrospector enables SSO token introspection
func WithIntrospector(i Introspector) ServiceOption {
	return func(s *Service) {
		s.introspector = i
	}
}

// WithJWT enables locally issued tokens
func WithJWT(jwt *infraauth.JWTService, revoked infraauth.RevocationList) ServiceOption {
	return func(s *Service) {
		s.jwt = jwt
		s.revoked = revoked
	}
}

// WithAudit records a version when an adviser is linked to their SSO user.
// The save and the version are written in one transaction.
func WithAudit(tx shared.TransactionManager, recorder *audit.Recorder) ServiceOption {
	return func(s *Service) {
		s.tx = tx
		s.recorder = recorder
	}
}

// NewService creates an authentication service
func NewService(advisers adviser.Repository, logger *zap.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		advisers: advisers,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SSOEnabled reports whether tokens are introspected
func (s *Service) SSOEnabled() bool {
	return s.introspector != nil
}

// ParseAuthorizationHeader extracts the bearer token from an Authorization header
func ParseAuthorizationHeader(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrNotProvided
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", ErrIncorrectScheme
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.Contains(token, " ") {
		return "", ErrInvalidCredentials
	}
	return token, nil
}

// Authenticate resolves the active adviser owning token and records the login
func (s *Service) Authenticate(ctx context.Context, token string) (*adviser.Adviser, error) {
	var (
		a   *adviser.Adviser
		err error
	)
	switch {
	case s.introspector != nil:
		a, err = s.authenticateSSO(ctx, token)
	case s.jwt != nil:
		a, err = s.authenticateJWT(ctx, token)
	default:
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !a.IsActive {
		s.logger.Warn("Authentication attempt by inactive adviser", zap.String("adviser_id", a.ID.String()))
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.advisers.UpdateLastLogin(ctx, a.ID, now); err != nil {
		s.logger.Error("Failed to update last login", zap.String("adviser_id", a.ID.String()), zap.Error(err))
	} else {
		a.RecordLogin(now)
	}
	return a, nil
}

func (s *Service) authenticateSSO(ctx context.Context, token string) (*adviser.Adviser, error) {
	info, err := s.introspector.Introspect(ctx, token)
	if err != nil {
		s.logger.Error("Token introspection failed", zap.Error(err))
		return nil, ErrInvalidCredentials
	}
	if !info.IsValidAt(s.now()) || info.EmailUserID == "" {
		return nil, ErrInvalidCredentials
	}
	return s.findSSOAdviser(ctx, info)
}

// findSSOAdviser looks the adviser up by SSO email user id. Advisers not
// linked yet are matched by email and linked.
func (s *Service) findSSOAdviser(ctx context.Context, info *Introspection) (*adviser.Adviser, error) {
	a, err := s.advisers.FindBySSOEmailUserID(ctx, info.EmailUserID)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	email := info.EmailUserID
	if info.Username != "" {
		email = info.Username
	}
	a, err = s.advisers.FindByEmail(ctx, email)
	if errors.Is(err, shared.ErrNotFound) {
		s.logger.Info("No adviser matches SSO user", zap.String("email_user_id", info.EmailUserID))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if a.SSOEmailUserID != nil && *a.SSOEmailUserID != info.EmailUserID {
		return nil, ErrInvalidCredentials
	}

	a.SetSSOEmailUserID(info.EmailUserID)
	if err := s.linkSSOUser(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info("Linked adviser to SSO user",
		zap.String("adviser_id", a.ID.String()),
		zap.String("email_user_id", info.EmailUserID))
	return a, nil
}

// linkSSOUser saves the newly linked adviser and its audit version
func (s *Service) linkSSOUser(ctx context.Context, a *adviser.Adviser) error {
	save := func(ctx context.Context) error {
		if err := s.advisers.Save(ctx, a); err != nil {
			return err
		}
		if s.recorder == nil {
			return nil
		}
		return s.recorder.Record(ctx, adviser.AggregateType, a.ID, a, nil, "Linked to SSO user.")
	}
	if s.tx == nil {
		return save(ctx)
	}
	if err := s.tx.WithinTransaction(ctx, save); err != nil {
		return err
	}
	if s.recorder != nil {
		s.recorder.Saved(ctx, adviser.AggregateType, a.ID)
	}
	return nil
}

func (s *Service) authenticateJWT(ctx context.Context, token string) (*adviser.Adviser, error) {
	claims, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrInvalidCredentials
		}
	}
	id, err := claims.AdviserUUID()
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	a, err := s.advisers.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	return a, err
}

// Login checks an adviser's password and issues an access token
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if s.jwt == nil || s.introspector != nil {
		return nil, ErrLoginDisabled
	}

	a, err := s.advisers.FindByEmail(ctx, email)
	if errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("Login attempt for unknown adviser", zap.String("email", email))
		return nil, shared.NewNonFieldError(MessageBadLogin)
	}
	if err != nil {
		return nil, err
	}
	if !a.IsActive || a.PasswordHash == "" {
		return nil, shared.NewNonFieldError(MessageBadLogin)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("Invalid password attempt", zap.String("adviser_id", a.ID.String()))
		return nil, shared.NewNonFieldError(MessageBadLogin)
	}

	token, err := s.jwt.GenerateAccessToken(a.ID, a.Email)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Adviser logged in", zap.String("adviser_id", a.ID.String()))
	return &LoginResult{
		AccessToken: token.Token,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
	}, nil
}

// Logout revokes a locally issued token for the rest of its lifetime
func (s *Service) Logout(ctx context.Context, token string) error {
	if s.jwt == nil || s.revoked == nil {
		return nil
	}
	claims, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return ErrInvalidCredentials
	}
	return s.revoked.Revoke(ctx, claims.ID, claims.RemainingTTL(s.now()))
}

// HashPassword hashes a password for storage
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
