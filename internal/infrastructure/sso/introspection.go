// Package sso validates bearer tokens against the staff SSO provider
package sso

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	authapp "github.com/datahub/backend/internal/application/auth"
	"github.com/datahub/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Ensure both introspectors implement the application port
var (
	_ authapp.Introspector = (*Client)(nil)
	_ authapp.Introspector = (*CachedIntrospector)(nil)
)

const introspectPath = "o/introspect/"

// ErrNotConfigured is returned when no SSO base URL is configured
var ErrNotConfigured = errors.New("sso base URL is not configured")

// ResponseError is returned for non-2xx introspection responses
type ResponseError struct {
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("sso introspection returned status %d: %s", e.StatusCode, e.Body)
}

// Client calls the SSO token introspection endpoint
type Client struct {
	endpoint    string
	bearerToken string
	httpClient  *http.Client
}

// NewClient creates an introspection client
func NewClient(cfg config.SSOConfig) *Client {
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	endpoint := ""
	if cfg.BaseURL != "" {
		endpoint = strings.TrimSuffix(cfg.BaseURL, "/") + "/" + introspectPath
	}
	return &Client{
		endpoint:    endpoint,
		bearerToken: cfg.BearerToken,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Introspect posts the token to the provider and decodes its answer
func (c *Client) Introspect(ctx context.Context, token string) (*authapp.Introspection, error) {
	if c.endpoint == "" {
		return nil, ErrNotConfigured
	}

	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sso introspection request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &ResponseError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result authapp.Introspection
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode sso introspection response: %w", err)
	}
	return &result, nil
}

// CachedIntrospector caches valid introspection results in Redis under
// access_token:{token} until the earlier of the cache time and token expiry
type CachedIntrospector struct {
	next      authapp.Introspector
	client    redis.UniversalClient
	cacheTime time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewCachedIntrospector wraps next with a Redis cache
func NewCachedIntrospector(next authapp.Introspector, client redis.UniversalClient, cacheTime time.Duration, logger *zap.Logger) *CachedIntrospector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedIntrospector{
		next:      next,
		client:    client,
		cacheTime: cacheTime,
		logger:    logger,
		now:       time.Now,
	}
}

// CacheKey returns the Redis key of a token's cached introspection
func CacheKey(token string) string {
	return "access_token:" + token
}

// Introspect returns the cached result when present, otherwise asks the
// provider and caches the answer if the token is valid
func (c *CachedIntrospector) Introspect(ctx context.Context, token string) (*authapp.Introspection, error) {
	key := CacheKey(token)

	cached, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var result authapp.Introspection
		if err := json.Unmarshal(cached, &result); err == nil {
			return &result, nil
		}
		c.logger.Warn("Discarding unreadable cached introspection")
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Introspection cache lookup failed", zap.Error(err))
	}

	result, err := c.next.Introspect(ctx, token)
	if err != nil {
		return nil, err
	}

	now := c.now()
	if !result.IsValidAt(now) {
		return result, nil
	}
	ttl := min(c.cacheTime, result.ExpiresAt().Sub(now))
	if ttl <= 0 {
		return result, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn("Failed to cache introspection", zap.Error(err))
	}
	return result, nil
}
