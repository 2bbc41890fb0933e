// Package cache holds the Redis connection and read-through caches in front
// of rarely changing tables
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/datahub/backend/internal/domain/metadata"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultMetadataTTL bounds how stale a cached reference table can get
const DefaultMetadataTTL = 10 * time.Minute

const metadataKeyPrefix = "datahub:metadata:"

// MetadataRepository caches reference table listings in Redis. Every other
// call goes straight to the wrapped repository.
type MetadataRepository struct {
	metadata.Repository
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// MetadataRepositoryOption configures a MetadataRepository
type MetadataRepositoryOption func(*MetadataRepository)

// WithMetadataTTL sets how long a listing stays cached
func WithMetadataTTL(ttl time.Duration) MetadataRepositoryOption {
	return func(r *MetadataRepository) {
		r.ttl = ttl
	}
}

// WithMetadataLogger sets the logger
func WithMetadataLogger(logger *zap.Logger) MetadataRepositoryOption {
	return func(r *MetadataRepository) {
		r.logger = logger
	}
}

// NewMetadataRepository wraps next with a Redis cache
func NewMetadataRepository(next metadata.Repository, client redis.UniversalClient, opts ...MetadataRepositoryOption) *MetadataRepository {
	r := &MetadataRepository{
		Repository: next,
		client:     client,
		ttl:        DefaultMetadataTTL,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func metadataKey(kind metadata.Kind) string {
	return metadataKeyPrefix + string(kind)
}

// FindAll serves the listing from Redis when present. Redis failures fall
// back to the database.
func (r *MetadataRepository) FindAll(ctx context.Context, kind metadata.Kind) ([]metadata.Item, error) {
	key := metadataKey(kind)
	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var items []metadata.Item
		if err := json.Unmarshal(raw, &items); err == nil {
			for i := range items {
				items[i].Kind = kind
			}
			return items, nil
		}
		r.logger.Warn("Discarding unreadable metadata cache entry", zap.String("kind", string(kind)))
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("Metadata cache unavailable", zap.String("kind", string(kind)), zap.Error(err))
	}

	items, err := r.Repository.FindAll(ctx, kind)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(items); err == nil {
		if err := r.client.Set(ctx, key, encoded, r.ttl).Err(); err != nil {
			r.logger.Warn("Failed to cache metadata", zap.String("kind", string(kind)), zap.Error(err))
		}
	}
	return items, nil
}

// Upsert writes through and drops the cached listings of every touched kind
func (r *MetadataRepository) Upsert(ctx context.Context, items []metadata.Item) error {
	if err := r.Repository.Upsert(ctx, items); err != nil {
		return err
	}
	seen := map[metadata.Kind]bool{}
	keys := make([]string, 0, 1)
	for _, item := range items {
		if !seen[item.Kind] {
			seen[item.Kind] = true
			keys = append(keys, metadataKey(item.Kind))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn("Failed to invalidate metadata cache", zap.Strings("keys", keys), zap.Error(err))
	}
	return nil
}
