package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appErrors "github.com/fredora-academy/school-api/pkg/errors"
)

// CacheMetrics counts lookup outcomes. Implemented by middleware.Metrics.
type CacheMetrics interface {
	CacheHit()
	CacheMiss()
}

// CacheRepository stores JSON documents in Redis. A nil client disables
// caching: every read misses and every write is a no-op.
type CacheRepository struct {
	client  *redis.Client
	metrics CacheMetrics
}

// NewCacheRepository constructs the repository. metrics may be nil.
func NewCacheRepository(client *redis.Client, metrics CacheMetrics) *CacheRepository {
	return &CacheRepository{client: client, metrics: metrics}
}

// Get unmarshals the cached document at key into dest. Returns ErrCacheMiss
// when the key is absent or caching is disabled.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	if r.client == nil {
		r.miss()
		return appErrors.ErrCacheMiss
	}
	payload, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		r.miss()
		return appErrors.ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("cache decode %s: %w", key, err)
	}
	if r.metrics != nil {
		r.metrics.CacheHit()
	}
	return nil
}

func (r *CacheRepository) miss() {
	if r.metrics != nil {
		r.metrics.CacheMiss()
	}
}

// Set marshals value and stores it at key with the given TTL.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete drops keys from the cache.
func (r *CacheRepository) Delete(ctx context.Context, keys ...string) error {
	if r.client == nil || len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}
