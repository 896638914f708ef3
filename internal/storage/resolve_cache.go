package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cashback-id/internal/logging"
	"github.com/cashback-id/internal/types"
)

// resolveKeyPrefix namespaces resolve-cache keys.
// Format: resolve:<fullName>
const resolveKeyPrefix = "resolve:"

// ResolveCache caches resolved preference records with a TTL. Every failure
// is treated as a miss: the allocation store stays authoritative and the
// cache must never make resolution less available.
type ResolveCache struct {
	redis  *RedisCache
	ttl    time.Duration
	logger *logging.Logger
}

// NewResolveCache creates a resolve cache on top of a Redis connection.
func NewResolveCache(redis *RedisCache, ttl time.Duration, logger *logging.Logger) *ResolveCache {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &ResolveCache{
		redis:  redis,
		ttl:    ttl,
		logger: logger.WithField("component", "resolve_cache"),
	}
}

func resolveKey(fullName string) string {
	return resolveKeyPrefix + fullName
}

// Get returns the cached record for fullName, or a miss.
func (c *ResolveCache) Get(ctx context.Context, fullName string) (*types.Preferences, bool) {
	data, err := c.redis.Get(ctx, resolveKey(fullName))
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WithError(err).Debug("Resolve cache read failed")
		}
		return nil, false
	}

	var prefs types.Preferences
	if err := json.Unmarshal([]byte(data), &prefs); err != nil {
		c.logger.WithError(err).Warn("Resolve cache entry malformed, dropping")
		_ = c.redis.Del(ctx, resolveKey(fullName))
		return nil, false
	}
	return &prefs, true
}

// Set stores the record for fullName with the configured TTL.
func (c *ResolveCache) Set(ctx context.Context, fullName string, prefs *types.Preferences) {
	data, err := json.Marshal(prefs)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, resolveKey(fullName), data, c.ttl); err != nil {
		c.logger.WithError(err).Debug("Resolve cache write failed")
	}
}

// Invalidate drops the cached record for fullName. Called on every
// preference write so readers never see a stale merge.
func (c *ResolveCache) Invalidate(ctx context.Context, fullName string) {
	if err := c.redis.Del(ctx, resolveKey(fullName)); err != nil {
		c.logger.WithError(err).Debug("Resolve cache invalidation failed")
	}
}
