package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/mikey/phishing-detector/internal/core"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const redisKeyPrefix = "phishing-detector:whois:"

// RedisCache is a Redis implementation of the WhoisCache interface.
// Expiry is delegated to Redis key TTLs.
type RedisCache struct {
	client *redis.Client
	now    func() time.Time
	logger *zap.Logger
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(addr, password string, db int, logger *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, eris.Wrap(err, "failed to connect to Redis")
	}

	return &RedisCache{
		client: client,
		now:    time.Now,
		logger: logger,
	}, nil
}

// Get retrieves a cached entry for a host
func (c *RedisCache) Get(ctx context.Context, host string) (*core.WhoisCacheEntry, error) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+host).Bytes()
	if err != nil {
		if eris.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "failed to query cache")
	}

	var entry core.WhoisCacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, eris.Wrap(err, "failed to decode cache entry")
	}

	if c.now().After(entry.ExpiresAt) {
		return nil, ErrExpired
	}

	return &entry, nil
}

// Set stores a cache entry
func (c *RedisCache) Set(ctx context.Context, entry *core.WhoisCacheEntry) error {
	ttl := entry.ExpiresAt.Sub(c.now())
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return eris.Wrap(err, "failed to encode cache entry")
	}

	if err := c.client.Set(ctx, redisKeyPrefix+entry.Host, raw, ttl).Err(); err != nil {
		return eris.Wrapf(err, "failed to store cache entry for %s", entry.Host)
	}
	return nil
}

// Delete removes a cache entry
func (c *RedisCache) Delete(ctx context.Context, host string) error {
	if err := c.client.Del(ctx, redisKeyPrefix+host).Err(); err != nil {
		return eris.Wrap(err, "failed to delete cache entry")
	}
	return nil
}

// Cleanup is a no-op; Redis expires keys itself
func (c *RedisCache) Cleanup(ctx context.Context) error {
	return nil
}

// Stop closes the Redis connection
func (c *RedisCache) Stop() {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close Redis client", zap.Error(err))
	}
}
