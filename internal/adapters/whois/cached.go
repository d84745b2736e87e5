package whois

import (
	"context"
	"time"

	"github.com/mikey/phishing-detector/internal/core"
	"github.com/mikey/phishing-detector/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CachedClient answers lookups from a WhoisCache and falls back to another
// client on a miss. Only successful lookups are cached, keyed by hostname.
type CachedClient struct {
	next    core.WhoisClient
	cache   core.WhoisCache
	ttl     time.Duration
	now     func() time.Time
	group   singleflight.Group
	metrics *metrics.Collectors
	logger  *zap.Logger
}

// NewCachedClient creates a caching WHOIS client
func NewCachedClient(next core.WhoisClient, cache core.WhoisCache, ttl time.Duration, collectors *metrics.Collectors, logger *zap.Logger) *CachedClient {
	return &CachedClient{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		now:     time.Now,
		metrics: collectors,
		logger:  logger,
	}
}

// Lookup implements core.WhoisClient
func (c *CachedClient) Lookup(ctx context.Context, host string) (*core.DomainRecord, error) {
	entry, err := c.cache.Get(ctx, host)
	if err == nil {
		c.metrics.WhoisLookup(metrics.WhoisHit)
		record := entry.Record
		return &record, nil
	}
	c.logger.Debug("WHOIS cache miss", zap.String("host", host), zap.Error(err))

	v, err, _ := c.group.Do(host, func() (interface{}, error) {
		record, err := c.next.Lookup(ctx, host)
		if err != nil {
			return nil, err
		}

		now := c.now()
		entry := &core.WhoisCacheEntry{
			Host:      host,
			Record:    *record,
			LookedUp:  now,
			ExpiresAt: now.Add(c.ttl),
		}
		if err := c.cache.Set(ctx, entry); err != nil {
			c.logger.Warn("Failed to cache WHOIS record", zap.String("host", host), zap.Error(err))
		}
		return record, nil
	})
	if err != nil {
		c.metrics.WhoisLookup(metrics.WhoisError)
		return nil, err
	}

	c.metrics.WhoisLookup(metrics.WhoisMiss)
	record := *v.(*core.DomainRecord)
	return &record, nil
}
