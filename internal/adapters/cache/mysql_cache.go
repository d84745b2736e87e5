package cache

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/phishing-detector/internal/core"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// MySQLCache is a MySQL implementation of the WhoisCache interface
type MySQLCache struct {
	store    *sqlStore
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "failed to open MySQL database")
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "failed to connect to MySQL database")
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS whois_cache (
			host VARCHAR(255) PRIMARY KEY,
			domain VARCHAR(255) NOT NULL,
			created_on BIGINT NULL,
			updated_on BIGINT NULL,
			expires_on BIGINT NULL,
			looked_up BIGINT NOT NULL,
			expires_at BIGINT NOT NULL,
			INDEX idx_whois_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, eris.Wrap(err, "failed to create table")
	}

	cache := &MySQLCache{
		store: &sqlStore{
			db: db,
			upsert: `
				INSERT INTO whois_cache
					(host, domain, created_on, updated_on, expires_on, looked_up, expires_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON DUPLICATE KEY UPDATE
					domain = VALUES(domain),
					created_on = VALUES(created_on),
					updated_on = VALUES(updated_on),
					expires_on = VALUES(expires_on),
					looked_up = VALUES(looked_up),
					expires_at = VALUES(expires_at)
			`,
			now: time.Now,
		},
		logger: logger,
		stopCh: make(chan struct{}),
	}

	if cleanupFreq > 0 {
		go runCleanup(cache, cleanupFreq, cache.stopCh, logger)
	}

	return cache, nil
}

// Get retrieves a cached entry for a host
func (c *MySQLCache) Get(ctx context.Context, host string) (*core.WhoisCacheEntry, error) {
	return c.store.get(ctx, host)
}

// Set stores a cache entry
func (c *MySQLCache) Set(ctx context.Context, entry *core.WhoisCacheEntry) error {
	return c.store.set(ctx, entry)
}

// Delete removes a cache entry
func (c *MySQLCache) Delete(ctx context.Context, host string) error {
	return c.store.delete(ctx, host)
}

// Cleanup removes expired entries
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	rowsAffected, err := c.store.cleanup(ctx)
	if err != nil {
		return err
	}
	c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	return nil
}

// Stop stops the background cleanup task and closes the database connection
func (c *MySQLCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if err := c.store.db.Close(); err != nil {
			c.logger.Error("Failed to close MySQL database", zap.Error(err))
		}
	})
}
