package cache

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/phishing-detector/internal/core"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// SQLiteCache is a SQLite implementation of the WhoisCache interface
type SQLiteCache struct {
	store    *sqlStore
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewSQLiteCache creates a new SQLite cache
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, eris.Wrap(err, "failed to open SQLite database")
	}
	// sqlite allows one writer at a time
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS whois_cache (
			host TEXT PRIMARY KEY,
			domain TEXT NOT NULL,
			created_on INTEGER,
			updated_on INTEGER,
			expires_on INTEGER,
			looked_up INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, eris.Wrap(err, "failed to create table")
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_whois_expires_at ON whois_cache(expires_at)
	`)
	if err != nil {
		db.Close()
		return nil, eris.Wrap(err, "failed to create index")
	}

	cache := &SQLiteCache{
		store: &sqlStore{
			db: db,
			upsert: `
				INSERT OR REPLACE INTO whois_cache
					(host, domain, created_on, updated_on, expires_on, looked_up, expires_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
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
func (c *SQLiteCache) Get(ctx context.Context, host string) (*core.WhoisCacheEntry, error) {
	return c.store.get(ctx, host)
}

// Set stores a cache entry
func (c *SQLiteCache) Set(ctx context.Context, entry *core.WhoisCacheEntry) error {
	return c.store.set(ctx, entry)
}

// Delete removes a cache entry
func (c *SQLiteCache) Delete(ctx context.Context, host string) error {
	return c.store.delete(ctx, host)
}

// Cleanup removes expired entries
func (c *SQLiteCache) Cleanup(ctx context.Context) error {
	rowsAffected, err := c.store.cleanup(ctx)
	if err != nil {
		return err
	}
	c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	return nil
}

// Stop stops the background cleanup task and closes the database connection
func (c *SQLiteCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if err := c.store.db.Close(); err != nil {
			c.logger.Error("Failed to close SQLite database", zap.Error(err))
		}
	})
}
