package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikey/phishing-detector/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var base = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func sampleEntry(host string, ttl time.Duration) *core.WhoisCacheEntry {
	created := time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC)
	expires := time.Date(2030, 2, 3, 0, 0, 0, 0, time.UTC)
	return &core.WhoisCacheEntry{
		Host: host,
		Record: core.DomainRecord{
			Domain:  "example.com",
			Created: &created,
			Expires: &expires,
		},
		LookedUp:  base,
		ExpiresAt: base.Add(ttl),
	}
}

// exercise runs the same contract checks against any backend
func exercise(t *testing.T, c core.WhoisCache, setNow func(time.Time)) {
	ctx := context.Background()
	setNow(base)

	_, err := c.Get(ctx, "www.example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.Set(ctx, sampleEntry("www.example.com", time.Hour)))
	require.NoError(t, c.Set(ctx, sampleEntry("old.example.com", time.Minute)))

	got, err := c.Get(ctx, "www.example.com")
	require.NoError(t, err)
	assert.Equal(t, "www.example.com", got.Host)
	assert.Equal(t, "example.com", got.Record.Domain)
	require.NotNil(t, got.Record.Created)
	assert.True(t, got.Record.Created.Equal(time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC)))
	assert.Nil(t, got.Record.Updated)
	require.NotNil(t, got.Record.Expires)
	assert.True(t, got.ExpiresAt.Equal(base.Add(time.Hour)))

	setNow(base.Add(10 * time.Minute))
	_, err = c.Get(ctx, "old.example.com")
	assert.ErrorIs(t, err, ErrExpired)

	require.NoError(t, c.Cleanup(ctx))
	_, err = c.Get(ctx, "old.example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.Delete(ctx, "www.example.com"))
	_, err = c.Get(ctx, "www.example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), 0)
	defer c.Stop()

	exercise(t, c, func(now time.Time) { c.now = func() time.Time { return now } })
}

func TestMemoryCacheReturnsCopies(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), 0)
	defer c.Stop()
	c.now = func() time.Time { return base }
	ctx := context.Background()

	entry := sampleEntry("a.example.com", time.Hour)
	require.NoError(t, c.Set(ctx, entry))
	entry.Host = "mutated"

	got, err := c.Get(ctx, "a.example.com")
	require.NoError(t, err)
	assert.Equal(t, "a.example.com", got.Host)
}

func TestSQLiteCache(t *testing.T) {
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop(), 0)
	require.NoError(t, err)
	defer c.Stop()

	exercise(t, c, func(now time.Time) { c.store.now = func() time.Time { return now } })
}

func TestSQLiteCacheReplacesEntry(t *testing.T) {
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop(), 0)
	require.NoError(t, err)
	defer c.Stop()
	c.store.now = func() time.Time { return base }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, sampleEntry("a.example.com", time.Minute)))
	require.NoError(t, c.Set(ctx, sampleEntry("a.example.com", time.Hour)))

	got, err := c.Get(ctx, "a.example.com")
	require.NoError(t, err)
	assert.True(t, got.ExpiresAt.Equal(base.Add(time.Hour)))
}

func TestStopIsIdempotent(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)

	assert.NotPanics(t, func() {
		c.Stop()
		c.Stop()
	})
}
