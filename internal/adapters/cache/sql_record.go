package cache

import (
	"context"
	"database/sql"
	"time"

	"github.com/mikey/phishing-detector/internal/core"
	"github.com/rotisserie/eris"
)

// sqlStore holds the queries shared by the SQL backends. Timestamps are
// stored as unix seconds so both drivers compare them the same way.
type sqlStore struct {
	db     *sql.DB
	upsert string
	now    func() time.Time
}

func (s *sqlStore) get(ctx context.Context, host string) (*core.WhoisCacheEntry, error) {
	var (
		entry                     core.WhoisCacheEntry
		created, updated, expires sql.NullInt64
		lookedUp, expiresAt       int64
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT host, domain, created_on, updated_on, expires_on, looked_up, expires_at
		FROM whois_cache
		WHERE host = ?
	`, host).Scan(&entry.Host, &entry.Record.Domain, &created, &updated, &expires, &lookedUp, &expiresAt)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "failed to query cache")
	}

	entry.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	if s.now().After(entry.ExpiresAt) {
		return nil, ErrExpired
	}

	entry.LookedUp = time.Unix(lookedUp, 0).UTC()
	entry.Record.Created = fromUnix(created)
	entry.Record.Updated = fromUnix(updated)
	entry.Record.Expires = fromUnix(expires)

	return &entry, nil
}

func (s *sqlStore) set(ctx context.Context, entry *core.WhoisCacheEntry) error {
	_, err := s.db.ExecContext(ctx, s.upsert,
		entry.Host,
		entry.Record.Domain,
		toUnix(entry.Record.Created),
		toUnix(entry.Record.Updated),
		toUnix(entry.Record.Expires),
		entry.LookedUp.Unix(),
		entry.ExpiresAt.Unix(),
	)
	if err != nil {
		return eris.Wrapf(err, "failed to store cache entry for %s", entry.Host)
	}
	return nil
}

func (s *sqlStore) delete(ctx context.Context, host string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM whois_cache WHERE host = ?`, host); err != nil {
		return eris.Wrap(err, "failed to delete cache entry")
	}
	return nil
}

func (s *sqlStore) cleanup(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM whois_cache WHERE expires_at <= ?`, s.now().Unix())
	if err != nil {
		return 0, eris.Wrap(err, "failed to clean up expired entries")
	}
	return result.RowsAffected()
}

func toUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func fromUnix(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}
