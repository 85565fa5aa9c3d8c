package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fwojciec/sitebrief"
)

// Compile-time interface verification.
var _ sitebrief.Fetcher = (*CachingFetcher)(nil)

// CachingFetcher wraps a Fetcher and memoizes successful fetches by URL in
// the pages table. Entries older than the TTL are refetched; a fetch failure
// is never cached. Useful when iterating on extraction against the same
// pages without hitting the network each time.
type CachingFetcher struct {
	db    *DB
	inner sitebrief.Fetcher
	ttl   time.Duration

	now func() time.Time
}

// NewCachingFetcher creates a CachingFetcher. A zero TTL means entries never
// expire.
func NewCachingFetcher(db *DB, inner sitebrief.Fetcher, ttl time.Duration) *CachingFetcher {
	return &CachingFetcher{
		db:    db,
		inner: inner,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Fetch returns the cached content for the URL when present and fresh,
// otherwise delegates to the wrapped fetcher and stores the result.
func (f *CachingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if content, ok, err := f.lookup(ctx, url); err != nil {
		return "", err
	} else if ok {
		return content, nil
	}

	content, err := f.inner.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	if err := f.store(ctx, url, content); err != nil {
		return "", err
	}
	return content, nil
}

// Close closes the wrapped fetcher. The database is shared and stays open.
func (f *CachingFetcher) Close() error {
	return f.inner.Close()
}

func (f *CachingFetcher) lookup(ctx context.Context, url string) (string, bool, error) {
	var content, fetchedAt string
	err := f.db.QueryRowContext(ctx, `
		SELECT content, fetched_at FROM pages WHERE url = ?
	`, url).Scan(&content, &fetchedAt)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if f.ttl > 0 {
		at, err := parseStoredTime(fetchedAt, "fetched_at")
		if err != nil {
			return "", false, err
		}
		if f.now().UTC().Sub(at) > f.ttl {
			return "", false, nil
		}
	}

	return content, true, nil
}

func (f *CachingFetcher) store(ctx context.Context, url, content string) error {
	_, err := f.db.ExecContext(ctx, `
		INSERT INTO pages (url, content, content_hash, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			content = excluded.content,
			content_hash = excluded.content_hash,
			fetched_at = excluded.fetched_at
	`, url, content, sitebrief.ContentHash(content), f.now().UTC().Format(time.RFC3339))
	return err
}
