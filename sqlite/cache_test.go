package sqlite_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/sitebrief/mock"
	"github.com/fwojciec/sitebrief/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachingFetcher_MemoizesByURL(t *testing.T) {
	t.Parallel()

	db := MustOpenDB(t)

	var calls atomic.Int64
	inner := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			calls.Add(1)
			return "<html>" + url + "</html>", nil
		},
	}
	fetcher := sqlite.NewCachingFetcher(db, inner, 0)
	ctx := context.Background()

	first, err := fetcher.Fetch(ctx, "https://a.example")
	require.NoError(t, err)
	second, err := fetcher.Fetch(ctx, "https://a.example")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), calls.Load(), "second fetch must hit the cache")

	_, err = fetcher.Fetch(ctx, "https://b.example")
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load(), "different URL must miss")
}

func TestCachingFetcher_TTLExpiry(t *testing.T) {
	t.Parallel()

	db := MustOpenDB(t)

	var calls atomic.Int64
	inner := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			calls.Add(1)
			return "content", nil
		},
	}
	// RFC3339 timestamps have second precision, so a sub-second TTL is
	// already expired by the time the second fetch compares against it.
	fetcher := sqlite.NewCachingFetcher(db, inner, time.Nanosecond)
	ctx := context.Background()

	_, err := fetcher.Fetch(ctx, "https://a.example")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = fetcher.Fetch(ctx, "https://a.example")
	require.NoError(t, err)

	assert.Equal(t, int64(2), calls.Load(), "expired entry must be refetched")
}

func TestCachingFetcher_DoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	db := MustOpenDB(t)

	var calls atomic.Int64
	inner := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			if calls.Add(1) == 1 {
				return "", errors.New("connection refused")
			}
			return "recovered", nil
		},
	}
	fetcher := sqlite.NewCachingFetcher(db, inner, 0)
	ctx := context.Background()

	_, err := fetcher.Fetch(ctx, "https://flaky.example")
	require.Error(t, err)

	content, err := fetcher.Fetch(ctx, "https://flaky.example")
	require.NoError(t, err)
	assert.Equal(t, "recovered", content)
}

func TestCachingFetcher_Close(t *testing.T) {
	t.Parallel()

	db := MustOpenDB(t)

	closed := false
	inner := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) { return "", nil },
		CloseFn: func() error {
			closed = true
			return nil
		},
	}
	fetcher := sqlite.NewCachingFetcher(db, inner, 0)

	require.NoError(t, fetcher.Close())
	assert.True(t, closed)
}
