//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/link-ledger/internal/shortener"
	"github.com/serroba/link-ledger/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}

	return "localhost:6379"
}

func TestRedisEventStoreIntegration(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr: getRedisAddr(),
	})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	const key = "link_events_test"

	client.Del(ctx, key)
	defer client.Del(ctx, key)

	s := store.NewRedisEventStoreWithKey(client, key)
	at := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})

	t.Run("empty list loads nothing", func(t *testing.T) {
		records, err := s.Load(ctx)

		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("append and load in order", func(t *testing.T) {
		created := shortener.NewRecord(0, shortener.LinkCreated{
			Link: shortener.ShortLink{Slug: "redis_slug", URL: "https://example.com"},
		}, at)
		redirected := shortener.NewRecord(1, shortener.RedirectCountIncremented{Slug: "redis_slug"}, at)

		require.NoError(t, s.Append(ctx, created))
		require.NoError(t, s.Append(ctx, redirected))

		records, err := s.Load(ctx)

		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, created.ID, records[0].ID)
		assert.Equal(t, shortener.KindLinkCreated, records[0].Kind)
		assert.Equal(t, shortener.URL("https://example.com"), records[0].URL)
		assert.True(t, at.Equal(records[0].OccurredAt))
		assert.Equal(t, shortener.KindRedirectIncremented, records[1].Kind)
	})

	t.Run("resending a stored record is a no-op", func(t *testing.T) {
		records, err := s.Load(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, records)

		require.NoError(t, s.Append(ctx, records[0]))

		again, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, again, len(records))
	})

	t.Run("rejects a record that is not next", func(t *testing.T) {
		gap := shortener.NewRecord(10, shortener.RedirectCountIncremented{Slug: "redis_slug"}, at)

		assert.ErrorIs(t, s.Append(ctx, gap), shortener.ErrLogOutOfOrder)
	})

	t.Run("service restores from redis", func(t *testing.T) {
		svc := shortener.NewService(shortener.WithEventStore(s))
		require.NoError(t, svc.Restore(ctx))

		stats, err := svc.GetStats(ctx, "redis_slug")

		require.NoError(t, err)
		assert.Equal(t, uint64(1), stats.Redirects)
	})
}
