package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/link-ledger/internal/analytics"
	"github.com/serroba/link-ledger/internal/analytics/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLog_SaveLinkCreated(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sink := store.NewLog(zap.New(core))

	err := sink.SaveLinkCreated(context.Background(), &analytics.LinkCreatedEvent{
		Slug:      "abc",
		URL:       "https://example.com",
		Generated: true,
		CreatedAt: time.Now(),
	})

	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())

	entry := logs.All()[0]
	assert.Equal(t, "link created", entry.Message)
	assert.Equal(t, "analytics", entry.LoggerName)
	assert.Equal(t, "abc", entry.ContextMap()["slug"])
	assert.Equal(t, true, entry.ContextMap()["generated"])
}

func TestLog_SaveLinkRedirected(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sink := store.NewLog(zap.New(core))

	err := sink.SaveLinkRedirected(context.Background(), &analytics.LinkRedirectedEvent{
		Slug:         "abc",
		RedirectedAt: time.Now(),
		ClientIP:     "127.0.0.1",
		Referrer:     "https://referrer.com",
	})

	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "https://referrer.com", logs.All()[0].ContextMap()["referrer"])
}
