package store

import (
	"context"

	"github.com/serroba/link-ledger/internal/analytics"
	"go.uber.org/zap"
)

// Log is an analytics.Store that writes every event to the logger.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a logging analytics store.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger.Named("analytics")}
}

func (l *Log) SaveLinkCreated(_ context.Context, event *analytics.LinkCreatedEvent) error {
	l.logger.Info("link created",
		zap.String("slug", event.Slug),
		zap.String("url", event.URL),
		zap.Bool("generated", event.Generated),
		zap.Time("createdAt", event.CreatedAt),
		zap.String("clientIp", event.ClientIP),
	)

	return nil
}

func (l *Log) SaveLinkRedirected(_ context.Context, event *analytics.LinkRedirectedEvent) error {
	l.logger.Info("link redirected",
		zap.String("slug", event.Slug),
		zap.Time("redirectedAt", event.RedirectedAt),
		zap.String("clientIp", event.ClientIP),
		zap.String("referrer", event.Referrer),
	)

	return nil
}

var _ analytics.Store = (*Log)(nil)
