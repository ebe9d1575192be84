// Command demo runs one create, one redirect and one stats query against an
// in-memory service and prints each result.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/serroba/link-ledger/internal/shortener"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(context.Background(), logger); err != nil {
		logger.Fatal("demo failed", zap.Error(err))
	}
}

func run(ctx context.Context, logger *zap.Logger) error {
	svc := shortener.NewService()

	link, err := svc.CreateShortLink(ctx, "https://www.example.com", "")
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}

	logger.Info("created short link", zap.String("slug", string(link.Slug)), zap.String("url", string(link.URL)))

	target, err := svc.Redirect(ctx, link.Slug)
	if err != nil {
		return fmt.Errorf("redirect: %w", err)
	}

	logger.Info("redirected", zap.String("slug", string(target.Slug)), zap.String("url", string(target.URL)))

	stats, err := svc.GetStats(ctx, link.Slug)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	logger.Info("stats",
		zap.String("slug", string(stats.Link.Slug)),
		zap.String("url", string(stats.Link.URL)),
		zap.Uint64("redirects", stats.Redirects),
	)

	return nil
}
