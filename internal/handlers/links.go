package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/link-ledger/internal/analytics"
	"github.com/serroba/link-ledger/internal/messaging"
	"github.com/serroba/link-ledger/internal/shortener"
	"go.uber.org/zap"
)

// LinkHandler exposes the shortener commands and queries over HTTP.
type LinkHandler struct {
	commands          shortener.CommandHandler
	queries           shortener.QueryHandler
	baseURL           string
	publishCreated    messaging.Publish[analytics.LinkCreatedEvent]
	publishRedirected messaging.Publish[analytics.LinkRedirectedEvent]
	logger            *zap.Logger
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(
	commands shortener.CommandHandler,
	queries shortener.QueryHandler,
	baseURL string,
	publishCreated messaging.Publish[analytics.LinkCreatedEvent],
	publishRedirected messaging.Publish[analytics.LinkRedirectedEvent],
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		commands:          commands,
		queries:           queries,
		baseURL:           baseURL,
		publishCreated:    publishCreated,
		publishRedirected: publishRedirected,
		logger:            logger,
	}
}

func (h *LinkHandler) CreateLink(ctx context.Context, req *CreateLinkRequest) (*CreateLinkResponse, error) {
	if slices.Contains(reservedSlugs, shortener.Slug(req.Body.Slug)) {
		return nil, huma.Error409Conflict("slug is reserved")
	}

	link, err := h.commands.CreateShortLink(ctx, shortener.URL(req.Body.URL), shortener.Slug(req.Body.Slug))
	if err != nil {
		return nil, h.toHTTPError(err, "create link")
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.LinkCreatedEvent{
		Slug:      string(link.Slug),
		URL:       string(link.URL),
		Generated: req.Body.Slug == "",
		CreatedAt: time.Now(),
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	}

	if err := h.publishCreated(ctx, event); err != nil {
		h.logger.Error("failed to publish analytics event",
			zap.String("slug", event.Slug),
			zap.Error(err),
		)
	}

	shortURL := fmt.Sprintf("%s/%s", h.baseURL, link.Slug)

	resp := &CreateLinkResponse{Location: shortURL}
	resp.Body.Slug = string(link.Slug)
	resp.Body.ShortURL = shortURL
	resp.Body.URL = string(link.URL)

	return resp, nil
}

func (h *LinkHandler) Redirect(ctx context.Context, req *SlugRequest) (*RedirectResponse, error) {
	link, err := h.commands.Redirect(ctx, shortener.Slug(req.Slug))
	if err != nil {
		return nil, h.toHTTPError(err, "redirect")
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.LinkRedirectedEvent{
		Slug:         string(link.Slug),
		URL:          string(link.URL),
		RedirectedAt: time.Now(),
		ClientIP:     meta.ClientIP,
		UserAgent:    meta.UserAgent,
		Referrer:     meta.Referrer,
	}

	if err := h.publishRedirected(ctx, event); err != nil {
		h.logger.Error("failed to publish redirect event",
			zap.String("slug", event.Slug),
			zap.Error(err),
		)
	}

	return &RedirectResponse{
		Status:   http.StatusFound,
		Location: string(link.URL),
	}, nil
}

func (h *LinkHandler) GetStats(ctx context.Context, req *SlugRequest) (*StatsResponse, error) {
	stats, err := h.queries.GetStats(ctx, shortener.Slug(req.Slug))
	if err != nil {
		return nil, h.toHTTPError(err, "get stats")
	}

	resp := &StatsResponse{}
	resp.Body.Slug = string(stats.Link.Slug)
	resp.Body.URL = string(stats.Link.URL)
	resp.Body.Redirects = stats.Redirects

	return resp, nil
}

func (h *LinkHandler) toHTTPError(err error, op string) error {
	switch {
	case errors.Is(err, shortener.ErrSlugNotFound):
		return huma.Error404NotFound("slug not found")
	case errors.Is(err, shortener.ErrSlugAlreadyInUse):
		return huma.Error409Conflict("slug already in use")
	case errors.Is(err, shortener.ErrInvalidURL):
		return huma.Error422UnprocessableEntity("invalid url")
	default:
		h.logger.Error("request failed", zap.String("op", op), zap.Error(err))

		return huma.Error500InternalServerError("internal error")
	}
}
