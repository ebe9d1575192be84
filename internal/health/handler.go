package health

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

const pingTimeout = 2 * time.Second

// Checker reports whether a dependency is reachable.
type Checker interface {
	Ping(ctx context.Context) error
}

// Handler handles health check operations.
type Handler struct {
	eventStore Checker
}

// NewHandler creates a health handler that pings the event store.
func NewHandler(eventStore Checker) *Handler {
	return &Handler{eventStore: eventStore}
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status     string `example:"ok"      json:"status"`
		EventStore string `example:"healthy" json:"eventStore"`
	}
}

// Check reports ok, or degraded when the event store cannot be reached.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	resp := &Response{}
	resp.Body.Status = "ok"
	resp.Body.EventStore = "healthy"

	if err := h.eventStore.Ping(ctx); err != nil {
		resp.Body.Status = "degraded"
		resp.Body.EventStore = "unhealthy"
	}

	return resp, nil
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Get(api, "/health", h.Check)
}
