package analytics

import "time"

const (
	TopicLinkCreated    = "link.created"
	TopicLinkRedirected = "link.redirected"
)

// LinkCreatedEvent is published after a short link is created.
type LinkCreatedEvent struct {
	Slug      string    `json:"slug"`
	URL       string    `json:"url"`
	Generated bool      `json:"generated"`
	CreatedAt time.Time `json:"createdAt"`
	ClientIP  string    `json:"clientIp"`
	UserAgent string    `json:"userAgent"`
}

// LinkRedirectedEvent is published after a redirect has been counted.
type LinkRedirectedEvent struct {
	Slug         string    `json:"slug"`
	URL          string    `json:"url"`
	RedirectedAt time.Time `json:"redirectedAt"`
	ClientIP     string    `json:"clientIp"`
	UserAgent    string    `json:"userAgent"`
	Referrer     string    `json:"referrer,omitempty"`
}
