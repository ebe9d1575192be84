package shortener

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the type of a recorded event.
type Kind string

const (
	KindLinkCreated         Kind = "link.created"
	KindRedirectIncremented Kind = "redirect.incremented"
)

// Event is a state change recorded in the event log.
type Event interface {
	Kind() Kind
	event()
}

// LinkCreated is recorded when a slug is bound to a URL.
type LinkCreated struct {
	Link ShortLink
}

func (LinkCreated) Kind() Kind { return KindLinkCreated }
func (LinkCreated) event()     {}

// RedirectCountIncremented is recorded for every successful redirect.
type RedirectCountIncremented struct {
	Slug Slug
}

func (RedirectCountIncremented) Kind() Kind { return KindRedirectIncremented }
func (RedirectCountIncremented) event()     {}

// Record is the stored form of an event. Seq is its zero-based position in the log.
type Record struct {
	Seq        uint64    `json:"seq"`
	ID         uuid.UUID `json:"id"`
	Kind       Kind      `json:"kind"`
	Slug       Slug      `json:"slug"`
	URL        URL       `json:"url,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewRecord wraps an event for storage at position seq.
func NewRecord(seq uint64, e Event, at time.Time) Record {
	rec := Record{
		Seq:        seq,
		ID:         uuid.New(),
		Kind:       e.Kind(),
		OccurredAt: at,
	}

	switch ev := e.(type) {
	case LinkCreated:
		rec.Slug = ev.Link.Slug
		rec.URL = ev.Link.URL
	case RedirectCountIncremented:
		rec.Slug = ev.Slug
	}

	return rec
}

// Event decodes the record back into its domain event.
func (r Record) Event() (Event, error) {
	switch r.Kind {
	case KindLinkCreated:
		return LinkCreated{Link: ShortLink{Slug: r.Slug, URL: r.URL}}, nil
	case KindRedirectIncremented:
		return RedirectCountIncremented{Slug: r.Slug}, nil
	default:
		return nil, fmt.Errorf("unknown event kind %q at seq %d", r.Kind, r.Seq)
	}
}
