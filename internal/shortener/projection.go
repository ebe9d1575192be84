package shortener

import "fmt"

type entry struct {
	url       URL
	redirects uint64
}

// Projection is the current state folded from the event log.
// It is not safe for concurrent use; Service guards it.
type Projection struct {
	entries map[Slug]entry
}

// NewProjection creates an empty projection.
func NewProjection() *Projection {
	return &Projection{
		entries: make(map[Slug]entry),
	}
}

// Apply folds one event into the projection. It fails on events that would
// break slug uniqueness or count redirects for an unknown slug.
func (p *Projection) Apply(e Event) error {
	switch ev := e.(type) {
	case LinkCreated:
		if _, ok := p.entries[ev.Link.Slug]; ok {
			return fmt.Errorf("%w: %s", ErrSlugAlreadyInUse, ev.Link.Slug)
		}

		p.entries[ev.Link.Slug] = entry{url: ev.Link.URL}
	case RedirectCountIncremented:
		cur, ok := p.entries[ev.Slug]
		if !ok {
			return fmt.Errorf("%w: %s", ErrSlugNotFound, ev.Slug)
		}

		cur.redirects++
		p.entries[ev.Slug] = cur
	default:
		return fmt.Errorf("unsupported event %T", e)
	}

	return nil
}

// Lookup returns the link and redirect count stored for slug.
func (p *Projection) Lookup(slug Slug) (Stats, bool) {
	cur, ok := p.entries[slug]
	if !ok {
		return Stats{}, false
	}

	return Stats{
		Link:      ShortLink{Slug: slug, URL: cur.url},
		Redirects: cur.redirects,
	}, true
}

// Contains reports whether slug is bound.
func (p *Projection) Contains(slug Slug) bool {
	_, ok := p.entries[slug]

	return ok
}

// Len returns the number of bound slugs.
func (p *Projection) Len() int {
	return len(p.entries)
}
