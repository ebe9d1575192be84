package shortener

import (
	"fmt"
	"net/url"

	"github.com/jaevor/go-nanoid"
)

// SlugGenerator picks a slug for a link created without one. seq is the
// event log length observed when the slug is generated.
type SlugGenerator func(seq uint64) Slug

// CounterGenerator labels the slug with the log length: slug_0, slug_5, ...
func CounterGenerator(seq uint64) Slug {
	return Slug(fmt.Sprintf("slug_%d", seq))
}

// NewRandomGenerator returns a generator producing nanoid slugs of the given length.
// The sequence number is ignored.
func NewRandomGenerator(length int) (SlugGenerator, error) {
	gen, err := nanoid.Standard(length)
	if err != nil {
		return nil, fmt.Errorf("nanoid generator: %w", err)
	}

	return func(_ uint64) Slug {
		return Slug(gen())
	}, nil
}

// URLValidator checks a URL before a link is created. It returns ErrInvalidURL
// to reject it.
type URLValidator func(u URL) error

// RequireAbsoluteURL accepts only http and https URLs with a host.
func RequireAbsoluteURL(u URL) error {
	parsed, err := url.ParseRequestURI(string(u))
	if err != nil {
		return ErrInvalidURL
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidURL
	}

	if parsed.Host == "" {
		return ErrInvalidURL
	}

	return nil
}
