package shortener

import "errors"

var (
	ErrSlugAlreadyInUse = errors.New("slug already in use")
	ErrSlugNotFound     = errors.New("slug not found")

	// ErrInvalidURL is only returned when a URLValidator is configured.
	ErrInvalidURL = errors.New("invalid url")

	// ErrLogOutOfOrder means the stored log has a gap or a repeated seq.
	ErrLogOutOfOrder = errors.New("event log out of order")
)
