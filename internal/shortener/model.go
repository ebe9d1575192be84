package shortener

// Slug is the short identifier a link is stored under.
type Slug string

// URL is the target address of a short link. It is stored as given.
type URL string

// ShortLink binds a slug to its target URL.
type ShortLink struct {
	Slug Slug
	URL  URL
}

// Stats is the read model returned for a short link.
type Stats struct {
	Link      ShortLink
	Redirects uint64
}
