package handlers

// CreateLinkRequest is the request body for creating a short link.
type CreateLinkRequest struct {
	Body struct {
		URL  string `doc:"The URL to shorten"                                 example:"https://example.com/very/long/path" json:"url"`
		Slug string `doc:"Custom slug. A slug is generated when omitted" example:"my-link"                          json:"slug,omitempty" maxLength:"64" pattern:"^[A-Za-z0-9_-]+$"`
	}
}

// CreateLinkResponse is the response for a successfully created short link.
type CreateLinkResponse struct {
	Location string `doc:"The short URL" header:"Location"`
	Body     struct {
		Slug     string `doc:"The slug"           example:"slug_0"                             json:"slug"`
		ShortURL string `doc:"The full short URL" example:"http://localhost:8888/slug_0"       json:"shortUrl"`
		URL      string `doc:"The target URL"     example:"https://example.com/very/long/path" json:"url"`
	}
}

// SlugRequest addresses a short link by slug.
type SlugRequest struct {
	Slug string `doc:"The slug" example:"slug_0" path:"slug"`
}

// RedirectResponse sends the client to the link's URL.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}

// StatsResponse reports a link and its redirect count.
type StatsResponse struct {
	Body struct {
		Slug      string `doc:"The slug"                      example:"slug_0"              json:"slug"`
		URL       string `doc:"The target URL"                example:"https://example.com" json:"url"`
		Redirects uint64 `doc:"Redirects since link creation" example:"42"                  json:"redirects"`
	}
}
