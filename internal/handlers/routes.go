package handlers

import (
	"net/http"
	"slices"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/link-ledger/internal/shortener"
)

// reservedSlugs are top-level path segments served by something other than the redirect route.
var reservedSlugs = []shortener.Slug{
	"links",
	"health",
	"docs",
	"openapi",
	"openapi.json",
	"openapi.yaml",
	"schemas",
}

// ReservedSlugs returns the slugs a short link can never use.
func ReservedSlugs() []shortener.Slug {
	return slices.Clone(reservedSlugs)
}

// RegisterRoutes registers the short link routes.
func RegisterRoutes(api huma.API, links *LinkHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-link",
		Method:        http.MethodPost,
		Path:          "/links",
		Summary:       "Create short link",
		Description:   "Binds a slug to a URL. A slug is generated when none is given.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusCreated,
	}, links.CreateLink)

	huma.Register(api, huma.Operation{
		OperationID: "get-link-stats",
		Method:      http.MethodGet,
		Path:        "/links/{slug}/stats",
		Summary:     "Get link statistics",
		Description: "Returns the link's URL and how many redirects it has served.",
		Tags:        []string{"Links"},
	}, links.GetStats)

	huma.Register(api, huma.Operation{
		OperationID:   "redirect",
		Method:        http.MethodGet,
		Path:          "/{slug}",
		Summary:       "Redirect to URL",
		Description:   "Redirects to the URL bound to the slug and counts the redirect.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusFound,
	}, links.Redirect)
}
