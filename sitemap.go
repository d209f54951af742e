package storescan

import "context"

// SitemapService discovers candidate page URLs from a site's sitemap tree.
type SitemapService interface {
	// DiscoverURLs finds all page URLs reachable from <baseURL>/sitemap.xml
	// and from Sitemap: directives in /robots.txt. Sitemap indexes are
	// resolved recursively; a visited-set guards against self-referential
	// indexes. The result is de-duplicated.
	//
	// Failure of any single sitemap fetch or parse is non-fatal: the
	// service logs and continues with whatever was already collected.
	// Total failure of both the sitemap and robots paths yields an empty
	// slice, not an error.
	DiscoverURLs(ctx context.Context, baseURL string) ([]string, error)
}
