package storescan

import "context"

// Heading is a single h1-h3 heading in document order.
type Heading struct {
	Level int
	Text  string
}

// ImageRef is an image tag found on a page. Src may be relative; it is
// resolved against the page URL during image selection.
type ImageRef struct {
	Src string
	Alt string
}

// PageContent is the normalized intermediate representation of one
// rendered page. It is created once per fetched page and never mutated
// afterwards; the pipeline invocation that produced it is its only owner.
type PageContent struct {
	// Title is the text of the <title> element, trimmed.
	Title string

	// Headings holds h1-h3 headings in document order.
	Headings []Heading

	// Text is the visible page text with script and style content
	// removed and whitespace runs collapsed to single spaces.
	Text string

	// Images holds every image tag in document order.
	Images []ImageRef

	// StructuredData holds every application/ld+json block that parsed
	// as valid JSON, in document order. Invalid blocks are skipped.
	StructuredData []map[string]any

	// MetaTags maps a meta tag's name (falling back to property) to its
	// content attribute.
	MetaTags map[string]string
}

// Meta returns the content of the first meta tag present among keys.
// Returns "" if none are set.
func (c *PageContent) Meta(keys ...string) string {
	for _, k := range keys {
		if v := c.MetaTags[k]; v != "" {
			return v
		}
	}
	return ""
}

// Fetcher retrieves rendered HTML from URLs.
// Implementations may use browser automation to handle JavaScript-rendered
// content. The context controls timeout and cancellation.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases renderer resources. Must be called when the Fetcher
	// is no longer needed.
	Close() error
}

// Extractor converts one page's markup into its intermediate
// representation. Implementations are pure transformations: no network
// calls, deterministic output for a given input.
type Extractor interface {
	// Extract parses markup and returns the page content.
	// Empty markup yields (nil, nil).
	Extract(html string) (*PageContent, error)
}
