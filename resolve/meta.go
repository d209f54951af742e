package resolve

import (
	"context"

	"github.com/fwojciec/storescan"
)

// Ensure MetaTags implements storescan.Strategy.
var _ storescan.Strategy = (*MetaTags)(nil)

// MetaTags builds a candidate from Open Graph, Twitter card, and generic
// meta tags. It runs when no JSON-LD Product block was found.
type MetaTags struct{}

// Name implements storescan.Strategy.
func (s *MetaTags) Name() string { return "meta" }

// Extract maps meta tags onto a candidate. A page without any meta tags
// yields nothing, and the candidate is accepted only when a non-empty
// title was found.
func (s *MetaTags) Extract(_ context.Context, content *storescan.PageContent, _ string) (*storescan.ProductCandidate, error) {
	if len(content.MetaTags) == 0 {
		return nil, nil
	}

	title := content.Meta("og:title", "twitter:title", "title")
	if title == "" {
		title = content.Title
	}
	if title == "" {
		return nil, nil
	}

	candidate := &storescan.ProductCandidate{
		IsProduct:   true,
		Title:       title,
		Description: content.Meta("og:description", "twitter:description", "description"),
	}

	if price := content.Meta("product:price:amount", "og:price:amount"); price != "" {
		candidate.Price = price
		candidate.Currency = content.Meta("product:price:currency", "og:price:currency")
		if candidate.Currency == "" {
			candidate.Currency = "USD"
		}
	}

	if img := content.Meta("og:image"); img != "" {
		candidate.Images = []string{img}
	}

	return candidate, nil
}
