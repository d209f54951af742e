package resolve

import (
	"context"
	"regexp"

	"github.com/fwojciec/storescan"
)

// pricePatterns matches currency-symbol price forms in visible text,
// prefix and suffix, in match-preference order.
var pricePatterns = []struct {
	re       *regexp.Regexp
	currency string
}{
	{regexp.MustCompile(`€\s*([\d,]+\.?\d*)`), "EUR"},
	{regexp.MustCompile(`\$\s*([\d,]+\.?\d*)`), "USD"},
	{regexp.MustCompile(`£\s*([\d,]+\.?\d*)`), "GBP"},
	{regexp.MustCompile(`([\d,]+\.?\d*)\s*€`), "EUR"},
	{regexp.MustCompile(`([\d,]+\.?\d*)\s*\$`), "USD"},
	{regexp.MustCompile(`([\d,]+\.?\d*)\s*£`), "GBP"},
}

// Ensure Heuristic implements storescan.Strategy.
var _ storescan.Strategy = (*Heuristic)(nil)

// Heuristic synthesizes a candidate from plain page signals when both
// structured data and meta tags yielded nothing: page title, the first
// few page images, and a price scraped from visible text by currency
// symbol.
type Heuristic struct{}

// Name implements storescan.Strategy.
func (s *Heuristic) Name() string { return "heuristic" }

// Extract returns (nil, nil) when the page has no title; a titleless
// page carries too little signal to guess at.
func (s *Heuristic) Extract(_ context.Context, content *storescan.PageContent, _ string) (*storescan.ProductCandidate, error) {
	if content.Title == "" {
		return nil, nil
	}

	candidate := &storescan.ProductCandidate{
		IsProduct: true,
		Title:     content.Title,
		Currency:  "EUR",
	}

	for _, img := range content.Images {
		if len(candidate.Images) >= MaxCandidateImages {
			break
		}
		if img.Src != "" {
			candidate.Images = append(candidate.Images, img.Src)
		}
	}

	for _, p := range pricePatterns {
		if m := p.re.FindStringSubmatch(content.Text); m != nil {
			candidate.Price = m[1]
			candidate.Currency = p.currency
			break
		}
	}

	// A longer early heading often reads better than nothing as a
	// description.
	for _, h := range content.Headings {
		if h.Level <= 2 && len(h.Text) > 10 {
			candidate.Description = h.Text
			break
		}
	}

	return candidate, nil
}
