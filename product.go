package storescan

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ProductCandidate is an intermediate, possibly-incomplete product guess
// produced by one resolution strategy. It is never persisted; the
// resolver consumes it immediately during normalization.
type ProductCandidate struct {
	IsProduct   bool
	Title       string
	Description string
	Price       string
	OldPrice    string
	Currency    string

	// Images holds raw image URLs in the order the strategy found them.
	Images []string
}

// ProductRecord is the final normalized product entity.
type ProductRecord struct {
	// ID is assigned by the orchestrator: monotonically increasing per
	// run in discovery order, stable only within a run.
	ID int `json:"id"`

	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// Price and OldPrice are fixed-point decimal strings formatted to
	// two decimals, or "" when no numeric value was found.
	Price    string `json:"price"`
	OldPrice string `json:"old_price"`

	// Currency is an ISO-4217-like upper-case code.
	Currency string `json:"currency"`

	// Images holds the final ordered image filenames after download.
	Images []string `json:"images"`
}

// Strategy attempts to extract a product candidate from page content.
// Strategies are tried in priority order by the resolver; the first one
// to return a non-nil candidate wins and no merging occurs.
type Strategy interface {
	// Name identifies the strategy for logging (e.g. "jsonld", "meta").
	Name() string

	// Extract returns a candidate, or nil when the page carries no
	// signal this strategy understands. An error means the strategy
	// itself failed (e.g. an upstream service call); the resolver falls
	// through to the next strategy either way.
	Extract(ctx context.Context, content *PageContent, pageURL string) (*ProductCandidate, error)
}

// ProductResolver converts page content into a normalized ProductRecord.
type ProductResolver interface {
	// Resolve returns (nil, nil) when no strategy yields a usable
	// candidate. This is a valid no-data outcome, not an error.
	// The record's ID and URL fields are left for the orchestrator.
	Resolve(ctx context.Context, content *PageContent, pageURL string) (*ProductRecord, error)
}

// ProductExtractor is the external AI-assisted extraction collaborator.
type ProductExtractor interface {
	// ExtractProduct sends excerpted page signals to the service and
	// parses its JSON response into a candidate. A non-JSON or empty
	// response is an EUNAVAILABLE error, never a crash.
	ExtractProduct(ctx context.Context, content *PageContent, pageURL string) (*ProductCandidate, error)
}

// priceRe matches the first digit/decimal/comma run in a price string.
var priceRe = regexp.MustCompile(`[\d,]+\.?\d*`)

// NormalizePrice extracts the first numeric run from s, strips thousands
// separators, and re-renders the value to exactly two decimal places.
// Returns "" when s contains no digits. The operation is idempotent:
// an already-normalized value passes through unchanged.
func NormalizePrice(s string) string {
	m := priceRe.FindString(strings.ReplaceAll(s, " ", ""))
	if m == "" {
		return ""
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%.2f", f)
}

// NormalizeCandidate applies the uniform normalization rules to whichever
// candidate won the fallback chain: trimmed title and description,
// two-decimal prices, upper-case currency. Image URLs are left to the
// image selection step.
func NormalizeCandidate(c *ProductCandidate) {
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	c.Price = NormalizePrice(c.Price)
	c.OldPrice = NormalizePrice(c.OldPrice)
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
}
