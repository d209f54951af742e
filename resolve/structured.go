package resolve

import (
	"context"
	"strconv"

	"github.com/fwojciec/storescan"
)

// Ensure StructuredData implements storescan.Strategy.
var _ storescan.Strategy = (*StructuredData)(nil)

// StructuredData extracts a candidate from a schema.org Product block in
// the page's JSON-LD. This is the highest-priority strategy.
type StructuredData struct{}

// Name implements storescan.Strategy.
func (s *StructuredData) Name() string { return "jsonld" }

// Extract scans structured-data blocks for the first one typed Product
// and maps its fields onto a candidate. Returns (nil, nil) when no
// Product block exists.
func (s *StructuredData) Extract(_ context.Context, content *storescan.PageContent, _ string) (*storescan.ProductCandidate, error) {
	for _, block := range content.StructuredData {
		if !hasType(block, "Product") {
			continue
		}

		candidate := &storescan.ProductCandidate{
			IsProduct:   true,
			Title:       stringValue(block["name"]),
			Description: stringValue(block["description"]),
			Images:      imageList(block["image"]),
		}
		applyOffers(candidate, block["offers"])
		return candidate, nil
	}
	return nil, nil
}

// hasType reports whether a JSON-LD block's @type matches want. The
// @type value may be a string or a list of strings.
func hasType(block map[string]any, want string) bool {
	switch t := block["@type"].(type) {
	case string:
		return t == want
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

// imageList accepts the schema.org image property as a string or a list.
func imageList(v any) []string {
	switch img := v.(type) {
	case string:
		if img != "" {
			return []string{img}
		}
	case []any:
		var urls []string
		for _, item := range img {
			if s, ok := item.(string); ok && s != "" {
				urls = append(urls, s)
			}
		}
		return urls
	}
	return nil
}

// applyOffers maps the offers property onto the candidate's price
// fields. An AggregateOffer-style object with lowPrice/highPrice maps
// low to price and high to old price; otherwise price and priceCurrency
// are taken directly. A list of offers uses its first element.
func applyOffers(candidate *storescan.ProductCandidate, v any) {
	var offer map[string]any
	switch o := v.(type) {
	case map[string]any:
		offer = o
	case []any:
		if len(o) > 0 {
			offer, _ = o[0].(map[string]any)
		}
	}
	if offer == nil {
		return
	}

	candidate.Currency = stringValue(offer["priceCurrency"])

	low, hasLow := offer["lowPrice"]
	high, hasHigh := offer["highPrice"]
	if hasLow && hasHigh {
		candidate.Price = stringValue(low)
		candidate.OldPrice = stringValue(high)
		return
	}
	candidate.Price = stringValue(offer["price"])
}

// stringValue renders a JSON value as a string. Prices in the wild
// appear as both strings and numbers.
func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}
