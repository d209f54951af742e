// Package goquery provides a CSS-selector based implementation of the
// storescan page content extractor.
package goquery

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fwojciec/storescan"
)

// srcAttrs lists image source attributes in priority order. Lazy-load
// attributes come after the standard src.
var srcAttrs = []string{"src", "data-src", "data-lazy-src", "data-original", "data-url"}

// Ensure Extractor implements storescan.Extractor.
var _ storescan.Extractor = (*Extractor)(nil)

// Extractor converts rendered markup into storescan.PageContent.
// It is a pure transformation: no network calls, deterministic output.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses markup into the page's intermediate representation.
// Empty markup yields (nil, nil).
func (e *Extractor) Extract(html string) (*storescan.PageContent, error) {
	if strings.TrimSpace(html) == "" {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, storescan.Errorf(storescan.EINVALID, "parsing markup: %v", err)
	}

	content := &storescan.PageContent{
		Title:          strings.TrimSpace(doc.Find("title").First().Text()),
		Headings:       extractHeadings(doc),
		Images:         extractImages(doc),
		StructuredData: extractStructuredData(doc),
		MetaTags:       extractMetaTags(doc),
	}

	// Script and style content must be stripped before the visible text
	// is read, so this runs after the structured-data pass.
	doc.Find("script, style, noscript").Remove()
	content.Text = strings.Join(strings.Fields(doc.Text()), " ")

	return content, nil
}

// extractHeadings collects h1-h3 headings in document order.
func extractHeadings(doc *goquery.Document) []storescan.Heading {
	var headings []storescan.Heading
	doc.Find("h1, h2, h3").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		var level int
		switch goquery.NodeName(sel) {
		case "h1":
			level = 1
		case "h2":
			level = 2
		case "h3":
			level = 3
		default:
			return
		}
		headings = append(headings, storescan.Heading{Level: level, Text: text})
	})
	return headings
}

// extractImages collects image tags, resolving the source from the first
// present attribute among the standard and lazy-load names.
func extractImages(doc *goquery.Document) []storescan.ImageRef {
	var images []storescan.ImageRef
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		var src string
		for _, attr := range srcAttrs {
			if v, ok := sel.Attr(attr); ok && strings.TrimSpace(v) != "" {
				src = strings.TrimSpace(v)
				break
			}
		}
		if src == "" {
			return
		}
		alt, _ := sel.Attr("alt")
		images = append(images, storescan.ImageRef{Src: src, Alt: alt})
	})
	return images
}

// extractStructuredData parses every application/ld+json block that
// holds valid JSON. Top-level arrays are flattened into their object
// elements; invalid blocks are skipped, not fatal.
func extractStructuredData(doc *goquery.Document) []map[string]any {
	var blocks []map[string]any
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		var parsed any
		if err := json.Unmarshal([]byte(sel.Text()), &parsed); err != nil {
			return
		}
		switch v := parsed.(type) {
		case map[string]any:
			blocks = append(blocks, v)
		case []any:
			for _, item := range v {
				if m, ok := item.(map[string]any); ok {
					blocks = append(blocks, m)
				}
			}
		}
	})
	return blocks
}

// extractMetaTags maps each meta tag's name (falling back to property)
// to its content attribute.
func extractMetaTags(doc *goquery.Document) map[string]string {
	meta := make(map[string]string)
	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		key, ok := sel.Attr("name")
		if !ok || key == "" {
			key, _ = sel.Attr("property")
		}
		content, hasContent := sel.Attr("content")
		if key != "" && hasContent && content != "" {
			meta[key] = content
		}
	})
	return meta
}
