package storescan

import (
	"net/url"
	"strings"
)

// DefaultMaxPages caps how many classified URLs proceed to extraction.
const DefaultMaxPages = 50

// ClassifierConfig controls URL classification. The deny lists are
// deliberately permissive: false negatives on the deny side are cheap,
// the goal is only to exclude obvious non-content and asset URLs.
type ClassifierConfig struct {
	// BaseDomain is the exact host URLs must match.
	BaseDomain string

	// MaxPages truncates the classified result, preserving input order.
	// Zero means DefaultMaxPages.
	MaxPages int

	// DenyExtensions rejects URLs whose path ends with one of these.
	DenyExtensions []string

	// DenyPathParts rejects URLs whose path contains one of these.
	DenyPathParts []string
}

// DefaultClassifierConfig returns the classifier defaults for a base domain.
func DefaultClassifierConfig(baseDomain string) ClassifierConfig {
	return ClassifierConfig{
		BaseDomain: baseDomain,
		MaxPages:   DefaultMaxPages,
		DenyExtensions: []string{
			".jpg", ".jpeg", ".png", ".gif", ".svg", ".ico", ".webp",
			".css", ".js", ".pdf", ".zip",
			".woff", ".woff2", ".ttf", ".eot",
		},
		DenyPathParts: []string{
			"/cart", "/checkout", "/account", "/login", "/register",
			"/search", "/admin", "/wp-admin", "/api/", "/cdn-",
			"/javascript", "/css", "/images/", "/fonts/", "/assets/",
			"/ajax", "/json", "/xml", "/rss", "/feed",
		},
	}
}

// Classifier filters a raw URL set to those plausibly in scope for
// content extraction: same-domain, http(s), non-asset, non-administrative.
type Classifier struct {
	config ClassifierConfig
}

// NewClassifier creates a Classifier. Zero-value config fields fall back
// to the defaults for the config's BaseDomain.
func NewClassifier(config ClassifierConfig) *Classifier {
	defaults := DefaultClassifierConfig(config.BaseDomain)
	if config.MaxPages <= 0 {
		config.MaxPages = defaults.MaxPages
	}
	if config.DenyExtensions == nil {
		config.DenyExtensions = defaults.DenyExtensions
	}
	if config.DenyPathParts == nil {
		config.DenyPathParts = defaults.DenyPathParts
	}
	return &Classifier{config: config}
}

// Classify returns the subset of urls that pass the filter, in input
// order, truncated to the configured maximum page count.
func (c *Classifier) Classify(urls []string) []string {
	var kept []string
	for _, u := range urls {
		if !c.retain(u) {
			continue
		}
		kept = append(kept, u)
		if len(kept) >= c.config.MaxPages {
			break
		}
	}
	return kept
}

// retain reports whether a single URL is in scope.
func (c *Classifier) retain(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if parsed.Host != c.config.BaseDomain {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}

	path := strings.ToLower(parsed.Path)
	for _, ext := range c.config.DenyExtensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}
	for _, part := range c.config.DenyPathParts {
		if strings.Contains(path, part) {
			return false
		}
	}
	return true
}
