// Package http provides HTTP-based implementations of storescan services:
// sitemap discovery and image probing.
package http

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"

	"github.com/fwojciec/storescan"
)

// maxSitemapBytes caps how much of a single sitemap document is read.
const maxSitemapBytes = 50 << 20

// Ensure SitemapService implements storescan.SitemapService.
var _ storescan.SitemapService = (*SitemapService)(nil)

// SitemapService discovers page URLs from a site's sitemap tree and
// robots file via HTTP.
type SitemapService struct {
	client *http.Client
	logger *slog.Logger
}

// NewSitemapService creates a new SitemapService with the given HTTP
// client. If client is nil, http.DefaultClient is used; if logger is
// nil, slog.Default() is used.
func NewSitemapService(client *http.Client, logger *slog.Logger) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SitemapService{client: client, logger: logger}
}

// DiscoverURLs finds all page URLs from <baseURL>/sitemap.xml and from
// Sitemap: directives in /robots.txt, unioned and de-duplicated.
// Individual sitemap failures are logged and skipped; the only error
// returns are an invalid base URL or context cancellation.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Host == "" {
		return nil, storescan.Errorf(storescan.EINVALID, "invalid base URL %q", baseURL)
	}

	// Visited sitemaps and collected page URLs are both shared across
	// the whole discovery call, so a sitemap listed by robots.txt and by
	// an index is only resolved once.
	seenSitemaps := make(map[string]bool)
	seenPages := make(map[string]bool)
	pages := []string{}

	collect := func(urls []string) {
		for _, u := range urls {
			if !seenPages[u] {
				seenPages[u] = true
				pages = append(pages, u)
			}
		}
	}

	sitemapURL := base.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()
	collect(s.resolveSitemap(ctx, sitemapURL, seenSitemaps))

	for _, sm := range s.sitemapsFromRobots(ctx, base) {
		collect(s.resolveSitemap(ctx, sm, seenSitemaps))
	}

	return pages, ctx.Err()
}

// sitemapsFromRobots extracts Sitemap: directives from /robots.txt.
// Failures yield an empty list.
func (s *SitemapService) sitemapsFromRobots(ctx context.Context, base *url.URL) []string {
	robotsURL := base.ResolveReference(&url.URL{Path: "/robots.txt"}).String()
	body, err := s.fetch(ctx, robotsURL)
	if err != nil {
		s.logger.Debug("robots.txt unavailable", "url", robotsURL, "err", err)
		return nil
	}

	var sitemaps []string
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// The directive key is case-insensitive.
		if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			if u := strings.TrimSpace(line[len("sitemap:"):]); u != "" {
				sitemaps = append(sitemaps, u)
			}
		}
	}
	return sitemaps
}

// resolveSitemap fetches and parses one sitemap location, recursing into
// index entries. Any fetch or parse failure is non-fatal: it logs and
// returns whatever was collected.
func (s *SitemapService) resolveSitemap(ctx context.Context, sitemapURL string, seen map[string]bool) []string {
	if ctx.Err() != nil {
		return nil
	}
	if seen[sitemapURL] {
		return nil
	}
	seen[sitemapURL] = true

	body, err := s.fetch(ctx, sitemapURL)
	if err != nil {
		s.logger.Warn("sitemap fetch failed", "url", sitemapURL, "err", err)
		return nil
	}

	children, pages, err := parseSitemap(body)
	if err != nil {
		// Malformed XML: retry with the lenient HTML parser before
		// giving up on this location.
		children, pages, err = parseSitemapLenient(body)
		if err != nil {
			s.logger.Warn("sitemap parse failed", "url", sitemapURL, "err", err)
			return nil
		}
	}

	for _, child := range children {
		pages = append(pages, s.resolveSitemap(ctx, child, seen)...)
	}
	return pages
}

// parseSitemap parses sitemap XML with etree. It returns child sitemap
// URLs for an index document and page URLs for a urlset document.
func parseSitemap(body []byte) (children, pages []string, err error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, nil, fmt.Errorf("parsing sitemap XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, nil, fmt.Errorf("empty sitemap XML")
	}

	if root.Tag == "sitemapindex" {
		for _, el := range root.SelectElements("sitemap") {
			if loc := locText(el); loc != "" {
				children = append(children, loc)
			}
		}
		return children, nil, nil
	}

	for _, el := range root.SelectElements("url") {
		if loc := locText(el); loc != "" {
			pages = append(pages, loc)
		}
	}
	return nil, pages, nil
}

func locText(el *etree.Element) string {
	loc := el.SelectElement("loc")
	if loc == nil {
		return ""
	}
	return strings.TrimSpace(loc.Text())
}

// parseSitemapLenient recovers loc entries from markup the XML parser
// rejected, using the error-tolerant HTML tokenizer.
func parseSitemapLenient(body []byte) (children, pages []string, err error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("lenient sitemap parse: %w", err)
	}

	var walk func(n *html.Node, parent string)
	walk = func(n *html.Node, parent string) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "sitemap", "url":
				parent = n.Data
			case "loc":
				if loc := strings.TrimSpace(nodeText(n)); loc != "" {
					switch parent {
					case "sitemap":
						children = append(children, loc)
					case "url":
						pages = append(pages, loc)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, parent)
		}
	}
	walk(root, "")

	return children, pages, nil
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

// fetch retrieves a URL, returning the body for 200 responses only.
func (s *SitemapService) fetch(ctx context.Context, targetURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, targetURL)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxSitemapBytes))
}
