// Package crawl orchestrates a storefront crawl: sitemap discovery,
// page classification, rendering, product resolution, image selection,
// and catalog persistence.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fwojciec/storescan"
	"github.com/fwojciec/storescan/bloom"
)

// DefaultConcurrency is the number of pages rendered in parallel. Two is
// deliberately low: each page holds a Chrome tab, and most storefronts
// throttle aggressive clients anyway.
const DefaultConcurrency = 2

// Guard sizing for URL deduplication.
const (
	guardExpectedURLs      = 10000
	guardFalsePositiveRate = 0.01
)

// Crawler orchestrates the crawling of a storefront site.
type Crawler struct {
	Sitemaps   storescan.SitemapService
	Classifier *storescan.Classifier
	Fetcher    storescan.Fetcher
	Extractor  storescan.Extractor
	Resolver   storescan.ProductResolver
	Selector   storescan.ImageSelector
	Images     storescan.ImageFetcher
	Catalog    storescan.CatalogService
	ImageStore storescan.ImageStore
	Limiter    *DomainLimiter
	Logger     *slog.Logger

	// MaxPages caps the number of pages crawled per run; zero uses
	// storescan.DefaultMaxPages.
	MaxPages    int
	Concurrency int
	RetryDelays []time.Duration

	// PageTimeout bounds the full processing of one page, including
	// retries. Zero disables the bound.
	PageTimeout time.Duration
}

// Result holds the outcome of a crawl.
type Result struct {
	RunID    string
	Pages    int
	Products int
	Failed   int
}

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// pageResult holds the outcome of processing a single page.
type pageResult struct {
	position int
	url      string
	record   *storescan.ProductRecord
	images   []storescan.ImageCandidate
	err      error
}

// Crawl discovers the site's pages and resolves each into a product
// record where one exists. Every run is persisted, even one that finds
// nothing. The progress callback, if provided, receives events as the
// crawl proceeds.
func (c *Crawler) Crawl(ctx context.Context, siteURL string, progress ProgressFunc) (*Result, error) {
	base, err := url.Parse(siteURL)
	if err != nil || base.Host == "" {
		return nil, storescan.Errorf(storescan.EINVALID, "invalid site URL %q", siteURL)
	}

	discovered, err := c.Sitemaps.DiscoverURLs(ctx, siteURL)
	if err != nil {
		return nil, fmt.Errorf("sitemap discovery: %w", err)
	}

	pageURLs := c.classify(base.Host, discovered)

	run := &storescan.Run{
		ID:        uuid.New().String(),
		SiteURL:   siteURL,
		StartedAt: time.Now().UTC(),
	}
	if err := c.Catalog.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	total := len(pageURLs)
	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	resultCh := make(chan pageResult, total)
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, pageURL := range pageURLs {
			g.Go(func() error {
				resultCh <- c.processPage(gctx, i, pageURL)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	// Collect as workers finish; results are re-ordered by sitemap
	// position so product IDs are stable across runs of the same site.
	results := make([]pageResult, total)
	var failed int
	for result := range resultCh {
		completed.Add(1)
		results[result.position] = result

		if progress == nil {
			continue
		}
		event := ProgressEvent{
			Completed: int(completed.Load()),
			Total:     total,
			URL:       result.url,
		}
		if result.err != nil {
			event.Type = ProgressFailed
			event.Error = result.err
		} else {
			event.Type = ProgressCompleted
		}
		progress(event)
	}

	// Persist products in page order with monotonic IDs.
	var saved int
	productID := 0
	for _, result := range results {
		if result.err != nil {
			failed++
			continue
		}
		if result.record == nil {
			continue
		}

		productID++
		result.record.ID = productID
		result.record.Images = c.saveImages(ctx, productID, result.images)

		if err := c.Catalog.CreateProduct(ctx, run.ID, result.record); err != nil {
			c.log().Warn("product not saved", "url", result.url, "err", err)
			failed++
			continue
		}
		saved++
	}

	if err := c.Catalog.FinishRun(ctx, run.ID, total, saved); err != nil {
		return nil, fmt.Errorf("finish run: %w", err)
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	}

	return &Result{
		RunID:    run.ID,
		Pages:    total,
		Products: saved,
		Failed:   failed,
	}, nil
}

// classify deduplicates the discovered URLs and reduces them to the
// pages worth rendering. Deduplication runs first so repeated sitemap
// entries do not consume the page budget.
func (c *Crawler) classify(baseDomain string, discovered []string) []string {
	guard := bloom.NewGuard(guardExpectedURLs, guardFalsePositiveRate)
	unique := make([]string, 0, len(discovered))
	for _, u := range discovered {
		if !guard.Seen(u) {
			unique = append(unique, u)
		}
	}

	classifier := c.Classifier
	if classifier == nil {
		classifier = storescan.NewClassifier(storescan.ClassifierConfig{
			BaseDomain: baseDomain,
			MaxPages:   c.MaxPages,
		})
	}
	return classifier.Classify(unique)
}

// processPage renders one page and resolves it into a product record.
// A nil record with nil error means the page is not a product page.
func (c *Crawler) processPage(ctx context.Context, position int, pageURL string) pageResult {
	result := pageResult{position: position, url: pageURL}

	if c.PageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PageTimeout)
		defer cancel()
	}

	if err := c.wait(ctx, pageURL); err != nil {
		result.err = err
		return result
	}

	delays := c.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	html, err := FetchWithRetryDelays(ctx, pageURL, c.Fetcher.Fetch, c.Logger, delays)
	if err != nil {
		result.err = err
		return result
	}

	content, err := c.Extractor.Extract(html)
	if err != nil {
		result.err = err
		return result
	}

	record, err := c.Resolver.Resolve(ctx, content, pageURL)
	if err != nil {
		result.err = err
		return result
	}
	if record == nil {
		return result
	}
	result.record = record

	// Image selection failure downgrades to a record without images
	// rather than losing the product.
	if c.Selector != nil && len(record.Images) > 0 {
		candidates := make([]storescan.ImageCandidate, 0, len(record.Images))
		for _, u := range record.Images {
			candidates = append(candidates, storescan.ImageCandidate{URL: u})
		}
		selected, err := c.Selector.Select(ctx, candidates, pageURL)
		if err != nil {
			c.log().Warn("image selection failed", "url", pageURL, "err", err)
		} else {
			result.images = selected
		}
	}

	return result
}

// saveImages downloads the selected images and stores them under the
// product ID, returning the stored filenames. Without a store configured
// the record keeps the source URLs. A single failed download is skipped.
func (c *Crawler) saveImages(ctx context.Context, productID int, selected []storescan.ImageCandidate) []string {
	if len(selected) == 0 {
		return nil
	}
	if c.Images == nil || c.ImageStore == nil {
		urls := make([]string, 0, len(selected))
		for _, img := range selected {
			urls = append(urls, img.URL)
		}
		return urls
	}

	var names []string
	for seq, img := range selected {
		if err := c.wait(ctx, img.URL); err != nil {
			break
		}
		data, err := c.Images.Download(ctx, img.URL)
		if err != nil {
			c.log().Warn("image download failed", "url", img.URL, "err", err)
			continue
		}
		name, err := c.ImageStore.SaveImage(productID, seq, img.Filename, data)
		if err != nil {
			c.log().Warn("image not saved", "url", img.URL, "err", err)
			continue
		}
		names = append(names, name)
	}
	return names
}

// wait applies the per-domain rate limit for the URL's host.
func (c *Crawler) wait(ctx context.Context, rawURL string) error {
	if c.Limiter == nil {
		return ctx.Err()
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ctx.Err()
	}
	return c.Limiter.Wait(ctx, u.Host)
}

func (c *Crawler) log() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
