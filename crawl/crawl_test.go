package crawl_test

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/storescan"
	"github.com/fwojciec/storescan/crawl"
	"github.com/fwojciec/storescan/mock"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// catalogRecorder is a mock.CatalogService that remembers what was
// stored.
type catalogRecorder struct {
	mock.CatalogService

	mu       sync.Mutex
	runs     []*storescan.Run
	products []*storescan.ProductRecord
	finished map[string][2]int
}

func newCatalogRecorder() *catalogRecorder {
	r := &catalogRecorder{finished: make(map[string][2]int)}
	r.CreateRunFn = func(_ context.Context, run *storescan.Run) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.runs = append(r.runs, run)
		return nil
	}
	r.CreateProductFn = func(_ context.Context, runID string, product *storescan.ProductRecord) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.products = append(r.products, product)
		return nil
	}
	r.FinishRunFn = func(_ context.Context, runID string, pages, products int) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.finished[runID] = [2]int{pages, products}
		return nil
	}
	return r
}

func TestCrawler_Crawl(t *testing.T) {
	t.Parallel()

	sitemaps := &mock.SitemapService{
		DiscoverURLsFn: func(context.Context, string) ([]string, error) {
			return []string{
				"https://shop.example.com/products/lamp",
				"https://shop.example.com/about",
				"https://shop.example.com/products/vase",
				"https://shop.example.com/products/lamp", // duplicate
				"https://shop.example.com/assets/style.css",
			}, nil
		},
	}

	fetcher := &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			return "<html>" + url + "</html>", nil
		},
	}

	extractor := &mock.Extractor{
		ExtractFn: func(html string) (*storescan.PageContent, error) {
			return &storescan.PageContent{Text: html}, nil
		},
	}

	resolver := &mock.ProductResolver{
		ResolveFn: func(_ context.Context, content *storescan.PageContent, pageURL string) (*storescan.ProductRecord, error) {
			switch {
			case strings.Contains(pageURL, "lamp"):
				return &storescan.ProductRecord{
					URL:    pageURL,
					Title:  "Lamp",
					Price:  "49.90",
					Images: []string{"https://cdn.example.com/lamp.jpg"},
				}, nil
			case strings.Contains(pageURL, "vase"):
				return &storescan.ProductRecord{URL: pageURL, Title: "Vase"}, nil
			default:
				return nil, nil
			}
		},
	}

	selector := &mock.ImageSelector{
		SelectFn: func(_ context.Context, candidates []storescan.ImageCandidate, _ string) ([]storescan.ImageCandidate, error) {
			out := make([]storescan.ImageCandidate, len(candidates))
			for i, c := range candidates {
				c.Filename = "lamp.jpg"
				out[i] = c
			}
			return out, nil
		},
	}

	images := &mock.ImageFetcher{
		DownloadFn: func(_ context.Context, url string) ([]byte, error) {
			return []byte("image-bytes"), nil
		},
	}

	store := &mock.ImageStore{
		SaveImageFn: func(productID, seq int, sourceFilename string, data []byte) (string, error) {
			return "1-0.jpg", nil
		},
	}

	catalog := newCatalogRecorder()

	c := &crawl.Crawler{
		Sitemaps:    sitemaps,
		Fetcher:     fetcher,
		Extractor:   extractor,
		Resolver:    resolver,
		Selector:    selector,
		Images:      images,
		Catalog:     catalog,
		ImageStore:  store,
		Logger:      discard(),
		RetryDelays: []time.Duration{},
	}

	var mu sync.Mutex
	var events []crawl.ProgressEvent
	result, err := c.Crawl(context.Background(), "https://shop.example.com", func(e crawl.ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	})

	require.NoError(t, err)

	// The duplicate and the stylesheet never reach the fetcher.
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, 2, result.Products)
	assert.Equal(t, 0, result.Failed)
	assert.NotEmpty(t, result.RunID)

	// Products keep sitemap order with 1-based monotonic IDs.
	require.Len(t, catalog.products, 2)
	assert.Equal(t, 1, catalog.products[0].ID)
	assert.Equal(t, "Lamp", catalog.products[0].Title)
	assert.Equal(t, 2, catalog.products[1].ID)
	assert.Equal(t, "Vase", catalog.products[1].Title)

	// Image URLs were replaced with stored filenames.
	assert.Equal(t, []string{"1-0.jpg"}, catalog.products[0].Images)
	assert.Empty(t, catalog.products[1].Images)

	// The run was created and finished with the final counts.
	require.Len(t, catalog.runs, 1)
	assert.Equal(t, result.RunID, catalog.runs[0].ID)
	assert.Equal(t, [2]int{3, 2}, catalog.finished[result.RunID])

	// Progress: one start, one event per page, one finish.
	require.Len(t, events, 5)
	assert.Equal(t, crawl.ProgressStarted, events[0].Type)
	assert.Equal(t, 3, events[0].Total)
	assert.Equal(t, crawl.ProgressFinished, events[4].Type)
}

func TestCrawler_Crawl_FailedPagesAreCounted(t *testing.T) {
	t.Parallel()

	sitemaps := &mock.SitemapService{
		DiscoverURLsFn: func(context.Context, string) ([]string, error) {
			return []string{
				"https://shop.example.com/products/lamp",
				"https://shop.example.com/products/broken",
			}, nil
		},
	}

	fetcher := &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			if strings.Contains(url, "broken") {
				return "", storescan.Errorf(storescan.EUNAVAILABLE, "fetch failed")
			}
			return "<html></html>", nil
		},
	}

	catalog := newCatalogRecorder()
	c := &crawl.Crawler{
		Sitemaps: sitemaps,
		Fetcher:  fetcher,
		Extractor: &mock.Extractor{ExtractFn: func(string) (*storescan.PageContent, error) {
			return &storescan.PageContent{}, nil
		}},
		Resolver: &mock.ProductResolver{ResolveFn: func(_ context.Context, _ *storescan.PageContent, pageURL string) (*storescan.ProductRecord, error) {
			return &storescan.ProductRecord{URL: pageURL, Title: "Lamp"}, nil
		}},
		Catalog:     catalog,
		Logger:      discard(),
		RetryDelays: []time.Duration{},
	}

	result, err := c.Crawl(context.Background(), "https://shop.example.com", nil)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, 1, result.Products)
	assert.Equal(t, 1, result.Failed)

	// A failed page does not consume a product ID.
	require.Len(t, catalog.products, 1)
	assert.Equal(t, 1, catalog.products[0].ID)
}

func TestCrawler_Crawl_RetriesFetches(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int64
	fetcher := &mock.Fetcher{
		FetchFn: func(context.Context, string) (string, error) {
			if attempts.Add(1) < 3 {
				return "", storescan.Errorf(storescan.EUNAVAILABLE, "flaky")
			}
			return "<html></html>", nil
		},
	}

	catalog := newCatalogRecorder()
	c := &crawl.Crawler{
		Sitemaps: &mock.SitemapService{DiscoverURLsFn: func(context.Context, string) ([]string, error) {
			return []string{"https://shop.example.com/products/lamp"}, nil
		}},
		Fetcher: fetcher,
		Extractor: &mock.Extractor{ExtractFn: func(string) (*storescan.PageContent, error) {
			return &storescan.PageContent{}, nil
		}},
		Resolver: &mock.ProductResolver{ResolveFn: func(_ context.Context, _ *storescan.PageContent, pageURL string) (*storescan.ProductRecord, error) {
			return &storescan.ProductRecord{URL: pageURL, Title: "Lamp"}, nil
		}},
		Catalog:     catalog,
		Logger:      discard(),
		RetryDelays: []time.Duration{time.Millisecond, time.Millisecond},
	}

	result, err := c.Crawl(context.Background(), "https://shop.example.com", nil)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Products)
	assert.Equal(t, int64(3), attempts.Load())
}

func TestCrawler_Crawl_EmptySitemapStillRecordsRun(t *testing.T) {
	t.Parallel()

	catalog := newCatalogRecorder()
	c := &crawl.Crawler{
		Sitemaps: &mock.SitemapService{DiscoverURLsFn: func(context.Context, string) ([]string, error) {
			return []string{}, nil
		}},
		Catalog: catalog,
		Logger:  discard(),
	}

	result, err := c.Crawl(context.Background(), "https://shop.example.com", nil)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Pages)
	assert.Equal(t, 0, result.Products)
	require.Len(t, catalog.runs, 1)
	assert.Equal(t, [2]int{0, 0}, catalog.finished[result.RunID])
}

func TestCrawler_Crawl_InvalidSiteURL(t *testing.T) {
	t.Parallel()

	c := &crawl.Crawler{Logger: discard()}
	_, err := c.Crawl(context.Background(), "not a url", nil)
	assert.Equal(t, storescan.EINVALID, storescan.ErrorCode(err))
}

func TestCrawler_Crawl_ImageDownloadFailureKeepsRecord(t *testing.T) {
	t.Parallel()

	catalog := newCatalogRecorder()
	c := &crawl.Crawler{
		Sitemaps: &mock.SitemapService{DiscoverURLsFn: func(context.Context, string) ([]string, error) {
			return []string{"https://shop.example.com/products/lamp"}, nil
		}},
		Fetcher: &mock.Fetcher{FetchFn: func(context.Context, string) (string, error) {
			return "<html></html>", nil
		}},
		Extractor: &mock.Extractor{ExtractFn: func(string) (*storescan.PageContent, error) {
			return &storescan.PageContent{}, nil
		}},
		Resolver: &mock.ProductResolver{ResolveFn: func(_ context.Context, _ *storescan.PageContent, pageURL string) (*storescan.ProductRecord, error) {
			return &storescan.ProductRecord{
				URL:    pageURL,
				Title:  "Lamp",
				Images: []string{"https://cdn.example.com/lamp.jpg"},
			}, nil
		}},
		Selector: &mock.ImageSelector{SelectFn: func(_ context.Context, candidates []storescan.ImageCandidate, _ string) ([]storescan.ImageCandidate, error) {
			return candidates, nil
		}},
		Images: &mock.ImageFetcher{DownloadFn: func(context.Context, string) ([]byte, error) {
			return nil, storescan.Errorf(storescan.EUNAVAILABLE, "cdn down")
		}},
		ImageStore: &mock.ImageStore{SaveImageFn: func(int, int, string, []byte) (string, error) {
			return "", nil
		}},
		Catalog:     catalog,
		Logger:      discard(),
		RetryDelays: []time.Duration{},
	}

	result, err := c.Crawl(context.Background(), "https://shop.example.com", nil)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Products)
	require.Len(t, catalog.products, 1)
	assert.Empty(t, catalog.products[0].Images)
}
