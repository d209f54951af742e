// Package rod provides a Chrome-backed page fetcher. Storefront pages
// routinely build their product markup client-side, so the crawler needs
// rendered HTML, not the raw server response.
package rod

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/fwojciec/storescan"
)

// DefaultPagesPerBrowser is the number of pages rendered before the
// browser process is recycled. Chrome accumulates memory over time
// (~0.5MB/s under load) and the baseline never returns to initial levels
// even with proper page cleanup, so the process is replaced periodically.
const DefaultPagesPerBrowser = 75

// DefaultFetchTimeout bounds a single page render.
const DefaultFetchTimeout = 30 * time.Second

// trackerPatterns are hijack patterns for analytics and ad requests.
// Blocking them speeds up page loads and keeps the crawler from
// registering on site analytics.
var trackerPatterns = []string{
	"*google-analytics.com*",
	"*googletagmanager.com*",
	"*facebook.com/tr*",
	"*doubleclick.net*",
	"*hotjar.com*",
}

// Ensure Fetcher implements storescan.Fetcher at compile time.
var _ storescan.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using Chrome browser automation, with
// tracker blocking and automatic browser recycling. Safe for concurrent
// use by multiple goroutines.
type Fetcher struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	router   *rod.HijackRouter

	pageCount       int64
	pagesPerBrowser int64
	fetchTimeout    time.Duration
	closed          atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the per-page render timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.fetchTimeout = d }
}

// WithPagesPerBrowser sets how many pages are rendered before the
// browser process is recycled.
func WithPagesPerBrowser(n int64) Option {
	return func(f *Fetcher) { f.pagesPerBrowser = n }
}

// NewFetcher launches a headless Chrome browser. Close must be called
// when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		pagesPerBrowser: DefaultPagesPerBrowser,
		fetchTimeout:    DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	if err := f.launchBrowser(); err != nil {
		return nil, err
	}
	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML once the
// load event has fired. It deliberately does not wait for network idle:
// storefronts keep long-polling analytics connections open and a
// network-idle wait would never resolve on them.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", storescan.Errorf(storescan.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.fetchTimeout)
	defer cancel()

	browser, err := f.browserForPage()
	if err != nil {
		return "", err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	html, err := page.HTML()
	if err != nil {
		return "", err
	}

	atomic.AddInt64(&f.pageCount, 1)
	return html, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeBrowser()
}

// browserForPage returns the current browser, recycling it when the page
// count has reached the threshold.
func (f *Fetcher) browserForPage() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if atomic.LoadInt64(&f.pageCount) >= f.pagesPerBrowser {
		f.recycleBrowser()
	}
	if f.browser == nil {
		return nil, storescan.Errorf(storescan.EINTERNAL, "no browser available")
	}
	return f.browser, nil
}

// launchBrowser starts a new browser instance with stability flags and
// installs the tracker-blocking hijack router.
// Must be called with mu held (or before the Fetcher is shared).
func (f *Fetcher) launchBrowser() error {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)

	u, err := lnchr.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	router := browser.HijackRequests()
	for _, pattern := range trackerPatterns {
		if err := router.Add(pattern, "", blockRequest); err != nil {
			_ = browser.Close()
			lnchr.Kill()
			return fmt.Errorf("installing tracker block for %q: %w", pattern, err)
		}
	}
	go router.Run()

	f.browser = browser
	f.launcher = lnchr
	f.router = router
	return nil
}

// blockRequest fails a hijacked request without hitting the network.
func blockRequest(h *rod.Hijack) {
	h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
}

// closeBrowser shuts down the current browser and launcher.
// Must be called with mu held.
func (f *Fetcher) closeBrowser() error {
	var err error
	if f.router != nil {
		_ = f.router.Stop()
		f.router = nil
	}
	if f.browser != nil {
		err = f.browser.Close()
		f.browser = nil
	}
	if f.launcher != nil {
		f.launcher.Kill()
		f.launcher = nil
	}
	return err
}

// recycleBrowser starts a fresh browser and closes the old one. If
// launching the replacement fails, the old browser is kept.
// Must be called with mu held.
func (f *Fetcher) recycleBrowser() {
	oldBrowser := f.browser
	oldLauncher := f.launcher
	oldRouter := f.router
	f.browser = nil
	f.launcher = nil
	f.router = nil

	if err := f.launchBrowser(); err != nil {
		f.browser = oldBrowser
		f.launcher = oldLauncher
		f.router = oldRouter
		return
	}

	if oldRouter != nil {
		_ = oldRouter.Stop()
	}
	if oldBrowser != nil {
		_ = oldBrowser.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
	atomic.StoreInt64(&f.pageCount, 0)
}
