package main

import (
	"fmt"
	"net/url"

	"github.com/fwojciec/storescan"
	"github.com/fwojciec/storescan/crawl"
	"github.com/fwojciec/storescan/fs"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	// Preview mode: show the pages a crawl would visit without rendering
	// anything.
	if c.Preview {
		base, err := url.Parse(c.URL)
		if err != nil || base.Host == "" {
			fmt.Fprintf(deps.Stderr, "error: invalid site URL %q\n", c.URL)
			return storescan.Errorf(storescan.EINVALID, "invalid site URL %q", c.URL)
		}

		discovered, err := deps.Sitemaps.DiscoverURLs(deps.Ctx, c.URL)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", storescan.ErrorMessage(err))
			return err
		}

		classifier := storescan.NewClassifier(storescan.ClassifierConfig{
			BaseDomain: base.Host,
			MaxPages:   c.MaxPages,
		})
		for _, u := range classifier.Classify(discovered) {
			fmt.Fprintln(deps.Stdout, u)
		}
		return nil
	}

	deps.Crawler.ImageStore = fs.NewImageStore(c.ImagesDir)

	progress := func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "  Found %d pages\n", event.Total)
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", event.URL, event.Error)
		case crawl.ProgressFinished:
			// Summary printed after the crawl completes
		}
	}

	result, err := deps.Crawler.Crawl(deps.Ctx, c.URL, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error crawling: %v\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "  Found %d products on %d pages (%d failed)\n",
		result.Products, result.Pages, result.Failed)
	fmt.Fprintf(deps.Stdout, "Run %s complete\n", result.RunID)

	return nil
}
