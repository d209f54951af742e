package main

import (
	"context"
	"io"
	"time"

	"github.com/fwojciec/storescan"
	"github.com/fwojciec/storescan/crawl"
	"github.com/fwojciec/storescan/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	DB      *sqlite.DB
	Catalog storescan.CatalogService
	Sitemaps storescan.SitemapService
	Crawler *crawl.Crawler
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Crawl  CrawlCmd  `cmd:"" help:"Crawl a storefront and build its product catalog"`
	Runs   RunsCmd   `cmd:"" help:"List crawl runs"`
	Export ExportCmd `cmd:"" help:"Export a run's products to CSV"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL         string        `arg:"" help:"Storefront base URL"`
	MaxPages    int           `short:"n" default:"50" help:"Maximum pages to crawl"`
	Concurrency int           `short:"c" default:"2" help:"Concurrent page renders"`
	Delay       time.Duration `default:"1s" help:"Minimum delay between requests to the same domain"`
	Timeout     time.Duration `default:"60s" help:"Per-page processing timeout"`
	ImagesDir   string        `default:"images" help:"Directory for downloaded product images"`
	NoAI        bool          `name:"no-ai" help:"Disable the AI extraction fallback"`
	Preview     bool          `short:"p" help:"Show page URLs without crawling"`
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct{}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	RunID  string `arg:"" optional:"" help:"Run to export (defaults to the most recent)"`
	Output string `short:"o" default:"products.csv" help:"CSV output path"`
}
