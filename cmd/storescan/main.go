// Command storescan crawls e-commerce storefronts and turns them into a
// structured product catalog.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"google.golang.org/genai"

	"github.com/fwojciec/storescan"
	"github.com/fwojciec/storescan/crawl"
	"github.com/fwojciec/storescan/gemini"
	"github.com/fwojciec/storescan/goquery"
	schttp "github.com/fwojciec/storescan/http"
	"github.com/fwojciec/storescan/images"
	"github.com/fwojciec/storescan/resolve"
	"github.com/fwojciec/storescan/rod"
	scanslog "github.com/fwojciec/storescan/slog"
	"github.com/fwojciec/storescan/sqlite"
)

func main() {
	ctx := context.Background()

	// A .env file is optional; real environments set variables directly.
	_ = godotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by the catalog store.
	DB *sqlite.DB

	// Catalog service, exposed for end-to-end testing.
	Catalog storescan.CatalogService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("storescan"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'storescan --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set STORESCAN_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.Catalog = sqlite.NewCatalogService(m.DB)
	deps.DB = m.DB
	deps.Catalog = m.Catalog
	deps.Sitemaps = scanslog.NewLoggingSitemapService(schttp.NewSitemapService(nil, logger), logger)

	if cmd == "crawl" && !cli.Crawl.Preview {
		strategies := []storescan.Strategy{
			&resolve.StructuredData{},
			&resolve.MetaTags{},
			&resolve.Heuristic{},
		}
		if !cli.Crawl.NoAI {
			apiKey := os.Getenv("GEMINI_API_KEY")
			if apiKey == "" {
				fmt.Fprintln(stderr, "Hint: Get an API key at https://aistudio.google.com/apikey, or pass --no-ai to skip AI extraction")
				return fmt.Errorf("GEMINI_API_KEY not set")
			}
			client, err := genai.NewClient(ctx, &genai.ClientConfig{
				APIKey:  apiKey,
				Backend: genai.BackendGeminiAPI,
			})
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
				return fmt.Errorf("failed to connect to Gemini API: %w", err)
			}
			strategies = append(strategies, &resolve.AIStrategy{Extractor: gemini.NewExtractor(client)})
		}

		fetcher, err := rod.NewFetcher()
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		defer fetcher.Close()

		imageFetcher := schttp.NewImageFetcher(nil, 0)

		deps.Crawler = &crawl.Crawler{
			Sitemaps:    deps.Sitemaps,
			Fetcher:     rod.NewLoggingFetcher(fetcher, logger),
			Extractor:   goquery.NewExtractor(),
			Resolver:    scanslog.NewLoggingResolver(resolve.NewResolver(logger, strategies...), logger),
			Selector:    images.NewSelector(imageFetcher, images.DefaultConfig(), logger),
			Images:      imageFetcher,
			Catalog:     m.Catalog,
			ImageStore:  nil, // set by CrawlCmd.Run from --images-dir
			Limiter:     crawl.NewDomainLimiter(cli.Crawl.Delay),
			Logger:      logger,
			MaxPages:    cli.Crawl.MaxPages,
			Concurrency: cli.Crawl.Concurrency,
			PageTimeout: cli.Crawl.Timeout,
		}
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("STORESCAN_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "storescan.db"
	}
	dir := filepath.Join(home, ".storescan")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "storescan.db")
}
