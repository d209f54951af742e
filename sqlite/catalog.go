package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/storescan"
)

// Compile-time interface verification.
var _ storescan.CatalogService = (*CatalogService)(nil)

// CatalogService implements storescan.CatalogService using SQLite.
type CatalogService struct {
	db *DB
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(db *DB) *CatalogService {
	return &CatalogService{db: db}
}

// CreateRun records a new crawl run. The caller assigns the run ID; a
// zero StartedAt is filled with the current time.
func (s *CatalogService) CreateRun(ctx context.Context, run *storescan.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, site_url, pages, products, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.SiteURL, run.Pages, run.Products, run.StartedAt.Format(time.RFC3339))

	return err
}

// FinishRun stores the final page and product counts for a run.
func (s *CatalogService) FinishRun(ctx context.Context, runID string, pages, products int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE runs SET pages = ?, products = ? WHERE id = ?
	`, pages, products, runID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storescan.Errorf(storescan.ENOTFOUND, "run not found")
	}
	return nil
}

// CreateProduct stores a product record under a run. The record keeps
// the ID the crawl assigned; image filenames are stored as JSON.
func (s *CatalogService) CreateProduct(ctx context.Context, runID string, product *storescan.ProductRecord) error {
	if product.URL == "" {
		return storescan.Errorf(storescan.EINVALID, "product URL required")
	}

	images, err := json.Marshal(product.Images)
	if err != nil {
		return fmt.Errorf("failed to encode images: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO products (run_id, id, url, title, description, price, old_price, currency, images)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, product.ID, product.URL, product.Title, product.Description,
		product.Price, product.OldPrice, product.Currency, string(images))

	return err
}

// FindRuns retrieves all runs, most recent first.
func (s *CatalogService) FindRuns(ctx context.Context) ([]*storescan.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, site_url, pages, products, started_at
		FROM runs
		ORDER BY started_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []*storescan.Run{}
	for rows.Next() {
		var run storescan.Run
		var startedAt string
		if err := rows.Scan(&run.ID, &run.SiteURL, &run.Pages, &run.Products, &startedAt); err != nil {
			return nil, err
		}
		run.StartedAt, err = parseRFC3339(startedAt, "started_at")
		if err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// FindProducts retrieves product records matching the filter, ordered by
// run-assigned ID.
func (s *CatalogService) FindProducts(ctx context.Context, filter storescan.ProductFilter) ([]*storescan.ProductRecord, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, url, title, description, price, old_price, currency, images FROM products WHERE 1=1`)

	if filter.RunID != nil {
		query.WriteString(" AND run_id = ?")
		args = append(args, *filter.RunID)
	}

	query.WriteString(" ORDER BY run_id, id ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*storescan.ProductRecord{}
	for rows.Next() {
		var p storescan.ProductRecord
		var images string
		if err := rows.Scan(&p.ID, &p.URL, &p.Title, &p.Description, &p.Price, &p.OldPrice, &p.Currency, &images); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(images), &p.Images); err != nil {
			return nil, fmt.Errorf("failed to decode images: %w", err)
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}
