package storescan

import (
	"context"
	"time"
)

// Run represents one crawl of a storefront.
type Run struct {
	ID        string    `json:"id"`
	SiteURL   string    `json:"siteUrl"`
	Pages     int       `json:"pages"`
	Products  int       `json:"products"`
	StartedAt time.Time `json:"startedAt"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if r.ID == "" {
		return Errorf(EINVALID, "run ID required")
	}
	if r.SiteURL == "" {
		return Errorf(EINVALID, "run site URL required")
	}
	return nil
}

// ProductFilter represents a filter for FindProducts.
type ProductFilter struct {
	RunID *string `json:"runId"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// CatalogService persists crawl runs and their product records.
type CatalogService interface {
	// CreateRun records a new crawl run.
	CreateRun(ctx context.Context, run *Run) error

	// FinishRun stores the final page and product counts for a run.
	// Returns ENOTFOUND if the run does not exist.
	FinishRun(ctx context.Context, runID string, pages, products int) error

	// CreateProduct stores a product record under a run.
	CreateProduct(ctx context.Context, runID string, product *ProductRecord) error

	// FindRuns retrieves all runs, most recent first.
	FindRuns(ctx context.Context) ([]*Run, error)

	// FindProducts retrieves product records matching the filter,
	// ordered by run-assigned ID.
	FindProducts(ctx context.Context, filter ProductFilter) ([]*ProductRecord, error)
}

// ProductWriter exports an ordered product list for external consumers.
// The core only defines the filename strings the writer consumes.
type ProductWriter interface {
	WriteProducts(products []*ProductRecord) error
}

// ImageStore persists downloaded image bytes keyed by filename.
type ImageStore interface {
	// SaveImage writes image bytes under the given product-scoped name
	// and returns the stored filename.
	SaveImage(productID, seq int, sourceFilename string, data []byte) (string, error)
}
