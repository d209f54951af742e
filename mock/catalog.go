package mock

import (
	"context"

	"github.com/fwojciec/storescan"
)

var _ storescan.CatalogService = (*CatalogService)(nil)

// CatalogService is a mock implementation of storescan.CatalogService.
type CatalogService struct {
	CreateRunFn     func(ctx context.Context, run *storescan.Run) error
	FinishRunFn     func(ctx context.Context, runID string, pages, products int) error
	CreateProductFn func(ctx context.Context, runID string, product *storescan.ProductRecord) error
	FindRunsFn      func(ctx context.Context) ([]*storescan.Run, error)
	FindProductsFn  func(ctx context.Context, filter storescan.ProductFilter) ([]*storescan.ProductRecord, error)
}

func (s *CatalogService) CreateRun(ctx context.Context, run *storescan.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *CatalogService) FinishRun(ctx context.Context, runID string, pages, products int) error {
	return s.FinishRunFn(ctx, runID, pages, products)
}

func (s *CatalogService) CreateProduct(ctx context.Context, runID string, product *storescan.ProductRecord) error {
	return s.CreateProductFn(ctx, runID, product)
}

func (s *CatalogService) FindRuns(ctx context.Context) ([]*storescan.Run, error) {
	return s.FindRunsFn(ctx)
}

func (s *CatalogService) FindProducts(ctx context.Context, filter storescan.ProductFilter) ([]*storescan.ProductRecord, error) {
	return s.FindProductsFn(ctx, filter)
}
