package mock

import (
	"context"

	"github.com/fwojciec/storescan"
)

var _ storescan.ProductResolver = (*ProductResolver)(nil)

// ProductResolver is a mock implementation of storescan.ProductResolver.
type ProductResolver struct {
	ResolveFn func(ctx context.Context, content *storescan.PageContent, pageURL string) (*storescan.ProductRecord, error)
}

func (r *ProductResolver) Resolve(ctx context.Context, content *storescan.PageContent, pageURL string) (*storescan.ProductRecord, error) {
	return r.ResolveFn(ctx, content, pageURL)
}

var _ storescan.ProductExtractor = (*ProductExtractor)(nil)

// ProductExtractor is a mock implementation of storescan.ProductExtractor.
type ProductExtractor struct {
	ExtractProductFn func(ctx context.Context, content *storescan.PageContent, pageURL string) (*storescan.ProductCandidate, error)
}

func (e *ProductExtractor) ExtractProduct(ctx context.Context, content *storescan.PageContent, pageURL string) (*storescan.ProductCandidate, error) {
	return e.ExtractProductFn(ctx, content, pageURL)
}

var _ storescan.Strategy = (*Strategy)(nil)

// Strategy is a mock implementation of storescan.Strategy.
type Strategy struct {
	NameFn    func() string
	ExtractFn func(ctx context.Context, content *storescan.PageContent, pageURL string) (*storescan.ProductCandidate, error)
}

func (s *Strategy) Name() string {
	if s.NameFn == nil {
		return "mock"
	}
	return s.NameFn()
}

func (s *Strategy) Extract(ctx context.Context, content *storescan.PageContent, pageURL string) (*storescan.ProductCandidate, error) {
	return s.ExtractFn(ctx, content, pageURL)
}
