// Package mock provides function-field mock implementations of the
// storescan service interfaces for use in tests.
package mock

import (
	"context"

	"github.com/fwojciec/storescan"
)

var _ storescan.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of storescan.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL)
}
