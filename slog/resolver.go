package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/storescan"
)

// Ensure LoggingResolver implements storescan.ProductResolver.
var _ storescan.ProductResolver = (*LoggingResolver)(nil)

// LoggingResolver wraps a ProductResolver with per-page logging.
type LoggingResolver struct {
	next   storescan.ProductResolver
	logger *slog.Logger
}

// NewLoggingResolver creates a new LoggingResolver.
func NewLoggingResolver(next storescan.ProductResolver, logger *slog.Logger) *LoggingResolver {
	return &LoggingResolver{next: next, logger: logger}
}

// Resolve logs whether the page resolved to a product and delegates to
// the wrapped resolver.
func (r *LoggingResolver) Resolve(ctx context.Context, content *storescan.PageContent, pageURL string) (record *storescan.ProductRecord, err error) {
	defer func(begin time.Time) {
		r.logger.Info("resolve",
			"url", pageURL,
			"product", record != nil,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Resolve(ctx, content, pageURL)
}
