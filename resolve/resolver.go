// Package resolve implements the product resolution fallback chain:
// an ordered list of strategies tried in priority order until one
// yields a usable candidate. Strategies are never merged; the first
// winner is normalized into the final record shape.
package resolve

import (
	"context"
	"log/slog"

	"github.com/fwojciec/storescan"
)

// MaxCandidateImages caps how many raw image URLs a winning candidate
// contributes to the record before image selection runs.
const MaxCandidateImages = 5

// Ensure Resolver implements storescan.ProductResolver.
var _ storescan.ProductResolver = (*Resolver)(nil)

// Resolver runs the strategy chain and normalizes the winning candidate.
type Resolver struct {
	strategies []storescan.Strategy
	logger     *slog.Logger
}

// NewResolver creates a Resolver with the given strategy chain, tried in
// order. With no strategies, the default chain is used: structured data,
// then meta tags, then the heuristic HTML fallback. If logger is nil,
// slog.Default() is used.
func NewResolver(logger *slog.Logger, strategies ...storescan.Strategy) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if len(strategies) == 0 {
		strategies = []storescan.Strategy{
			&StructuredData{},
			&MetaTags{},
			&Heuristic{},
		}
	}
	return &Resolver{strategies: strategies, logger: logger}
}

// Resolve tries each strategy in order and converts the first usable
// candidate into a normalized record. Strategy errors are logged and
// treated as "no candidate" so the chain falls through. Returns
// (nil, nil) when no strategy yields a product; the record's ID and URL
// are left for the orchestrator.
func (r *Resolver) Resolve(ctx context.Context, content *storescan.PageContent, pageURL string) (*storescan.ProductRecord, error) {
	if content == nil {
		return nil, nil
	}

	for _, strategy := range r.strategies {
		candidate, err := strategy.Extract(ctx, content, pageURL)
		if err != nil {
			r.logger.Warn("extraction strategy failed",
				"strategy", strategy.Name(),
				"url", pageURL,
				"err", err,
			)
			continue
		}
		if candidate == nil || !candidate.IsProduct {
			continue
		}

		storescan.NormalizeCandidate(candidate)

		record := &storescan.ProductRecord{
			Title:       candidate.Title,
			Description: candidate.Description,
			Price:       candidate.Price,
			OldPrice:    candidate.OldPrice,
			Currency:    candidate.Currency,
		}
		for _, img := range candidate.Images {
			if len(record.Images) >= MaxCandidateImages {
				break
			}
			if abs := storescan.ResolveImageURL(img, pageURL); abs != "" {
				record.Images = append(record.Images, abs)
			}
		}

		r.logger.Debug("product resolved",
			"strategy", strategy.Name(),
			"url", pageURL,
			"title", record.Title,
		)
		return record, nil
	}

	return nil, nil
}

// Ensure AIStrategy implements storescan.Strategy.
var _ storescan.Strategy = (*AIStrategy)(nil)

// AIStrategy adapts the external AI extraction collaborator into the
// strategy chain. The orchestrator appends it when configured; it is an
// additional strategy, not a replacement for the local ones.
type AIStrategy struct {
	Extractor storescan.ProductExtractor
}

// Name implements storescan.Strategy.
func (s *AIStrategy) Name() string { return "ai" }

// Extract delegates to the AI collaborator. Service failures surface as
// errors for the resolver to log and fall through on.
func (s *AIStrategy) Extract(ctx context.Context, content *storescan.PageContent, pageURL string) (*storescan.ProductCandidate, error) {
	candidate, err := s.Extractor.ExtractProduct(ctx, content, pageURL)
	if err != nil {
		return nil, err
	}
	if candidate == nil || !candidate.IsProduct {
		return nil, nil
	}
	return candidate, nil
}
