// Package bloom provides a probabilistic visited-URL guard backed by a
// Bloom filter. A crawl run touches each page URL exactly once; the
// guard makes the "have we seen this URL" check cheap regardless of how
// many URLs a sitemap expands to.
package bloom

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Guard tracks URLs already handed to the crawler. False positives are
// possible (a never-seen URL may be reported as seen and skipped);
// false negatives are not. Safe for concurrent use.
type Guard struct {
	mu sync.Mutex
	f  *bloom.BloomFilter
}

// NewGuard creates a guard sized for n expected URLs with the given
// false positive rate.
func NewGuard(n uint, fpRate float64) *Guard {
	return &Guard{f: bloom.NewWithEstimates(n, fpRate)}
}

// Seen atomically records the URL and reports whether it had already
// been recorded.
func (g *Guard) Seen(url string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.f.TestAndAddString(url)
}

// EstimatedCount returns the approximate number of recorded URLs.
func (g *Guard) EstimatedCount() uint {
	g.mu.Lock()
	defer g.mu.Unlock()
	return uint(g.f.ApproximatedSize())
}
