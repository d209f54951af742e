package mock

import (
	"github.com/fwojciec/storescan"
)

var _ storescan.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of storescan.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*storescan.PageContent, error)
}

func (e *Extractor) Extract(html string) (*storescan.PageContent, error) {
	return e.ExtractFn(html)
}
