package mock

import (
	"github.com/fwojciec/storescan"
)

var _ storescan.ProductWriter = (*ProductWriter)(nil)

// ProductWriter is a mock implementation of storescan.ProductWriter.
type ProductWriter struct {
	WriteProductsFn func(products []*storescan.ProductRecord) error
}

func (w *ProductWriter) WriteProducts(products []*storescan.ProductRecord) error {
	return w.WriteProductsFn(products)
}
