// Package fs provides filesystem-backed output for catalog exports:
// a CSV product writer and a product image store.
package fs

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fwojciec/storescan"
)

// Ensure ProductWriter implements storescan.ProductWriter at compile time.
var _ storescan.ProductWriter = (*ProductWriter)(nil)

// ProductWriter writes product records to a CSV file. The file is
// rewritten whole on every call.
type ProductWriter struct {
	path string
}

// NewProductWriter creates a writer targeting the given file path.
func NewProductWriter(path string) *ProductWriter {
	return &ProductWriter{path: path}
}

// csvHeader is the stable column order of the export.
var csvHeader = []string{"id", "url", "title", "description", "price", "old_price", "currency", "images"}

// WriteProducts writes all records, header first. Image filenames are
// joined with commas into a single column.
func (w *ProductWriter) WriteProducts(products []*storescan.ProductRecord) error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return err
	}

	f, err := os.Create(w.path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range products {
		row := []string{
			strconv.Itoa(p.ID),
			p.URL,
			p.Title,
			p.Description,
			p.Price,
			p.OldPrice,
			p.Currency,
			strings.Join(p.Images, ","),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return f.Close()
}
