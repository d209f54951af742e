package fs_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/storescan"
	"github.com/fwojciec/storescan/fs"
)

func TestProductWriter_WriteProducts(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "products.csv")
	w := fs.NewProductWriter(path)

	err := w.WriteProducts([]*storescan.ProductRecord{
		{
			ID:          1,
			URL:         "https://shop.example.com/products/lamp",
			Title:       "Lamp, walnut",
			Description: "A walnut lamp.",
			Price:       "49.90",
			OldPrice:    "59.90",
			Currency:    "EUR",
			Images:      []string{"1-0.jpg", "1-1.jpg"},
		},
		{
			ID:    2,
			URL:   "https://shop.example.com/products/vase",
			Title: "Vase",
		},
	})
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"id", "url", "title", "description", "price", "old_price", "currency", "images"}, rows[0])
	assert.Equal(t, []string{"1", "https://shop.example.com/products/lamp", "Lamp, walnut", "A walnut lamp.", "49.90", "59.90", "EUR", "1-0.jpg,1-1.jpg"}, rows[1])
	assert.Equal(t, []string{"2", "https://shop.example.com/products/vase", "Vase", "", "", "", "", ""}, rows[2])
}

func TestProductWriter_RewritesWholeFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "products.csv")
	w := fs.NewProductWriter(path)

	require.NoError(t, w.WriteProducts([]*storescan.ProductRecord{
		{ID: 1, URL: "https://shop.example.com/a", Title: "A"},
		{ID: 2, URL: "https://shop.example.com/b", Title: "B"},
	}))
	require.NoError(t, w.WriteProducts([]*storescan.ProductRecord{
		{ID: 3, URL: "https://shop.example.com/c", Title: "C"},
	}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "3", rows[1][0])
}

func TestProductWriter_EmptySetWritesHeaderOnly(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, fs.NewProductWriter(path).WriteProducts(nil))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
