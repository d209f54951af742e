package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/storescan"
	"github.com/fwojciec/storescan/fs"
)

func TestImageStore_SaveImage(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "images")
	store := fs.NewImageStore(dir)

	name, err := store.SaveImage(7, 0, "lamp.jpg", []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "7-0.jpg", name)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)
}

func TestImageStore_ExtensionHandling(t *testing.T) {
	t.Parallel()

	store := fs.NewImageStore(t.TempDir())

	tests := []struct {
		source string
		want   string
	}{
		{"lamp.JPG", "1-0.jpg"},
		{"lamp.jpeg", "1-0.jpeg"},
		{"lamp.png", "1-0.png"},
		{"lamp.webp", "1-0.webp"},
		{"lamp.tiff", "1-0.webp"},
		{"lamp", "1-0.webp"},
	}
	for _, tt := range tests {
		name, err := store.SaveImage(1, 0, tt.source, []byte("x"))
		require.NoError(t, err)
		assert.Equal(t, tt.want, name, "source %q", tt.source)
	}
}

func TestImageStore_EmptyDataIsInvalid(t *testing.T) {
	t.Parallel()

	store := fs.NewImageStore(t.TempDir())
	_, err := store.SaveImage(1, 0, "lamp.jpg", nil)
	assert.Equal(t, storescan.EINVALID, storescan.ErrorCode(err))
}
