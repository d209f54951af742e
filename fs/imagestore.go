package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/storescan"
)

// Ensure ImageStore implements storescan.ImageStore at compile time.
var _ storescan.ImageStore = (*ImageStore)(nil)

// allowedImageExts are the extensions stored as-is; anything else is
// normalized to webp, which is what most storefront CDNs serve anyway.
var allowedImageExts = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"webp": true,
	"gif":  true,
}

// ImageStore saves product images into a single directory, named
// <productID>-<seq>.<ext> so a catalog row maps to its files by prefix.
type ImageStore struct {
	dir string
}

// NewImageStore creates a store rooted at dir. The directory is created
// on first save.
func NewImageStore(dir string) *ImageStore {
	return &ImageStore{dir: dir}
}

// SaveImage writes the image bytes and returns the stored filename. The
// extension is taken from the source filename when it is a recognized
// image format, webp otherwise.
func (s *ImageStore) SaveImage(productID, seq int, sourceFilename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", storescan.Errorf(storescan.EINVALID, "empty image data")
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(sourceFilename), "."))
	if !allowedImageExts[ext] {
		ext = "webp"
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d-%d.%s", productID, seq, ext)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0644); err != nil {
		return "", err
	}
	return name, nil
}
