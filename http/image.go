package http

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"

	// Decoders registered for image.DecodeConfig. Storefront CDNs serve
	// mostly JPEG, PNG, WebP, and GIF.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/fwojciec/storescan"
)

// DefaultMinImageBytes is the byte-size threshold below which a fetched
// image is rejected as an icon before any decode is attempted.
const DefaultMinImageBytes = 10 << 10

// maxImageBytes caps how much of a single image body is read.
const maxImageBytes = 20 << 20

// Ensure ImageFetcher implements storescan.ImageFetcher.
var _ storescan.ImageFetcher = (*ImageFetcher)(nil)

// ImageFetcher probes and downloads images over HTTP.
type ImageFetcher struct {
	client   *http.Client
	minBytes int
}

// NewImageFetcher creates a new ImageFetcher. If client is nil,
// http.DefaultClient is used; if minBytes is zero, DefaultMinImageBytes
// is used.
func NewImageFetcher(client *http.Client, minBytes int) *ImageFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if minBytes <= 0 {
		minBytes = DefaultMinImageBytes
	}
	return &ImageFetcher{client: client, minBytes: minBytes}
}

// Probe fetches an image and decodes its header to obtain pixel
// dimensions. Non-image content, bodies below the minimum byte size,
// and undecodable data all return EUNAVAILABLE.
func (f *ImageFetcher) Probe(ctx context.Context, url string) (*storescan.ImageInfo, error) {
	data, contentType, err := f.get(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(data) < f.minBytes {
		return nil, storescan.Errorf(storescan.EUNAVAILABLE, "image %s is %d bytes, below minimum %d", url, len(data), f.minBytes)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, storescan.Errorf(storescan.EUNAVAILABLE, "decoding image %s: %v", url, err)
	}

	return &storescan.ImageInfo{
		Width:       cfg.Width,
		Height:      cfg.Height,
		ByteSize:    len(data),
		ContentType: contentType,
	}, nil
}

// Download fetches the image bytes for persistence.
func (f *ImageFetcher) Download(ctx context.Context, url string) ([]byte, error) {
	data, _, err := f.get(ctx, url)
	return data, err
}

func (f *ImageFetcher) get(ctx context.Context, url string) (data []byte, contentType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", storescan.Errorf(storescan.EUNAVAILABLE, "fetching image %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", storescan.Errorf(storescan.EUNAVAILABLE, "HTTP %d for image %s", resp.StatusCode, url)
	}

	contentType = strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", storescan.Errorf(storescan.EUNAVAILABLE, "content type %q for image %s is not an image", contentType, url)
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", storescan.Errorf(storescan.EUNAVAILABLE, "reading image %s: %v", url, err)
	}
	return data, contentType, nil
}
