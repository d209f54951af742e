package storescan

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ImageCandidate is one image considered for a product. URL is absolute;
// Width, Height, ByteSize, and Area are populated by the dimension probe.
// Filename is always present and non-empty, even when the URL has no
// path component or extension.
type ImageCandidate struct {
	URL      string
	Alt      string
	Filename string
	Width    int
	Height   int
	ByteSize int
	Area     int
}

// ImageInfo is the result of probing one image URL.
type ImageInfo struct {
	Width       int
	Height      int
	ByteSize    int
	ContentType string
}

// ImageFetcher probes and downloads images over the network.
type ImageFetcher interface {
	// Probe fetches an image and returns its pixel dimensions and byte
	// size. Returns an EUNAVAILABLE error for non-image content types,
	// bodies below the configured minimum byte size, or undecodable data.
	Probe(ctx context.Context, url string) (*ImageInfo, error)

	// Download fetches the image bytes for persistence.
	Download(ctx context.Context, url string) ([]byte, error)
}

// ImageSelector scores and filters image candidates down to a small
// representative subset for one product.
type ImageSelector interface {
	// Select resolves, probes, filters, and ranks candidates, returning
	// at most the configured maximum, largest pixel area first. Probe
	// failures discard the single candidate, never the whole set.
	Select(ctx context.Context, candidates []ImageCandidate, pageURL string) ([]ImageCandidate, error)
}

// filenameSanitizeRe strips everything outside the safe filename alphabet.
var filenameSanitizeRe = regexp.MustCompile(`[^\w\-.]`)

// ImageFilename derives a filename from an image URL's path basename.
// When the basename is absent or extensionless, the name is generated
// from a hash of the URL with a default .jpg extension. The result is
// sanitized to alphanumeric, dash, underscore, and dot characters only.
func ImageFilename(rawURL string) string {
	var base string
	if u, err := url.Parse(rawURL); err == nil {
		base = path.Base(u.Path)
	}
	if base == "." || base == "/" {
		base = ""
	}
	if base == "" || !strings.Contains(base, ".") {
		return fmt.Sprintf("img-%x.jpg", xxhash.Sum64String(rawURL))
	}
	name := filenameSanitizeRe.ReplaceAllString(base, "")
	if name == "" || !strings.Contains(name, ".") {
		return fmt.Sprintf("img-%x.jpg", xxhash.Sum64String(rawURL))
	}
	return name
}

// ResolveImageURL resolves an image src against its page URL.
// Returns "" when either URL cannot be parsed.
func ResolveImageURL(src, pageURL string) string {
	if src == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
