// Package images scores and filters product image candidates down to a
// small representative subset. Candidates pass through URL filtering, a
// network dimension probe, background and banner rejection, and a
// relative-size filter before the largest survivors are kept.
package images

import (
	"context"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/fwojciec/storescan"
)

// Config holds the selection thresholds. The relative-size and
// background-rejection constants were tuned empirically against the
// observed site corpus; they are exposed here as configuration rather
// than hard-coded, but the defaults should not be changed casually.
type Config struct {
	// MaxImages is the size of the final representative subset.
	MaxImages int

	// MinAreaRatio retains only candidates whose pixel area is at least
	// this fraction of the largest candidate's area.
	MinAreaRatio float64

	// MinArea is the absolute pixel-area floor.
	MinArea int

	// MinWidth is the absolute pixel-width floor.
	MinWidth int

	// MaxWidth and MaxHeight reject absurdly large images, which are
	// almost always page backgrounds.
	MaxWidth  int
	MaxHeight int

	// MaxAspectRatio rejects banner-shaped images, checked both ways.
	MaxAspectRatio float64

	// DenySubstrings rejects URLs indicating icons, logos, widgets, and
	// navigation chrome.
	DenySubstrings []string

	// DenyExtensions rejects non-photographic formats.
	DenyExtensions []string

	// BackgroundTokens rejects URLs indicating page backgrounds.
	BackgroundTokens []string
}

// DefaultConfig returns the selection defaults.
func DefaultConfig() Config {
	return Config{
		MaxImages:      3,
		MinAreaRatio:   0.7,
		MinArea:        5000,
		MinWidth:       200,
		MaxWidth:       4000,
		MaxHeight:      4000,
		MaxAspectRatio: 3.0,
		DenySubstrings: []string{
			"icon", "logo", "favicon", "sprite", "placeholder",
			"tracking", "pixel", "analytics",
			"social", "share", "button",
			"nav", "menu", "arrow", "avatar", "badge", "payment",
		},
		DenyExtensions:   []string{".svg", ".ico", ".gif"},
		BackgroundTokens: []string{"background", "backdrop", "hero", "banner"},
	}
}

// Ensure Selector implements storescan.ImageSelector.
var _ storescan.ImageSelector = (*Selector)(nil)

// Selector implements the image selection pipeline over an ImageFetcher.
type Selector struct {
	fetcher storescan.ImageFetcher
	config  Config
	logger  *slog.Logger
}

// NewSelector creates a Selector. A zero-value config falls back to
// DefaultConfig; if logger is nil, slog.Default() is used.
func NewSelector(fetcher storescan.ImageFetcher, config Config, logger *slog.Logger) *Selector {
	if config.MaxImages <= 0 {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{fetcher: fetcher, config: config, logger: logger}
}

// Select resolves, probes, filters, and ranks candidates, returning at
// most MaxImages, largest pixel area first. A probe failure discards the
// single candidate, never the whole set.
func (s *Selector) Select(ctx context.Context, candidates []storescan.ImageCandidate, pageURL string) ([]storescan.ImageCandidate, error) {
	gathered := s.gather(candidates, pageURL)

	var probed []storescan.ImageCandidate
	for _, c := range gathered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := s.fetcher.Probe(ctx, c.URL)
		if err != nil {
			s.logger.Debug("image probe discarded candidate", "url", c.URL, "err", err)
			continue
		}
		c.Width = info.Width
		c.Height = info.Height
		c.ByteSize = info.ByteSize
		c.Area = info.Width * info.Height
		if s.isBackground(c) {
			continue
		}
		probed = append(probed, c)
	}

	kept := s.relativeSizeFilter(probed)

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Area > kept[j].Area })
	if len(kept) > s.config.MaxImages {
		kept = kept[:s.config.MaxImages]
	}
	return kept, nil
}

// gather resolves candidate URLs to absolute form, drops denied URLs and
// formats, de-duplicates (first occurrence wins), and assigns filenames.
func (s *Selector) gather(candidates []storescan.ImageCandidate, pageURL string) []storescan.ImageCandidate {
	seen := make(map[string]bool)
	var out []storescan.ImageCandidate
	for _, c := range candidates {
		abs := storescan.ResolveImageURL(c.URL, pageURL)
		if abs == "" || seen[abs] {
			continue
		}
		seen[abs] = true
		if s.isDenied(abs) {
			continue
		}
		c.URL = abs
		c.Filename = storescan.ImageFilename(abs)
		out = append(out, c)
	}
	return out
}

// isDenied checks the URL against the substring denylist and the
// non-photographic format extensions.
func (s *Selector) isDenied(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, part := range s.config.DenySubstrings {
		if strings.Contains(lower, part) {
			return true
		}
	}

	path := lower
	if u, err := url.Parse(lower); err == nil {
		path = u.Path
	}
	for _, ext := range s.config.DenyExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// isBackground rejects candidates that look like page furniture rather
// than product photography: background-indicating URLs, images over the
// absolute dimension cap, and banner-shaped aspect ratios.
func (s *Selector) isBackground(c storescan.ImageCandidate) bool {
	lower := strings.ToLower(c.URL)
	for _, token := range s.config.BackgroundTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	if c.Width > s.config.MaxWidth || c.Height > s.config.MaxHeight {
		return true
	}
	if c.Width <= 0 || c.Height <= 0 {
		return true
	}
	ratio := float64(c.Width) / float64(c.Height)
	if ratio < 1 {
		ratio = 1 / ratio
	}
	return ratio > s.config.MaxAspectRatio
}

// relativeSizeFilter keeps candidates close in area to the largest one
// and above the absolute floors. When the intersection is empty but
// candidates exist, the single largest-area candidate survives.
func (s *Selector) relativeSizeFilter(candidates []storescan.ImageCandidate) []storescan.ImageCandidate {
	if len(candidates) == 0 {
		return nil
	}

	maxArea := 0
	largest := candidates[0]
	for _, c := range candidates {
		if c.Area > maxArea {
			maxArea = c.Area
			largest = c
		}
	}

	var kept []storescan.ImageCandidate
	for _, c := range candidates {
		if float64(c.Area) >= s.config.MinAreaRatio*float64(maxArea) &&
			c.Area >= s.config.MinArea &&
			c.Width >= s.config.MinWidth {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return []storescan.ImageCandidate{largest}
	}
	return kept
}
