package mock

import (
	"context"

	"github.com/fwojciec/storescan"
)

var _ storescan.ImageFetcher = (*ImageFetcher)(nil)

// ImageFetcher is a mock implementation of storescan.ImageFetcher.
type ImageFetcher struct {
	ProbeFn    func(ctx context.Context, url string) (*storescan.ImageInfo, error)
	DownloadFn func(ctx context.Context, url string) ([]byte, error)
}

func (f *ImageFetcher) Probe(ctx context.Context, url string) (*storescan.ImageInfo, error) {
	return f.ProbeFn(ctx, url)
}

func (f *ImageFetcher) Download(ctx context.Context, url string) ([]byte, error) {
	return f.DownloadFn(ctx, url)
}

var _ storescan.ImageSelector = (*ImageSelector)(nil)

// ImageSelector is a mock implementation of storescan.ImageSelector.
type ImageSelector struct {
	SelectFn func(ctx context.Context, candidates []storescan.ImageCandidate, pageURL string) ([]storescan.ImageCandidate, error)
}

func (s *ImageSelector) Select(ctx context.Context, candidates []storescan.ImageCandidate, pageURL string) ([]storescan.ImageCandidate, error) {
	return s.SelectFn(ctx, candidates, pageURL)
}

var _ storescan.ImageStore = (*ImageStore)(nil)

// ImageStore is a mock implementation of storescan.ImageStore.
type ImageStore struct {
	SaveImageFn func(productID, seq int, sourceFilename string, data []byte) (string, error)
}

func (s *ImageStore) SaveImage(productID, seq int, sourceFilename string, data []byte) (string, error) {
	return s.SaveImageFn(productID, seq, sourceFilename, data)
}
