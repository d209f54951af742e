package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/storescan"
	"github.com/fwojciec/storescan/mock"
	scanslog "github.com/fwojciec/storescan/slog"
)

func TestLoggingSitemapService_DiscoverURLs(t *testing.T) {
	t.Parallel()

	t.Run("logs discovery with url count and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.SitemapService{
			DiscoverURLsFn: func(context.Context, string) ([]string, error) {
				return []string{
					"https://shop.example.com/products/lamp",
					"https://shop.example.com/products/vase",
				}, nil
			},
		}

		s := scanslog.NewLoggingSitemapService(inner, logger)
		urls, err := s.DiscoverURLs(context.Background(), "https://shop.example.com")

		require.NoError(t, err)
		assert.Len(t, urls, 2)
		output := buf.String()
		assert.Contains(t, output, "sitemap discovery")
		assert.Contains(t, output, "baseURL=https://shop.example.com")
		assert.Contains(t, output, "urls=2")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.SitemapService{
			DiscoverURLsFn: func(context.Context, string) ([]string, error) {
				return nil, storescan.Errorf(storescan.EINVALID, "invalid base URL")
			},
		}

		s := scanslog.NewLoggingSitemapService(inner, logger)
		_, err := s.DiscoverURLs(context.Background(), "not-a-url")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "invalid base URL")
	})
}
