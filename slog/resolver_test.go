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

func TestLoggingResolver_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("logs product outcome", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.ProductResolver{
			ResolveFn: func(context.Context, *storescan.PageContent, string) (*storescan.ProductRecord, error) {
				return &storescan.ProductRecord{Title: "Lamp"}, nil
			},
		}

		r := scanslog.NewLoggingResolver(inner, logger)
		record, err := r.Resolve(context.Background(), &storescan.PageContent{}, "https://shop.example.com/products/lamp")

		require.NoError(t, err)
		require.NotNil(t, record)
		output := buf.String()
		assert.Contains(t, output, "resolve")
		assert.Contains(t, output, "product=true")
	})

	t.Run("logs non-product pages", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.ProductResolver{
			ResolveFn: func(context.Context, *storescan.PageContent, string) (*storescan.ProductRecord, error) {
				return nil, nil
			},
		}

		r := scanslog.NewLoggingResolver(inner, logger)
		record, err := r.Resolve(context.Background(), &storescan.PageContent{}, "https://shop.example.com/about")

		require.NoError(t, err)
		assert.Nil(t, record)
		assert.Contains(t, buf.String(), "product=false")
	})
}
