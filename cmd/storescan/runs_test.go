package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/storescan"
	"github.com/fwojciec/storescan/mock"
)

func testDeps(stdout, stderr *bytes.Buffer) *Dependencies {
	return &Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: stderr,
	}
}

func TestRunsCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists runs most recent first", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		deps := testDeps(&stdout, &stderr)
		deps.Catalog = &mock.CatalogService{
			FindRunsFn: func(context.Context) ([]*storescan.Run, error) {
				return []*storescan.Run{{
					ID:        "run-1",
					SiteURL:   "https://shop.example.com",
					Pages:     12,
					Products:  5,
					StartedAt: time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC),
				}}, nil
			},
		}

		cmd := &RunsCmd{}
		require.NoError(t, cmd.Run(deps))

		out := stdout.String()
		assert.Contains(t, out, "2026-08-29 10:30")
		assert.Contains(t, out, "run-1")
		assert.Contains(t, out, "pages=12 products=5")
		assert.Contains(t, out, "https://shop.example.com")
	})

	t.Run("empty catalog prints a hint", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		deps := testDeps(&stdout, &stderr)
		deps.Catalog = &mock.CatalogService{
			FindRunsFn: func(context.Context) ([]*storescan.Run, error) {
				return []*storescan.Run{}, nil
			},
		}

		cmd := &RunsCmd{}
		require.NoError(t, cmd.Run(deps))
		assert.Contains(t, stdout.String(), "No runs yet")
	})
}
