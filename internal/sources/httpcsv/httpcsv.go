// Package httpcsv fetches the collections table from a fixed download
// URL (the production export lives behind a Google Drive direct link).
package httpcsv

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"cartorios/internal/core"
	"cartorios/internal/sources"
)

// Collections fetches and decodes the remote collections CSV.
type Collections struct {
	url    string
	client *http.Client
}

var _ sources.CollectionsReader = (*Collections)(nil)

// NewCollections builds a reader for the given download URL. A zero
// timeout falls back to 30s; the export is a few MB at most.
func NewCollections(url string, timeout time.Duration) *Collections {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Collections{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// ReadCollections implements sources.CollectionsReader.
func (c *Collections) ReadCollections(ctx context.Context) ([]core.RawCollection, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", sources.ErrSourceUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", sources.ErrSourceUnavailable, c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: fetch %s: status %d", sources.ErrSourceUnavailable, c.url, resp.StatusCode)
	}

	raw, err := sources.DecodeCollections(resp.Body)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Collections downloaded",
		"url", c.url,
		"rows", len(raw),
		"duration_ms", time.Since(start).Milliseconds())
	return raw, nil
}
