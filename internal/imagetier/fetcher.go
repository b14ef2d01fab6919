// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package imagetier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/folio/internal/breaker"
	"github.com/tomtom215/folio/internal/media"
	"github.com/tomtom215/folio/internal/metrics"
)

// maxDrainBody bounds how much of a GET fallback response is drained.
const maxDrainBody = 1 << 20

// HTTPFetcher checks image URLs over HTTP through a circuit breaker.
// 4xx responses mean the asset is missing and do not trip the breaker;
// transport errors and 5xx do.
type HTTPFetcher struct {
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[struct{}]
	timeout time.Duration
}

// NewHTTPFetcher creates a fetcher. A nil client uses a client with timeout.
func NewHTTPFetcher(client *http.Client, timeout time.Duration, cfg breaker.Config) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if cfg.Name == "" {
		cfg.Name = "image-fetch"
	}
	return &HTTPFetcher{client: client, cb: breaker.New[struct{}](cfg), timeout: timeout}
}

// Fetch issues HEAD for url, falling back to GET when the server rejects HEAD.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) error {
	_, err := f.cb.Execute(func() (struct{}, error) {
		return struct{}{}, f.check(ctx, url)
	})
	switch {
	case err == nil:
		metrics.RecordImageCheck("ok")
	case breaker.IsOpen(err):
		metrics.RecordImageCheck("rejected")
		return fmt.Errorf("%w: image fetch: %w", media.ErrNetworkFailure, err)
	case errors.Is(err, media.ErrNotFound):
		metrics.RecordImageCheck("missing")
	default:
		metrics.RecordImageCheck("failed")
	}
	return err
}

func (f *HTTPFetcher) check(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	status, err := f.do(ctx, http.MethodHead, url)
	if err == nil && status == http.StatusMethodNotAllowed {
		status, err = f.do(ctx, http.MethodGet, url)
	}
	if err != nil {
		return fmt.Errorf("%w: fetch %s: %v", media.ErrNetworkFailure, url, err)
	}
	switch {
	case status >= 200 && status < 300:
		return nil
	case status >= 400 && status < 500:
		return fmt.Errorf("%w: image %s returned %d", media.ErrNotFound, url, status)
	default:
		return fmt.Errorf("%w: image %s returned %d", media.ErrNetworkFailure, url, status)
	}
}

func (f *HTTPFetcher) do(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, http.NoBody)
	if err != nil {
		return 0, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBody))
	return resp.StatusCode, nil
}
