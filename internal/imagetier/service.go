// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package imagetier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/folio/internal/breaker"
	"github.com/tomtom215/folio/internal/config"
	"github.com/tomtom215/folio/internal/media"
)

// maxRedirects caps redirects followed while fetching.
const maxRedirects = 5

// origin is a URL prefix the service is willing to fetch.
type origin struct {
	scheme string
	host   string
	path   string
}

func parseOrigin(raw string) (origin, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return origin{}, false
	}
	return origin{scheme: u.Scheme, host: strings.ToLower(u.Host), path: strings.TrimSuffix(u.Path, "/")}, true
}

func (o origin) matches(u *url.URL) bool {
	if u.Scheme != o.scheme || strings.ToLower(u.Host) != o.host {
		return false
	}
	return o.path == "" || u.Path == o.path || strings.HasPrefix(u.Path, o.path+"/")
}

// Service resolves image tiers for API callers, probing high-res assets
// server-side so clients receive the settled URL in one round trip.
//
// Only URLs under the file base URL or one of the configured image hosts are
// fetched; anything else is rejected before a request leaves the server.
type Service struct {
	fetcher Fetcher
	origins []origin
	margin  int
	fade    time.Duration
}

// NewService builds a Service from media settings. A nil fetcher creates an
// HTTPFetcher with the configured fetch timeout whose redirects are held to
// the same origins.
func NewService(cfg *config.MediaConfig, fetcher Fetcher) *Service {
	s := &Service{margin: cfg.LazyMargin, fade: cfg.FadeDuration}
	for _, raw := range append([]string{cfg.FileBaseURL}, cfg.ImageHosts...) {
		if o, ok := parseOrigin(raw); ok {
			s.origins = append(s.origins, o)
		}
	}
	if fetcher == nil {
		client := &http.Client{
			Timeout: cfg.FetchTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errors.New("too many redirects")
				}
				return s.Permit(req.URL.String())
			},
		}
		fetcher = NewHTTPFetcher(client, cfg.FetchTimeout, breaker.DefaultConfig("image-fetch"))
	}
	s.fetcher = fetcher
	if s.margin <= 0 {
		s.margin = DefaultMargin
	}
	if s.fade <= 0 {
		s.fade = DefaultFade
	}
	return s
}

// Permit reports whether rawURL may be fetched. Relative paths are allowed
// since they cannot leave the server; absolute URLs must sit under a
// configured origin.
func (s *Service) Permit(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: invalid image url", media.ErrValidation)
	}
	if u.Scheme == "" && u.Host == "" {
		return nil
	}
	if u.User == nil {
		for _, o := range s.origins {
			if o.matches(u) {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: image host %q is not allowed", media.ErrValidation, u.Host)
}

// Resolve returns the settled resolution for req. A high-res URL outside the
// allowed origins is rejected when it would be fetched.
func (s *Service) Resolve(ctx context.Context, req TierRequest) (Resolution, error) {
	if wantsHighRes(req) {
		if err := s.Permit(req.HighResURL); err != nil {
			return Resolution{}, err
		}
	}
	return NewProgressive(req).Start(ctx, s.fetcher), nil
}

// Lazy creates a LazyImage with the configured margin and fade.
func (s *Service) Lazy(full, thumbnail, blurDataURL string) *LazyImage {
	return NewLazyImage(full, thumbnail, blurDataURL, WithMargin(s.margin), WithFade(s.fade))
}

// Margin is the lazy-load pre-fetch margin in pixels.
func (s *Service) Margin() int { return s.margin }
