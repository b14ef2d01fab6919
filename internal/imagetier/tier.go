// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package imagetier

import (
	"context"
	"sync"
)

// Tier identifies which rendition a resolution points at.
type Tier string

const (
	TierNone      Tier = "none"
	TierThumbnail Tier = "thumbnail"
	TierLowRes    Tier = "low"
	TierHighRes   Tier = "high"
)

// TierRequest describes the renditions available for one image and who is looking.
type TierRequest struct {
	LowResURL     string `json:"low_res_url"`
	HighResURL    string `json:"high_res_url"`
	ThumbnailURL  string `json:"thumbnail_url,omitempty"`
	Authenticated bool   `json:"authenticated"`
}

// Resolution is the URL an image element binds to right now.
type Resolution struct {
	URL     string `json:"url"`
	Tier    Tier   `json:"tier"`
	Loading bool   `json:"loading"`
	// Degraded is set once a high-res fetch has failed; the image stays on low-res.
	Degraded bool `json:"degraded,omitempty"`
}

func base(req TierRequest) (string, Tier) {
	switch {
	case req.LowResURL != "":
		return req.LowResURL, TierLowRes
	case req.ThumbnailURL != "":
		return req.ThumbnailURL, TierThumbnail
	default:
		return "", TierNone
	}
}

// wantsHighRes reports whether req should upgrade to a distinct high-res asset.
func wantsHighRes(req TierRequest) bool {
	return req.Authenticated && req.HighResURL != "" && req.HighResURL != req.LowResURL
}

// Resolve makes the static tier decision. Unauthenticated viewers always get
// the low-res (watermarked) asset. Authenticated viewers start on low-res with
// Loading set while the high-res asset downloads.
func Resolve(req TierRequest) Resolution {
	url, tier := base(req)
	return Resolution{URL: url, Tier: tier, Loading: wantsHighRes(req)}
}

// Fetcher downloads or checks an image URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) error
}

// Progressive tracks a single image through its low-res to high-res swap.
// The high-res fetch is attempted at most once; a failure leaves the image on
// low-res for good.
type Progressive struct {
	req  TierRequest
	once sync.Once

	mu  sync.RWMutex
	cur Resolution
}

// NewProgressive starts req at its static resolution.
func NewProgressive(req TierRequest) *Progressive {
	return &Progressive{req: req, cur: Resolve(req)}
}

// Start fetches the high-res asset and swaps to it on success. Only the first
// call does any work; later calls return the settled resolution. Errors are not
// returned: a failed fetch degrades silently.
func (p *Progressive) Start(ctx context.Context, fetcher Fetcher) Resolution {
	p.once.Do(func() {
		if !wantsHighRes(p.req) {
			return
		}
		err := fetcher.Fetch(ctx, p.req.HighResURL)

		p.mu.Lock()
		defer p.mu.Unlock()
		p.cur.Loading = false
		if err != nil {
			p.cur.Degraded = true
			return
		}
		p.cur.URL = p.req.HighResURL
		p.cur.Tier = TierHighRes
	})
	return p.Current()
}

// Current returns the resolution at this instant.
func (p *Progressive) Current() Resolution {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cur
}
