// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package imagetier

import (
	"sync/atomic"
	"time"
)

// Defaults for LazyImage.
const (
	DefaultMargin = 200
	DefaultFade   = 500 * time.Millisecond
)

// Rect is an axis-aligned box in CSS pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Expand grows r by m on every side.
func (r Rect) Expand(m int) Rect {
	return Rect{X: r.X - m, Y: r.Y - m, Width: r.Width + 2*m, Height: r.Height + 2*m}
}

// Intersects reports whether r and o overlap or touch.
func (r Rect) Intersects(o Rect) bool {
	return r.X <= o.X+o.Width && o.X <= r.X+r.Width &&
		r.Y <= o.Y+o.Height && o.Y <= r.Y+r.Height
}

// LazyState is the visibility state of a LazyImage.
type LazyState int32

const (
	StateIdle LazyState = iota
	StateVisible
)

func (s LazyState) String() string {
	if s == StateVisible {
		return "visible"
	}
	return "idle"
}

// LazyImage defers the full asset until the image nears the viewport.
// The only transition is Idle -> Visible and it happens at most once.
type LazyImage struct {
	state       atomic.Int32
	full        string
	placeholder string
	margin      int
	fade        time.Duration
}

// LazyOption configures a LazyImage.
type LazyOption func(*LazyImage)

// WithMargin sets the pre-fetch margin around the viewport.
func WithMargin(px int) LazyOption {
	return func(l *LazyImage) { l.margin = px }
}

// WithFade sets the cross-fade duration used when the full asset appears.
func WithFade(d time.Duration) LazyOption {
	return func(l *LazyImage) { l.fade = d }
}

// NewLazyImage wraps full. The placeholder is the thumbnail when set, else the
// blur data URL, else empty.
func NewLazyImage(full, thumbnail, blurDataURL string, opts ...LazyOption) *LazyImage {
	l := &LazyImage{full: full, placeholder: thumbnail, margin: DefaultMargin, fade: DefaultFade}
	if l.placeholder == "" {
		l.placeholder = blurDataURL
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.margin < 0 {
		l.margin = 0
	}
	return l
}

// Observe feeds one layout sample and reports whether the image is visible.
// After the first hit the geometry is ignored.
func (l *LazyImage) Observe(bounds, viewport Rect) bool {
	if l.State() == StateVisible {
		return true
	}
	if !bounds.Intersects(viewport.Expand(l.margin)) {
		return false
	}
	l.state.CompareAndSwap(int32(StateIdle), int32(StateVisible))
	return true
}

// State returns the current visibility state.
func (l *LazyImage) State() LazyState {
	return LazyState(l.state.Load())
}

// Src is the URL to render: the placeholder while idle, the full asset after.
func (l *LazyImage) Src() string {
	if l.State() == StateVisible {
		return l.full
	}
	return l.placeholder
}

// Transition is the fade applied when Src switches to the full asset.
func (l *LazyImage) Transition() time.Duration {
	return l.fade
}
