// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package engagement

import (
	"context"
	"time"

	"github.com/tomtom215/folio/internal/media"
)

// SyncState tracks an optimistic increment through the two-phase commit.
type SyncState string

const (
	StatePending  SyncState = "pending"
	StateSynced   SyncState = "synced"
	StateUnsynced SyncState = "unsynced"
)

// Action names used in events and metrics.
const (
	ActionLike  = "like"
	ActionShare = "share"
	ActionView  = "view"
)

// LikeEntry is the durable liked flag for one viewer and item. Once written it
// is never removed, only its State changes.
type LikeEntry struct {
	ItemID  string     `json:"item_id"`
	Kind    media.Kind `json:"kind"`
	LikedAt time.Time  `json:"liked_at"`
	OpID    string     `json:"op_id"`
	State   SyncState  `json:"state"`
}

// Op is one optimistic counter increment awaiting backend confirmation.
type Op struct {
	ID          string        `json:"id"`
	Action      string        `json:"action"`
	ViewerKey   string        `json:"viewer_key,omitempty"`
	ItemID      string        `json:"item_id"`
	Kind        media.Kind    `json:"kind"`
	Counter     media.Counter `json:"counter"`
	Delta       int64         `json:"delta"`
	State       SyncState     `json:"state"`
	Attempts    int           `json:"attempts"`
	LastError   string        `json:"last_error,omitempty"`
	RequestedAt time.Time     `json:"requested_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Counts are the engagement counters shown for an item.
type Counts struct {
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Shares   int64 `json:"shares"`
	Views    int64 `json:"views"`
}

func (c Counts) add(o Counts) Counts {
	return Counts{
		Likes:    c.Likes + o.Likes,
		Comments: c.Comments + o.Comments,
		Shares:   c.Shares + o.Shares,
		Views:    c.Views + o.Views,
	}
}

// floor clamps negative counters, left behind when Refresh ran before an op
// settled, to zero.
func (c Counts) floor() Counts {
	return Counts{
		Likes:    max(c.Likes, 0),
		Comments: max(c.Comments, 0),
		Shares:   max(c.Shares, 0),
		Views:    max(c.Views, 0),
	}
}

func (c Counts) zero() bool {
	return c == Counts{}
}

func (c *Counts) bump(counter media.Counter, delta int64) {
	switch counter {
	case media.CounterLikes:
		c.Likes += delta
	case media.CounterComments:
		c.Comments += delta
	case media.CounterShares:
		c.Shares += delta
	case media.CounterViews:
		c.Views += delta
	}
}

// CountsOf returns the authoritative counters stored on item.
func CountsOf(item *media.MediaItem) Counts {
	return Counts{
		Likes:    item.LikeCount,
		Comments: item.CommentCount,
		Shares:   item.ShareCount,
		Views:    item.ViewCount,
	}
}

// LikeResult reports the outcome of Like.
type LikeResult struct {
	Liked        bool   `json:"liked"`
	AlreadyLiked bool   `json:"already_liked"`
	Delta        Counts `json:"delta"`
}

// ShareMethod is how a share reached the viewer.
type ShareMethod string

const (
	ShareNative    ShareMethod = "native"
	ShareClipboard ShareMethod = "clipboard"
)

// ShareContent is what the native share sheet receives.
type ShareContent struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// ShareTarget is the platform-native share facility.
type ShareTarget interface {
	// Available reports whether the platform offers native sharing.
	Available() bool
	Share(ctx context.Context, content ShareContent) error
}

// Clipboard receives the page URL when native sharing is unavailable.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// ShareResult reports the outcome of Share.
type ShareResult struct {
	Method   ShareMethod  `json:"method"`
	Content  ShareContent `json:"content"`
	Toast    string       `json:"toast,omitempty"` // confirmation after a clipboard copy
	Counted  bool         `json:"counted"`
	Delta    Counts       `json:"delta"`
	ShareErr string       `json:"share_error,omitempty"`
}

// CountsEvent announces a confirmed counter value.
type CountsEvent struct {
	ItemID  string        `json:"item_id"`
	Kind    media.Kind    `json:"kind"`
	Counter media.Counter `json:"counter"`
	Value   int64         `json:"value"`
}

// Notifier receives counter changes, e.g. the websocket hub.
type Notifier interface {
	CountsChanged(event CountsEvent)
}

// Backend persists authoritative counters.
type Backend interface {
	IncrementCounter(ctx context.Context, kind media.Kind, id string, counter media.Counter, delta int64) (int64, error)
}
