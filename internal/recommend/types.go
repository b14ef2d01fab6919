// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/folio/internal/media"
)

// ScoredItem is an item with its score breakdown.
type ScoredItem struct {
	Item  media.MediaItem `json:"item"`
	Score float64         `json:"score"`

	// Terms are the unweighted term values, each in [0, 1].
	Terms Terms `json:"terms"`
}

// Terms holds the per-term components of a score.
type Terms struct {
	Recency         float64 `json:"recency"`
	Engagement      float64 `json:"engagement"`
	Personalization float64 `json:"personalization"`
	// TagMatches counts item tags found in the viewer's watched categories.
	TagMatches int `json:"tag_matches,omitempty"`
}

// Request represents a recommendation request.
type Request struct {
	// ViewerKey selects the history to personalize with. Empty means none.
	ViewerKey string `json:"viewer_key,omitempty"`

	// K is the number of recommendations to return.
	// Defaults to Config.Limits.DefaultK if zero; capped at Limits.MaxK.
	K int `json:"k,omitempty"`

	// ExcludeSeen drops items already in the viewer's history. Nil uses
	// Config.ExcludeSeen.
	ExcludeSeen *bool `json:"exclude_seen,omitempty"`

	// Kind restricts candidates to one collection when set.
	Kind media.Kind `json:"kind,omitempty"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// Response represents a recommendation response.
type Response struct {
	Items           []ScoredItem     `json:"items"`
	TotalCandidates int              `json:"total_candidates"`
	Metadata        ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	RequestID     string          `json:"request_id"`
	Personalized  bool            `json:"personalized"`
	TopCategories []CategoryScore `json:"top_categories,omitempty"`
	HistorySize   int             `json:"history_size"`
	LatencyMS     int64           `json:"latency_ms"`
	Timestamp     time.Time       `json:"timestamp"`
}

// CandidateSource supplies items to rank.
type CandidateSource interface {
	Candidates(ctx context.Context, kind media.Kind, limit int) ([]media.MediaItem, error)
}

// CandidateFunc adapts a function to CandidateSource.
type CandidateFunc func(ctx context.Context, kind media.Kind, limit int) ([]media.MediaItem, error)

// Candidates calls f.
func (f CandidateFunc) Candidates(ctx context.Context, kind media.Kind, limit int) ([]media.MediaItem, error) {
	return f(ctx, kind, limit)
}
