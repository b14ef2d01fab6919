// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/folio/internal/media"
	"github.com/tomtom215/folio/internal/metrics"
)

// Engine scores and ranks gallery items. Scoring is a pure function of the
// item, the viewer's history and the engine clock. It is safe for concurrent use.
type Engine struct {
	config  *Config
	weights Weights
	logger  zerolog.Logger
	now     func() time.Time

	candidates CandidateSource
	histories  *HistoryStore
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg = cfg.Clone()

	e := &Engine{
		config:  cfg,
		weights: cfg.Weights.Normalize(),
		logger:  logger.With().Str("component", "recommend").Logger(),
		now:     time.Now,
	}
	e.histories = NewHistoryStore(cfg.History, func() time.Time { return e.now() })
	return e, nil
}

// SetCandidateSource sets where Recommend pulls items from.
func (e *Engine) SetCandidateSource(src CandidateSource) {
	e.candidates = src
}

// SetClock replaces the time source. Used by tests and the CLI.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Config returns a copy of the active configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// profile is what personalization knows about a viewer.
type profile struct {
	// affinity maps category to its boost in [0, 1]. With n top categories,
	// rank i (0-based) earns (n-i)/n.
	affinity map[string]float64
	// watched holds every category in the history, lowercased.
	watched []string
}

func (e *Engine) profile(history []media.ViewSample) profile {
	var p profile
	n := e.config.Personalization.TopCategories
	if top := TopCategories(history, n); len(top) > 0 {
		p.affinity = make(map[string]float64, len(top))
		for i, c := range top {
			p.affinity[c.Category] = float64(n-i) / float64(n)
		}
	}
	seen := make(map[string]struct{})
	for _, s := range history {
		c := strings.ToLower(strings.TrimSpace(s.Category))
		if c == "" {
			continue
		}
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			p.watched = append(p.watched, c)
		}
	}
	return p
}

// tagMatches counts the item tags contained in a watched category name.
func (p *profile) tagMatches(tags []string) int {
	if len(p.watched) == 0 {
		return 0
	}
	n := 0
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		for _, c := range p.watched {
			if strings.Contains(c, tag) {
				n++
				break
			}
		}
	}
	return n
}

func (e *Engine) recency(created, now time.Time) float64 {
	age := now.Sub(created)
	if age < 0 {
		age = 0
	}
	return math.Exp(-math.Ln2 * float64(age) / float64(e.config.Recency.HalfLife))
}

func (e *Engine) engagement(item *media.MediaItem) float64 {
	ec := e.config.Engagement
	raw := ec.LikeWeight*float64(max(item.LikeCount, 0)) +
		ec.ViewWeight*float64(max(item.ViewCount, 0)) +
		ec.ShareWeight*float64(max(item.ShareCount, 0))
	return raw / (raw + ec.Saturation)
}

func (e *Engine) score(item *media.MediaItem, p *profile, now time.Time) ScoredItem {
	t := Terms{
		Recency:    e.recency(item.CreatedAt, now),
		Engagement: e.engagement(item),
		TagMatches: p.tagMatches(item.Tags),
	}
	t.Personalization = min(1, p.affinity[item.Category]+float64(t.TagMatches)*e.config.Personalization.TagWeight)
	score := e.weights.Recency*t.Recency +
		e.weights.Engagement*t.Engagement +
		e.weights.Personalization*t.Personalization
	return ScoredItem{Item: *item, Score: score, Terms: t}
}

// Score rates item for a viewer with the given history. Higher is better.
func (e *Engine) Score(item media.MediaItem, history []media.ViewSample) float64 {
	p := e.profile(history)
	return e.score(&item, &p, e.now()).Score
}

// Rank returns the top k items by descending score. Ties go to the newer item,
// then to the lower ID. Duplicate IDs are ranked once. k <= 0 yields nothing.
func (e *Engine) Rank(items []media.MediaItem, history []media.ViewSample, k int) []media.MediaItem {
	scored := e.rank(items, history, k)
	out := make([]media.MediaItem, len(scored))
	for i := range scored {
		out[i] = scored[i].Item
	}
	return out
}

func (e *Engine) rank(items []media.MediaItem, history []media.ViewSample, k int) []ScoredItem {
	if k <= 0 || len(items) == 0 {
		return []ScoredItem{}
	}
	now := e.now()
	p := e.profile(history)

	seen := make(map[string]struct{}, len(items))
	scored := make([]ScoredItem, 0, len(items))
	for i := range items {
		if _, dup := seen[items[i].ID]; dup {
			continue
		}
		seen[items[i].ID] = struct{}{}
		scored = append(scored, e.score(&items[i], &p, now))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := &scored[i], &scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Item.CreatedAt.Equal(b.Item.CreatedAt) {
			return a.Item.CreatedAt.After(b.Item.CreatedAt)
		}
		return a.Item.ID < b.Item.ID
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// Track records a view in the viewer's history.
func (e *Engine) Track(viewerKey string, sample media.ViewSample) {
	e.histories.Track(viewerKey, sample)
}

// Recommend ranks candidates for the viewer in req.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	if e.candidates == nil {
		return nil, errors.New("candidate source not set")
	}
	req = e.prepareRequest(req)
	logger := e.logger.With().Str("request_id", req.RequestID).Str("viewer", req.ViewerKey).Logger()

	items, err := e.candidates.Candidates(ctx, req.Kind, e.config.Limits.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("get candidates: %w", err)
	}
	total := len(items)

	var history []media.ViewSample
	if req.ViewerKey != "" {
		history = e.histories.Samples(req.ViewerKey)
	}
	if *req.ExcludeSeen && len(history) > 0 {
		items = excludeSeen(items, history)
	}

	scored := e.rank(items, history, req.K)
	top := TopCategories(history, e.config.Personalization.TopCategories)
	personalized := len(top) > 0
	elapsed := time.Since(start)
	metrics.RecordRecommendation(personalized, elapsed)

	logger.Debug().
		Int("candidates", total).
		Int("returned", len(scored)).
		Bool("personalized", personalized).
		Dur("latency", elapsed).
		Msg("recommendation complete")

	return &Response{
		Items:           scored,
		TotalCandidates: total,
		Metadata: ResponseMetadata{
			RequestID:     req.RequestID,
			Personalized:  personalized,
			TopCategories: top,
			HistorySize:   len(history),
			LatencyMS:     elapsed.Milliseconds(),
			Timestamp:     e.now(),
		},
	}, nil
}

func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.K == 0 {
		req.K = e.config.Limits.DefaultK
	}
	if req.K > e.config.Limits.MaxK {
		req.K = e.config.Limits.MaxK
	}
	if req.ExcludeSeen == nil {
		v := e.config.ExcludeSeen
		req.ExcludeSeen = &v
	}
	return req
}

func excludeSeen(items []media.MediaItem, history []media.ViewSample) []media.MediaItem {
	seen := make(map[string]struct{}, len(history))
	for _, s := range history {
		seen[s.ItemID] = struct{}{}
	}
	out := items[:0:0]
	for _, it := range items {
		if _, ok := seen[it.ID]; !ok {
			out = append(out, it)
		}
	}
	return out
}
