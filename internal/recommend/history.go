// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package recommend

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/folio/internal/media"
)

// CategoryScore ranks a category in a viewer's history.
type CategoryScore struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
	Count    int     `json:"count"`
}

// TopCategories scores each category as count * ln(1 + average dwell seconds)
// and returns the best limit of them. Samples without a category are ignored.
func TopCategories(samples []media.ViewSample, limit int) []CategoryScore {
	if limit <= 0 {
		return nil
	}
	type agg struct {
		dwell float64
		count int
	}
	byCat := make(map[string]*agg)
	for i := range samples {
		s := &samples[i]
		if s.Category == "" {
			continue
		}
		a, ok := byCat[s.Category]
		if !ok {
			a = &agg{}
			byCat[s.Category] = a
		}
		a.dwell += math.Max(s.DwellSeconds, 0)
		a.count++
	}

	scores := make([]CategoryScore, 0, len(byCat))
	for cat, a := range byCat {
		avg := a.dwell / float64(a.count)
		scores = append(scores, CategoryScore{Category: cat, Score: float64(a.count) * math.Log1p(avg), Count: a.count})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		if scores[i].Count != scores[j].Count {
			return scores[i].Count > scores[j].Count
		}
		return scores[i].Category < scores[j].Category
	})
	if len(scores) > limit {
		scores = scores[:limit]
	}
	return scores
}

// HistoryStats summarizes a viewer's history.
type HistoryStats struct {
	TotalViews      int             `json:"total_views"`
	UniqueItems     int             `json:"unique_items"`
	AvgDwellSeconds float64         `json:"avg_dwell_seconds"`
	TopCategories   []CategoryScore `json:"top_categories"`
	// Last7Days holds view counts per day, oldest first, ending today.
	Last7Days [7]int `json:"last_7_days"`
}

// History is a bounded, time-windowed log of one viewer's views.
// It is safe for concurrent use.
type History struct {
	mu      sync.Mutex
	samples []media.ViewSample // oldest first
	max     int
	window  time.Duration
	now     func() time.Time
}

// NewHistory creates an empty history.
func NewHistory(cfg HistoryConfig, now func() time.Time) *History {
	if now == nil {
		now = time.Now
	}
	return &History{max: cfg.MaxSamples, window: cfg.Window, now: now}
}

// Track appends a sample, dropping the oldest beyond the size bound.
func (h *History) Track(s media.ViewSample) {
	if s.Timestamp.IsZero() {
		s.Timestamp = h.now()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples = append(h.samples, s)
	if over := len(h.samples) - h.max; over > 0 {
		h.samples = append(h.samples[:0:0], h.samples[over:]...)
	}
}

// Samples returns the samples inside the window, oldest first.
func (h *History) Samples() []media.ViewSample {
	cutoff := h.now().Add(-h.window)
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]media.ViewSample, 0, len(h.samples))
	for _, s := range h.samples {
		if s.Timestamp.After(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

// TopCategories ranks the categories in the current window.
func (h *History) TopCategories(limit int) []CategoryScore {
	return TopCategories(h.Samples(), limit)
}

// MostViewed returns item IDs by view count, most viewed first.
func (h *History) MostViewed(limit int) []string {
	counts := make(map[string]int)
	for _, s := range h.Samples() {
		counts[s.ItemID]++
	}
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

// Seen reports the set of item IDs in the current window.
func (h *History) Seen() map[string]struct{} {
	seen := make(map[string]struct{})
	for _, s := range h.Samples() {
		seen[s.ItemID] = struct{}{}
	}
	return seen
}

// Stats summarizes the current window.
func (h *History) Stats() HistoryStats {
	samples := h.Samples()
	stats := HistoryStats{TotalViews: len(samples), TopCategories: TopCategories(samples, 3)}
	if len(samples) == 0 {
		return stats
	}

	now := h.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	unique := make(map[string]struct{})
	var dwell float64
	for _, s := range samples {
		unique[s.ItemID] = struct{}{}
		dwell += s.DwellSeconds
		ts := s.Timestamp.In(now.Location())
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, now.Location())
		if ago := int(today.Sub(day).Hours() / 24); ago >= 0 && ago < 7 {
			stats.Last7Days[6-ago]++
		}
	}
	stats.UniqueItems = len(unique)
	stats.AvgDwellSeconds = dwell / float64(len(samples))
	return stats
}

// Clear forgets every sample.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples = nil
}

// HistoryStore keeps one History per viewer key in memory. History is
// best-effort: it does not survive restarts.
type HistoryStore struct {
	mu       sync.Mutex
	cfg      HistoryConfig
	now      func() time.Time
	byViewer map[string]*History
	order    []string // insertion order for eviction
}

// NewHistoryStore creates an empty store.
func NewHistoryStore(cfg HistoryConfig, now func() time.Time) *HistoryStore {
	if now == nil {
		now = time.Now
	}
	if cfg.MaxViewers <= 0 {
		cfg.MaxViewers = 10000
	}
	return &HistoryStore{cfg: cfg, now: now, byViewer: make(map[string]*History)}
}

// For returns the viewer's history, creating it if needed.
func (s *HistoryStore) For(viewerKey string) *History {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.byViewer[viewerKey]; ok {
		return h
	}
	if len(s.order) >= s.cfg.MaxViewers {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.byViewer, oldest)
	}
	h := NewHistory(s.cfg, s.now)
	s.byViewer[viewerKey] = h
	s.order = append(s.order, viewerKey)
	return h
}

// Track records a view for viewerKey.
func (s *HistoryStore) Track(viewerKey string, sample media.ViewSample) {
	if viewerKey == "" {
		return
	}
	s.For(viewerKey).Track(sample)
}

// Samples returns the viewer's windowed history; unknown viewers have none.
func (s *HistoryStore) Samples(viewerKey string) []media.ViewSample {
	s.mu.Lock()
	h, ok := s.byViewer[viewerKey]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return h.Samples()
}

// Clear drops the viewer's history.
func (s *HistoryStore) Clear(viewerKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byViewer[viewerKey]; !ok {
		return
	}
	delete(s.byViewer, viewerKey)
	for i, k := range s.order {
		if k == viewerKey {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of tracked viewers.
func (s *HistoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byViewer)
}
