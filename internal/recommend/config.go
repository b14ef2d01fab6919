// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/folio/internal/config"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights defines the relative contribution of each scoring term.
	// Weights are normalized at runtime, so they don't need to sum to 1.0.
	Weights Weights `json:"weights"`

	Recency         RecencyConfig         `json:"recency"`
	Engagement      EngagementConfig      `json:"engagement"`
	Personalization PersonalizationConfig `json:"personalization"`
	Limits          LimitsConfig          `json:"limits"`
	History         HistoryConfig         `json:"history"`

	// ExcludeSeen drops items already in the viewer's history by default.
	ExcludeSeen bool `json:"exclude_seen"`
}

// Weights defines the relative contribution of each scoring term.
type Weights struct {
	Recency         float64 `json:"recency"`
	Engagement      float64 `json:"engagement"`
	Personalization float64 `json:"personalization"`
}

// Normalize returns a copy with weights normalized to sum to 1.0.
func (w Weights) Normalize() Weights {
	sum := w.Recency + w.Engagement + w.Personalization
	if sum == 0 {
		const equal = 1.0 / 3.0
		return Weights{Recency: equal, Engagement: equal, Personalization: equal}
	}
	return Weights{
		Recency:         w.Recency / sum,
		Engagement:      w.Engagement / sum,
		Personalization: w.Personalization / sum,
	}
}

// RecencyConfig controls the age decay.
type RecencyConfig struct {
	// HalfLife is the age at which the recency term falls to 0.5.
	// Default: 30 days.
	HalfLife time.Duration `json:"half_life"`
}

// EngagementConfig controls how counters combine into the engagement term.
type EngagementConfig struct {
	LikeWeight  float64 `json:"like_weight"`
	ViewWeight  float64 `json:"view_weight"`
	ShareWeight float64 `json:"share_weight"`

	// Saturation is the weighted count at which the engagement term reaches 0.5.
	// Default: 50.
	Saturation float64 `json:"saturation"`
}

// PersonalizationConfig controls the category affinity term.
type PersonalizationConfig struct {
	// TopCategories is how many of the viewer's categories earn a boost.
	// Default: 3.
	TopCategories int `json:"top_categories"`

	// TagWeight is added to the term for each item tag found in a category
	// the viewer has watched. The term is capped at 1. Default: 1/15.
	TagWeight float64 `json:"tag_weight"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	DefaultK int `json:"default_k"`
	MaxK     int `json:"max_k"`
	// MaxCandidates bounds how many items are pulled from the CandidateSource.
	MaxCandidates int `json:"max_candidates"`
}

// HistoryConfig bounds per-viewer view history.
type HistoryConfig struct {
	MaxSamples int           `json:"max_samples"`
	Window     time.Duration `json:"window"`
	// MaxViewers bounds how many viewer histories are kept in memory.
	MaxViewers int `json:"max_viewers"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: Weights{
			Recency:         0.3,
			Engagement:      0.4,
			Personalization: 0.3,
		},
		Recency: RecencyConfig{
			HalfLife: 30 * 24 * time.Hour,
		},
		Engagement: EngagementConfig{
			LikeWeight:  3,
			ViewWeight:  0.1,
			ShareWeight: 5,
			Saturation:  50,
		},
		Personalization: PersonalizationConfig{
			TopCategories: 3,
			TagWeight:     1.0 / 15,
		},
		Limits: LimitsConfig{
			DefaultK:      12,
			MaxK:          100,
			MaxCandidates: 1000,
		},
		History: HistoryConfig{
			MaxSamples: 100,
			Window:     30 * 24 * time.Hour,
			MaxViewers: 10000,
		},
	}
}

// FromAppConfig overlays the non-zero settings of the application config on
// the defaults.
func FromAppConfig(rc *config.RecommendConfig) *Config {
	c := DefaultConfig()
	if rc == nil {
		return c
	}
	if rc.RecencyWeight != 0 || rc.EngagementWeight != 0 || rc.PersonalizationWeight != 0 {
		c.Weights = Weights{
			Recency:         rc.RecencyWeight,
			Engagement:      rc.EngagementWeight,
			Personalization: rc.PersonalizationWeight,
		}
	}
	setDuration(&c.Recency.HalfLife, rc.HalfLife)
	setFloat(&c.Engagement.LikeWeight, rc.LikeWeight)
	setFloat(&c.Engagement.ViewWeight, rc.ViewWeight)
	setFloat(&c.Engagement.ShareWeight, rc.ShareWeight)
	setFloat(&c.Engagement.Saturation, rc.Saturation)
	setInt(&c.Personalization.TopCategories, rc.TopCategories)
	setFloat(&c.Personalization.TagWeight, rc.TagWeight)
	setInt(&c.Limits.DefaultK, rc.DefaultK)
	setInt(&c.Limits.MaxK, rc.MaxK)
	setInt(&c.History.MaxSamples, rc.HistorySize)
	setDuration(&c.History.Window, rc.HistoryWindow)
	c.ExcludeSeen = rc.ExcludeSeen
	return c
}

func setFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Weights.Recency < 0 || c.Weights.Engagement < 0 || c.Weights.Personalization < 0 {
		return fmt.Errorf("weights must be non-negative, got %+v", c.Weights)
	}
	if c.Recency.HalfLife <= 0 {
		return fmt.Errorf("recency.half_life must be positive, got %v", c.Recency.HalfLife)
	}
	if c.Engagement.LikeWeight < 0 || c.Engagement.ViewWeight < 0 || c.Engagement.ShareWeight < 0 {
		return fmt.Errorf("engagement weights must be non-negative")
	}
	if c.Engagement.Saturation <= 0 {
		return fmt.Errorf("engagement.saturation must be positive, got %f", c.Engagement.Saturation)
	}
	if c.Personalization.TopCategories < 0 {
		return fmt.Errorf("personalization.top_categories must be non-negative, got %d", c.Personalization.TopCategories)
	}
	if c.Personalization.TagWeight < 0 {
		return fmt.Errorf("personalization.tag_weight must be non-negative, got %f", c.Personalization.TagWeight)
	}
	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k must be >= limits.default_k, got %d < %d", c.Limits.MaxK, c.Limits.DefaultK)
	}
	if c.Limits.MaxCandidates < 1 {
		return fmt.Errorf("limits.max_candidates must be positive, got %d", c.Limits.MaxCandidates)
	}
	if c.History.MaxSamples < 1 {
		return fmt.Errorf("history.max_samples must be positive, got %d", c.History.MaxSamples)
	}
	if c.History.Window <= 0 {
		return fmt.Errorf("history.window must be positive, got %v", c.History.Window)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// all nested structs are value types
	clone := *c
	return &clone
}
