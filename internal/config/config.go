// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

// Package config loads Folio's configuration with koanf.
//
// Sources are layered, later ones overriding earlier ones:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/folio/config.yaml)
//  3. Environment variables (see envMappings)
package config

import (
	"strings"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Media      MediaConfig      `koanf:"media"`
	Engagement EngagementConfig `koanf:"engagement"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
	Import     ImportConfig     `koanf:"import"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
	// PublicURL is used to build share links when a request carries none.
	PublicURL string `koanf:"public_url"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"` // empty = in-memory
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = DuckDB default
}

// MediaConfig controls image delivery.
type MediaConfig struct {
	// FileBaseURL prefixes /api/files/{collection}/{record}/{file} URLs.
	FileBaseURL  string        `koanf:"file_base_url"`
	// ImageHosts lists extra URL prefixes (e.g. a CDN) whose high-res assets
	// may be fetched. The file base URL is always allowed.
	ImageHosts   []string      `koanf:"image_hosts"`
	LazyMargin   int           `koanf:"lazy_margin"`
	FadeDuration time.Duration `koanf:"fade_duration"`
	FetchTimeout time.Duration `koanf:"fetch_timeout"`
}

// EngagementConfig controls likes, shares and the backend sync worker.
type EngagementConfig struct {
	// KVBackend selects the liked-flag store: memory, badger, file, redis.
	KVBackend string `koanf:"kv_backend"`
	KVPath    string `koanf:"kv_path"`
	RedisURL  string `koanf:"redis_url"`

	// ShareCooldown throttles repeated shares per viewer and item. 0 disables it.
	ShareCooldown time.Duration `koanf:"share_cooldown"`

	RetryInterval   time.Duration `koanf:"retry_interval"`
	RetryPerSecond  float64       `koanf:"retry_per_second"`
	RetryBurst      int           `koanf:"retry_burst"`
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// RecommendConfig mirrors recommend.Config in flat form for env overrides.
type RecommendConfig struct {
	RecencyWeight         float64       `koanf:"recency_weight"`
	EngagementWeight      float64       `koanf:"engagement_weight"`
	PersonalizationWeight float64       `koanf:"personalization_weight"`
	HalfLife              time.Duration `koanf:"half_life"`
	LikeWeight            float64       `koanf:"like_weight"`
	ViewWeight            float64       `koanf:"view_weight"`
	ShareWeight           float64       `koanf:"share_weight"`
	Saturation            float64       `koanf:"saturation"`
	TopCategories         int           `koanf:"top_categories"`
	TagWeight             float64       `koanf:"tag_weight"`
	DefaultK              int           `koanf:"default_k"`
	MaxK                  int           `koanf:"max_k"`
	HistorySize           int           `koanf:"history_size"`
	HistoryWindow         time.Duration `koanf:"history_window"`
	ExcludeSeen           bool          `koanf:"exclude_seen"`
}

// SecurityConfig holds authentication and HTTP protection settings.
type SecurityConfig struct {
	JWTSecret        string        `koanf:"jwt_secret"`
	SessionTimeout   time.Duration `koanf:"session_timeout"`
	SessionStore     string        `koanf:"session_store"` // memory or badger
	SessionStorePath string        `koanf:"session_store_path"`
	CookieSecure     bool          `koanf:"cookie_secure"`

	// LoginMaxAttempts failed sign-ins lock an email for LoginLockout,
	// doubling on each repeat lockout. 0 disables lockout.
	LoginMaxAttempts int           `koanf:"login_max_attempts"`
	LoginLockout     time.Duration `koanf:"login_lockout"`

	// PolicyPath overrides the embedded authorization policy.
	PolicyPath string `koanf:"policy_path"`

	// Bootstrap admin created on first start when no user with this email exists.
	AdminEmail    string `koanf:"admin_email"`
	AdminPassword string `koanf:"admin_password"`
	AdminName     string `koanf:"admin_name"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// ImportConfig controls the PocketBase importer.
type ImportConfig struct {
	PocketBasePath string `koanf:"pocketbase_path"`
	BatchSize      int    `koanf:"batch_size"`
	DryRun         bool   `koanf:"dry_run"`
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}

// HasWildcardCORS reports whether any allowed origin is "*".
func (c *Config) HasWildcardCORS() bool {
	for _, o := range c.Security.CORSOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}
