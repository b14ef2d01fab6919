// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/folio/config.yaml",
	"/etc/folio/config.yml",
}

// ConfigPathEnvVar names the env var that points at a YAML config file.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8090,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/folio.duckdb",
			MaxMemory: "1GB",
		},
		Media: MediaConfig{
			FileBaseURL:  "",
			LazyMargin:   200,
			FadeDuration: 300 * time.Millisecond,
			FetchTimeout: 5 * time.Second,
		},
		Engagement: EngagementConfig{
			KVBackend:       "badger",
			KVPath:          "/data/engagement",
			ShareCooldown:   0,
			RetryInterval:   30 * time.Second,
			RetryPerSecond:  5,
			RetryBurst:      10,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Recommend: RecommendConfig{
			RecencyWeight:         0.35,
			EngagementWeight:      0.40,
			PersonalizationWeight: 0.25,
			HalfLife:              30 * 24 * time.Hour,
			LikeWeight:            3,
			ViewWeight:            0.1,
			ShareWeight:           5,
			Saturation:            50,
			TopCategories:         3,
			DefaultK:              12,
			MaxK:                  100,
			HistorySize:           100,
			HistoryWindow:         30 * 24 * time.Hour,
			ExcludeSeen:           true,
		},
		Security: SecurityConfig{
			SessionTimeout:   24 * time.Hour,
			SessionStore:     "badger",
			SessionStorePath: "/data/sessions",
			CookieSecure:     true,
			LoginMaxAttempts: 5,
			LoginLockout:     15 * time.Minute,
			AdminName:        "Admin",
			RateLimitReqs:    120,
			RateLimitWindow:  time.Minute,
			CORSOrigins:      []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Import: ImportConfig{
			BatchSize: 500,
		},
	}
}

// Load reads defaults, the optional YAML file and the environment, then validates.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"security.cors_origins",
	"media.image_hosts",
}

// processSliceFields turns comma-separated env values into string slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			continue
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",
	"public_url":            "server.public_url",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"media_file_base_url": "media.file_base_url",
	"media_image_hosts":   "media.image_hosts",
	"media_lazy_margin":   "media.lazy_margin",
	"media_fade_duration": "media.fade_duration",
	"media_fetch_timeout": "media.fetch_timeout",

	"engagement_kv_backend":       "engagement.kv_backend",
	"engagement_kv_path":          "engagement.kv_path",
	"redis_url":                   "engagement.redis_url",
	"engagement_share_cooldown":   "engagement.share_cooldown",
	"engagement_retry_interval":   "engagement.retry_interval",
	"engagement_retry_per_second": "engagement.retry_per_second",
	"engagement_retry_burst":      "engagement.retry_burst",
	"engagement_breaker_failures": "engagement.breaker_failures",
	"engagement_breaker_timeout":  "engagement.breaker_timeout",

	"recommend_recency_weight":         "recommend.recency_weight",
	"recommend_engagement_weight":      "recommend.engagement_weight",
	"recommend_personalization_weight": "recommend.personalization_weight",
	"recommend_half_life":              "recommend.half_life",
	"recommend_like_weight":            "recommend.like_weight",
	"recommend_view_weight":            "recommend.view_weight",
	"recommend_share_weight":           "recommend.share_weight",
	"recommend_saturation":             "recommend.saturation",
	"recommend_top_categories":         "recommend.top_categories",
	"recommend_tag_weight":             "recommend.tag_weight",
	"recommend_default_k":              "recommend.default_k",
	"recommend_max_k":                  "recommend.max_k",
	"recommend_history_size":           "recommend.history_size",
	"recommend_history_window":         "recommend.history_window",
	"recommend_exclude_seen":           "recommend.exclude_seen",

	"jwt_secret":          "security.jwt_secret",
	"session_timeout":     "security.session_timeout",
	"session_store":       "security.session_store",
	"session_store_path":  "security.session_store_path",
	"cookie_secure":       "security.cookie_secure",
	"login_max_attempts":  "security.login_max_attempts",
	"login_lockout":       "security.login_lockout",
	"authz_policy_path":   "security.policy_path",
	"admin_email":         "security.admin_email",
	"admin_password":      "security.admin_password",
	"admin_name":          "security.admin_name",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"pocketbase_path":   "import.pocketbase_path",
	"import_batch_size": "import.batch_size",
	"import_dry_run":    "import.dry_run",
}

// envTransformFunc maps an env var to its koanf path. Unknown vars return ""
// and are dropped by the provider.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
