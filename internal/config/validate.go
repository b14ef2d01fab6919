// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package config

import (
	"errors"
	"fmt"
	"strings"
)

const minJWTSecretLength = 32

// Validate checks the configuration for inconsistent or unsafe settings.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateEngagement(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %v", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateEngagement() error {
	e := c.Engagement
	switch e.KVBackend {
	case "memory":
	case "badger", "file":
		if e.KVPath == "" {
			return fmt.Errorf("engagement.kv_path is required for kv_backend %q", e.KVBackend)
		}
	case "redis":
		if e.RedisURL == "" {
			return errors.New("engagement.redis_url is required for kv_backend \"redis\"")
		}
	default:
		return fmt.Errorf("engagement.kv_backend must be one of memory, badger, file, redis; got %q", e.KVBackend)
	}
	if e.ShareCooldown < 0 {
		return fmt.Errorf("engagement.share_cooldown must not be negative, got %v", e.ShareCooldown)
	}
	if e.RetryPerSecond <= 0 || e.RetryBurst < 1 {
		return fmt.Errorf("engagement retry rate must be positive (per_second=%v, burst=%d)", e.RetryPerSecond, e.RetryBurst)
	}
	if e.BreakerFailures == 0 {
		return errors.New("engagement.breaker_failures must be at least 1")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.RecencyWeight < 0 || r.EngagementWeight < 0 || r.PersonalizationWeight < 0 {
		return errors.New("recommend weights must not be negative")
	}
	if r.RecencyWeight+r.EngagementWeight+r.PersonalizationWeight == 0 {
		return errors.New("recommend weights must not all be zero")
	}
	if r.DefaultK <= 0 || r.MaxK < r.DefaultK {
		return fmt.Errorf("recommend.default_k must be positive and <= max_k (default_k=%d, max_k=%d)", r.DefaultK, r.MaxK)
	}
	if r.HistorySize <= 0 {
		return fmt.Errorf("recommend.history_size must be positive, got %d", r.HistorySize)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := c.Security
	if !c.IsDevelopment() && len(s.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("security.jwt_secret must be at least %d characters outside development", minJWTSecretLength)
	}
	if s.LoginMaxAttempts < 0 || (s.LoginMaxAttempts > 0 && s.LoginLockout <= 0) {
		return fmt.Errorf("security.login_max_attempts must not be negative and needs a positive login_lockout (attempts=%d, lockout=%v)", s.LoginMaxAttempts, s.LoginLockout)
	}
	if s.SessionStore != "memory" && s.SessionStore != "badger" {
		return fmt.Errorf("security.session_store must be memory or badger, got %q", s.SessionStore)
	}
	if s.SessionStore == "badger" && s.SessionStorePath == "" {
		return errors.New("security.session_store_path is required for the badger session store")
	}
	if (s.AdminEmail == "") != (s.AdminPassword == "") {
		return errors.New("security.admin_email and security.admin_password must be set together")
	}
	if !s.RateLimitDisabled && (s.RateLimitReqs <= 0 || s.RateLimitWindow <= 0) {
		return errors.New("security rate limit requests and window must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
