// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package auth

import (
	"sync"
	"time"

	"github.com/tomtom215/folio/internal/config"
	"github.com/tomtom215/folio/internal/logging"
	"github.com/tomtom215/folio/internal/metrics"
)

// LockoutConfig holds configuration for the account lockout system.
type LockoutConfig struct {
	// MaxAttempts is the number of failed attempts before lockout. 0 disables lockout.
	MaxAttempts int

	// LockoutDuration is the base lockout period. It doubles on each repeat
	// lockout up to MaxLockoutDuration.
	LockoutDuration    time.Duration
	MaxLockoutDuration time.Duration
}

// LockoutConfigFrom builds a lockout config from security settings.
func LockoutConfigFrom(cfg *config.SecurityConfig) LockoutConfig {
	return LockoutConfig{
		MaxAttempts:        cfg.LoginMaxAttempts,
		LockoutDuration:    cfg.LoginLockout,
		MaxLockoutDuration: 24 * time.Hour,
	}
}

// lockoutEntry tracks failed sign-ins for one subject (a normalized email).
type lockoutEntry struct {
	failedAttempts int
	lockoutCount   int
	lockedUntil    time.Time
	lastAttempt    time.Time
}

// LockoutManager throttles repeated failed sign-ins. State is in memory and
// resets on restart.
type LockoutManager struct {
	config  LockoutConfig
	mu      sync.Mutex
	entries map[string]*lockoutEntry
	now     func() time.Time
}

// NewLockoutManager creates a new lockout manager.
func NewLockoutManager(cfg LockoutConfig) *LockoutManager {
	if cfg.MaxLockoutDuration <= 0 {
		cfg.MaxLockoutDuration = 24 * time.Hour
	}
	return &LockoutManager{
		config:  cfg,
		entries: make(map[string]*lockoutEntry),
		now:     time.Now,
	}
}

func (m *LockoutManager) enabled() bool {
	return m != nil && m.config.MaxAttempts > 0 && m.config.LockoutDuration > 0
}

// CheckLocked reports whether subject is locked and for how much longer.
func (m *LockoutManager) CheckLocked(subject string) (bool, time.Duration) {
	if !m.enabled() {
		return false, 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[subject]
	if !ok {
		return false, 0
	}
	now := m.now()
	if now.Before(entry.lockedUntil) {
		return true, entry.lockedUntil.Sub(now)
	}
	return false, 0
}

// lockoutDuration doubles the base period for each previous lockout.
func (m *LockoutManager) lockoutDuration(lockoutCount int) time.Duration {
	d := m.config.LockoutDuration
	for i := 0; i < lockoutCount; i++ {
		d *= 2
		if d >= m.config.MaxLockoutDuration {
			return m.config.MaxLockoutDuration
		}
	}
	return d
}

// RecordFailedAttempt counts a failed sign-in and reports whether subject is
// now locked.
func (m *LockoutManager) RecordFailedAttempt(subject string) (bool, time.Duration) {
	if !m.enabled() {
		return false, 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry, ok := m.entries[subject]
	if !ok {
		entry = &lockoutEntry{}
		m.entries[subject] = entry
	}
	if now.Before(entry.lockedUntil) {
		return true, entry.lockedUntil.Sub(now)
	}

	entry.failedAttempts++
	entry.lastAttempt = now
	if entry.failedAttempts < m.config.MaxAttempts {
		return false, 0
	}

	d := m.lockoutDuration(entry.lockoutCount)
	entry.lockedUntil = now.Add(d)
	entry.lockoutCount++
	entry.failedAttempts = 0
	metrics.AuthLockouts.Inc()

	logging.Warn().
		Str("subject", subject).
		Dur("duration", d).
		Int("lockout_count", entry.lockoutCount).
		Msg("Account locked")

	return true, d
}

// RecordSuccessfulLogin clears the lockout state for subject.
func (m *LockoutManager) RecordSuccessfulLogin(subject string) {
	if !m.enabled() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, subject)
}

// Cleanup drops entries that are unlocked and idle for longer than the
// maximum lockout. It returns how many were removed.
func (m *LockoutManager) Cleanup() int {
	if !m.enabled() {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for subject, entry := range m.entries {
		if now.Before(entry.lockedUntil) {
			continue
		}
		if now.Sub(entry.lastAttempt) > m.config.MaxLockoutDuration {
			delete(m.entries, subject)
			removed++
		}
	}
	return removed
}
