// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/folio/internal/config"
	"github.com/tomtom215/folio/internal/logging"
)

// Session store types.
const (
	SessionStoreMemory = "memory"
	SessionStoreBadger = "badger"
)

// NewSessionStore opens the store selected by cfg.SessionStore.
func NewSessionStore(cfg *config.SecurityConfig) (SessionStore, error) {
	switch cfg.SessionStore {
	case SessionStoreMemory, "":
		return NewMemorySessionStore(), nil
	case SessionStoreBadger:
		return OpenBadgerSessionStore(cfg.SessionStorePath)
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
}

// SessionJanitor periodically removes expired sessions and idle lockout
// entries. It implements suture.Service.
type SessionJanitor struct {
	store    SessionStore
	lockout  *LockoutManager
	interval time.Duration
}

// NewSessionJanitor creates a janitor sweeping every interval. lockout may be nil.
func NewSessionJanitor(store SessionStore, lockout *LockoutManager, interval time.Duration) *SessionJanitor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &SessionJanitor{store: store, lockout: lockout, interval: interval}
}

// Serve sweeps until ctx is done.
func (j *SessionJanitor) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			j.lockout.Cleanup()
			n, err := j.store.CleanupExpired(ctx)
			if err != nil {
				logging.Warn().Err(err).Msg("Session cleanup failed")
				continue
			}
			if n > 0 {
				logging.Debug().Int("removed", n).Msg("Expired sessions removed")
			}
		}
	}
}

func (j *SessionJanitor) String() string { return "session-janitor" }
