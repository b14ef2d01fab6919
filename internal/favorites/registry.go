// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

// Package favorites keeps each signed-in viewer's set of favorited items.
//
// The backend is authoritative. The registry caches each user's membership
// after the first read and replaces it after every toggle; there is no
// local-only optimistic state.
package favorites

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/folio/internal/cache"
	"github.com/tomtom215/folio/internal/media"
)

// Backend persists favorite records. *database.DB implements it.
type Backend interface {
	ListFavorites(ctx context.Context, userID string) ([]media.FavoriteEntry, error)
	CreateFavorite(ctx context.Context, f *media.FavoriteEntry) error
	DeleteFavorite(ctx context.Context, id string) error
}

// DefaultTTL bounds how stale a cached membership set may get when another
// session of the same user changes it.
const DefaultTTL = 5 * time.Minute

// membership maps item ID to its favorite record.
type membership map[string]media.FavoriteEntry

// Registry answers favorite queries for the viewer in the request context.
type Registry struct {
	backend Backend
	sets    *cache.Cache[membership]
	logger  zerolog.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewRegistry creates a registry over backend.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRegistry(backend Backend, ttl time.Duration, logger zerolog.Logger) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		backend: backend,
		sets:    cache.New[membership](ttl),
		logger:  logger.With().Str("component", "favorites").Logger(),
		locks:   make(map[string]*sync.Mutex),
	}
}

// Close releases the membership cache.
func (r *Registry) Close() {
	r.sets.Close()
}

// IsFavorite reports whether the current viewer has favorited itemID.
func (r *Registry) IsFavorite(ctx context.Context, itemID string) (bool, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return false, err
	}
	set, err := r.load(ctx, userID)
	if err != nil {
		return false, err
	}
	_, ok := set[itemID]
	return ok, nil
}

// List returns the current viewer's favorites, newest first.
func (r *Registry) List(ctx context.Context) ([]media.FavoriteEntry, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := r.backend.ListFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	r.sets.Set(userID, toMembership(entries))
	if entries == nil {
		entries = []media.FavoriteEntry{}
	}
	return entries, nil
}

// Toggle flips itemID in the current viewer's favorites and returns the new
// state. Each call is a backend round trip. On failure the cached set is
// reloaded from the backend before the error is returned.
func (r *Registry) Toggle(ctx context.Context, itemID string, kind media.Kind) (bool, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return false, err
	}
	if itemID == "" {
		return false, fmt.Errorf("%w: item id required", media.ErrValidation)
	}
	if !kind.Valid() {
		return false, fmt.Errorf("%w: unknown item kind %q", media.ErrValidation, kind)
	}

	mu := r.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	set, err := r.load(ctx, userID)
	if err != nil {
		return false, err
	}

	favorited, err := r.flip(ctx, userID, set, itemID, kind)
	if err != nil {
		r.refresh(ctx, userID)
		return false, err
	}
	return favorited, nil
}

func (r *Registry) flip(ctx context.Context, userID string, set membership, itemID string, kind media.Kind) (bool, error) {
	next := make(membership, len(set)+1)
	for k, v := range set {
		next[k] = v
	}

	if existing, ok := set[itemID]; ok {
		if err := r.backend.DeleteFavorite(ctx, existing.ID); err != nil {
			return false, fmt.Errorf("remove favorite %s: %w", itemID, err)
		}
		delete(next, itemID)
		r.sets.Set(userID, next)
		r.logger.Debug().Str("user_id", userID).Str("item_id", itemID).Msg("favorite removed")
		return false, nil
	}

	entry := &media.FavoriteEntry{UserID: userID, ItemID: itemID, ItemKind: kind}
	if err := r.backend.CreateFavorite(ctx, entry); err != nil {
		return false, fmt.Errorf("add favorite %s: %w", itemID, err)
	}
	next[itemID] = *entry
	r.sets.Set(userID, next)
	r.logger.Debug().Str("user_id", userID).Str("item_id", itemID).Msg("favorite added")
	return true, nil
}

// Invalidate drops the cached set for userID, e.g. on logout.
func (r *Registry) Invalidate(userID string) {
	r.sets.Delete(userID)
}

func (r *Registry) load(ctx context.Context, userID string) (membership, error) {
	if set, ok := r.sets.Get(userID); ok {
		return set, nil
	}
	entries, err := r.backend.ListFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	set := toMembership(entries)
	r.sets.Set(userID, set)
	return set, nil
}

// refresh reloads the set after a failed toggle. If the reload also fails
// the cached set is dropped so the next call goes to the backend.
func (r *Registry) refresh(ctx context.Context, userID string) {
	r.sets.Delete(userID)
	if _, err := r.load(ctx, userID); err != nil {
		r.logger.Warn().Err(err).Str("user_id", userID).Msg("favorite refresh failed")
	}
}

func (r *Registry) userLock(userID string) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	mu, ok := r.locks[userID]
	if !ok {
		mu = &sync.Mutex{}
		r.locks[userID] = mu
	}
	return mu
}

func currentUser(ctx context.Context) (string, error) {
	v := media.ViewerFromContext(ctx)
	if !v.IsAuthenticated() {
		return "", fmt.Errorf("%w: sign in to use favorites", media.ErrUnauthenticated)
	}
	return v.UserID, nil
}

func toMembership(entries []media.FavoriteEntry) membership {
	set := make(membership, len(entries))
	for _, e := range entries {
		set[e.ItemID] = e
	}
	return set
}
