// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package api

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/folio/internal/auth"
	"github.com/tomtom215/folio/internal/authz"
	"github.com/tomtom215/folio/internal/cache"
	"github.com/tomtom215/folio/internal/comments"
	"github.com/tomtom215/folio/internal/config"
	"github.com/tomtom215/folio/internal/database"
	"github.com/tomtom215/folio/internal/engagement"
	"github.com/tomtom215/folio/internal/favorites"
	"github.com/tomtom215/folio/internal/imagetier"
	"github.com/tomtom215/folio/internal/media"
	"github.com/tomtom215/folio/internal/recommend"
	"github.com/tomtom215/folio/internal/websocket"
)

// itemListTTL bounds how stale a cached item listing may be. Counters are
// overlaid from the engagement store on every response.
const itemListTTL = 30 * time.Second

// ItemStore is the catalog the handlers read from.
type ItemStore interface {
	ListItems(ctx context.Context, f database.ItemFilter) ([]media.MediaItem, error)
	GetItem(ctx context.Context, id string) (media.MediaItem, error)
	ActiveHeroes(ctx context.Context) ([]media.HeroImage, error)
	Ping(ctx context.Context) error
}

// BreakerReporter exposes the sync worker's circuit breaker state for health checks.
type BreakerReporter interface {
	BreakerState() string
}

// Deps are the services the HTTP layer is built on. Syncer may be nil.
type Deps struct {
	Config      *config.Config
	Items       ItemStore
	Engagement  *engagement.Store
	Syncer      BreakerReporter
	Recommender *recommend.Engine
	Favorites   *favorites.Registry
	Comments    *comments.Service
	Auth        *auth.Service
	AuthMW      *auth.Middleware
	Enforcer    *authz.Enforcer
	Images      *imagetier.Service
	Hub         *websocket.Hub
}

func (d *Deps) validate() error {
	switch {
	case d.Config == nil:
		return errors.New("api: config is required")
	case d.Items == nil, d.Engagement == nil, d.Recommender == nil:
		return errors.New("api: items, engagement and recommender are required")
	case d.Favorites == nil, d.Comments == nil:
		return errors.New("api: favorites and comments are required")
	case d.Auth == nil, d.AuthMW == nil, d.Enforcer == nil:
		return errors.New("api: auth service, auth middleware and enforcer are required")
	case d.Images == nil, d.Hub == nil:
		return errors.New("api: image service and websocket hub are required")
	}
	return nil
}

// Handler serves the /api/v1 endpoints.
type Handler struct {
	Deps
	items     *cache.Cache[[]media.MediaItem]
	startTime time.Time
}

// NewHandler validates deps and creates a handler.
func NewHandler(deps Deps) (*Handler, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	return &Handler{
		Deps:      deps,
		items:     cache.New[[]media.MediaItem](itemListTTL),
		startTime: time.Now(),
	}, nil
}

// Close releases the handler's cache.
func (h *Handler) Close() {
	h.items.Close()
}

// InvalidateItems drops cached item listings, e.g. after an import.
func (h *Handler) InvalidateItems() {
	h.items.Clear()
}
