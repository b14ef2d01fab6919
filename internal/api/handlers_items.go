// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package api

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/folio/internal/cache"
	"github.com/tomtom215/folio/internal/database"
	"github.com/tomtom215/folio/internal/engagement"
	"github.com/tomtom215/folio/internal/imagetier"
	"github.com/tomtom215/folio/internal/logging"
	"github.com/tomtom215/folio/internal/media"
)

const (
	defaultItemLimit = 50
	maxItemLimit     = 200
	defaultTopLimit  = 10

	minSearchLen       = 2
	searchPerKind      = 8
	defaultSearchLimit = 10
)

// itemView is a MediaItem with the viewer's optimistic counters, liked flag
// and the image tier it should render first.
type itemView struct {
	media.MediaItem
	Liked bool                 `json:"liked"`
	Image imagetier.Resolution `json:"image"`
}

func clampLimit(n, def int) int {
	switch {
	case n <= 0:
		return def
	case n > maxItemLimit:
		return maxItemLimit
	}
	return n
}

// listItems serves f from the listing cache, falling through to the store.
func (h *Handler) listItems(ctx context.Context, f database.ItemFilter) ([]media.MediaItem, bool, error) {
	key := cache.GenerateKey("items", f)
	if items, ok := h.items.Get(key); ok {
		return items, true, nil
	}
	items, err := h.Items.ListItems(ctx, f)
	if err != nil {
		return nil, false, err
	}
	h.items.Set(key, items)
	return items, false, nil
}

// view overlays pending engagement onto item for the requesting viewer.
func (h *Handler) view(ctx context.Context, item media.MediaItem, liked map[string]struct{}) itemView {
	applyCounts(&item, h.Engagement.Counts(&item))
	_, isLiked := liked[item.ID]
	return itemView{
		MediaItem: item,
		Liked:     isLiked,
		Image: imagetier.Resolve(imagetier.TierRequest{
			LowResURL:     item.PrimaryURL(),
			HighResURL:    item.HighResURL,
			ThumbnailURL:  item.ThumbnailURL,
			Authenticated: media.ViewerFromContext(ctx).IsAuthenticated(),
		}),
	}
}

func (h *Handler) views(ctx context.Context, items []media.MediaItem) []itemView {
	liked := h.likedSet(ctx)
	out := make([]itemView, len(items))
	for i := range items {
		out[i] = h.view(ctx, items[i], liked)
	}
	return out
}

// likedSet returns the items the viewer has liked. Lookup failures only cost
// the liked flag, so they are logged rather than returned.
func (h *Handler) likedSet(ctx context.Context) map[string]struct{} {
	key := media.ViewerFromContext(ctx).EngagementKey()
	if key == "" {
		return nil
	}
	ids, err := h.Engagement.LikedItems(ctx, key)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to load liked items")
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func applyCounts(item *media.MediaItem, c engagement.Counts) {
	item.LikeCount = c.Likes
	item.CommentCount = c.Comments
	item.ShareCount = c.Shares
	item.ViewCount = c.Views
}

// ListItems handles GET /api/v1/items?kind=&category=&limit=&offset=
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	kind, err := kindParam(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	f := database.ItemFilter{
		Kind:     kind,
		Category: r.URL.Query().Get("category"),
		Sort:     database.SortNewest,
		Limit:    clampLimit(getIntParam(r, "limit", defaultItemLimit), defaultItemLimit),
		Offset:   max(getIntParam(r, "offset", 0), 0),
	}
	items, cached, err := h.listItems(r.Context(), f)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondList(w, h.views(r.Context(), items), start, cached)
}

// SearchItems handles GET /api/v1/items/search?q=&kind=&limit=
// Each kind contributes its newest matches, photography first. Queries
// shorter than two characters return no results.
func (h *Handler) SearchItems(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	kind, err := kindParam(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if utf8.RuneCountInString(q) < minSearchLen {
		respondList(w, []itemView{}, start, false)
		return
	}

	kinds := []media.Kind{media.KindPhotography, media.KindDesign}
	if kind != "" {
		kinds = []media.Kind{kind}
	}
	limit := clampLimit(getIntParam(r, "limit", defaultSearchLimit), defaultSearchLimit)
	perKind := searchPerKind
	if len(kinds) == 1 {
		perKind = limit
	}

	var (
		found     []media.MediaItem
		allCached = true
	)
	for _, k := range kinds {
		f := database.ItemFilter{Kind: k, Query: q, Sort: database.SortNewest, Limit: perKind}
		items, cached, err := h.listItems(r.Context(), f)
		if err != nil {
			respondErr(w, r, err)
			return
		}
		allCached = allCached && cached
		found = append(found, items...)
	}
	if len(found) > limit {
		found = found[:limit]
	}
	respondList(w, h.views(r.Context(), found), start, allCached)
}

// TopItems handles GET /api/v1/items/top?kind=&limit=, the most liked items.
func (h *Handler) TopItems(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	kind, err := kindParam(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	f := database.ItemFilter{
		Kind:  kind,
		Sort:  database.SortMostLiked,
		Limit: clampLimit(getIntParam(r, "limit", defaultTopLimit), defaultTopLimit),
	}
	items, cached, err := h.listItems(r.Context(), f)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondList(w, h.views(r.Context(), items), start, cached)
}

// GetItem handles GET /api/v1/items/{id}. refresh=1 discards pending
// optimistic deltas so the stored counters are shown as-is.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	item, err := h.Items.GetItem(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if r.URL.Query().Get("refresh") == "1" {
		h.Engagement.Refresh(id)
	}
	respondData(w, http.StatusOK, h.view(r.Context(), item, h.likedSet(r.Context())), start, false)
}

// Hero handles GET /api/v1/hero.
func (h *Handler) Hero(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	heroes, err := h.Items.ActiveHeroes(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondList(w, heroes, start, false)
}
