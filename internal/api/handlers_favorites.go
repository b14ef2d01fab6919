// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type favoriteState struct {
	ItemID   string `json:"item_id"`
	Favorite bool   `json:"favorite"`
}

// ListFavorites handles GET /api/v1/favorites.
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	entries, err := h.Favorites.List(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondList(w, entries, start, false)
}

// GetFavorite handles GET /api/v1/favorites/{id}.
func (h *Handler) GetFavorite(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	fav, err := h.Favorites.IsFavorite(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, http.StatusOK, favoriteState{ItemID: id, Favorite: fav}, start, false)
}

// ToggleFavorite handles POST /api/v1/favorites/{id}/toggle.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	item, err := h.Items.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	fav, err := h.Favorites.Toggle(r.Context(), item.ID, item.Kind)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, http.StatusOK, favoriteState{ItemID: item.ID, Favorite: fav}, start, false)
}
