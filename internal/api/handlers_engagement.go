// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/folio/internal/engagement"
	"github.com/tomtom215/folio/internal/media"
	"github.com/tomtom215/folio/internal/validation"
)

type likeResponse struct {
	Liked        bool              `json:"liked"`
	AlreadyLiked bool              `json:"already_liked"`
	Counts       engagement.Counts `json:"counts"`
}

type shareRequest struct {
	PageURL string `json:"page_url" validate:"omitempty,url,max=2048"`
}

type shareResponse struct {
	engagement.ShareResult
	Counts engagement.Counts `json:"counts"`
}

type viewRequest struct {
	DwellSeconds float64 `json:"dwell_seconds" validate:"gte=0,lte=86400"`
}

// LikeItem handles POST /api/v1/items/{id}/like. Repeated likes by the same
// viewer succeed without counting twice.
func (h *Handler) LikeItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	item, err := h.Items.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	viewer := media.ViewerFromContext(r.Context())
	res, err := h.Engagement.Like(r.Context(), viewer.EngagementKey(), item.ID, item.Kind)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, http.StatusOK, likeResponse{
		Liked:        res.Liked,
		AlreadyLiked: res.AlreadyLiked,
		Counts:       h.Engagement.Counts(&item),
	}, start, false)
}

// ShareItem handles POST /api/v1/items/{id}/share. The server has no native
// share sheet, so the result always carries the clipboard fallback for the
// client to act on.
func (h *Handler) ShareItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req shareRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}
	if err := validation.Validate(&req); err != nil {
		respondErr(w, r, err)
		return
	}
	item, err := h.Items.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	pageURL := req.PageURL
	if pageURL == "" {
		pageURL = h.pageURL(&item)
	}

	viewer := media.ViewerFromContext(r.Context())
	res, err := h.Engagement.Share(r.Context(), viewer.EngagementKey(), item.ID, item.Kind, pageURL, nil, nil)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, http.StatusOK, shareResponse{ShareResult: res, Counts: h.Engagement.Counts(&item)}, start, false)
}

// pageURL builds the public gallery link for item.
func (h *Handler) pageURL(item *media.MediaItem) string {
	base := strings.TrimRight(h.Config.Server.PublicURL, "/")
	return base + "/" + string(item.Kind) + "/" + item.ID
}

// RecordView handles POST /api/v1/items/{id}/views. It bumps the view counter
// and feeds the viewer's recommendation history.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req viewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}
	if err := validation.Validate(&req); err != nil {
		respondErr(w, r, err)
		return
	}
	item, err := h.Items.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}

	key := media.ViewerFromContext(r.Context()).EngagementKey()
	if _, err := h.Engagement.View(r.Context(), key, item.ID, item.Kind); err != nil {
		respondErr(w, r, err)
		return
	}
	h.Recommender.Track(key, media.ViewSample{
		ItemID:       item.ID,
		Category:     item.Category,
		DwellSeconds: req.DwellSeconds,
	})
	respondData(w, http.StatusOK, h.Engagement.Counts(&item), start, false)
}
