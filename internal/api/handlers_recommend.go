// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/folio/internal/logging"
	"github.com/tomtom215/folio/internal/media"
	"github.com/tomtom215/folio/internal/recommend"
)

const recommendTimeout = 10 * time.Second

// Recommendations handles GET /api/v1/recommendations?k=&kind=&exclude_seen=
// Viewers without history get a popularity and recency ranking.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	k := getIntParam(r, "k", 0)
	if k < 0 {
		respondErr(w, r, fmt.Errorf("%w: k must not be negative", media.ErrValidation))
		return
	}

	req := recommend.Request{
		ViewerKey: media.ViewerFromContext(r.Context()).EngagementKey(),
		K:         k,
		Kind:      kind,
		RequestID: logging.RequestIDFromContext(r.Context()),
	}
	if raw := r.URL.Query().Get("exclude_seen"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondErr(w, r, fmt.Errorf("%w: exclude_seen must be a boolean", media.ErrValidation))
			return
		}
		req.ExcludeSeen = &v
	}

	ctx, cancel := context.WithTimeout(r.Context(), recommendTimeout)
	defer cancel()

	resp, err := h.Recommender.Recommend(ctx, req)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	for i := range resp.Items {
		applyCounts(&resp.Items[i].Item, h.Engagement.Counts(&resp.Items[i].Item))
	}
	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   resp,
		Metadata: Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: resp.Metadata.LatencyMS,
		},
	})
}
