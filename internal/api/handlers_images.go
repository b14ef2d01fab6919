// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/folio/internal/imagetier"
	"github.com/tomtom215/folio/internal/media"
)

type imageResolution struct {
	imagetier.Resolution
	LazyMargin int `json:"lazy_margin"`
}

// ResolveImage handles GET /api/v1/images/resolve?low=&high=&thumb=
// Signed-in viewers get the high-res rendition once it has been fetched;
// everyone else stays on the low-res asset.
func (h *Handler) ResolveImage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()
	req := imagetier.TierRequest{
		LowResURL:     q.Get("low"),
		HighResURL:    q.Get("high"),
		ThumbnailURL:  q.Get("thumb"),
		Authenticated: media.ViewerFromContext(r.Context()).IsAuthenticated(),
	}
	if req.LowResURL == "" && req.ThumbnailURL == "" {
		respondErr(w, r, fmt.Errorf("%w: low or thumb is required", media.ErrValidation))
		return
	}
	res, err := h.Images.Resolve(r.Context(), req)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, http.StatusOK, imageResolution{Resolution: res, LazyMargin: h.Images.Margin()}, start, false)
}
