// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/folio/internal/auth"
	"github.com/tomtom215/folio/internal/logging"
	"github.com/tomtom215/folio/internal/media"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type meResponse struct {
	Authenticated bool         `json:"authenticated"`
	Viewer        media.Viewer `json:"user"`
	Role          string       `json:"role"`
}

// Login handles POST /api/v1/auth/login. It returns a bearer token and sets
// the session cookie, so browsers and API clients share one endpoint.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}
	res, err := h.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	h.AuthMW.SetSessionCookie(w, res.Session)
	respondData(w, http.StatusOK, res, start, false)
}

// Logout handles POST /api/v1/auth/logout. It always clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.SignOut(r.Context(), auth.SessionIDFromContext(r.Context())); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Sign out failed")
	}
	h.AuthMW.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/auth/me. Anonymous callers get authenticated=false
// rather than an error.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	v := media.ViewerFromContext(r.Context())
	respondData(w, http.StatusOK, meResponse{
		Authenticated: v.IsAuthenticated(),
		Viewer:        v,
		Role:          v.PrimaryRole(),
	}, start, false)
}
