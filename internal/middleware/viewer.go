// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/folio/internal/media"
)

const (
	// ViewerHeader lets API clients pin their anonymous identity explicitly.
	ViewerHeader = "X-Viewer-ID"
	// ViewerCookie carries the anonymous identity for browsers.
	ViewerCookie = "folio_viewer"

	viewerCookieTTL = 365 * 24 * time.Hour
	maxViewerKeyLen = 64
)

// ViewerKey attaches the anonymous browser key to the viewer in the request
// context, issuing a cookie on first contact. It must run after the auth
// middleware so a signed-in viewer keeps its identity.
func ViewerKey(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(ViewerHeader)
			if key == "" {
				if c, err := r.Cookie(ViewerCookie); err == nil {
					key = c.Value
				}
			}
			if key == "" || len(key) > maxViewerKeyLen {
				key = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     ViewerCookie,
					Value:    key,
					Path:     "/",
					Expires:  time.Now().Add(viewerCookieTTL),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			viewer := media.ViewerFromContext(r.Context())
			viewer.Key = key
			next.ServeHTTP(w, r.WithContext(media.WithViewer(r.Context(), viewer)))
		})
	}
}
