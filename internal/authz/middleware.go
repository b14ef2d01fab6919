// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package authz

import (
	"errors"
	"net/http"

	"github.com/tomtom215/folio/internal/logging"
	"github.com/tomtom215/folio/internal/media"
)

// DenyFunc writes the response for a rejected request. err wraps
// media.ErrUnauthenticated, media.ErrForbidden or an enforcement failure.
type DenyFunc func(w http.ResponseWriter, r *http.Request, err error)

// Middleware gates chi routes on the viewer stored in the request context.
type Middleware struct {
	enforcer *Enforcer
	deny     DenyFunc
}

// NewMiddleware creates a new authorization middleware. A nil deny writes a
// plain-text error.
func NewMiddleware(enforcer *Enforcer, deny DenyFunc) *Middleware {
	if deny == nil {
		deny = plainDeny
	}
	return &Middleware{enforcer: enforcer, deny: deny}
}

// Require allows the request through only if the viewer may perform action on object.
func (m *Middleware) Require(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := m.enforcer.Authorize(media.ViewerFromContext(r.Context()), object, action); err != nil {
				m.deny(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireObject is Require with the action derived from the HTTP method.
func (m *Middleware) RequireObject(object string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v := media.ViewerFromContext(r.Context())
			if err := m.enforcer.Authorize(v, object, methodToAction(r.Method)); err != nil {
				m.deny(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// methodToAction maps HTTP methods to Casbin actions.
func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ActionRead
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return ActionWrite
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionRead
	}
}

func plainDeny(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, media.ErrUnauthenticated):
		http.Error(w, "Unauthorized: sign in required", http.StatusUnauthorized)
	case errors.Is(err, media.ErrForbidden):
		http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
