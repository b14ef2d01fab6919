// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/folio/internal/logging"
	"github.com/tomtom215/folio/internal/media"
)

// SessionCookie names the session cookie.
const SessionCookie = "folio_session"

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	Name     string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

// DefaultCookieConfig returns an HttpOnly Lax cookie on "/".
func DefaultCookieConfig(secure bool) CookieConfig {
	return CookieConfig{
		Name:     SessionCookie,
		Path:     "/",
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// DenyFunc writes the response for a rejected request. err wraps
// media.ErrUnauthenticated or media.ErrForbidden.
type DenyFunc func(w http.ResponseWriter, r *http.Request, err error)

type sessionIDKey struct{}

// SessionIDFromContext returns the session ID the request authenticated with.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}

// Middleware resolves the viewer of each request.
type Middleware struct {
	svc    *Service
	cookie CookieConfig
	deny   DenyFunc
}

// NewMiddleware creates the auth middleware.
func NewMiddleware(svc *Service, cookie CookieConfig) *Middleware {
	if cookie.Name == "" {
		cookie.Name = SessionCookie
	}
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	return &Middleware{svc: svc, cookie: cookie, deny: plainDeny}
}

// SetDenyFunc replaces the response written by RequireAuth and RequireRole.
func (m *Middleware) SetDenyFunc(deny DenyFunc) {
	if deny != nil {
		m.deny = deny
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Authenticate stores the request's viewer in the context. A Bearer token
// wins over the session cookie. Requests with neither, or with an invalid
// credential, continue as anonymous viewers.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		current := media.ViewerFromContext(ctx)

		var (
			viewer    media.Viewer
			sessionID string
			err       error
		)
		if token := bearerToken(r); token != "" {
			viewer, err = m.svc.ViewerForToken(token)
		} else if c, cerr := r.Cookie(m.cookie.Name); cerr == nil && c.Value != "" {
			sessionID = c.Value
			viewer, err = m.svc.ViewerForSession(ctx, sessionID)
		} else {
			next.ServeHTTP(w, r)
			return
		}

		if err != nil {
			if !errors.Is(err, media.ErrUnauthenticated) {
				logging.Ctx(ctx).Error().Err(err).Msg("Credential lookup error")
			}
			next.ServeHTTP(w, r)
			return
		}

		viewer.Key = current.Key
		ctx = media.WithViewer(ctx, viewer)
		if sessionID != "" {
			ctx = context.WithValue(ctx, sessionIDKey{}, sessionID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects anonymous viewers with 401.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !media.ViewerFromContext(r.Context()).IsAuthenticated() {
			m.deny(w, r, fmt.Errorf("%w: sign in required", media.ErrUnauthenticated))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects anonymous viewers with 401 and viewers without role with 403.
func (m *Middleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v := media.ViewerFromContext(r.Context())
			if !v.IsAuthenticated() {
				m.deny(w, r, fmt.Errorf("%w: sign in required", media.ErrUnauthenticated))
				return
			}
			if !v.HasRole(role) {
				m.deny(w, r, fmt.Errorf("%w: role %s required", media.ErrForbidden, role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SetSessionCookie writes the cookie for a new session.
func (m *Middleware) SetSessionCookie(w http.ResponseWriter, s *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    s.ID,
		Path:     m.cookie.Path,
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: m.cookie.SameSite,
	})
}

// ClearSessionCookie expires the session cookie.
func (m *Middleware) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    "",
		Path:     m.cookie.Path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: m.cookie.SameSite,
	})
}

func plainDeny(w http.ResponseWriter, _ *http.Request, err error) {
	if errors.Is(err, media.ErrForbidden) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
