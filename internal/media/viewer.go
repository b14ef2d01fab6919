// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package media

import "context"

// Role names used by the authorization policy.
const (
	RoleAnonymous = "anonymous"
	RoleViewer    = "viewer"
	RoleAdmin     = "admin"
)

// Viewer is the caller of a gallery operation. The zero value is an anonymous viewer.
type Viewer struct {
	UserID string   `json:"user_id,omitempty"`
	Name   string   `json:"name,omitempty"`
	Email  string   `json:"email,omitempty"`
	Roles  []string `json:"roles,omitempty"`

	// Key identifies an anonymous browser for like deduplication.
	Key string `json:"-"`
}

// IsAuthenticated reports whether the viewer holds a signed-in session.
func (v Viewer) IsAuthenticated() bool {
	return v.UserID != ""
}

// HasRole reports whether the viewer carries role.
func (v Viewer) HasRole(role string) bool {
	for _, r := range v.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the viewer is a signed-in admin.
func (v Viewer) IsAdmin() bool {
	return v.IsAuthenticated() && v.HasRole(RoleAdmin)
}

// PrimaryRole returns the role used for policy checks.
func (v Viewer) PrimaryRole() string {
	switch {
	case !v.IsAuthenticated():
		return RoleAnonymous
	case v.HasRole(RoleAdmin):
		return RoleAdmin
	default:
		return RoleViewer
	}
}

// EngagementKey returns the key that deduplicates likes for this viewer:
// the user ID when signed in, otherwise the anonymous browser key.
func (v Viewer) EngagementKey() string {
	if v.UserID != "" {
		return "user:" + v.UserID
	}
	if v.Key != "" {
		return "anon:" + v.Key
	}
	return ""
}

type viewerKey struct{}

// WithViewer stores the viewer in ctx.
func WithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, v)
}

// ViewerFromContext returns the viewer stored in ctx, or an anonymous viewer.
func ViewerFromContext(ctx context.Context) Viewer {
	if v, ok := ctx.Value(viewerKey{}).(Viewer); ok {
		return v
	}
	return Viewer{}
}
