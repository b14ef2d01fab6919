// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

/*
Package api provides the HTTP surface of the gallery.

Routes are served by Chi under /api/v1, plus /ws for live counter updates and
/metrics for Prometheus. Every JSON response uses one envelope:

	{"status": "success", "data": ..., "metadata": {"timestamp": ..., "query_time_ms": 3}}
	{"status": "error", "error": {"code": "UNAUTHORIZED", "message": "...", "details": {"login": "/api/v1/auth/login"}}}

# Middleware Order

Global: request ID, real IP, panic recovery, CORS. Under /api/v1: compression,
security headers, request metrics, authentication (bearer token or session
cookie), the anonymous viewer key, then the per-IP rate limit. Authorization
runs per route group through the Casbin middleware.

# Viewers

Anonymous browsers are identified by the folio_viewer cookie (or the
X-Viewer-ID header for API clients). Likes are deduplicated per signed-in
user, or per viewer key when anonymous.

# Error Mapping

Domain errors map onto statuses in respondErr: unauthenticated 401 with a
login hint, forbidden 403, validation 400, not found 404, conflict 409,
backend unavailable 503, account locked 429 with Retry-After.

# Caching

Item listings are cached for 30 seconds. Engagement counters are always
overlaid from the engagement store, so a cached listing never hides a like
the viewer just made.
*/
package api
