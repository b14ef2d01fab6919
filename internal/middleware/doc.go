// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

/*
Package middleware provides chi-compatible HTTP middleware shared by the API router.

  - RequestID: reuses or generates X-Request-ID and stores it for logging
  - PrometheusMetrics: request count, latency and in-flight gauge per route pattern
  - ViewerKey: anonymous viewer identity (X-Viewer-ID header or folio_viewer cookie)

Typical order inside the router:

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(authMiddleware.Authenticate)
	r.Use(middleware.ViewerKey(cfg.Security.CookieSecure))
*/
package middleware
