// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

// Package services adapts blocking components to suture.Service.
//
// Components that already implement Serve(ctx) error and String() (the
// websocket hub, the engagement retry loop, the session janitor) are added to
// the tree directly. This package covers the two that need a wrapper:
// *http.Server, which blocks in ListenAndServe, and watermill routers, which
// cannot be restarted.
package services
