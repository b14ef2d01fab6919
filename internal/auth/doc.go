// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

/*
Package auth signs gallery users in and resolves the viewer of each request.

Key Components:

  - Service: email/password sign-in against the users table (bcrypt), issuing
    an HS256 JWT and a server-side session
  - JWTManager: token generation and validation
  - SessionStore: MemorySessionStore or BadgerSessionStore
  - LockoutManager: locks an email after repeated failed sign-ins
  - Middleware: resolves a Bearer token or the session cookie into a
    media.Viewer; anonymous requests continue as anonymous viewers

A JWT carries the user ID, name and role and is checked without a store
lookup. The session cookie is opaque and can be revoked by SignOut.

Usage:

	svc, err := auth.NewService(db, jwtManager, sessions, lockout, cfg.Security.SessionTimeout, logger)
	mw := auth.NewMiddleware(svc, auth.DefaultCookieConfig(cfg.Security.CookieSecure))

	r.Use(mw.Authenticate)
	r.With(mw.RequireRole(media.RoleAdmin)).Get("/admin/comments", h)

Passwords are hashed with bcrypt at cost 12; HashPassword is also exposed
for the hash-password CLI command.
*/
package auth
