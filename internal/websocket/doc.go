// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

/*
Package websocket pushes live gallery updates to connected browsers.

Key Components:

  - Hub: tracks clients and fans out messages; runs under suture via Serve
  - client: one viewer connection; a read loop answers pings, a write loop
    sends broadcasts and keepalives
  - Handler: upgrades /api/v1/ws requests after an origin check

Message Types:

  - engagement_update: a confirmed counter value (engagement.CountsEvent)
  - comment_approved: a comment became public
  - ping / pong: client keepalive

The hub implements engagement.Notifier, so the sync worker reports counter
changes directly:

	hub := websocket.NewHub()
	syncer := engagement.NewSyncer(store, db, hub, cfg, logger)
	r.Handle("/ws", websocket.NewHandler(hub, cfg.Security.CORSOrigins))

Broadcasts never block. A client whose send buffer is full is disconnected.
*/
package websocket
