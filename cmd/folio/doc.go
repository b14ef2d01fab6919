// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

// Command folio runs the portfolio gallery server and its maintenance tools.
//
// # Commands
//
//	folio serve                          HTTP API, websocket hub and background workers
//	folio import pocketbase --path FILE  migrate a PocketBase data.db
//	folio recommend [--kind K] [-k N]    rank stored items with the live weights
//	folio hash-password [PASSWORD]       print a bcrypt hash
//
// # Startup Order
//
// serve wires components in dependency order:
//
//  1. Configuration (koanf: defaults, config.yaml, environment; .env is loaded first)
//  2. DuckDB item, comment, favorite and user tables
//  3. Engagement KV store (memory, badger, file or redis) and the watermill bus
//  4. Sessions, lockout, JWT and the bootstrap admin
//  5. Casbin enforcer, favorites registry, comment service, image tiers, recommender
//  6. HTTP router
//  7. Supervisor tree: data, messaging and API layers
//
// # Configuration
//
// In development an empty JWT_SECRET is replaced by a random one, so tokens
// do not survive a restart. Outside development a 32+ character secret is
// required.
//
//	export JWT_SECRET=$(openssl rand -base64 32)
//	export ADMIN_EMAIL=me@example.com ADMIN_PASSWORD=change-me-now
//	export FILE_BASE_URL=https://pb.example.com
//	folio serve
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
// server first (draining in-flight requests up to SHUTDOWN_TIMEOUT), then the
// workers; services that miss the deadline are logged.
package main
