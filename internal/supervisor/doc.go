// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

/*
Package supervisor runs the gallery server's long-lived services under a
suture v4 supervisor tree.

	folio
	├── data-layer
	│   ├── engagement-retry   republishes unsynced counter increments
	│   └── session-janitor    expires sessions and lockout entries
	├── messaging-layer
	│   ├── websocket-hub      fans counter and comment events out to clients
	│   └── engagement-sync    watermill router feeding the Syncer
	└── api-layer
	    └── http-server

Each layer is its own supervisor, so a sync router that keeps crashing backs
off inside the messaging layer while the HTTP server keeps serving.

Supervisor events are logged through sutureslog; pass a *slog.Logger built
with logging.NewSlogLogger to route them into zerolog.

# Usage

	tree, err := supervisor.NewGalleryTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig(), supervisor.Components{
	    RetryLoop:  retryLoop,
	    Janitor:    janitor,
	    Hub:        hub,
	    SyncRouter: services.NewMessageRouterService("engagement-sync", buildRouter),
	    API:        services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout),
	})
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}
*/
package supervisor
