// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package supervisor

import (
	"errors"
	"log/slog"

	"github.com/thejerf/suture/v4"
)

// Components are the long-running parts of the gallery server. Nil entries
// are skipped, except API which is required.
type Components struct {
	// Data layer.
	RetryLoop suture.Service
	Janitor   suture.Service

	// Messaging layer.
	Hub        suture.Service
	SyncRouter suture.Service

	// API layer.
	API suture.Service
}

// NewGalleryTree builds the supervisor tree and places each component in
// its layer.
func NewGalleryTree(logger *slog.Logger, config TreeConfig, c Components) (*SupervisorTree, error) {
	if c.API == nil {
		return nil, errors.New("supervisor: API service is required")
	}
	tree, err := NewSupervisorTree(logger, config)
	if err != nil {
		return nil, err
	}
	for _, svc := range []suture.Service{c.RetryLoop, c.Janitor} {
		if svc != nil {
			tree.AddDataService(svc)
		}
	}
	for _, svc := range []suture.Service{c.Hub, c.SyncRouter} {
		if svc != nil {
			tree.AddMessagingService(svc)
		}
	}
	tree.AddAPIService(c.API)
	return tree, nil
}
