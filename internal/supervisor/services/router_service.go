// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package services

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
)

// RouterFactory builds a fresh watermill router. A router cannot be run
// twice, so every restart gets a new one.
type RouterFactory func() (*message.Router, error)

// MessageRouterService runs a watermill router under suture.
type MessageRouterService struct {
	build RouterFactory
	name  string
}

// NewMessageRouterService creates the service. name shows up in supervisor logs.
func NewMessageRouterService(name string, build RouterFactory) *MessageRouterService {
	return &MessageRouterService{build: build, name: name}
}

// Serve builds a router and runs it until ctx is canceled or the router stops.
func (s *MessageRouterService) Serve(ctx context.Context) error {
	router, err := s.build()
	if err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	defer func() { _ = router.Close() }()

	if err := router.Run(ctx); err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	// The router stopped on its own, e.g. its subscriber closed. Let suture restart it.
	return fmt.Errorf("%s: router stopped", s.name)
}

func (s *MessageRouterService) String() string { return s.name }
