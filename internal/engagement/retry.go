// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package engagement

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// RetryConfig tunes the RetryLoop.
type RetryConfig struct {
	Interval time.Duration
	// StaleAfter is how long a pending op may wait before it is presumed lost
	// (published with no subscriber, or the process died mid-flight).
	StaleAfter time.Duration
	PerSecond  float64
	Burst      int
}

// RetryLoop periodically republishes unsynced and stale pending ops,
// paced by a token bucket so a recovering backend is not flooded.
type RetryLoop struct {
	store     *Store
	publisher message.Publisher
	limiter   *rate.Limiter
	cfg       RetryConfig
	logger    zerolog.Logger
}

// NewRetryLoop creates a RetryLoop.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRetryLoop(store *Store, publisher message.Publisher, cfg RetryConfig, logger zerolog.Logger) *RetryLoop {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 2 * cfg.Interval
	}
	if cfg.PerSecond <= 0 {
		cfg.PerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &RetryLoop{
		store:     store,
		publisher: publisher,
		limiter:   rate.NewLimiter(rate.Limit(cfg.PerSecond), cfg.Burst),
		cfg:       cfg,
		logger:    logger.With().Str("component", "engagement-retry").Logger(),
	}
}

// Serve runs until ctx is cancelled. It implements suture.Service.
func (r *RetryLoop) Serve(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := r.RetryOnce(ctx)
			if err != nil && ctx.Err() == nil {
				r.logger.Warn().Err(err).Msg("Retry pass failed")
			}
			if n > 0 {
				r.logger.Info().Int("republished", n).Msg("Republished unsynced increments")
			}
		}
	}
}

// RetryOnce republishes every due op and returns how many were sent.
func (r *RetryLoop) RetryOnce(ctx context.Context) (int, error) {
	ops, err := r.store.Ops(ctx)
	if err != nil {
		return 0, err
	}
	now := r.store.now().UTC()
	sent := 0
	for i := range ops {
		op := &ops[i]
		due := op.State == StateUnsynced ||
			(op.State == StatePending && now.Sub(op.UpdatedAt) >= r.cfg.StaleAfter)
		if !due {
			continue
		}
		if err := r.limiter.Wait(ctx); err != nil {
			return sent, err
		}
		msg, err := newIncrementMessage(op)
		if err != nil {
			r.logger.Warn().Err(err).Str("op_id", op.ID).Msg("Skipping op")
			continue
		}
		if err := r.publisher.Publish(TopicIncrement, msg); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func (r *RetryLoop) String() string { return "engagement-retry" }
