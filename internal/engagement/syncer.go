// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package engagement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/folio/internal/breaker"
	"github.com/tomtom215/folio/internal/media"
	"github.com/tomtom215/folio/internal/metrics"
)

// SyncerConfig tunes the backend sync worker.
type SyncerConfig struct {
	Breaker     breaker.Config
	CallTimeout time.Duration
}

// DefaultSyncerConfig returns production defaults.
func DefaultSyncerConfig() SyncerConfig {
	return SyncerConfig{
		Breaker:     breaker.DefaultConfig("engagement-backend"),
		CallTimeout: 5 * time.Second,
	}
}

// Syncer applies IncrementRequested events to the backend and settles the
// corresponding ops in the Store.
type Syncer struct {
	store    *Store
	backend  Backend
	notifier Notifier
	cb       *gobreaker.CircuitBreaker[int64]
	cfg      SyncerConfig
	logger   zerolog.Logger
}

// NewSyncer creates a Syncer. notifier may be nil.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSyncer(store *Store, backend Backend, notifier Notifier, cfg SyncerConfig, logger zerolog.Logger) *Syncer {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 5 * time.Second
	}
	return &Syncer{
		store:    store,
		backend:  backend,
		notifier: notifier,
		cb:       breaker.New[int64](cfg.Breaker),
		cfg:      cfg,
		logger:   logger.With().Str("component", "engagement-sync").Logger(),
	}
}

// Handle is the watermill handler. It always acks: failures are recorded on the
// op and retried by the RetryLoop, never by redelivery.
func (s *Syncer) Handle(msg *message.Message) error {
	ev, err := decodeIncrement(msg)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Dropping malformed increment")
		metrics.RecordSync("dropped")
		return nil
	}
	s.Apply(msg.Context(), ev)
	return nil
}

// Apply runs one increment against the backend and settles the op.
func (s *Syncer) Apply(ctx context.Context, ev IncrementRequested) {
	// a redelivered op that already settled must not reach the backend twice
	_, pending, err := s.store.loadOp(ctx, ev.OpID)
	if err != nil {
		s.logger.Warn().Err(err).Str("op_id", ev.OpID).Msg("Failed to load increment, leaving it for retry")
		metrics.RecordSync("deferred")
		return
	}
	if !pending {
		s.logger.Debug().Str("op_id", ev.OpID).Msg("Skipping settled increment")
		metrics.RecordSync("duplicate")
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	value, err := s.cb.Execute(func() (int64, error) {
		return s.backend.IncrementCounter(callCtx, ev.Kind, ev.ItemID, ev.Counter, ev.Delta)
	})

	// settle with a context that outlives the call timeout
	settleCtx := context.WithoutCancel(ctx)
	switch {
	case err == nil:
		if err := s.store.MarkSynced(settleCtx, ev.OpID); err != nil {
			s.logger.Warn().Err(err).Str("op_id", ev.OpID).Msg("Failed to mark increment synced")
		}
		metrics.RecordSync("synced")
		if s.notifier != nil {
			s.notifier.CountsChanged(CountsEvent{ItemID: ev.ItemID, Kind: ev.Kind, Counter: ev.Counter, Value: value})
		}

	case errors.Is(err, media.ErrNotFound), errors.Is(err, media.ErrValidation):
		s.logger.Info().Err(err).Str("op_id", ev.OpID).Str("item_id", ev.ItemID).Msg("Dropping increment for unknown item")
		if err := s.store.Drop(settleCtx, ev.OpID); err != nil {
			s.logger.Warn().Err(err).Str("op_id", ev.OpID).Msg("Failed to drop increment")
		}
		metrics.RecordSync("dropped")

	default:
		s.logger.Warn().Err(err).Str("op_id", ev.OpID).Str("counter", string(ev.Counter)).
			Bool("breaker_open", breaker.IsOpen(err)).Msg("Backend increment failed")
		if err := s.store.MarkUnsynced(settleCtx, ev.OpID, err); err != nil {
			s.logger.Warn().Err(err).Str("op_id", ev.OpID).Msg("Failed to mark increment unsynced")
		}
		metrics.RecordSync("unsynced")
	}
}

// BreakerState exposes the backend breaker state for health checks.
func (s *Syncer) BreakerState() string {
	return s.cb.State().String()
}

// NewRouter wires the Syncer to subscriber on TopicIncrement.
func NewRouter(subscriber message.Subscriber, syncer *Syncer, logger watermill.LoggerAdapter) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}
	router.AddMiddleware(middleware.Recoverer)
	router.AddConsumerHandler("engagement-sync", TopicIncrement, subscriber, syncer.Handle)
	return router, nil
}
