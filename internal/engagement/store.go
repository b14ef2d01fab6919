// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package engagement

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/folio/internal/media"
	"github.com/tomtom215/folio/internal/metrics"
)

const (
	likedPrefix = "liked:"
	opPrefix    = "op:"
)

func likedKey(viewerKey, itemID string) string {
	return likedPrefix + viewerKey + "/" + itemID
}

func opKey(id string) string {
	return opPrefix + id
}

// StoreConfig tunes the Store.
type StoreConfig struct {
	// ShareCooldown suppresses the counter increment of repeated shares of the
	// same item by the same viewer. Zero disables it.
	ShareCooldown  time.Duration
	ShareTitle     string
	ShareText      string
	ClipboardToast string
}

// DefaultStoreConfig returns the copy used by the gallery.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		ShareTitle:     "Check out this portfolio item!",
		ShareText:      "I found this amazing work on the portfolio",
		ClipboardToast: "Link copied! The link was copied to your clipboard.",
	}
}

// Store owns liked flags, pending increments and optimistic deltas.
//
// Writes follow a two-phase commit: the local side (flag, op record, delta) is
// applied immediately and an IncrementRequested event is published; the Syncer
// later confirms or fails the op against the backend. Backend failures never
// reach the caller and the optimistic delta is not rolled back; it is released
// once the backend confirms the increment.
type Store struct {
	kv        KVStore
	publisher message.Publisher
	cfg       StoreConfig
	logger    zerolog.Logger
	now       func() time.Time

	mu        sync.Mutex
	deltas    map[string]Counts
	lastShare map[string]time.Time
}

// NewStore creates a Store. publisher may be nil, in which case ops stay
// pending until the retry loop republishes them.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewStore(kv KVStore, publisher message.Publisher, cfg StoreConfig, logger zerolog.Logger) *Store {
	return &Store{
		kv:        kv,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger.With().Str("component", "engagement").Logger(),
		now:       time.Now,
		deltas:    make(map[string]Counts),
		lastShare: make(map[string]time.Time),
	}
}

// SetClock replaces the time source. Used by tests.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func checkTarget(itemID string, kind media.Kind) error {
	if strings.TrimSpace(itemID) == "" {
		return fmt.Errorf("%w: item id is required", media.ErrValidation)
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown item kind %q", media.ErrValidation, kind)
	}
	return nil
}

// Like records a like by viewerKey. Liking an already liked item is a no-op.
func (s *Store) Like(ctx context.Context, viewerKey, itemID string, kind media.Kind) (LikeResult, error) {
	if err := checkTarget(itemID, kind); err != nil {
		return LikeResult{}, err
	}
	if viewerKey == "" {
		return LikeResult{}, fmt.Errorf("%w: viewer key is required", media.ErrValidation)
	}

	op := s.newOp(ActionLike, viewerKey, itemID, kind, media.CounterLikes)
	entry := LikeEntry{ItemID: itemID, Kind: kind, LikedAt: op.RequestedAt, OpID: op.ID, State: StatePending}
	raw, err := json.Marshal(entry)
	if err != nil {
		return LikeResult{}, fmt.Errorf("encode like: %w", err)
	}

	created, err := s.kv.SetNX(ctx, likedKey(viewerKey, itemID), raw)
	if err != nil {
		metrics.RecordEngagement(ActionLike, "error")
		return LikeResult{}, fmt.Errorf("store liked flag: %w", err)
	}
	if !created {
		metrics.RecordEngagement(ActionLike, "duplicate")
		return LikeResult{Liked: true, AlreadyLiked: true, Delta: s.Delta(itemID)}, nil
	}

	s.commit(ctx, &op)
	metrics.RecordEngagement(ActionLike, "applied")
	return LikeResult{Liked: true, Delta: s.Delta(itemID)}, nil
}

// IsLiked reports whether viewerKey has liked itemID.
func (s *Store) IsLiked(ctx context.Context, viewerKey, itemID string) (bool, error) {
	if viewerKey == "" {
		return false, nil
	}
	_, ok, err := s.kv.Get(ctx, likedKey(viewerKey, itemID))
	if err != nil {
		return false, fmt.Errorf("read liked flag: %w", err)
	}
	return ok, nil
}

// LikedItems lists the item IDs liked by viewerKey.
func (s *Store) LikedItems(ctx context.Context, viewerKey string) ([]string, error) {
	if viewerKey == "" {
		return nil, nil
	}
	prefix := likedPrefix + viewerKey + "/"
	keys, err := s.kv.Keys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, prefix))
	}
	return ids, nil
}

// Share increments the share counter and hands pageURL to the native share
// target, falling back to the clipboard when native sharing is unavailable.
// A failed native share is reported in the result, not as an error.
func (s *Store) Share(ctx context.Context, viewerKey, itemID string, kind media.Kind, pageURL string,
	target ShareTarget, clipboard Clipboard) (ShareResult, error) {
	if err := checkTarget(itemID, kind); err != nil {
		return ShareResult{}, err
	}
	if strings.TrimSpace(pageURL) == "" {
		return ShareResult{}, fmt.Errorf("%w: page url is required", media.ErrValidation)
	}

	counted := s.allowShare(viewerKey, itemID)
	if counted {
		op := s.newOp(ActionShare, viewerKey, itemID, kind, media.CounterShares)
		s.commit(ctx, &op)
		metrics.RecordEngagement(ActionShare, "applied")
	} else {
		metrics.RecordEngagement(ActionShare, "throttled")
	}

	res := ShareResult{
		Content: ShareContent{Title: s.cfg.ShareTitle, Text: s.cfg.ShareText, URL: pageURL},
		Counted: counted,
	}
	if target != nil && target.Available() {
		res.Method = ShareNative
		if err := target.Share(ctx, res.Content); err != nil {
			s.logger.Debug().Err(err).Str("item_id", itemID).Msg("Native share failed")
			res.ShareErr = err.Error()
		}
	} else {
		res.Method = ShareClipboard
		res.Toast = s.cfg.ClipboardToast
		if clipboard != nil {
			if err := clipboard.WriteText(ctx, pageURL); err != nil {
				s.logger.Debug().Err(err).Str("item_id", itemID).Msg("Clipboard copy failed")
				res.ShareErr = err.Error()
				res.Toast = ""
			}
		}
	}
	res.Delta = s.Delta(itemID)
	return res, nil
}

func (s *Store) allowShare(viewerKey, itemID string) bool {
	if s.cfg.ShareCooldown <= 0 || viewerKey == "" {
		return true
	}
	key := viewerKey + "/" + itemID
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.lastShare[key]; ok && now.Sub(last) < s.cfg.ShareCooldown {
		return false
	}
	s.lastShare[key] = now
	return true
}

// View increments the view counter. Views are not deduplicated.
func (s *Store) View(ctx context.Context, viewerKey, itemID string, kind media.Kind) (Counts, error) {
	if err := checkTarget(itemID, kind); err != nil {
		return Counts{}, err
	}
	op := s.newOp(ActionView, viewerKey, itemID, kind, media.CounterViews)
	s.commit(ctx, &op)
	metrics.RecordEngagement(ActionView, "applied")
	return s.Delta(itemID), nil
}

// Counts overlays the optimistic delta on the item's authoritative counters.
func (s *Store) Counts(item *media.MediaItem) Counts {
	return CountsOf(item).add(s.Delta(item.ID))
}

// Delta returns the optimistic delta for itemID.
func (s *Store) Delta(itemID string) Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deltas[itemID]
}

// Refresh discards the optimistic delta after an authoritative read.
func (s *Store) Refresh(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deltas, itemID)
}

// release removes a settled op's share of the optimistic delta. Once the
// backend holds the increment, the stored counter already includes it.
func (s *Store) release(op *Op) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deltas[op.ItemID]
	if !ok {
		return
	}
	d.bump(op.Counter, -op.Delta)
	d = d.floor()
	if d.zero() {
		delete(s.deltas, op.ItemID)
		return
	}
	s.deltas[op.ItemID] = d
}

func (s *Store) newOp(action, viewerKey, itemID string, kind media.Kind, counter media.Counter) Op {
	now := s.now().UTC()
	return Op{
		ID:          uuid.NewString(),
		Action:      action,
		ViewerKey:   viewerKey,
		ItemID:      itemID,
		Kind:        kind,
		Counter:     counter,
		Delta:       1,
		State:       StatePending,
		RequestedAt: now,
		UpdatedAt:   now,
	}
}

// commit applies the local half of an increment and publishes it.
func (s *Store) commit(ctx context.Context, op *Op) {
	if err := s.saveOp(ctx, op); err != nil {
		s.logger.Warn().Err(err).Str("op_id", op.ID).Msg("Failed to persist pending increment")
	}

	s.mu.Lock()
	d := s.deltas[op.ItemID]
	d.bump(op.Counter, op.Delta)
	s.deltas[op.ItemID] = d
	s.mu.Unlock()

	if err := s.publish(op); err != nil {
		s.logger.Warn().Err(err).Str("op_id", op.ID).Msg("Failed to publish increment, queued for retry")
		if mErr := s.MarkUnsynced(ctx, op.ID, err); mErr != nil {
			s.logger.Warn().Err(mErr).Str("op_id", op.ID).Msg("Failed to mark increment unsynced")
		}
	}
}

func (s *Store) publish(op *Op) error {
	if s.publisher == nil {
		return nil
	}
	msg, err := newIncrementMessage(op)
	if err != nil {
		return err
	}
	return s.publisher.Publish(TopicIncrement, msg)
}

func (s *Store) saveOp(ctx context.Context, op *Op) error {
	raw, err := json.Marshal(op)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, opKey(op.ID), raw)
}

func (s *Store) loadOp(ctx context.Context, id string) (*Op, bool, error) {
	raw, ok, err := s.kv.Get(ctx, opKey(id))
	if err != nil || !ok {
		return nil, ok, err
	}
	var op Op
	if err := json.Unmarshal(raw, &op); err != nil {
		return nil, false, fmt.Errorf("decode op %s: %w", id, err)
	}
	return &op, true, nil
}

func (s *Store) setLikeState(ctx context.Context, op *Op, state SyncState) error {
	if op.Action != ActionLike || op.ViewerKey == "" {
		return nil
	}
	key := likedKey(op.ViewerKey, op.ItemID)
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil || !ok {
		return err
	}
	var entry LikeEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return fmt.Errorf("decode like %s: %w", key, err)
	}
	entry.State = state
	if raw, err = json.Marshal(entry); err != nil {
		return err
	}
	return s.kv.Set(ctx, key, raw)
}

// MarkSynced completes an op after the backend confirmed it.
func (s *Store) MarkSynced(ctx context.Context, opID string) error {
	op, ok, err := s.loadOp(ctx, opID)
	if err != nil {
		return err
	}
	if !ok {
		return nil // already completed, e.g. a duplicate delivery
	}
	if op.State == StateUnsynced {
		metrics.EngagementUnsynced.Dec()
	}
	if err := s.setLikeState(ctx, op, StateSynced); err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, opKey(opID)); err != nil {
		return err
	}
	s.release(op)
	return nil
}

// MarkUnsynced records a failed backend attempt; the retry loop picks it up.
func (s *Store) MarkUnsynced(ctx context.Context, opID string, cause error) error {
	op, ok, err := s.loadOp(ctx, opID)
	if err != nil || !ok {
		return err
	}
	if op.State != StateUnsynced {
		metrics.EngagementUnsynced.Inc()
	}
	op.State = StateUnsynced
	op.Attempts++
	op.UpdatedAt = s.now().UTC()
	if cause != nil {
		op.LastError = cause.Error()
	}
	if err := s.setLikeState(ctx, op, StateUnsynced); err != nil {
		return err
	}
	return s.saveOp(ctx, op)
}

// Drop discards an op the backend can never apply (the item is gone).
func (s *Store) Drop(ctx context.Context, opID string) error {
	op, ok, err := s.loadOp(ctx, opID)
	if err != nil || !ok {
		return err
	}
	if op.State == StateUnsynced {
		metrics.EngagementUnsynced.Dec()
	}
	if err := s.kv.Delete(ctx, opKey(opID)); err != nil {
		return err
	}
	s.release(op)
	return nil
}

// Ops returns every op that is not yet confirmed.
func (s *Store) Ops(ctx context.Context) ([]Op, error) {
	keys, err := s.kv.Keys(ctx, opPrefix)
	if err != nil {
		return nil, err
	}
	ops := make([]Op, 0, len(keys))
	for _, k := range keys {
		op, ok, err := s.loadOp(ctx, strings.TrimPrefix(k, opPrefix))
		if err != nil {
			s.logger.Warn().Err(err).Str("key", k).Msg("Skipping unreadable op")
			continue
		}
		if ok {
			ops = append(ops, *op)
		}
	}
	return ops, nil
}
