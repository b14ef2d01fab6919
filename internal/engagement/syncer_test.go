// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package engagement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/folio/internal/breaker"
	"github.com/tomtom215/folio/internal/media"
)

// mockBackend keeps counters in memory. err, when set, is returned by every call.
type mockBackend struct {
	mu     sync.Mutex
	counts map[string]int64
	calls  int
	err    error
}

func newMockBackend() *mockBackend {
	return &mockBackend{counts: make(map[string]int64)}
}

func (m *mockBackend) IncrementCounter(_ context.Context, kind media.Kind, id string, counter media.Counter, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	key := fmt.Sprintf("%s/%s/%s", kind, id, counter)
	m.counts[key] += delta
	return m.counts[key], nil
}

func (m *mockBackend) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *mockBackend) get(kind media.Kind, id string, counter media.Counter) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[fmt.Sprintf("%s/%s/%s", kind, id, counter)]
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []CountsEvent
}

func (n *recordingNotifier) CountsChanged(ev CountsEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func testSyncerConfig(name string) SyncerConfig {
	cfg := DefaultSyncerConfig()
	cfg.Breaker = breaker.DefaultConfig(name)
	cfg.CallTimeout = time.Second
	return cfg
}

func pendingEvent(t *testing.T, s *Store) IncrementRequested {
	t.Helper()
	ops, err := s.Ops(context.Background())
	if err != nil || len(ops) != 1 {
		t.Fatalf("Ops() = %v, %v; want one op", ops, err)
	}
	op := ops[0]
	return IncrementRequested{
		OpID: op.ID, Action: op.Action, ItemID: op.ItemID, Kind: op.Kind,
		Counter: op.Counter, Delta: op.Delta, RequestedAt: op.RequestedAt,
	}
}

func TestSyncer_Apply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		backendErr error
		wantOps    int
		wantState  SyncState
		wantNotify int
		wantDelta  int64
	}{
		{name: "success", wantOps: 0, wantNotify: 1},
		{name: "item gone", backendErr: fmt.Errorf("increment: %w", media.ErrNotFound), wantOps: 0},
		{name: "backend down", backendErr: errors.New("connection refused"), wantOps: 1, wantState: StateUnsynced, wantDelta: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := newTestStore(t, nil, DefaultStoreConfig())
			backend := newMockBackend()
			backend.setErr(tt.backendErr)
			notifier := &recordingNotifier{}
			syncer := NewSyncer(store, backend, notifier, testSyncerConfig("apply-"+tt.name), zerolog.Nop())

			ctx := context.Background()
			if _, err := store.Like(ctx, "anon:v", "d1", media.KindDesign); err != nil {
				t.Fatal(err)
			}
			syncer.Apply(ctx, pendingEvent(t, store))

			ops, _ := store.Ops(ctx)
			if len(ops) != tt.wantOps {
				t.Fatalf("Ops() len = %d, want %d", len(ops), tt.wantOps)
			}
			if tt.wantOps == 1 && ops[0].State != tt.wantState {
				t.Errorf("op state = %q, want %q", ops[0].State, tt.wantState)
			}
			if notifier.len() != tt.wantNotify {
				t.Errorf("notifications = %d, want %d", notifier.len(), tt.wantNotify)
			}
			// a failed sync keeps the optimistic delta; a settled one hands it to the backend
			if got := store.Delta("d1").Likes; got != tt.wantDelta {
				t.Errorf("delta likes = %d, want %d", got, tt.wantDelta)
			}
		})
	}
}

func TestSyncer_ConfirmedLikeCountsOnce(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, nil, DefaultStoreConfig())
	backend := newMockBackend()
	syncer := NewSyncer(store, backend, nil, testSyncerConfig("confirmed-once"), zerolog.Nop())
	ctx := context.Background()

	if _, err := store.Like(ctx, "anon:a", "p1", media.KindPhotography); err != nil {
		t.Fatal(err)
	}
	syncer.Apply(ctx, pendingEvent(t, store))

	item := &media.MediaItem{ID: "p1", Kind: media.KindPhotography,
		LikeCount: backend.get(media.KindPhotography, "p1", media.CounterLikes)}
	if got := store.Counts(item).Likes; got != 1 {
		t.Errorf("Counts().Likes = %d after one confirmed like, want 1", got)
	}
	if d := store.Delta("p1"); d != (Counts{}) {
		t.Errorf("Delta() = %+v after sync, want zero", d)
	}
}

func TestSyncer_DuplicateDeliveryIncrementsOnce(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, nil, DefaultStoreConfig())
	backend := newMockBackend()
	syncer := NewSyncer(store, backend, nil, testSyncerConfig("duplicate"), zerolog.Nop())
	ctx := context.Background()

	if _, err := store.View(ctx, "anon:a", "p1", media.KindPhotography); err != nil {
		t.Fatal(err)
	}
	ev := pendingEvent(t, store)
	syncer.Apply(ctx, ev)
	syncer.Apply(ctx, ev)

	if got := backend.get(media.KindPhotography, "p1", media.CounterViews); got != 1 {
		t.Errorf("backend views = %d, want 1", got)
	}
	if backend.calls != 1 {
		t.Errorf("backend calls = %d, want 1", backend.calls)
	}
}

func TestSyncer_SettleAfterRefresh(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, nil, DefaultStoreConfig())
	backend := newMockBackend()
	syncer := NewSyncer(store, backend, nil, testSyncerConfig("settle-refresh"), zerolog.Nop())
	ctx := context.Background()

	if _, err := store.Share(ctx, "anon:a", "d2", media.KindDesign, "https://x/d2", nil, nil); err != nil {
		t.Fatal(err)
	}
	ev := pendingEvent(t, store)
	store.Refresh("d2")
	syncer.Apply(ctx, ev)

	if d := store.Delta("d2"); d != (Counts{}) {
		t.Errorf("Delta() = %+v, want zero", d)
	}
}

func TestSyncer_HandleMalformedMessage(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, nil, DefaultStoreConfig())
	backend := newMockBackend()
	syncer := NewSyncer(store, backend, nil, testSyncerConfig("malformed"), zerolog.Nop())

	for _, payload := range []string{"not json", `{"op_id":"x","item_id":"y","counter":"bogus"}`} {
		if err := syncer.Handle(message.NewMessage(watermill.NewUUID(), []byte(payload))); err != nil {
			t.Errorf("Handle(%q) error = %v, want nil", payload, err)
		}
	}
	if backend.calls != 0 {
		t.Errorf("backend called %d times for malformed input", backend.calls)
	}
}

func TestSyncer_BreakerOpensOnRepeatedFailure(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, nil, DefaultStoreConfig())
	backend := newMockBackend()
	backend.setErr(errors.New("503"))
	cfg := testSyncerConfig("trip-test")
	cfg.Breaker.FailureThreshold = 2
	syncer := NewSyncer(store, backend, nil, cfg, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, err := store.View(ctx, "anon:v", "p1", media.KindPhotography); err != nil {
			t.Fatal(err)
		}
	}
	ops, _ := store.Ops(ctx)
	for _, op := range ops {
		syncer.Apply(ctx, IncrementRequested{OpID: op.ID, ItemID: op.ItemID, Kind: op.Kind, Counter: op.Counter, Delta: op.Delta})
	}

	if syncer.BreakerState() != "open" {
		t.Errorf("BreakerState() = %q, want open", syncer.BreakerState())
	}
	if backend.calls != 2 {
		t.Errorf("backend calls = %d, want 2 before the breaker opened", backend.calls)
	}
	ops, _ = store.Ops(ctx)
	for _, op := range ops {
		if op.State != StateUnsynced {
			t.Errorf("op %s state = %q, want unsynced", op.ID, op.State)
		}
	}
}

func TestRetryLoop_RetryOnce(t *testing.T) {
	t.Parallel()
	pub := &recordingPublisher{failWith: errors.New("down")}
	store := newTestStore(t, pub, DefaultStoreConfig())
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })
	ctx := context.Background()

	// one unsynced op (publish failed)
	if _, err := store.Like(ctx, "anon:a", "p1", media.KindPhotography); err != nil {
		t.Fatal(err)
	}
	// one pending op (publish succeeded)
	pub.mu.Lock()
	pub.failWith = nil
	pub.mu.Unlock()
	if _, err := store.View(ctx, "anon:a", "p2", media.KindPhotography); err != nil {
		t.Fatal(err)
	}

	retryPub := &recordingPublisher{}
	loop := NewRetryLoop(store, retryPub, RetryConfig{Interval: time.Minute, PerSecond: 1000, Burst: 10}, zerolog.Nop())

	n, err := loop.RetryOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("RetryOnce() = %d, want 1 (only the unsynced op)", n)
	}

	// once stale, the pending op is presumed lost and republished too
	now = now.Add(3 * time.Minute)
	n, err = loop.RetryOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("RetryOnce() after stale = %d, want 2", n)
	}
	if loop.String() != "engagement-retry" {
		t.Errorf("String() = %q", loop.String())
	}
}

func TestEngagement_EndToEnd(t *testing.T) {
	t.Parallel()
	wmLogger := watermill.NopLogger{}
	bus := NewBus(wmLogger)
	defer bus.Close()

	store := NewStore(NewMemoryKV(), bus, DefaultStoreConfig(), zerolog.Nop())
	backend := newMockBackend()
	notifier := &recordingNotifier{}
	syncer := NewSyncer(store, backend, notifier, testSyncerConfig("e2e"), zerolog.Nop())

	router, err := NewRouter(bus, syncer, wmLogger)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = router.Run(ctx) }()
	<-router.Running()
	defer router.Close()

	if _, err := store.Like(ctx, "user:u1", "d7", media.KindDesign); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Like(ctx, "user:u1", "d7", media.KindDesign); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Share(ctx, "user:u1", "d7", media.KindDesign, "https://x/d7", nil, nil); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		ops, _ := store.Ops(ctx)
		if len(ops) == 0 && notifier.len() == 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if got := backend.get(media.KindDesign, "d7", media.CounterLikes); got != 1 {
		t.Errorf("backend likes = %d, want 1", got)
	}
	if got := backend.get(media.KindDesign, "d7", media.CounterShares); got != 1 {
		t.Errorf("backend shares = %d, want 1", got)
	}
	if ops, _ := store.Ops(ctx); len(ops) != 0 {
		t.Errorf("unsettled ops: %+v", ops)
	}
	if state := likeState(t, store, "user:u1", "d7"); state != StateSynced {
		t.Errorf("like state = %q, want synced", state)
	}
}
