// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package favorites

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/folio/internal/media"
)

// mockBackend is an in-memory Backend that counts calls.
type mockBackend struct {
	mu        sync.Mutex
	records   map[string]media.FavoriteEntry // by record ID
	nextID    int
	calls     int
	createErr error
	deleteErr error
	listErr   error
}

func newMockBackend() *mockBackend {
	return &mockBackend{records: make(map[string]media.FavoriteEntry)}
}

func (m *mockBackend) ListFavorites(_ context.Context, userID string) ([]media.FavoriteEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []media.FavoriteEntry
	for _, f := range m.records {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockBackend) CreateFavorite(_ context.Context, f *media.FavoriteEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.records {
		if existing.UserID == f.UserID && existing.ItemID == f.ItemID {
			return media.ErrConflict
		}
	}
	m.nextID++
	f.ID = fmt.Sprintf("fav-%d", m.nextID)
	f.CreatedAt = time.Now()
	m.records[f.ID] = *f
	return nil
}

func (m *mockBackend) DeleteFavorite(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.records[id]; !ok {
		return media.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *mockBackend) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockBackend) count(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, f := range m.records {
		if f.UserID == userID {
			n++
		}
	}
	return n
}

func newTestRegistry(t *testing.T, b Backend) *Registry {
	t.Helper()
	r := NewRegistry(b, time.Minute, zerolog.Nop())
	t.Cleanup(r.Close)
	return r
}

func signedIn(userID string) context.Context {
	return media.WithViewer(context.Background(), media.Viewer{UserID: userID, Roles: []string{media.RoleViewer}})
}

func TestRegistry_RequiresSession(t *testing.T) {
	t.Parallel()
	b := newMockBackend()
	r := newTestRegistry(t, b)
	ctx := media.WithViewer(context.Background(), media.Viewer{Key: "anon-browser"})

	if _, err := r.Toggle(ctx, "p1", media.KindPhotography); !errors.Is(err, media.ErrUnauthenticated) {
		t.Errorf("Toggle() error = %v, want ErrUnauthenticated", err)
	}
	if _, err := r.IsFavorite(ctx, "p1"); !errors.Is(err, media.ErrUnauthenticated) {
		t.Errorf("IsFavorite() error = %v, want ErrUnauthenticated", err)
	}
	if _, err := r.List(context.Background()); !errors.Is(err, media.ErrUnauthenticated) {
		t.Errorf("List() error = %v, want ErrUnauthenticated", err)
	}
	if b.callCount() != 0 {
		t.Errorf("backend called %d times without a session", b.callCount())
	}
}

func TestRegistry_ToggleTwiceRestores(t *testing.T) {
	t.Parallel()
	b := newMockBackend()
	r := newTestRegistry(t, b)
	ctx := signedIn("u1")

	on, err := r.Toggle(ctx, "p1", media.KindPhotography)
	if err != nil || !on {
		t.Fatalf("first Toggle() = %v, %v; want true", on, err)
	}
	if fav, _ := r.IsFavorite(ctx, "p1"); !fav {
		t.Error("IsFavorite() = false after add")
	}
	off, err := r.Toggle(ctx, "p1", media.KindPhotography)
	if err != nil || off {
		t.Fatalf("second Toggle() = %v, %v; want false", off, err)
	}
	if fav, _ := r.IsFavorite(ctx, "p1"); fav {
		t.Error("IsFavorite() = true after remove")
	}
	if b.count("u1") != 0 {
		t.Errorf("backend holds %d records, want 0", b.count("u1"))
	}
}

func TestRegistry_EachToggleHitsBackend(t *testing.T) {
	t.Parallel()
	b := newMockBackend()
	r := newTestRegistry(t, b)
	ctx := signedIn("u1")

	if _, err := r.IsFavorite(ctx, "x"); err != nil {
		t.Fatal(err)
	}
	before := b.callCount()
	for i := 0; i < 4; i++ {
		if _, err := r.Toggle(ctx, "d1", media.KindDesign); err != nil {
			t.Fatal(err)
		}
	}
	if got := b.callCount() - before; got != 4 {
		t.Errorf("backend calls = %d, want 4", got)
	}
}

func TestRegistry_UsersAreIsolated(t *testing.T) {
	t.Parallel()
	b := newMockBackend()
	r := newTestRegistry(t, b)

	if _, err := r.Toggle(signedIn("u1"), "p1", media.KindPhotography); err != nil {
		t.Fatal(err)
	}
	if fav, _ := r.IsFavorite(signedIn("u2"), "p1"); fav {
		t.Error("u2 sees u1's favorite")
	}
	list, err := r.List(signedIn("u2"))
	if err != nil || len(list) != 0 {
		t.Errorf("List(u2) = %v, %v", list, err)
	}
}

func TestRegistry_ToggleFailureRefreshes(t *testing.T) {
	t.Parallel()
	b := newMockBackend()
	r := newTestRegistry(t, b)
	ctx := signedIn("u1")

	// Another session adds the favorite behind the registry's back.
	if _, err := r.IsFavorite(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
	if err := b.CreateFavorite(context.Background(), &media.FavoriteEntry{UserID: "u1", ItemID: "p1", ItemKind: media.KindPhotography}); err != nil {
		t.Fatal(err)
	}

	_, err := r.Toggle(ctx, "p1", media.KindPhotography)
	if !errors.Is(err, media.ErrConflict) {
		t.Fatalf("Toggle() error = %v, want ErrConflict", err)
	}
	if fav, _ := r.IsFavorite(ctx, "p1"); !fav {
		t.Error("cache not refreshed after failed toggle")
	}

	off, err := r.Toggle(ctx, "p1", media.KindPhotography)
	if err != nil || off {
		t.Errorf("Toggle() after refresh = %v, %v; want false", off, err)
	}
}

func TestRegistry_BackendDown(t *testing.T) {
	t.Parallel()
	b := newMockBackend()
	r := newTestRegistry(t, b)
	ctx := signedIn("u1")

	b.createErr = media.ErrNetworkFailure
	if _, err := r.Toggle(ctx, "p1", media.KindPhotography); !errors.Is(err, media.ErrNetworkFailure) {
		t.Errorf("Toggle() error = %v, want ErrNetworkFailure", err)
	}
	if b.count("u1") != 0 {
		t.Error("record created despite failure")
	}

	b.listErr = media.ErrNetworkFailure
	r.Invalidate("u1")
	if _, err := r.IsFavorite(ctx, "p1"); !errors.Is(err, media.ErrNetworkFailure) {
		t.Errorf("IsFavorite() error = %v, want ErrNetworkFailure", err)
	}
}

func TestRegistry_ToggleValidation(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t, newMockBackend())
	ctx := signedIn("u1")
	if _, err := r.Toggle(ctx, "", media.KindDesign); !errors.Is(err, media.ErrValidation) {
		t.Errorf("empty item: error = %v", err)
	}
	if _, err := r.Toggle(ctx, "x", media.Kind("blog")); !errors.Is(err, media.ErrValidation) {
		t.Errorf("bad kind: error = %v", err)
	}
}

func TestRegistry_ConcurrentTogglesSerialize(t *testing.T) {
	t.Parallel()
	b := newMockBackend()
	r := newTestRegistry(t, b)
	ctx := signedIn("u1")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Toggle(ctx, "p1", media.KindPhotography); err != nil {
				t.Errorf("Toggle() error = %v", err)
			}
		}()
	}
	wg.Wait()
	// Even number of flips ends where it started.
	if fav, _ := r.IsFavorite(ctx, "p1"); fav {
		t.Error("favorite left on after 10 toggles")
	}
	if b.count("u1") != 0 {
		t.Errorf("backend holds %d records", b.count("u1"))
	}
}
