// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package database

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/folio/internal/config"
	"github.com/tomtom215/folio/internal/media"
)

// testDBSemaphore serializes DuckDB tests; concurrent CGO instances are memory hungry.
var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB"}, "https://files.example")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedItem(t *testing.T, db *DB, id string, kind media.Kind, category string, created time.Time) {
	t.Helper()
	item := &media.MediaItem{
		ID:        id,
		Kind:      kind,
		Title:     "Item " + id,
		URLs:      []string{"https://files.example/" + id + ".jpg"},
		Category:  category,
		Tags:      []string{"a", "b"},
		CreatedAt: created,
	}
	if err := db.UpsertItem(context.Background(), item); err != nil {
		t.Fatalf("UpsertItem(%s) error = %v", id, err)
	}
}

func TestItems_CRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	seedItem(t, db, "p1", media.KindPhotography, "Portrait", now.Add(-2*time.Hour))
	seedItem(t, db, "p2", media.KindPhotography, "landscape", now.Add(-1*time.Hour))
	seedItem(t, db, "d1", media.KindDesign, "Branding", now)

	got, err := db.GetItem(ctx, "p1")
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if got.Kind != media.KindPhotography || len(got.Tags) != 2 || got.PrimaryURL() == "" {
		t.Errorf("GetItem() = %+v", got)
	}

	all, err := db.ListItems(ctx, ItemFilter{})
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if len(all) != 3 || all[0].ID != "d1" {
		t.Errorf("ListItems() newest first: got %d items, first %q", len(all), all[0].ID)
	}

	photos, err := db.ListItems(ctx, ItemFilter{Kind: media.KindPhotography, Category: "PORTRAIT"})
	if err != nil {
		t.Fatalf("ListItems(filter) error = %v", err)
	}
	if len(photos) != 1 || photos[0].ID != "p1" {
		t.Errorf("ListItems(filter) = %v", photos)
	}

	if err := db.DeleteItem(ctx, "p2"); err != nil {
		t.Fatalf("DeleteItem() error = %v", err)
	}
	if _, err := db.GetItem(ctx, "p2"); !errors.Is(err, media.ErrNotFound) {
		t.Errorf("GetItem(deleted) error = %v, want ErrNotFound", err)
	}
	if err := db.DeleteItem(ctx, "p2"); !errors.Is(err, media.ErrNotFound) {
		t.Errorf("DeleteItem(missing) error = %v, want ErrNotFound", err)
	}
}

func TestListItems_Query(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	items := []media.MediaItem{
		{ID: "p1", Kind: media.KindPhotography, Title: "Sunset Dunes", Category: "landscape",
			URLs: []string{"https://files.example/p1.jpg"}, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "p2", Kind: media.KindPhotography, Title: "Market", Description: "Morning light over the dunes",
			Category: "street", URLs: []string{"https://files.example/p2.jpg"}, CreatedAt: now.Add(-time.Hour)},
		{ID: "d1", Kind: media.KindDesign, Title: "Brand kit", Category: "Dune Studio",
			URLs: []string{"https://files.example/d1.png"}, CreatedAt: now},
		{ID: "d2", Kind: media.KindDesign, Title: "50% off poster", Category: "print",
			URLs: []string{"https://files.example/d2.png"}, CreatedAt: now},
	}
	for i := range items {
		if err := db.UpsertItem(ctx, &items[i]); err != nil {
			t.Fatalf("UpsertItem(%s) error = %v", items[i].ID, err)
		}
	}

	tests := []struct {
		name   string
		filter ItemFilter
		want   []string
	}{
		{"title, description and category", ItemFilter{Query: "DUNE"}, []string{"d1", "p2", "p1"}},
		{"kind restricts", ItemFilter{Query: "dune", Kind: media.KindPhotography}, []string{"p2", "p1"}},
		{"percent is literal", ItemFilter{Query: "50%"}, []string{"d2"}},
		{"lone percent matches literally", ItemFilter{Query: "%"}, []string{"d2"}},
		{"underscore is literal", ItemFilter{Query: "_"}, nil},
		{"no match", ItemFilter{Query: "zebra"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.ListItems(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListItems() error = %v", err)
			}
			ids := make([]string, 0, len(got))
			for _, it := range got {
				ids = append(ids, it.ID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.want, ",") {
				t.Errorf("ListItems(%+v) = %v, want %v", tt.filter, ids, tt.want)
			}
		})
	}

	got, err := db.GetItem(ctx, "p2")
	if err != nil || got.Description != "Morning light over the dunes" {
		t.Errorf("GetItem() description = %q, %v", got.Description, err)
	}
}

func TestUpsertItem_KeepsCounters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedItem(t, db, "p1", media.KindPhotography, "", time.Now())

	if _, err := db.IncrementCounter(ctx, media.KindPhotography, "p1", media.CounterLikes, 4); err != nil {
		t.Fatal(err)
	}
	seedItem(t, db, "p1", media.KindPhotography, "renamed", time.Now())

	got, err := db.GetItem(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if got.LikeCount != 4 || got.Category != "renamed" {
		t.Errorf("after re-upsert: likes=%d category=%q", got.LikeCount, got.Category)
	}
}

func TestIncrementCounter(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedItem(t, db, "p1", media.KindPhotography, "", time.Now())

	tests := []struct {
		name    string
		kind    media.Kind
		id      string
		counter media.Counter
		delta   int64
		want    int64
		wantErr error
	}{
		{name: "like", kind: media.KindPhotography, id: "p1", counter: media.CounterLikes, delta: 1, want: 1},
		{name: "like again", kind: media.KindPhotography, id: "p1", counter: media.CounterLikes, delta: 1, want: 2},
		{name: "never below zero", kind: media.KindPhotography, id: "p1", counter: media.CounterShares, delta: -5, want: 0},
		{name: "wrong kind", kind: media.KindDesign, id: "p1", counter: media.CounterLikes, delta: 1, wantErr: media.ErrNotFound},
		{name: "missing item", kind: media.KindPhotography, id: "nope", counter: media.CounterViews, delta: 1, wantErr: media.ErrNotFound},
		{name: "unknown counter", kind: media.KindPhotography, id: "p1", counter: "title", delta: 1, wantErr: media.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.IncrementCounter(ctx, tt.kind, tt.id, tt.counter, tt.delta)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("IncrementCounter() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("IncrementCounter() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IncrementCounter() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIncrementCounter_Concurrent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedItem(t, db, "p1", media.KindPhotography, "", time.Now())

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := db.IncrementCounter(ctx, media.KindPhotography, "p1", media.CounterViews, 1); err != nil {
				t.Errorf("IncrementCounter() error = %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := db.GetItem(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ViewCount != workers {
		t.Errorf("ViewCount = %d, want %d", got.ViewCount, workers)
	}
}

func TestComments(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	root := &media.Comment{ItemID: "p1", ItemKind: media.KindPhotography, AuthorName: "Ana", Content: "Lovely light"}
	second := &media.Comment{ItemID: "p1", ItemKind: media.KindPhotography, AuthorName: "Bo", Content: "Great"}
	for _, c := range []*media.Comment{root, second} {
		if err := db.CreateComment(ctx, c); err != nil {
			t.Fatalf("CreateComment() error = %v", err)
		}
	}
	reply := &media.Comment{ItemID: "p1", ItemKind: media.KindPhotography, AuthorName: "Admin", Content: "Thanks",
		Approved: true, IsAdmin: true, ParentID: root.ID}
	if err := db.CreateComment(ctx, reply); err != nil {
		t.Fatal(err)
	}

	pending, err := db.ListComments(ctx, CommentFilter{Status: StatusPending, Oldest: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 || pending[0].ID != root.ID || pending[1].ID != second.ID {
		t.Errorf("pending queue order wrong: %+v", pending)
	}

	if err := db.ApproveComment(ctx, root.ID); err != nil {
		t.Fatalf("ApproveComment() error = %v", err)
	}
	if err := db.ApproveComment(ctx, root.ID); !errors.Is(err, media.ErrConflict) {
		t.Errorf("second ApproveComment() error = %v, want ErrConflict", err)
	}
	if err := db.ApproveComment(ctx, "missing"); !errors.Is(err, media.ErrNotFound) {
		t.Errorf("ApproveComment(missing) error = %v, want ErrNotFound", err)
	}

	public, err := db.ListComments(ctx, CommentFilter{ItemID: "p1", Status: StatusApproved, RootsOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(public) != 1 || public[0].ID != root.ID {
		t.Errorf("approved roots = %+v", public)
	}

	replies, err := db.Replies(ctx, []string{root.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(replies) != 1 || replies[0].ID != reply.ID {
		t.Errorf("Replies() = %+v", replies)
	}

	found, err := db.ListComments(ctx, CommentFilter{Query: "light"})
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].ID != root.ID {
		t.Errorf("search = %+v", found)
	}

	// wildcards in the query match literally
	for _, q := range []string{"%", "_", "Lovely_light", `\`} {
		found, err := db.ListComments(ctx, CommentFilter{Query: q})
		if err != nil {
			t.Fatalf("ListComments(%q) error = %v", q, err)
		}
		if len(found) != 0 {
			t.Errorf("ListComments(%q) matched %d comments, want 0", q, len(found))
		}
	}
	wild := &media.Comment{ItemID: "p1", ItemKind: media.KindPhotography, AuthorName: "Cy", Content: "100% sharp_focus"}
	if err := db.CreateComment(ctx, wild); err != nil {
		t.Fatal(err)
	}
	for _, q := range []string{"100%", "p_f"} {
		found, err := db.ListComments(ctx, CommentFilter{Query: q})
		if err != nil {
			t.Fatal(err)
		}
		if len(found) != 1 || found[0].ID != wild.ID {
			t.Errorf("ListComments(%q) = %+v, want only %s", q, found, wild.ID)
		}
	}

	removed, err := db.DeleteCommentTree(ctx, root.ID)
	if err != nil {
		t.Fatalf("DeleteCommentTree() error = %v", err)
	}
	if len(removed) != 2 {
		t.Errorf("removed %d comments, want 2 (root and reply)", len(removed))
	}
	if _, err := db.GetComment(ctx, reply.ID); !errors.Is(err, media.ErrNotFound) {
		t.Errorf("reply should be gone, got %v", err)
	}
	if _, err := db.DeleteCommentTree(ctx, root.ID); !errors.Is(err, media.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestFavorites(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	fav := &media.FavoriteEntry{UserID: "u1", ItemID: "p1", ItemKind: media.KindPhotography}
	if err := db.CreateFavorite(ctx, fav); err != nil {
		t.Fatalf("CreateFavorite() error = %v", err)
	}
	dup := &media.FavoriteEntry{UserID: "u1", ItemID: "p1", ItemKind: media.KindPhotography}
	if err := db.CreateFavorite(ctx, dup); !errors.Is(err, media.ErrConflict) {
		t.Errorf("duplicate CreateFavorite() error = %v, want ErrConflict", err)
	}

	got, err := db.GetFavorite(ctx, "u1", "p1")
	if err != nil || got.ID != fav.ID {
		t.Fatalf("GetFavorite() = %+v, %v", got, err)
	}
	list, err := db.ListFavorites(ctx, "u1")
	if err != nil || len(list) != 1 {
		t.Fatalf("ListFavorites() = %v, %v", list, err)
	}
	if err := db.DeleteFavorite(ctx, fav.ID); err != nil {
		t.Fatalf("DeleteFavorite() error = %v", err)
	}
	if _, err := db.GetFavorite(ctx, "u1", "p1"); !errors.Is(err, media.ErrNotFound) {
		t.Errorf("GetFavorite(after delete) error = %v, want ErrNotFound", err)
	}
}

func TestUsers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := &User{Email: " Admin@Example.com ", Name: "Admin", PasswordHash: "hash", Role: media.RoleAdmin}
	if err := db.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	got, err := db.UserByEmail(ctx, "admin@example.COM")
	if err != nil {
		t.Fatalf("UserByEmail() error = %v", err)
	}
	if got.ID != u.ID || !got.Viewer().IsAdmin() {
		t.Errorf("UserByEmail() = %+v", got)
	}
	if _, err := db.UserByID(ctx, "nope"); !errors.Is(err, media.ErrNotFound) {
		t.Errorf("UserByID(missing) error = %v", err)
	}
	if err := db.CreateUser(ctx, &User{Email: "admin@example.com", PasswordHash: "x"}); !errors.Is(err, media.ErrConflict) {
		t.Errorf("duplicate email error = %v, want ErrConflict", err)
	}
}

func TestHeroes(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.UpsertHero(ctx, &media.HeroImage{ID: "h1", Image: "cover.jpg", Active: true}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertHero(ctx, &media.HeroImage{ID: "h2", Image: "old.jpg", Active: false}); err != nil {
		t.Fatal(err)
	}
	heroes, err := db.ActiveHeroes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(heroes) != 1 {
		t.Fatalf("ActiveHeroes() = %d, want 1", len(heroes))
	}
	if want := "https://files.example/api/files/hero_images/h1/cover.jpg"; heroes[0].URL != want {
		t.Errorf("hero URL = %q, want %q", heroes[0].URL, want)
	}
}

func TestFileURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name                         string
		base, coll, rec, file, thumb string
		want                         string
	}{
		{"plain", "https://pb.example/", "photography", "r1", "a.jpg", "", "https://pb.example/api/files/photography/r1/a.jpg"},
		{"thumb", "https://pb.example", "photography", "r1", "a.jpg", "100x100", "https://pb.example/api/files/photography/r1/a.jpg?thumb=100x100"},
		{"absolute passthrough", "https://pb.example", "photography", "r1", "https://cdn.example/a.jpg", "", "https://cdn.example/a.jpg"},
		{"empty filename", "https://pb.example", "photography", "r1", "", "", ""},
		{"escaped", "", "design_projects", "r2", "my file.png", "", "/api/files/design_projects/r2/my%20file.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FileURL(tt.base, tt.coll, tt.rec, tt.file, tt.thumb); got != tt.want {
				t.Errorf("FileURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
	if err := classify(errors.New("Constraint Error: Duplicate key")); !errors.Is(err, media.ErrConflict) {
		t.Errorf("constraint error -> %v", err)
	}
	if err := classify(context.DeadlineExceeded); !errors.Is(err, media.ErrNetworkFailure) {
		t.Errorf("deadline -> %v", err)
	}
	if err := classify(errors.New("connection refused")); !errors.Is(err, media.ErrNetworkFailure) {
		t.Errorf("connection refused -> %v", err)
	}
}
