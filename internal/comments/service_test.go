// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package comments

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/folio/internal/authz"
	"github.com/tomtom215/folio/internal/database"
	"github.com/tomtom215/folio/internal/media"
)

// memRepo is an in-memory Repository ordered by insertion sequence.
type memRepo struct {
	mu       sync.Mutex
	items    map[string]media.MediaItem
	comments []media.Comment
	seq      int
	countErr error
}

func newMemRepo(items ...media.MediaItem) *memRepo {
	r := &memRepo{items: make(map[string]media.MediaItem)}
	for _, it := range items {
		r.items[it.ID] = it
	}
	return r
}

func (r *memRepo) GetItem(_ context.Context, id string) (media.MediaItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return it, fmt.Errorf("item %s: %w", id, media.ErrNotFound)
	}
	return it, nil
}

func (r *memRepo) IncrementCounter(_ context.Context, _ media.Kind, id string, counter media.Counter, delta int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countErr != nil {
		return 0, r.countErr
	}
	it, ok := r.items[id]
	if !ok {
		return 0, media.ErrNotFound
	}
	if counter != media.CounterComments {
		return 0, fmt.Errorf("unexpected counter %s", counter)
	}
	it.CommentCount += delta
	r.items[id] = it
	return it.CommentCount, nil
}

func (r *memRepo) CreateComment(_ context.Context, c *media.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	c.ID = fmt.Sprintf("c%d", r.seq)
	c.CreatedAt = time.Unix(int64(r.seq), 0)
	r.comments = append(r.comments, *c)
	return nil
}

func (r *memRepo) GetComment(_ context.Context, id string) (media.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.comments {
		if c.ID == id {
			return c, nil
		}
	}
	return media.Comment{}, fmt.Errorf("comment %s: %w", id, media.ErrNotFound)
}

func (r *memRepo) ListComments(_ context.Context, f database.CommentFilter) ([]media.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []media.Comment
	for _, c := range r.comments {
		if f.ItemID != "" && c.ItemID != f.ItemID {
			continue
		}
		if f.Status == database.StatusPending && c.Approved || f.Status == database.StatusApproved && !c.Approved {
			continue
		}
		if f.RootsOnly && c.IsReply() {
			continue
		}
		if q := strings.ToLower(f.Query); q != "" &&
			!strings.Contains(strings.ToLower(c.Content), q) && !strings.Contains(strings.ToLower(c.AuthorName), q) {
			continue
		}
		out = append(out, c)
	}
	if !f.Oldest {
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *memRepo) Replies(_ context.Context, parentIDs []string) ([]media.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[string]bool, len(parentIDs))
	for _, id := range parentIDs {
		want[id] = true
	}
	var out []media.Comment
	for _, c := range r.comments {
		if want[c.ParentID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memRepo) ApproveComment(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.comments {
		if r.comments[i].ID == id {
			if r.comments[i].Approved {
				return media.ErrConflict
			}
			r.comments[i].Approved = true
			return nil
		}
	}
	return media.ErrNotFound
}

func (r *memRepo) DeleteCommentTree(_ context.Context, id string) ([]media.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept, removed []media.Comment
	for _, c := range r.comments {
		if c.ID == id || c.ParentID == id {
			removed = append(removed, c)
		} else {
			kept = append(kept, c)
		}
	}
	if len(removed) == 0 {
		return nil, media.ErrNotFound
	}
	r.comments = kept
	return removed, nil
}

func (r *memRepo) commentCount(itemID string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[itemID].CommentCount
}

var (
	photo = media.MediaItem{ID: "z", Kind: media.KindPhotography, Title: "Dunes"}

	visitor = media.Viewer{Key: "browser"}
	member  = media.Viewer{UserID: "u1", Name: "Ann", Roles: []string{media.RoleViewer}}
	owner   = media.Viewer{UserID: "u0", Name: "Tom", Roles: []string{media.RoleAdmin}}
)

func as(v media.Viewer) context.Context {
	return media.WithViewer(context.Background(), v)
}

func newTestService(t *testing.T) (*Service, *memRepo) {
	t.Helper()
	enforcer, err := authz.NewEnforcer(nil)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(enforcer.Close)
	repo := newMemRepo(photo)
	return NewService(repo, enforcer, zerolog.Nop()), repo
}

func submit(t *testing.T, s *Service, v media.Viewer, author, content string) media.Comment {
	t.Helper()
	c, err := s.Submit(as(v), NewComment{ItemID: photo.ID, ItemKind: photo.Kind, AuthorName: author, Content: content})
	if err != nil {
		t.Fatalf("Submit(%q) error = %v", content, err)
	}
	return c
}

func TestSubmit_PendingUntilApproved(t *testing.T) {
	t.Parallel()
	s, repo := newTestService(t)

	c := submit(t, s, visitor, "Maria", "  Lovely light  ")
	if c.Approved || c.IsAdmin {
		t.Errorf("visitor comment approved=%v admin=%v", c.Approved, c.IsAdmin)
	}
	if c.Content != "Lovely light" {
		t.Errorf("content not trimmed: %q", c.Content)
	}

	public, err := s.ListPublic(context.Background(), photo.ID)
	if err != nil || len(public) != 0 {
		t.Fatalf("ListPublic() = %v, %v; want empty", public, err)
	}
	admin, err := s.ListAdmin(as(owner), photo.ID)
	if err != nil || len(admin) != 1 {
		t.Fatalf("ListAdmin() = %v, %v; want 1", admin, err)
	}
	if repo.commentCount(photo.ID) != 0 {
		t.Error("pending comment counted")
	}

	if _, err := s.Approve(as(owner), c.ID); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	public, _ = s.ListPublic(context.Background(), photo.ID)
	if len(public) != 1 || !public[0].Approved {
		t.Errorf("ListPublic() after approve = %+v", public)
	}
	if repo.commentCount(photo.ID) != 1 {
		t.Errorf("comment count = %d, want 1", repo.commentCount(photo.ID))
	}
}

func TestSubmit_DefaultsAndValidation(t *testing.T) {
	t.Parallel()
	s, _ := newTestService(t)

	if c := submit(t, s, visitor, "   ", "hi"); c.AuthorName != DefaultAuthor {
		t.Errorf("author = %q, want %q", c.AuthorName, DefaultAuthor)
	}
	if c := submit(t, s, member, "", "hi"); c.AuthorName != "Ann" {
		t.Errorf("author = %q, want session name", c.AuthorName)
	}

	tests := []struct {
		name    string
		nc      NewComment
		wantErr error
	}{
		{"blank content", NewComment{ItemID: photo.ID, ItemKind: photo.Kind, Content: " \n "}, media.ErrValidation},
		{"content too long", NewComment{ItemID: photo.ID, ItemKind: photo.Kind, Content: strings.Repeat("a", 2001)}, media.ErrValidation},
		{"author too long", NewComment{ItemID: photo.ID, ItemKind: photo.Kind, AuthorName: strings.Repeat("n", 81), Content: "ok"}, media.ErrValidation},
		{"bad kind", NewComment{ItemID: photo.ID, ItemKind: "blog", Content: "ok"}, media.ErrValidation},
		{"kind mismatch", NewComment{ItemID: photo.ID, ItemKind: media.KindDesign, Content: "ok"}, media.ErrValidation},
		{"stale item", NewComment{ItemID: "gone", ItemKind: photo.Kind, Content: "ok"}, media.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Submit(as(visitor), tt.nc); !errors.Is(err, tt.wantErr) {
				t.Errorf("Submit() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubmit_AdminVisibleImmediately(t *testing.T) {
	t.Parallel()
	s, repo := newTestService(t)

	adminRoot := submit(t, s, owner, "", "Shot on film")
	submit(t, s, visitor, "Guest", "Shot on film")

	if !adminRoot.Approved || !adminRoot.IsAdmin || adminRoot.AuthorName != "Tom" {
		t.Errorf("admin root = %+v", adminRoot)
	}
	public, _ := s.ListPublic(context.Background(), photo.ID)
	if len(public) != 1 || public[0].ID != adminRoot.ID {
		t.Errorf("public listing = %+v, want only the admin comment", public)
	}
	if repo.commentCount(photo.ID) != 1 {
		t.Errorf("comment count = %d, want 1", repo.commentCount(photo.ID))
	}
}

func TestPendingQueue_SubmissionOrder(t *testing.T) {
	t.Parallel()
	s, _ := newTestService(t)

	hello := submit(t, s, visitor, "A", "Hello")
	hi := submit(t, s, visitor, "B", "Hi")

	queue, err := s.PendingQueue(as(owner))
	if err != nil {
		t.Fatal(err)
	}
	if len(queue) != 2 || queue[0].ID != hello.ID || queue[1].ID != hi.ID {
		t.Fatalf("PendingQueue() = %+v", queue)
	}

	if _, err := s.Approve(as(owner), hello.ID); err != nil {
		t.Fatal(err)
	}
	queue, _ = s.PendingQueue(as(owner))
	if len(queue) != 1 || queue[0].ID != hi.ID || queue[0].Approved {
		t.Errorf("second comment affected by first approval: %+v", queue)
	}
}

func TestApprove_Idempotent(t *testing.T) {
	t.Parallel()
	s, repo := newTestService(t)
	c := submit(t, s, visitor, "A", "Nice")

	for i := 0; i < 2; i++ {
		got, err := s.Approve(as(owner), c.ID)
		if err != nil || !got.Approved {
			t.Fatalf("Approve() #%d = %+v, %v", i+1, got, err)
		}
	}
	if repo.commentCount(photo.ID) != 1 {
		t.Errorf("double approve counted twice: %d", repo.commentCount(photo.ID))
	}
	if _, err := s.Approve(as(owner), "missing"); !errors.Is(err, media.ErrNotFound) {
		t.Errorf("Approve(missing) error = %v", err)
	}
}

func TestReply(t *testing.T) {
	t.Parallel()
	s, _ := newTestService(t)
	root := submit(t, s, visitor, "A", "Where was this?")
	if _, err := s.Approve(as(owner), root.ID); err != nil {
		t.Fatal(err)
	}

	reply, err := s.Reply(as(owner), root.ID, " Lisbon ")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if !reply.Approved || !reply.IsAdmin || reply.ParentID != root.ID || reply.AuthorName != "Tom" || reply.Content != "Lisbon" {
		t.Errorf("reply = %+v", reply)
	}
	second, _ := s.Reply(as(owner), root.ID, "Near the river")

	public, _ := s.ListPublic(context.Background(), photo.ID)
	if len(public) != 1 || len(public[0].Replies) != 2 {
		t.Fatalf("ListPublic() = %+v", public)
	}
	if public[0].Replies[0].ID != reply.ID || public[0].Replies[1].ID != second.ID {
		t.Error("replies not oldest first")
	}

	if _, err := s.Reply(as(owner), reply.ID, "nested"); !errors.Is(err, media.ErrValidation) {
		t.Errorf("nested reply error = %v, want ErrValidation", err)
	}
	if _, err := s.Reply(as(owner), "missing", "x"); !errors.Is(err, media.ErrNotFound) {
		t.Errorf("reply to missing error = %v", err)
	}
	if _, err := s.Reply(as(owner), root.ID, "   "); !errors.Is(err, media.ErrValidation) {
		t.Errorf("blank reply error = %v", err)
	}
}

func TestReply_PendingParentStaysHidden(t *testing.T) {
	t.Parallel()
	s, _ := newTestService(t)
	root := submit(t, s, visitor, "A", "Question")
	if _, err := s.Reply(as(owner), root.ID, "Answer"); err != nil {
		t.Fatal(err)
	}
	public, _ := s.ListPublic(context.Background(), photo.ID)
	if len(public) != 0 {
		t.Errorf("reply surfaced a pending thread: %+v", public)
	}
	admin, _ := s.ListAdmin(as(owner), photo.ID)
	if len(admin) != 1 || len(admin[0].Replies) != 1 {
		t.Errorf("ListAdmin() = %+v", admin)
	}
}

func TestReject_RemovesThread(t *testing.T) {
	t.Parallel()
	s, repo := newTestService(t)
	root := submit(t, s, visitor, "A", "spam")
	if _, err := s.Approve(as(owner), root.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Reply(as(owner), root.ID, "please stop"); err != nil {
		t.Fatal(err)
	}
	pending := submit(t, s, visitor, "B", "more spam")

	if err := s.Reject(as(owner), root.ID); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if err := s.Reject(as(owner), pending.ID); err != nil {
		t.Fatalf("Reject(pending) error = %v", err)
	}
	if repo.commentCount(photo.ID) != 0 {
		t.Errorf("comment count = %d, want 0", repo.commentCount(photo.ID))
	}
	all, _ := s.Search(as(owner), AdminFilter{})
	if len(all) != 0 {
		t.Errorf("comments left after reject: %+v", all)
	}
	if err := s.Reject(as(owner), root.ID); !errors.Is(err, media.ErrNotFound) {
		t.Errorf("second Reject() error = %v, want ErrNotFound", err)
	}
}

func TestModeration_RequiresAdmin(t *testing.T) {
	t.Parallel()
	s, _ := newTestService(t)
	c := submit(t, s, visitor, "A", "hello")

	for _, tt := range []struct {
		viewer  media.Viewer
		wantErr error
	}{
		{visitor, media.ErrUnauthenticated},
		{member, media.ErrForbidden},
	} {
		ctx := as(tt.viewer)
		checks := map[string]error{}
		_, checks["Approve"] = s.Approve(ctx, c.ID)
		checks["Reject"] = s.Reject(ctx, c.ID)
		_, checks["Reply"] = s.Reply(ctx, c.ID, "hi")
		_, checks["ListAdmin"] = s.ListAdmin(ctx, photo.ID)
		_, checks["PendingQueue"] = s.PendingQueue(ctx)
		_, checks["Search"] = s.Search(ctx, AdminFilter{})
		for op, err := range checks {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("%s as %s: error = %v, want %v", op, tt.viewer.PrimaryRole(), err, tt.wantErr)
			}
		}
	}

	queue, _ := s.PendingQueue(as(owner))
	if len(queue) != 1 {
		t.Error("denied moderation changed state")
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()
	s, _ := newTestService(t)
	a := submit(t, s, visitor, "Maria", "Beautiful dunes")
	submit(t, s, visitor, "Joao", "Great contrast")
	if _, err := s.Approve(as(owner), a.ID); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		filter AdminFilter
		want   int
	}{
		{"all", AdminFilter{}, 2},
		{"approved", AdminFilter{Status: database.StatusApproved}, 1},
		{"pending", AdminFilter{Status: database.StatusPending}, 1},
		{"query content", AdminFilter{Query: "DUNES"}, 1},
		{"query author", AdminFilter{Query: "joao"}, 1},
		{"limit", AdminFilter{Limit: 1}, 1},
		{"no match", AdminFilter{Query: "zzz"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(as(owner), tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if got == nil || len(got) != tt.want {
				t.Errorf("Search() = %d results, want %d", len(got), tt.want)
			}
		})
	}
}

func TestCountFailureDoesNotFailSubmit(t *testing.T) {
	t.Parallel()
	s, repo := newTestService(t)
	repo.countErr = media.ErrNetworkFailure
	if _, err := s.Submit(as(owner), NewComment{ItemID: photo.ID, ItemKind: photo.Kind, Content: "ok"}); err != nil {
		t.Errorf("Submit() error = %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()
	tests := map[string]database.CommentStatus{
		"":         database.StatusAll,
		"all":      database.StatusAll,
		"Pending":  database.StatusPending,
		"approved": database.StatusApproved,
	}
	for in, want := range tests {
		got, err := ParseStatus(in)
		if err != nil || got != want {
			t.Errorf("ParseStatus(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseStatus("rejected"); !errors.Is(err, media.ErrValidation) {
		t.Errorf("ParseStatus(rejected) error = %v", err)
	}
}
