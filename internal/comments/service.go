// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package comments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/folio/internal/authz"
	"github.com/tomtom215/folio/internal/database"
	"github.com/tomtom215/folio/internal/media"
	"github.com/tomtom215/folio/internal/metrics"
	"github.com/tomtom215/folio/internal/validation"
)

// DefaultAuthor is used when a visitor leaves the name blank.
const DefaultAuthor = "Anonymous"

// Repository stores comments and the items they hang off. *database.DB implements it.
type Repository interface {
	GetItem(ctx context.Context, id string) (media.MediaItem, error)
	IncrementCounter(ctx context.Context, kind media.Kind, id string, counter media.Counter, delta int64) (int64, error)

	CreateComment(ctx context.Context, c *media.Comment) error
	GetComment(ctx context.Context, id string) (media.Comment, error)
	ListComments(ctx context.Context, f database.CommentFilter) ([]media.Comment, error)
	Replies(ctx context.Context, parentIDs []string) ([]media.Comment, error)
	ApproveComment(ctx context.Context, id string) error
	DeleteCommentTree(ctx context.Context, id string) ([]media.Comment, error)
}

// Authorizer decides whether a viewer may act on an object. *authz.Enforcer implements it.
type Authorizer interface {
	Authorize(v media.Viewer, object, action string) error
}

// NewComment is a visitor's submission.
type NewComment struct {
	ItemID     string     `json:"item_id"`
	ItemKind   media.Kind `json:"item_kind"`
	AuthorName string     `json:"author_name"`
	Content    string     `json:"content"`
}

// AdminFilter narrows the admin comment search.
type AdminFilter struct {
	Status database.CommentStatus `json:"status"`
	Query  string                 `json:"q"`
	ItemID string                 `json:"item_id"`
	Limit  int                    `json:"limit"`
}

// ParseStatus maps the admin filter query value to a status. Empty means all.
func ParseStatus(s string) (database.CommentStatus, error) {
	switch database.CommentStatus(strings.ToLower(strings.TrimSpace(s))) {
	case "", database.StatusAll:
		return database.StatusAll, nil
	case database.StatusPending:
		return database.StatusPending, nil
	case database.StatusApproved:
		return database.StatusApproved, nil
	default:
		return "", fmt.Errorf("%w: unknown comment status %q", media.ErrValidation, s)
	}
}

// Service runs the comment moderation workflow. Root comments from visitors
// start pending; admin comments and replies are visible immediately. The
// item's comment count tracks approved root comments.
type Service struct {
	repo   Repository
	authz  Authorizer
	logger zerolog.Logger
}

// NewService creates a comment service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(repo Repository, authorizer Authorizer, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		authz:  authorizer,
		logger: logger.With().Str("component", "comments").Logger(),
	}
}

// Submit creates a root comment on an item. It is approved at once only when
// the viewer is an admin.
func (s *Service) Submit(ctx context.Context, nc NewComment) (media.Comment, error) {
	viewer := media.ViewerFromContext(ctx)
	if err := s.authz.Authorize(viewer, authz.ObjectComments, authz.ActionWrite); err != nil {
		return media.Comment{}, err
	}

	c := media.Comment{
		ItemID:     strings.TrimSpace(nc.ItemID),
		ItemKind:   nc.ItemKind,
		AuthorName: strings.TrimSpace(nc.AuthorName),
		Content:    strings.TrimSpace(nc.Content),
		Approved:   viewer.IsAdmin(),
		IsAdmin:    viewer.IsAdmin(),
	}
	if c.AuthorName == "" {
		c.AuthorName = authorFor(viewer)
	}
	if err := validation.Validate(c); err != nil {
		return media.Comment{}, err
	}

	item, err := s.repo.GetItem(ctx, c.ItemID)
	if err != nil {
		return media.Comment{}, err
	}
	if item.Kind != c.ItemKind {
		return media.Comment{}, fmt.Errorf("%w: item %s is %s, not %s", media.ErrValidation, item.ID, item.Kind, c.ItemKind)
	}

	if err := s.repo.CreateComment(ctx, &c); err != nil {
		return media.Comment{}, err
	}

	if c.Approved {
		s.adjustCount(ctx, c, 1)
		metrics.CommentsSubmitted.WithLabelValues("root_approved").Inc()
	} else {
		metrics.CommentsSubmitted.WithLabelValues("root_pending").Inc()
	}
	s.logger.Info().
		Str("comment_id", c.ID).
		Str("item_id", c.ItemID).
		Bool("approved", c.Approved).
		Msg("comment submitted")
	return c, nil
}

// Reply attaches an admin reply to a root comment. Replies skip moderation.
func (s *Service) Reply(ctx context.Context, parentID, content string) (media.Comment, error) {
	viewer := media.ViewerFromContext(ctx)
	if err := s.authz.Authorize(viewer, authz.ObjectReplies, authz.ActionWrite); err != nil {
		return media.Comment{}, err
	}

	parent, err := s.repo.GetComment(ctx, parentID)
	if err != nil {
		return media.Comment{}, err
	}
	if parent.IsReply() {
		return media.Comment{}, fmt.Errorf("%w: comment %s is a reply; replies attach to root comments", media.ErrValidation, parentID)
	}

	reply := media.Comment{
		ItemID:     parent.ItemID,
		ItemKind:   parent.ItemKind,
		AuthorName: authorFor(viewer),
		Content:    strings.TrimSpace(content),
		Approved:   true,
		IsAdmin:    true,
		ParentID:   parent.ID,
	}
	if err := validation.Validate(reply); err != nil {
		return media.Comment{}, err
	}
	if err := s.repo.CreateComment(ctx, &reply); err != nil {
		return media.Comment{}, err
	}

	metrics.CommentsSubmitted.WithLabelValues("reply").Inc()
	s.logger.Info().Str("comment_id", reply.ID).Str("parent_id", parent.ID).Msg("admin reply posted")
	return reply, nil
}

// Approve publishes a pending comment. Approving an approved comment is a no-op.
func (s *Service) Approve(ctx context.Context, id string) (media.Comment, error) {
	if err := s.authz.Authorize(media.ViewerFromContext(ctx), authz.ObjectModeration, authz.ActionWrite); err != nil {
		return media.Comment{}, err
	}

	err := s.repo.ApproveComment(ctx, id)
	switch {
	case errors.Is(err, media.ErrConflict):
		return s.repo.GetComment(ctx, id)
	case err != nil:
		return media.Comment{}, err
	}

	c, err := s.repo.GetComment(ctx, id)
	if err != nil {
		return media.Comment{}, err
	}
	if !c.IsReply() {
		s.adjustCount(ctx, c, 1)
	}
	metrics.CommentsModerated.WithLabelValues("approve").Inc()
	s.logger.Info().Str("comment_id", id).Str("item_id", c.ItemID).Msg("comment approved")
	return c, nil
}

// Reject permanently deletes a comment and its replies. Rejecting an
// approved root also lowers the item's comment count.
func (s *Service) Reject(ctx context.Context, id string) error {
	if err := s.authz.Authorize(media.ViewerFromContext(ctx), authz.ObjectModeration, authz.ActionDelete); err != nil {
		return err
	}

	removed, err := s.repo.DeleteCommentTree(ctx, id)
	if err != nil {
		return err
	}
	for _, c := range removed {
		if c.ID == id && c.Approved && !c.IsReply() {
			s.adjustCount(ctx, c, -1)
		}
	}

	metrics.CommentsModerated.WithLabelValues("reject").Inc()
	s.logger.Info().Str("comment_id", id).Int("removed", len(removed)).Msg("comment rejected")
	return nil
}

// ListPublic returns approved root comments for an item, newest first, each
// with its replies oldest first.
func (s *Service) ListPublic(ctx context.Context, itemID string) ([]media.Thread, error) {
	roots, err := s.repo.ListComments(ctx, database.CommentFilter{
		ItemID:    itemID,
		Status:    database.StatusApproved,
		RootsOnly: true,
	})
	if err != nil {
		return nil, err
	}
	return s.threads(ctx, roots)
}

// ListAdmin returns every root comment for an item, pending or approved.
func (s *Service) ListAdmin(ctx context.Context, itemID string) ([]media.Thread, error) {
	if err := s.authz.Authorize(media.ViewerFromContext(ctx), authz.ObjectModeration, authz.ActionRead); err != nil {
		return nil, err
	}
	roots, err := s.repo.ListComments(ctx, database.CommentFilter{
		ItemID:    itemID,
		Status:    database.StatusAll,
		RootsOnly: true,
	})
	if err != nil {
		return nil, err
	}
	return s.threads(ctx, roots)
}

// PendingQueue returns pending root comments across all items in submission order.
func (s *Service) PendingQueue(ctx context.Context) ([]media.Comment, error) {
	if err := s.authz.Authorize(media.ViewerFromContext(ctx), authz.ObjectModeration, authz.ActionRead); err != nil {
		return nil, err
	}
	pending, err := s.repo.ListComments(ctx, database.CommentFilter{
		Status:    database.StatusPending,
		RootsOnly: true,
		Oldest:    true,
	})
	if err != nil {
		return nil, err
	}
	return nonNil(pending), nil
}

// Search backs the admin comment page. Replies are included.
func (s *Service) Search(ctx context.Context, f AdminFilter) ([]media.Comment, error) {
	if err := s.authz.Authorize(media.ViewerFromContext(ctx), authz.ObjectModeration, authz.ActionRead); err != nil {
		return nil, err
	}
	if f.Status == "" {
		f.Status = database.StatusAll
	}
	found, err := s.repo.ListComments(ctx, database.CommentFilter{
		ItemID: f.ItemID,
		Status: f.Status,
		Query:  f.Query,
		Limit:  f.Limit,
	})
	if err != nil {
		return nil, err
	}
	return nonNil(found), nil
}

func (s *Service) threads(ctx context.Context, roots []media.Comment) ([]media.Thread, error) {
	out := make([]media.Thread, 0, len(roots))
	if len(roots) == 0 {
		return out, nil
	}

	ids := make([]string, len(roots))
	for i := range roots {
		ids[i] = roots[i].ID
	}
	replies, err := s.repo.Replies(ctx, ids)
	if err != nil {
		return nil, err
	}
	byParent := make(map[string][]media.Comment, len(roots))
	for _, r := range replies {
		byParent[r.ParentID] = append(byParent[r.ParentID], r)
	}

	for _, root := range roots {
		out = append(out, media.Thread{Comment: root, Replies: nonNil(byParent[root.ID])})
	}
	return out, nil
}

// adjustCount keeps the item's comments_count in step. A failure is logged
// and not returned: the comment itself is already stored.
func (s *Service) adjustCount(ctx context.Context, c media.Comment, delta int64) {
	if _, err := s.repo.IncrementCounter(ctx, c.ItemKind, c.ItemID, media.CounterComments, delta); err != nil {
		s.logger.Warn().Err(err).Str("item_id", c.ItemID).Int64("delta", delta).Msg("comment count update failed")
	}
}

func authorFor(v media.Viewer) string {
	if v.IsAuthenticated() && strings.TrimSpace(v.Name) != "" {
		return strings.TrimSpace(v.Name)
	}
	if v.IsAdmin() {
		return "Admin"
	}
	return DefaultAuthor
}

func nonNil(cs []media.Comment) []media.Comment {
	if cs == nil {
		return []media.Comment{}
	}
	return cs
}
