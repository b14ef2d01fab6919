// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/folio/internal/media"
)

// CommentStatus filters admin comment listings.
type CommentStatus string

const (
	StatusAll      CommentStatus = "all"
	StatusPending  CommentStatus = "pending"
	StatusApproved CommentStatus = "approved"
)

// CommentFilter narrows ListComments.
type CommentFilter struct {
	ItemID string
	Status CommentStatus
	// Query matches author name or content, case-insensitive.
	Query string
	// RootsOnly drops replies.
	RootsOnly bool
	// Oldest orders by submission sequence ascending instead of newest first.
	Oldest bool
	Limit  int
}

const commentColumns = `id, item_id, item_kind, author_name, content, approved, is_admin, parent_id, created_at`

func scanComment(row rowScanner) (media.Comment, error) {
	var (
		c    media.Comment
		kind string
	)
	err := row.Scan(&c.ID, &c.ItemID, &kind, &c.AuthorName, &c.Content, &c.Approved, &c.IsAdmin, &c.ParentID, &c.CreatedAt)
	c.ItemKind = media.Kind(kind)
	return c, err
}

// CreateComment stores c, filling in ID and CreatedAt when empty.
func (db *DB) CreateComment(ctx context.Context, c *media.Comment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO comments (id, item_id, item_kind, author_name, content, approved, is_admin, parent_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ItemID, string(c.ItemKind), c.AuthorName, c.Content, c.Approved, c.IsAdmin, c.ParentID, c.CreatedAt)
	if err != nil {
		return classify(fmt.Errorf("create comment: %w", err))
	}
	return nil
}

// GetComment returns one comment or media.ErrNotFound.
func (db *DB) GetComment(ctx context.Context, id string) (media.Comment, error) {
	c, err := scanComment(db.conn.QueryRowContext(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return c, fmt.Errorf("comment %s: %w", id, media.ErrNotFound)
	}
	return c, classify(err)
}

// ListComments returns comments matching f.
func (db *DB) ListComments(ctx context.Context, f CommentFilter) ([]media.Comment, error) {
	var (
		where []string
		args  []any
	)
	if f.ItemID != "" {
		where = append(where, "item_id = ?")
		args = append(args, f.ItemID)
	}
	switch f.Status {
	case StatusPending:
		where = append(where, "NOT approved")
	case StatusApproved:
		where = append(where, "approved")
	}
	if f.RootsOnly {
		where = append(where, "parent_id = ''")
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, `(author_name ILIKE ? ESCAPE '\' OR content ILIKE ? ESCAPE '\')`)
		pattern := containsPattern(q)
		args = append(args, pattern, pattern)
	}

	query := "SELECT " + commentColumns + " FROM comments"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if f.Oldest {
		query += " ORDER BY seq ASC"
	} else {
		query += " ORDER BY seq DESC"
	}
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("list comments: %w", err))
	}
	defer closeQuietly(rows)

	var out []media.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, c)
	}
	return out, classify(rows.Err())
}

// Replies returns the replies to the given root comments in submission order.
func (db *DB) Replies(ctx context.Context, parentIDs []string) ([]media.Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(parentIDs)), ",")
	args := make([]any, len(parentIDs))
	for i, id := range parentIDs {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE parent_id IN ("+placeholders+") ORDER BY seq ASC", args...)
	if err != nil {
		return nil, classify(fmt.Errorf("list replies: %w", err))
	}
	defer closeQuietly(rows)

	var out []media.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reply: %w", err)
		}
		out = append(out, c)
	}
	return out, classify(rows.Err())
}

// ApproveComment marks a pending comment approved. It returns media.ErrConflict
// when the comment was already approved.
func (db *DB) ApproveComment(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, "UPDATE comments SET approved = true WHERE id = ? AND NOT approved", id)
	if err != nil {
		return classify(fmt.Errorf("approve comment %s: %w", id, err))
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	if _, err := db.GetComment(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("comment %s already approved: %w", id, media.ErrConflict)
}

// DeleteCommentTree removes a comment together with its replies and returns
// the removed rows.
func (db *DB) DeleteCommentTree(ctx context.Context, id string) ([]media.Comment, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify(err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE id = ? OR parent_id = ? ORDER BY seq", id, id)
	if err != nil {
		return nil, classify(fmt.Errorf("load comment tree %s: %w", id, err))
	}
	var removed []media.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			closeQuietly(rows)
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		removed = append(removed, c)
	}
	closeQuietly(rows)
	if len(removed) == 0 {
		return nil, fmt.Errorf("comment %s: %w", id, media.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE id = ? OR parent_id = ?", id, id); err != nil {
		return nil, classify(fmt.Errorf("delete comment tree %s: %w", id, err))
	}
	if err := tx.Commit(); err != nil {
		return nil, classify(err)
	}
	return removed, nil
}
