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
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/folio/internal/media"
)

// ListFavorites returns a user's favorites, newest first.
func (db *DB) ListFavorites(ctx context.Context, userID string) ([]media.FavoriteEntry, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, user_id, item_id, item_kind, created_at
		FROM favorites WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, classify(fmt.Errorf("list favorites: %w", err))
	}
	defer closeQuietly(rows)

	var out []media.FavoriteEntry
	for rows.Next() {
		var (
			f    media.FavoriteEntry
			kind string
		)
		if err := rows.Scan(&f.ID, &f.UserID, &f.ItemID, &kind, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		f.ItemKind = media.Kind(kind)
		out = append(out, f)
	}
	return out, classify(rows.Err())
}

// GetFavorite returns the user's favorite for itemID or media.ErrNotFound.
func (db *DB) GetFavorite(ctx context.Context, userID, itemID string) (media.FavoriteEntry, error) {
	var (
		f    media.FavoriteEntry
		kind string
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, user_id, item_id, item_kind, created_at
		FROM favorites WHERE user_id = ? AND item_id = ?`, userID, itemID).
		Scan(&f.ID, &f.UserID, &f.ItemID, &kind, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return f, fmt.Errorf("favorite %s/%s: %w", userID, itemID, media.ErrNotFound)
	}
	f.ItemKind = media.Kind(kind)
	return f, classify(err)
}

// CreateFavorite stores f. A duplicate (user, item) pair yields media.ErrConflict.
func (db *DB) CreateFavorite(ctx context.Context, f *media.FavoriteEntry) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO favorites (id, user_id, item_id, item_kind, created_at) VALUES (?, ?, ?, ?, ?)",
		f.ID, f.UserID, f.ItemID, string(f.ItemKind), f.CreatedAt)
	if err != nil {
		return classify(fmt.Errorf("create favorite: %w", err))
	}
	return nil
}

// DeleteFavorite removes the favorite with the given record ID.
func (db *DB) DeleteFavorite(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, "DELETE FROM favorites WHERE id = ?", id)
	if err != nil {
		return classify(fmt.Errorf("delete favorite %s: %w", id, err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("favorite %s: %w", id, media.ErrNotFound)
	}
	return nil
}
