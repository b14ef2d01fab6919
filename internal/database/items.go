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

	"github.com/goccy/go-json"

	"github.com/tomtom215/folio/internal/media"
)

// ItemSort orders item listings.
type ItemSort string

const (
	SortNewest     ItemSort = "-created"
	SortMostLiked  ItemSort = "-likes"
	SortMostViewed ItemSort = "-views"
)

// ItemFilter narrows ListItems. Zero values mean "any".
type ItemFilter struct {
	Kind     media.Kind
	Category string
	// Query matches a case-insensitive substring of the title, description
	// or category.
	Query  string
	Sort   ItemSort
	Limit  int
	Offset int
}

const itemColumns = `id, kind, title, coalesce(description, ''), category, urls_json, tags_json,
	thumbnail_url, high_res_url, likes_count, comments_count, shares_count, views_count, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (media.MediaItem, error) {
	var (
		item             media.MediaItem
		kind             string
		urlsJSON, tagsJS string
	)
	if err := row.Scan(&item.ID, &kind, &item.Title, &item.Description, &item.Category, &urlsJSON, &tagsJS,
		&item.ThumbnailURL, &item.HighResURL,
		&item.LikeCount, &item.CommentCount, &item.ShareCount, &item.ViewCount, &item.CreatedAt); err != nil {
		return item, err
	}
	item.Kind = media.Kind(kind)
	if err := json.Unmarshal([]byte(urlsJSON), &item.URLs); err != nil {
		return item, fmt.Errorf("decode urls for %s: %w", item.ID, err)
	}
	if err := json.Unmarshal([]byte(tagsJS), &item.Tags); err != nil {
		return item, fmt.Errorf("decode tags for %s: %w", item.ID, err)
	}
	return item, nil
}

// ListItems returns items matching f.
func (db *DB) ListItems(ctx context.Context, f ItemFilter) ([]media.MediaItem, error) {
	var (
		where []string
		args  []any
	)
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if f.Category != "" {
		where = append(where, "lower(category) = lower(?)")
		args = append(args, f.Category)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, `(title ILIKE ? ESCAPE '\' OR description ILIKE ? ESCAPE '\' OR category ILIKE ? ESCAPE '\')`)
		pattern := containsPattern(q)
		args = append(args, pattern, pattern, pattern)
	}

	query := "SELECT " + itemColumns + " FROM media_items"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	switch f.Sort {
	case SortMostLiked:
		query += " ORDER BY likes_count DESC, created_at DESC"
	case SortMostViewed:
		query += " ORDER BY views_count DESC, created_at DESC"
	default:
		query += " ORDER BY created_at DESC, id"
	}
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, max(f.Offset, 0))
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("list items: %w", err))
	}
	defer closeQuietly(rows)

	var items []media.MediaItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, classify(rows.Err())
}

// GetItem returns one item or media.ErrNotFound.
func (db *DB) GetItem(ctx context.Context, id string) (media.MediaItem, error) {
	row := db.conn.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM media_items WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return item, fmt.Errorf("item %s: %w", id, media.ErrNotFound)
	}
	if err != nil {
		return item, classify(err)
	}
	return item, nil
}

// UpsertItem inserts item or replaces its descriptive fields. Counters are
// overwritten only on insert; an update keeps the live counters.
func (db *DB) UpsertItem(ctx context.Context, item *media.MediaItem) error {
	urls, err := json.Marshal(item.URLs)
	if err != nil {
		return fmt.Errorf("encode urls: %w", err)
	}
	tags := []byte("[]")
	if len(item.Tags) > 0 {
		if tags, err = json.Marshal(item.Tags); err != nil {
			return fmt.Errorf("encode tags: %w", err)
		}
	}
	created := item.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO media_items (id, kind, title, description, category, urls_json, tags_json, thumbnail_url,
			high_res_url, likes_count, comments_count, shares_count, views_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			kind = excluded.kind,
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			urls_json = excluded.urls_json,
			tags_json = excluded.tags_json,
			thumbnail_url = excluded.thumbnail_url,
			high_res_url = excluded.high_res_url,
			updated_at = excluded.updated_at`,
		item.ID, string(item.Kind), item.Title, item.Description, item.Category, string(urls), string(tags),
		item.ThumbnailURL, item.HighResURL,
		item.LikeCount, item.CommentCount, item.ShareCount, item.ViewCount, created, time.Now().UTC())
	if err != nil {
		return classify(fmt.Errorf("upsert item %s: %w", item.ID, err))
	}
	return nil
}

// DeleteItem removes an item with its comments and favorites.
func (db *DB) DeleteItem(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		"DELETE FROM comments WHERE item_id = ?",
		"DELETE FROM favorites WHERE item_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return classify(fmt.Errorf("delete item %s dependents: %w", id, err))
		}
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM media_items WHERE id = ?", id)
	if err != nil {
		return classify(fmt.Errorf("delete item %s: %w", id, err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("item %s: %w", id, media.ErrNotFound)
	}
	return tx.Commit()
}

// IncrementCounter adds delta to one counter of an item and returns the new value.
// Increments commute, so concurrent callers never read-modify-write.
func (db *DB) IncrementCounter(ctx context.Context, kind media.Kind, id string, counter media.Counter, delta int64) (int64, error) {
	if !counter.Valid() {
		return 0, fmt.Errorf("%w: unknown counter %q", media.ErrValidation, counter)
	}
	// counter is whitelisted above, so it is safe to splice into the statement
	query := fmt.Sprintf(
		"UPDATE media_items SET %[1]s = greatest(%[1]s + ?, 0) WHERE id = ? AND kind = ? RETURNING %[1]s",
		counter)

	var value int64
	err := db.withConflictRetry(ctx, func() error {
		return db.conn.QueryRowContext(ctx, query, delta, id, string(kind)).Scan(&value)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s item %s: %w", kind, id, media.ErrNotFound)
	}
	if err != nil {
		return 0, classify(fmt.Errorf("increment %s on %s: %w", counter, id, err))
	}
	return value, nil
}

// CountItems returns the number of stored items.
func (db *DB) CountItems(ctx context.Context) (int64, error) {
	var n int64
	err := db.conn.QueryRowContext(ctx, "SELECT count(*) FROM media_items").Scan(&n)
	return n, classify(err)
}
