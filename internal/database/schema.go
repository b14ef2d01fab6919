// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package database

import (
	"context"
	"fmt"
	"time"
)

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// migrate creates tables and indexes. Every statement is idempotent.
func (db *DB) migrate() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, q := range schemaQueries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", q, err)
		}
	}
	return nil
}

var schemaQueries = []string{
	`CREATE TABLE IF NOT EXISTS media_items (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		urls_json TEXT NOT NULL DEFAULT '[]',
		tags_json TEXT NOT NULL DEFAULT '[]',
		thumbnail_url TEXT NOT NULL DEFAULT '',
		high_res_url TEXT NOT NULL DEFAULT '',
		likes_count BIGINT NOT NULL DEFAULT 0,
		comments_count BIGINT NOT NULL DEFAULT 0,
		shares_count BIGINT NOT NULL DEFAULT 0,
		views_count BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE SEQUENCE IF NOT EXISTS comment_seq START 1`,

	// parent_id is '' for root comments. seq records submission order.
	`CREATE TABLE IF NOT EXISTS comments (
		id TEXT PRIMARY KEY,
		seq BIGINT NOT NULL DEFAULT nextval('comment_seq'),
		item_id TEXT NOT NULL,
		item_kind TEXT NOT NULL,
		author_name TEXT NOT NULL,
		content TEXT NOT NULL,
		approved BOOLEAN NOT NULL DEFAULT false,
		is_admin BOOLEAN NOT NULL DEFAULT false,
		parent_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS favorites (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		item_kind TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		UNIQUE (user_id, item_id)
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'viewer',
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS hero_images (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		image TEXT NOT NULL,
		url TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMP NOT NULL
	)`,

	// stores created before item search lack the description column
	`ALTER TABLE media_items ADD COLUMN IF NOT EXISTS description TEXT DEFAULT ''`,

	`CREATE INDEX IF NOT EXISTS idx_media_items_kind ON media_items(kind)`,
	`CREATE INDEX IF NOT EXISTS idx_media_items_category ON media_items(category)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_item ON comments(item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_parent ON comments(parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_favorites_user ON favorites(user_id)`,
}
