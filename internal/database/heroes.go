// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/folio/internal/media"
)

// UpsertHero stores a hero image record.
func (db *DB) UpsertHero(ctx context.Context, h *media.HeroImage) error {
	if h.Created.IsZero() {
		h.Created = time.Now().UTC()
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO hero_images (id, title, image, url, active, created_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title, image = excluded.image, url = excluded.url, active = excluded.active`,
		h.ID, h.Title, h.Image, h.URL, h.Active, h.Created)
	if err != nil {
		return classify(fmt.Errorf("upsert hero %s: %w", h.ID, err))
	}
	return nil
}

// ActiveHeroes returns active hero images, newest first, with URL resolved to
// a public file URL when it is empty.
func (db *DB) ActiveHeroes(ctx context.Context) ([]media.HeroImage, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, title, image, url, active, created_at FROM hero_images WHERE active ORDER BY created_at DESC")
	if err != nil {
		return nil, classify(fmt.Errorf("list heroes: %w", err))
	}
	defer closeQuietly(rows)

	var out []media.HeroImage
	for rows.Next() {
		var h media.HeroImage
		if err := rows.Scan(&h.ID, &h.Title, &h.Image, &h.URL, &h.Active, &h.Created); err != nil {
			return nil, fmt.Errorf("scan hero: %w", err)
		}
		if h.URL == "" {
			h.URL = db.FileURL("hero_images", h.ID, h.Image, "")
		}
		out = append(out, h)
	}
	return out, classify(rows.Err())
}
