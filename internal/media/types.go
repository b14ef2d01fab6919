// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

// Package media defines the typed gallery records used across Folio.
//
// Backend rows are mapped onto these structs at the boundary (HTTP ingress, the
// DuckDB store, the PocketBase importer) and validated there, so the rest of the
// code never handles untyped maps.
package media

import (
	"fmt"
	"strings"
	"time"
)

// Kind discriminates the two portfolio collections.
type Kind string

const (
	KindPhotography Kind = "photography"
	KindDesign      Kind = "design"
)

// ParseKind converts a string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindPhotography:
		return KindPhotography, nil
	case KindDesign:
		return KindDesign, nil
	default:
		return "", fmt.Errorf("%w: unknown item kind %q", ErrValidation, s)
	}
}

// Collection returns the backend collection name that stores items of this kind.
func (k Kind) Collection() string {
	if k == KindDesign {
		return "design_projects"
	}
	return "photography"
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindPhotography || k == KindDesign
}

// Counter names a per-item engagement counter column.
type Counter string

const (
	CounterLikes    Counter = "likes_count"
	CounterComments Counter = "comments_count"
	CounterShares   Counter = "shares_count"
	CounterViews    Counter = "views_count"
)

// Valid reports whether c is a known counter.
func (c Counter) Valid() bool {
	switch c {
	case CounterLikes, CounterComments, CounterShares, CounterViews:
		return true
	}
	return false
}

// MediaItem is the read-only projection of a gallery item that the pipeline works on.
// URLs holds more than one entry only for design projects (ordered gallery).
type MediaItem struct {
	ID           string    `json:"id" validate:"required,max=64"`
	Kind         Kind      `json:"kind" validate:"required,oneof=photography design"`
	Title        string    `json:"title" validate:"max=200"`
	Description  string    `json:"description,omitempty" validate:"max=5000"`
	URLs         []string  `json:"urls" validate:"required,min=1,dive,required"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	HighResURL   string    `json:"high_res_url,omitempty"`
	Category     string    `json:"category" validate:"max=100"`
	Tags         []string  `json:"tags,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LikeCount    int64     `json:"like_count" validate:"gte=0"`
	CommentCount int64     `json:"comment_count" validate:"gte=0"`
	ShareCount   int64     `json:"share_count" validate:"gte=0"`
	ViewCount    int64     `json:"view_count" validate:"gte=0"`
}

// Validate checks the cross-field rules that struct tags cannot express.
func (m *MediaItem) Validate() error {
	if m.Kind == KindPhotography && len(m.URLs) > 1 {
		return fmt.Errorf("%w: photography item %s has %d urls, want 1", ErrValidation, m.ID, len(m.URLs))
	}
	return nil
}

// PrimaryURL returns the first (cover) URL of the item.
func (m *MediaItem) PrimaryURL() string {
	if len(m.URLs) == 0 {
		return ""
	}
	return m.URLs[0]
}

// PhotographyItem is a record of the photography collection.
type PhotographyItem struct {
	ID            string    `json:"id" validate:"required,max=64"`
	Title         string    `json:"title" validate:"required,max=200"`
	Category      string    `json:"category" validate:"max=100"`
	Image         string    `json:"image" validate:"required"`
	Description   string    `json:"description,omitempty" validate:"max=5000"`
	Year          int       `json:"year,omitempty" validate:"omitempty,gte=1900,lte=2100"`
	EventName     string    `json:"event_name,omitempty"`
	CameraMake    string    `json:"camera_make,omitempty"`
	CameraModel   string    `json:"camera_model,omitempty"`
	LensModel     string    `json:"lens_model,omitempty"`
	ISO           int       `json:"iso,omitempty" validate:"gte=0"`
	Aperture      string    `json:"aperture,omitempty"`
	ShutterSpeed  string    `json:"shutter_speed,omitempty"`
	FocalLength   string    `json:"focal_length,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	LikesCount    int64     `json:"likes_count" validate:"gte=0"`
	CommentsCount int64     `json:"comments_count" validate:"gte=0"`
	SharesCount   int64     `json:"shares_count" validate:"gte=0"`
	ViewsCount    int64     `json:"views_count" validate:"gte=0"`
	Created       time.Time `json:"created"`
}

// ToMediaItem projects the record. fileURL maps a stored filename to a public URL.
func (p *PhotographyItem) ToMediaItem(fileURL func(filename string) string) MediaItem {
	return MediaItem{
		ID:           p.ID,
		Kind:         KindPhotography,
		Title:        p.Title,
		Description:  p.Description,
		URLs:         []string{fileURL(p.Image)},
		Category:     p.Category,
		Tags:         p.Tags,
		CreatedAt:    p.Created,
		LikeCount:    p.LikesCount,
		CommentCount: p.CommentsCount,
		ShareCount:   p.SharesCount,
		ViewCount:    p.ViewsCount,
	}
}

// DesignProject is a record of the design_projects collection.
type DesignProject struct {
	ID            string    `json:"id" validate:"required,max=64"`
	Title         string    `json:"title" validate:"required,max=200"`
	Category      string    `json:"category" validate:"max=100"`
	Description   string    `json:"description,omitempty" validate:"max=5000"`
	Images        []string  `json:"images" validate:"required,min=1,dive,required"`
	Client        string    `json:"client,omitempty"`
	Year          int       `json:"year,omitempty" validate:"omitempty,gte=1900,lte=2100"`
	Link          string    `json:"link,omitempty" validate:"omitempty,url"`
	Tags          []string  `json:"tags,omitempty"`
	LikesCount    int64     `json:"likes_count" validate:"gte=0"`
	CommentsCount int64     `json:"comments_count" validate:"gte=0"`
	SharesCount   int64     `json:"shares_count" validate:"gte=0"`
	ViewsCount    int64     `json:"views_count" validate:"gte=0"`
	Created       time.Time `json:"created"`
}

// ToMediaItem projects the record, keeping gallery order.
func (d *DesignProject) ToMediaItem(fileURL func(filename string) string) MediaItem {
	urls := make([]string, 0, len(d.Images))
	for _, img := range d.Images {
		urls = append(urls, fileURL(img))
	}
	return MediaItem{
		ID:           d.ID,
		Kind:         KindDesign,
		Title:        d.Title,
		Description:  d.Description,
		URLs:         urls,
		Category:     d.Category,
		Tags:         d.Tags,
		CreatedAt:    d.Created,
		LikeCount:    d.LikesCount,
		CommentCount: d.CommentsCount,
		ShareCount:   d.SharesCount,
		ViewCount:    d.ViewsCount,
	}
}

// HeroImage is a record of the hero_images collection.
type HeroImage struct {
	ID      string    `json:"id" validate:"required,max=64"`
	Title   string    `json:"title" validate:"max=200"`
	Image   string    `json:"image" validate:"required"`
	URL     string    `json:"url,omitempty"`
	Active  bool      `json:"active"`
	Created time.Time `json:"created"`
}

// Comment is a root comment or a single-level admin reply (ParentID set).
type Comment struct {
	ID         string    `json:"id"`
	ItemID     string    `json:"item_id" validate:"required,max=64"`
	ItemKind   Kind      `json:"item_kind" validate:"required,oneof=photography design"`
	AuthorName string    `json:"author_name" validate:"required,notblank,max=80"`
	Content    string    `json:"content" validate:"required,notblank,max=2000"`
	Approved   bool      `json:"approved"`
	IsAdmin    bool      `json:"is_admin"`
	ParentID   string    `json:"parent_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsReply reports whether the comment hangs off a root comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != ""
}

// Thread is a root comment with its replies in creation order.
type Thread struct {
	Comment
	Replies []Comment `json:"replies"`
}

// FavoriteEntry links an authenticated user to an item.
type FavoriteEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id" validate:"required"`
	ItemID    string    `json:"item_id" validate:"required,max=64"`
	ItemKind  Kind      `json:"item_kind" validate:"required,oneof=photography design"`
	CreatedAt time.Time `json:"created_at"`
}

// ViewSample is one entry of a viewer's browsing history.
type ViewSample struct {
	ItemID       string    `json:"item_id" validate:"required,max=64"`
	Category     string    `json:"category,omitempty" validate:"max=100"`
	DwellSeconds float64   `json:"dwell_seconds" validate:"gte=0,lte=86400"`
	Timestamp    time.Time `json:"timestamp"`
}
