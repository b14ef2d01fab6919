// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package pbimport

import (
	"fmt"
	"strings"

	"github.com/tomtom215/folio/internal/database"
	"github.com/tomtom215/folio/internal/media"
	"github.com/tomtom215/folio/internal/validation"
)

// PocketBase collection names.
const (
	CollectionPhotography   = "photography"
	CollectionDesign        = "design_projects"
	CollectionDesignLegacy  = "graphic_design"
	CollectionHeroes        = "hero_images"
	CollectionUsers         = "users"
	CollectionComments      = "comments"
	CollectionFavorites     = "favorites"
	thumbnailSize           = "400x400"
	pocketBaseAdminRoleName = "admin"
)

// FileURLFunc builds the public URL of a stored file.
type FileURLFunc func(collection, recordID, filename, thumb string) string

// Mapper converts PocketBase rows into typed records.
type Mapper struct {
	fileURL FileURLFunc
}

// NewMapper creates a mapper that resolves file names with fileURL.
func NewMapper(fileURL FileURLFunc) *Mapper {
	return &Mapper{fileURL: fileURL}
}

func counters(r Record) (likes, comments, shares, views int64) {
	return max(r.Int("likes_count"), 0), max(r.Int("comments_count"), 0),
		max(r.Int("shares_count"), 0), max(r.Int("views_count"), 0)
}

// Photography maps a photography row. The thumbnail and high-res URLs are
// derived from the same stored file unless a dedicated high-res file exists.
func (m *Mapper) Photography(r Record) (media.MediaItem, error) {
	p := media.PhotographyItem{
		ID:          r.String("id"),
		Title:       r.First("title"),
		Category:    r.First("category"),
		Image:       r.First("image"),
		Description: r.First("description"),
		Tags:        r.List("tags"),
		Created:     r.Time("created"),
	}
	p.LikesCount, p.CommentsCount, p.SharesCount, p.ViewsCount = counters(r)
	if err := validation.Validate(&p); err != nil {
		return media.MediaItem{}, fmt.Errorf("photography %s: %w", p.ID, err)
	}

	item := p.ToMediaItem(func(name string) string {
		return m.fileURL(CollectionPhotography, p.ID, name, "")
	})
	item.ThumbnailURL = m.fileURL(CollectionPhotography, p.ID, p.Image, thumbnailSize)
	if hi := r.First("high_res_image", "image_hd"); hi != "" {
		item.HighResURL = m.fileURL(CollectionPhotography, p.ID, hi, "")
	}
	return m.check(item)
}

// Design maps a design_projects (or legacy graphic_design) row. The cover
// is the first image.
func (m *Mapper) Design(collection string, r Record) (media.MediaItem, error) {
	images := r.List("images")
	if len(images) == 0 {
		if cover := r.First("image", "cover"); cover != "" {
			images = []string{cover}
		}
	}
	d := media.DesignProject{
		ID:          r.String("id"),
		Title:       r.First("title"),
		Category:    r.First("category"),
		Description: r.First("description"),
		Images:      images,
		Client:      r.First("client"),
		Tags:        r.List("tags"),
		Created:     r.Time("created"),
	}
	d.LikesCount, d.CommentsCount, d.SharesCount, d.ViewsCount = counters(r)
	if err := validation.Validate(&d); err != nil {
		return media.MediaItem{}, fmt.Errorf("design project %s: %w", d.ID, err)
	}

	item := d.ToMediaItem(func(name string) string {
		return m.fileURL(collection, d.ID, name, "")
	})
	item.ThumbnailURL = m.fileURL(collection, d.ID, d.Images[0], thumbnailSize)
	return m.check(item)
}

func (m *Mapper) check(item media.MediaItem) (media.MediaItem, error) {
	if err := validation.Validate(&item); err != nil {
		return media.MediaItem{}, fmt.Errorf("item %s: %w", item.ID, err)
	}
	if err := item.Validate(); err != nil {
		return media.MediaItem{}, err
	}
	return item, nil
}

// Hero maps a hero_images row. Rows without an active column are treated
// as active.
func (m *Mapper) Hero(r Record) (media.HeroImage, error) {
	h := media.HeroImage{
		ID:      r.String("id"),
		Title:   r.First("title", "page"),
		Image:   r.First("image"),
		Active:  true,
		Created: r.Time("created"),
	}
	if _, ok := r["active"]; ok {
		h.Active = r.Bool("active")
	}
	if err := validation.Validate(&h); err != nil {
		return media.HeroImage{}, fmt.Errorf("hero %s: %w", h.ID, err)
	}
	h.URL = m.fileURL(CollectionHeroes, h.ID, h.Image, "")
	return h, nil
}

// Comment maps a comments row. The target item is whichever of photo_id
// or project_id is set.
func (m *Mapper) Comment(r Record) (media.Comment, error) {
	c := media.Comment{
		ID:         r.String("id"),
		AuthorName: r.First("user_name", "author_name"),
		Content:    strings.TrimSpace(r.String("content")),
		Approved:   r.Bool("approved"),
		IsAdmin:    r.Bool("is_admin"),
		ParentID:   r.First("parent_id"),
		CreatedAt:  r.Time("created"),
	}
	switch {
	case r.First("photo_id") != "":
		c.ItemID, c.ItemKind = r.First("photo_id"), media.KindPhotography
	case r.First("project_id") != "":
		c.ItemID, c.ItemKind = r.First("project_id"), media.KindDesign
	}
	if c.AuthorName == "" {
		c.AuthorName = "Anonymous"
	}
	if err := validation.Validate(&c); err != nil {
		return media.Comment{}, fmt.Errorf("comment %s: %w", c.ID, err)
	}
	return c, nil
}

// Favorite maps a favorites row.
func (m *Mapper) Favorite(r Record) (media.FavoriteEntry, error) {
	f := media.FavoriteEntry{
		ID:        r.String("id"),
		UserID:    r.First("user"),
		CreatedAt: r.Time("created"),
	}
	switch {
	case r.First("photo") != "":
		f.ItemID, f.ItemKind = r.First("photo"), media.KindPhotography
	case r.First("project") != "":
		f.ItemID, f.ItemKind = r.First("project"), media.KindDesign
	}
	if err := validation.Validate(&f); err != nil {
		return media.FavoriteEntry{}, fmt.Errorf("favorite %s: %w", f.ID, err)
	}
	return f, nil
}

// User maps a users row. PocketBase stores bcrypt hashes, which the auth
// service verifies directly.
func (m *Mapper) User(r Record) (database.User, error) {
	u := database.User{
		ID:           r.String("id"),
		Email:        strings.ToLower(r.First("email")),
		Name:         r.First("name", "username"),
		PasswordHash: r.First("passwordHash", "password_hash"),
		Role:         media.RoleViewer,
		CreatedAt:    r.Time("created"),
	}
	if strings.EqualFold(r.First("role"), pocketBaseAdminRoleName) {
		u.Role = media.RoleAdmin
	}
	if u.ID == "" || u.Email == "" || !strings.HasPrefix(u.PasswordHash, "$2") {
		return database.User{}, fmt.Errorf("user %q: %w: missing email or bcrypt hash", u.ID, media.ErrValidation)
	}
	return u, nil
}
