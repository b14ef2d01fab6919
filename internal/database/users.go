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

// User is a stored account. PasswordHash is a bcrypt hash.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Viewer returns the signed-in viewer for u.
func (u *User) Viewer() media.Viewer {
	return media.Viewer{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Roles:  []string{u.Role},
	}
}

// CreateUser stores u. Emails are compared case-insensitively.
func (db *DB) CreateUser(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = media.RoleViewer
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO users (id, email, name, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.CreatedAt)
	if err != nil {
		return classify(fmt.Errorf("create user %s: %w", u.Email, err))
	}
	return nil
}

// UpdatePassword replaces a user's password hash and role. Used by admin bootstrap.
func (db *DB) UpdatePassword(ctx context.Context, id, hash, role string) error {
	res, err := db.conn.ExecContext(ctx, "UPDATE users SET password_hash = ?, role = ? WHERE id = ?", hash, role, id)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", id, media.ErrNotFound)
	}
	return nil
}

// UserByEmail looks up a user by email.
func (db *DB) UserByEmail(ctx context.Context, email string) (*User, error) {
	return db.userWhere(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// UserByID looks up a user by ID.
func (db *DB) UserByID(ctx context.Context, id string) (*User, error) {
	return db.userWhere(ctx, "id = ?", id)
}

func (db *DB) userWhere(ctx context.Context, cond string, arg any) (*User, error) {
	var u User
	err := db.conn.QueryRowContext(ctx,
		"SELECT id, email, name, password_hash, role, created_at FROM users WHERE "+cond, arg).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", media.ErrNotFound)
	}
	if err != nil {
		return nil, classify(err)
	}
	return &u, nil
}
