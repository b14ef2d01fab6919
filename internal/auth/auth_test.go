// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/folio/internal/config"
	"github.com/tomtom215/folio/internal/database"
	"github.com/tomtom215/folio/internal/media"
)

const testSecret = "test-secret-that-is-at-least-32-characters"

// memUsers implements UserStore in memory.
type memUsers struct {
	mu    sync.Mutex
	users map[string]*database.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*database.User)}
}

func (m *memUsers) CreateUser(_ context.Context, u *database.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = "u-" + u.Email
	}
	u.Email = strings.ToLower(u.Email)
	c := *u
	m.users[u.ID] = &c
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id, hash, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return media.ErrNotFound
	}
	u.PasswordHash, u.Role = hash, role
	return nil
}

func (m *memUsers) UserByEmail(_ context.Context, email string) (*database.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			c := *u
			return &c, nil
		}
	}
	return nil, media.ErrNotFound
}

func (m *memUsers) UserByID(_ context.Context, id string) (*database.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, media.ErrNotFound
	}
	c := *u
	return &c, nil
}

func newTestJWT(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&config.SecurityConfig{JWTSecret: testSecret, SessionTimeout: time.Hour})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	return m
}

// newTestService returns a service with one viewer account
// (ana@example.com / correct-horse) and a lockout after 3 failures.
func newTestService(t *testing.T) (*Service, *memUsers) {
	t.Helper()
	users := newMemUsers()
	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	_ = users.CreateUser(context.Background(), &database.User{
		ID: "u1", Email: "ana@example.com", Name: "Ana", PasswordHash: hash, Role: media.RoleViewer,
	})

	lockout := NewLockoutManager(LockoutConfig{MaxAttempts: 3, LockoutDuration: time.Minute})
	svc, err := NewService(users, newTestJWT(t), NewMemorySessionStore(), lockout, time.Hour, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc, users
}
