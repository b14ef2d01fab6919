// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/folio/internal/config"
	"github.com/tomtom215/folio/internal/database"
	"github.com/tomtom215/folio/internal/media"
	"github.com/tomtom215/folio/internal/metrics"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
// It wraps media.ErrUnauthenticated.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", media.ErrUnauthenticated)

// LockedError reports a sign-in refused because the email is locked.
type LockedError struct {
	RetryAfter time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked, retry in %s", e.RetryAfter.Round(time.Second))
}

// Is makes a LockedError match media.ErrForbidden.
func (e *LockedError) Is(target error) bool {
	return target == media.ErrForbidden
}

// UserStore is the slice of the database used for sign-in.
type UserStore interface {
	CreateUser(ctx context.Context, u *database.User) error
	UpdatePassword(ctx context.Context, id, hash, role string) error
	UserByEmail(ctx context.Context, email string) (*database.User, error)
	UserByID(ctx context.Context, id string) (*database.User, error)
}

// SignInResult is returned by a successful SignIn.
type SignInResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Viewer    media.Viewer `json:"user"`

	// Session is the server-side session referenced by the cookie.
	Session *Session `json:"-"`
}

// Service signs users in and resolves tokens and sessions into viewers.
type Service struct {
	users    UserStore
	jwt      *JWTManager
	sessions SessionStore
	lockout  *LockoutManager
	ttl      time.Duration
	logger   zerolog.Logger
}

// NewService creates the auth service. lockout may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(users UserStore, jwtManager *JWTManager, sessions SessionStore, lockout *LockoutManager, ttl time.Duration, logger zerolog.Logger) (*Service, error) {
	if users == nil || jwtManager == nil || sessions == nil {
		return nil, errors.New("auth: users, jwt manager and session store are required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		users:    users,
		jwt:      jwtManager,
		sessions: sessions,
		lockout:  lockout,
		ttl:      ttl,
		logger:   logger.With().Str("component", "auth").Logger(),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignIn verifies email and password and opens a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	subject := normalizeEmail(email)
	if subject == "" || password == "" {
		metrics.RecordLogin("invalid")
		return nil, fmt.Errorf("%w: email and password are required", media.ErrValidation)
	}

	if locked, remaining := s.lockout.CheckLocked(subject); locked {
		metrics.RecordLogin("locked")
		return nil, &LockedError{RetryAfter: remaining}
	}

	user, err := s.users.UserByEmail(ctx, subject)
	switch {
	case errors.Is(err, media.ErrNotFound):
		// Burn a comparison so unknown emails take as long as wrong passwords.
		CheckPassword(dummyHash(), password)
		return nil, s.failed(subject)
	case err != nil:
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, s.failed(subject)
	}

	s.lockout.RecordSuccessfulLogin(subject)
	viewer := user.Viewer()

	token, expires, err := s.jwt.GenerateToken(viewer)
	if err != nil {
		return nil, err
	}
	session := NewSession(viewer, s.ttl)
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	metrics.RecordLogin("success")
	metrics.ActiveSessions.Inc()
	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("User signed in")

	return &SignInResult{Token: token, ExpiresAt: expires, Viewer: viewer, Session: session}, nil
}

func (s *Service) failed(subject string) error {
	metrics.RecordLogin("invalid")
	if locked, remaining := s.lockout.RecordFailedAttempt(subject); locked {
		return &LockedError{RetryAfter: remaining}
	}
	return ErrInvalidCredentials
}

// SignOut ends a session. Unknown sessions are ignored.
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	metrics.ActiveSessions.Dec()
	return nil
}

// ViewerForToken validates a bearer token.
func (s *Service) ViewerForToken(token string) (media.Viewer, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return media.Viewer{}, err
	}
	return claims.Viewer(), nil
}

// ViewerForSession resolves a session cookie and slides its expiry.
func (s *Service) ViewerForSession(ctx context.Context, sessionID string) (media.Viewer, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return media.Viewer{}, fmt.Errorf("%w: %w", media.ErrUnauthenticated, err)
	}
	if err := s.sessions.Touch(ctx, sessionID, time.Now().Add(s.ttl)); err != nil {
		s.logger.Debug().Err(err).Msg("Session touch failed")
	}
	return session.Viewer(), nil
}

// EnsureAdmin creates the bootstrap admin, or resets its password and role
// when the account already exists. An empty email is a no-op.
func (s *Service) EnsureAdmin(ctx context.Context, cfg *config.SecurityConfig) error {
	email := normalizeEmail(cfg.AdminEmail)
	if email == "" {
		return nil
	}
	hash, err := HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("admin password: %w", err)
	}

	existing, err := s.users.UserByEmail(ctx, email)
	switch {
	case err == nil:
		if CheckPassword(existing.PasswordHash, cfg.AdminPassword) && existing.Role == media.RoleAdmin {
			return nil
		}
		if err := s.users.UpdatePassword(ctx, existing.ID, hash, media.RoleAdmin); err != nil {
			return fmt.Errorf("update admin: %w", err)
		}
		s.logger.Info().Str("email", email).Msg("Bootstrap admin updated")
		return nil
	case !errors.Is(err, media.ErrNotFound):
		return fmt.Errorf("lookup admin: %w", err)
	}

	name := cfg.AdminName
	if name == "" {
		name = "Admin"
	}
	if err := s.users.CreateUser(ctx, &database.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         media.RoleAdmin,
	}); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	s.logger.Info().Str("email", email).Msg("Bootstrap admin created")
	return nil
}

// Sessions exposes the session store for the janitor.
func (s *Service) Sessions() SessionStore {
	return s.sessions
}

// dummyHash returns a bcrypt hash at bcryptCost that matches no password.
var dummyHash = sync.OnceValue(func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte(generateSessionID()), bcryptCost)
	if err != nil {
		return ""
	}
	return string(hash)
})
