// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/folio/internal/config"
	"github.com/tomtom215/folio/internal/media"
)

func TestNewJWTManager_EmptySecret(t *testing.T) {
	t.Parallel()
	if _, err := NewJWTManager(&config.SecurityConfig{}); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestJWT_RoundTrip(t *testing.T) {
	t.Parallel()
	m := newTestJWT(t)
	v := media.Viewer{UserID: "u1", Name: "Ana", Email: "ana@example.com", Roles: []string{media.RoleAdmin}}

	token, expires, err := m.GenerateToken(v)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Errorf("expires = %v, want future", expires)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	got := claims.Viewer()
	if got.UserID != "u1" || got.Name != "Ana" || !got.IsAdmin() {
		t.Errorf("Viewer() = %+v", got)
	}
}

func TestJWT_RejectsAnonymous(t *testing.T) {
	t.Parallel()
	if _, _, err := newTestJWT(t).GenerateToken(media.Viewer{}); !errors.Is(err, media.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestJWT_ValidateFailures(t *testing.T) {
	t.Parallel()
	m := newTestJWT(t)
	token, _, _ := m.GenerateToken(media.Viewer{UserID: "u1", Roles: []string{media.RoleViewer}})

	other, _ := NewJWTManager(&config.SecurityConfig{JWTSecret: "another-secret-that-is-also-long-enough"})

	expired := newTestJWT(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, _ := expired.GenerateToken(media.Viewer{UserID: "u1"})

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Role:             media.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: tokenIssuer},
	})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		mgr   *JWTManager
		token string
	}{
		{"garbage", m, "not.a.token"},
		{"wrong secret", other, token},
		{"expired", m, old},
		{"alg none", m, unsigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := tt.mgr.ValidateToken(tt.token); !errors.Is(err, media.ErrUnauthenticated) {
				t.Errorf("ValidateToken() error = %v, want ErrUnauthenticated", err)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	t.Parallel()
	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !CheckPassword(hash, "correct-horse") {
		t.Error("CheckPassword() rejected the right password")
	}
	if CheckPassword(hash, "wrong-horse") {
		t.Error("CheckPassword() accepted a wrong password")
	}
	if _, err := HashPassword("short"); !errors.Is(err, media.ErrValidation) {
		t.Errorf("short password error = %v, want ErrValidation", err)
	}
}
