// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/folio/internal/auth"
	"github.com/tomtom215/folio/internal/config"
	"github.com/tomtom215/folio/internal/recommend"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_Help(t *testing.T) {
	t.Parallel()
	out, err := run(t, "", "--help")
	if err != nil {
		t.Fatalf("--help error = %v", err)
	}
	for _, want := range []string{"serve", "import", "recommend", "hash-password"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q:\n%s", want, out)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	t.Parallel()
	out, err := run(t, "", "--version")
	if err != nil || !strings.HasPrefix(out, "folio version") {
		t.Errorf("--version = %q, %v", out, err)
	}
}

func TestHashPassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr bool
	}{
		{"argument", "", []string{"correct-horse"}, false},
		{"stdin", "correct-horse\n", nil, false},
		{"empty stdin", "", nil, true},
		{"too short", "", []string{"abc"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, err := run(t, tt.stdin, append([]string{"hash-password"}, tt.args...)...)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			hash := strings.TrimSpace(out)
			if !auth.CheckPassword(hash, "correct-horse") {
				t.Errorf("printed hash %q does not verify", hash)
			}
		})
	}
}

func TestImportPocketBase_Flags(t *testing.T) {
	t.Parallel()
	cmd := newImportPocketBaseCmd()
	for _, name := range []string{"path", "batch-size", "dry-run"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("missing flag --%s", name)
		}
	}
}

func TestEnsureJWTSecret(t *testing.T) {
	t.Parallel()
	dev := &config.Config{Server: config.ServerConfig{Environment: "development"}}
	if err := ensureJWTSecret(dev); err != nil {
		t.Fatalf("ensureJWTSecret(dev) error = %v", err)
	}
	if len(dev.Security.JWTSecret) != 64 {
		t.Errorf("ephemeral secret length = %d, want 64", len(dev.Security.JWTSecret))
	}

	kept := &config.Config{Security: config.SecurityConfig{JWTSecret: "configured"}}
	if err := ensureJWTSecret(kept); err != nil || kept.Security.JWTSecret != "configured" {
		t.Errorf("configured secret replaced: %q, %v", kept.Security.JWTSecret, err)
	}

	prod := &config.Config{Server: config.ServerConfig{Environment: "production"}}
	if err := ensureJWTSecret(prod); err == nil {
		t.Error("ensureJWTSecret(production) with empty secret succeeded")
	}
}

func TestPrintRecommendations(t *testing.T) {
	t.Parallel()
	resp := &recommend.Response{
		Items: []recommend.ScoredItem{{
			Score: 0.5,
			Terms: recommend.Terms{Recency: 1, Engagement: 0.25},
		}},
		TotalCandidates: 3,
		Metadata:        recommend.ResponseMetadata{Timestamp: time.Now()},
	}
	resp.Items[0].Item.ID = "p1"
	resp.Items[0].Item.Title = "Dunes"

	var out bytes.Buffer
	printRecommendations(&out, resp, false)
	if !strings.Contains(out.String(), "Dunes") || !strings.Contains(out.String(), "1 of 3 candidates") {
		t.Errorf("output = %q", out.String())
	}
	out.Reset()
	printRecommendations(&out, resp, true)
	if !strings.Contains(out.String(), "RECENCY") || !strings.Contains(out.String(), "0.250") {
		t.Errorf("explain output = %q", out.String())
	}
}
