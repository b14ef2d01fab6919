// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/folio/internal/logging"
	"github.com/tomtom215/folio/internal/media"
	"github.com/tomtom215/folio/internal/metrics"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{name: "generates new id", incoming: ""},
		{name: "preserves upstream id", incoming: "upstream-123", wantSame: true},
		{name: "replaces oversized id", incoming: strings.Repeat("x", 500)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var captured string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured = logging.RequestIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set("X-Request-ID", tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get("X-Request-ID")
			if got != captured {
				t.Errorf("header %q != context %q", got, captured)
			}
			if tt.wantSame {
				if got != tt.incoming {
					t.Errorf("X-Request-ID = %q, want %q", got, tt.incoming)
				}
				return
			}
			if _, err := uuid.Parse(got); err != nil {
				t.Errorf("generated id %q is not a uuid: %v", got, err)
			}
		})
	}
}

func TestPrometheusMetrics_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/api/v1/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/items/{id}", "418")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/items/abc123", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("requests for pattern = %v, want %v", got, before+1)
	}
}

func TestPrometheusMetrics_DefaultStatus(t *testing.T) {
	h := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodPost, "unmatched", "200")
	before := testutil.ToFloat64(counter)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/x", nil))

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("unmatched 200 = %v, want %v", got, before+1)
	}
}

func TestViewerKey(t *testing.T) {
	t.Parallel()

	capture := func(dst *media.Viewer) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*dst = media.ViewerFromContext(r.Context())
		})
	}

	t.Run("issues cookie on first contact", func(t *testing.T) {
		t.Parallel()
		var v media.Viewer
		rec := httptest.NewRecorder()
		ViewerKey(true)(capture(&v)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if v.Key == "" {
			t.Fatal("viewer key not set")
		}
		cookies := rec.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Name != ViewerCookie || cookies[0].Value != v.Key || !cookies[0].Secure {
			t.Errorf("cookies = %+v", cookies)
		}
	})

	t.Run("header wins over cookie", func(t *testing.T) {
		t.Parallel()
		var v media.Viewer
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(ViewerHeader, "from-header")
		req.AddCookie(&http.Cookie{Name: ViewerCookie, Value: "from-cookie"})
		rec := httptest.NewRecorder()
		ViewerKey(false)(capture(&v)).ServeHTTP(rec, req)

		if v.Key != "from-header" {
			t.Errorf("Key = %q, want from-header", v.Key)
		}
		if len(rec.Result().Cookies()) != 0 {
			t.Error("no cookie should be issued when a key is present")
		}
	})

	t.Run("keeps signed-in identity", func(t *testing.T) {
		t.Parallel()
		var v media.Viewer
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: ViewerCookie, Value: "browser-1"})
		req = req.WithContext(media.WithViewer(req.Context(), media.Viewer{UserID: "u1", Roles: []string{media.RoleViewer}}))
		ViewerKey(false)(capture(&v)).ServeHTTP(httptest.NewRecorder(), req)

		if v.UserID != "u1" || v.Key != "browser-1" {
			t.Errorf("viewer = %+v", v)
		}
		if v.EngagementKey() != "user:u1" {
			t.Errorf("EngagementKey() = %q, want user:u1", v.EngagementKey())
		}
	})
}
