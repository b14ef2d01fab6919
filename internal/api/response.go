// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package api

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/folio/internal/auth"
	"github.com/tomtom215/folio/internal/logging"
	"github.com/tomtom215/folio/internal/media"
	"github.com/tomtom215/folio/internal/validation"
)

// Error codes returned in APIError.Code.
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeAccountLocked      = "ACCOUNT_LOCKED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// LoginPath is returned as a hint when a request needs a signed-in viewer.
const LoginPath = "/api/v1/auth/login"

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing and cache information.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
	Count       *int      `json:"count,omitempty"`
}

// APIError is the error body of a failed request.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// sanitizeLogValue escapes control characters to prevent log injection.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// respondJSON writes response with status. Responses are private to the
// viewer, so they are never cached by shared proxies.
func respondJSON(w http.ResponseWriter, status int, response *APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "private, no-cache")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData writes a success envelope.
func respondData(w http.ResponseWriter, status int, data interface{}, start time.Time, cached bool) {
	respondJSON(w, status, &APIResponse{
		Status: "success",
		Data:   data,
		Metadata: Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      cached,
		},
	})
}

// respondList writes a success envelope with an item count.
func respondList[T any](w http.ResponseWriter, items []T, start time.Time, cached bool) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   items,
		Metadata: Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      cached,
			Count:       &n,
		},
	})
}

// respondError writes an error envelope. err is logged when set.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	respondErrorDetails(w, status, code, message, nil, err)
}

func respondErrorDetails(w http.ResponseWriter, status int, code, message string, details map[string]interface{}, err error) {
	if err != nil {
		logging.Error().Str("code", code).Str("error", sanitizeLogValue(err.Error())).Msg("API error")
	}
	respondJSON(w, status, &APIResponse{
		Status:   "error",
		Metadata: Metadata{Timestamp: time.Now().UTC()},
		Error:    &APIError{Code: code, Message: message, Details: details},
	})
}

// respondErr maps a domain error onto an HTTP status and error code.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var (
		locked *auth.LockedError
		verr   *validation.RequestValidationError
	)
	switch {
	case errors.As(err, &locked):
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(locked.RetryAfter.Seconds()))))
		respondError(w, http.StatusTooManyRequests, ErrCodeAccountLocked, locked.Error(), nil)
	case errors.Is(err, media.ErrUnauthenticated):
		respondErrorDetails(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Sign in required",
			map[string]interface{}{"login": LoginPath}, nil)
	case errors.Is(err, media.ErrForbidden):
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "Not allowed", nil)
	case errors.As(err, &verr):
		respondErrorDetails(w, http.StatusBadRequest, ErrCodeValidation, verr.Error(), verr.Details(), nil)
	case errors.Is(err, media.ErrValidation):
		respondError(w, http.StatusBadRequest, ErrCodeValidation, strings.TrimPrefix(err.Error(), media.ErrValidation.Error()+": "), nil)
	case errors.Is(err, media.ErrNotFound):
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Not found", nil)
	case errors.Is(err, media.ErrConflict):
		respondError(w, http.StatusConflict, ErrCodeConflict, "Conflicting change", nil)
	case errors.Is(err, media.ErrNetworkFailure):
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Backend unavailable")
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Service temporarily unavailable", nil)
	default:
		logging.Ctx(r.Context()).Error().Str("path", sanitizeLogValue(r.URL.Path)).Err(err).Msg("Unhandled API error")
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Internal server error", nil)
	}
}

// Deny is the authz and auth deny hook; it writes the standard error envelope.
func Deny(w http.ResponseWriter, r *http.Request, err error) {
	respondErr(w, r, err)
}

// decodeJSON reads a JSON body into v. An empty body leaves v unchanged.
func decodeJSON(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: read body: %w", media.ErrValidation, err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("%w: request body too large", media.ErrValidation)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: malformed JSON body", media.ErrValidation)
	}
	return nil
}

// getIntParam extracts an integer query parameter with a default value.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// kindParam parses the optional kind query parameter.
func kindParam(r *http.Request) (media.Kind, error) {
	raw := r.URL.Query().Get("kind")
	if raw == "" {
		return "", nil
	}
	return media.ParseKind(raw)
}
