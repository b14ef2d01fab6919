// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package media

import "errors"

// Error taxonomy shared by every gallery operation. Callers classify with errors.Is;
// producers wrap with fmt.Errorf("...: %w", ErrX).
var (
	// ErrUnauthenticated means the action requires a signed-in session.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden means the session is valid but lacks the required role.
	ErrForbidden = errors.New("insufficient permissions")

	// ErrNetworkFailure is a transient backend failure (unreachable, 5xx, breaker open).
	ErrNetworkFailure = errors.New("backend unavailable")

	// ErrValidation means the input was malformed.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict means the requested transition is not allowed from the current state.
	ErrConflict = errors.New("state conflict")
)
