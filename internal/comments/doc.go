// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

// Package comments implements the two-level comment thread and its
// moderation workflow.
//
// A root comment moves Pending -> Approved or Pending -> Rejected, and both
// transitions are terminal. Rejection deletes the comment and its replies.
// Only admins reply, replies are one level deep, and they are never
// moderated. Public listings show approved roots only; admin listings show
// everything.
package comments
