// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

/*
Package engagement records likes, shares and views with optimistic local
updates and asynchronous backend confirmation.

A write goes through two phases. The Store applies it locally (liked flag,
pending Op, optimistic delta) and publishes an IncrementRequested event on the
watermill bus. The Syncer consumes the event, calls the Backend through a
circuit breaker and marks the Op synced or unsynced. The RetryLoop republishes
unsynced Ops and pending Ops that were never delivered.

Liked flags live in a KVStore (BadgerDB, Redis, a JSON file or memory) and are
written with SetNX, so a viewer can like an item at most once across restarts
and concurrent requests.
*/
package engagement
