// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

/*
Package cache provides a thread-safe in-memory cache with TTL support.

It backs two read paths that would otherwise hit DuckDB on every request:

  - Gallery listings (GET /api/v1/items), keyed by GenerateKey over the
    filter, cleared when an item or counter changes.
  - Favorite membership per signed-in user, loaded on first use and replaced
    after every toggle.

Expired entries are dropped lazily on Get and by a background sweep every
CleanupInterval. Close stops the sweep.

# Usage

	c := cache.New[[]media.MediaItem](time.Minute)
	defer c.Close()

	key := cache.GenerateKey("items", filter)
	if items, ok := c.Get(key); ok {
	    return items, nil
	}
	items, err := db.ListItems(ctx, filter)
	c.Set(key, items)

Stats and HitRate expose hit/miss counts for logging.
*/
package cache
