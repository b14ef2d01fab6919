// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

/*
Package pbimport migrates a PocketBase data.db into the gallery database.

The PocketBase SQLite file is opened read-only through the pure-Go
modernc.org/sqlite driver, so the importer can run against a live
PocketBase instance and needs no cgo.

Collections are imported in dependency order:

	photography        -> media items (kind photography)
	design_projects    -> media items (kind design); graphic_design is the legacy name
	hero_images        -> hero images
	users              -> accounts, bcrypt hashes kept as-is
	comments           -> roots first, then admin replies
	favorites          -> per-user favorites

Stored file names become public URLs of the form
{base}/api/files/{collection}/{id}/{filename}, with a 400x400 thumbnail.

Rows that fail validation or already exist are counted as skipped. Items
are upserted without touching live engagement counters, so an import can
be repeated to pick up new content.

Usage:

	imp := pbimport.NewImporter(cfg.Import, db)
	stats, err := imp.Import(ctx)
*/
package pbimport
