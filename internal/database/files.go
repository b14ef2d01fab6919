// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package database

import (
	"net/url"
	"strings"
)

// FileURL builds the public URL of a stored file:
// {base}/api/files/{collection}/{record}/{filename}[?thumb=WxH].
// Absolute filenames are returned unchanged.
func FileURL(base, collection, recordID, filename, thumb string) string {
	if filename == "" {
		return ""
	}
	if strings.HasPrefix(filename, "http://") || strings.HasPrefix(filename, "https://") {
		return filename
	}
	u := strings.TrimRight(base, "/") + "/api/files/" +
		url.PathEscape(collection) + "/" + url.PathEscape(recordID) + "/" + url.PathEscape(filename)
	if thumb != "" {
		u += "?thumb=" + url.QueryEscape(thumb)
	}
	return u
}

// FileURL builds a file URL against the configured base.
func (db *DB) FileURL(collection, recordID, filename, thumb string) string {
	return FileURL(db.fileBaseURL, collection, recordID, filename, thumb)
}
