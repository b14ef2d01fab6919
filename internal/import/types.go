// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package pbimport

import (
	"sort"
	"time"
)

// CollectionStats counts what happened to one collection's rows.
type CollectionStats struct {
	// Read is the number of rows read from the source.
	Read int64 `json:"read"`

	// Imported is the number of rows written (or that would be, on a dry run).
	Imported int64 `json:"imported"`

	// Skipped counts rows that failed validation or already existed.
	Skipped int64 `json:"skipped"`

	// Errors counts rows the destination rejected for other reasons.
	Errors int64 `json:"errors"`
}

// ImportStats summarizes an import run.
type ImportStats struct {
	Collections map[string]*CollectionStats `json:"collections"`
	StartTime   time.Time                   `json:"start_time"`
	EndTime     time.Time                   `json:"end_time"`
	DryRun      bool                        `json:"dry_run"`
}

func newImportStats(dryRun bool) *ImportStats {
	return &ImportStats{
		Collections: make(map[string]*CollectionStats),
		StartTime:   time.Now(),
		DryRun:      dryRun,
	}
}

func (s *ImportStats) collection(name string) *CollectionStats {
	c, ok := s.Collections[name]
	if !ok {
		c = &CollectionStats{}
		s.Collections[name] = c
	}
	return c
}

// Duration returns how long the import ran, or has been running.
func (s *ImportStats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Totals sums the per-collection counters.
func (s *ImportStats) Totals() CollectionStats {
	var t CollectionStats
	for _, c := range s.Collections {
		t.Read += c.Read
		t.Imported += c.Imported
		t.Skipped += c.Skipped
		t.Errors += c.Errors
	}
	return t
}

// Names returns the imported collection names in order.
func (s *ImportStats) Names() []string {
	names := make([]string, 0, len(s.Collections))
	for n := range s.Collections {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
