// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package pbimport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/folio/internal/config"
	"github.com/tomtom215/folio/internal/database"
	"github.com/tomtom215/folio/internal/logging"
	"github.com/tomtom215/folio/internal/media"
)

// Sink receives imported records. *database.DB implements it.
type Sink interface {
	UpsertItem(ctx context.Context, item *media.MediaItem) error
	UpsertHero(ctx context.Context, h *media.HeroImage) error
	CreateUser(ctx context.Context, u *database.User) error
	CreateComment(ctx context.Context, c *media.Comment) error
	CreateFavorite(ctx context.Context, f *media.FavoriteEntry) error
	FileURL(collection, recordID, filename, thumb string) string
}

// Importer copies a PocketBase data.db into the gallery database. Items and
// heroes are upserted; users, comments and favorites keep their PocketBase
// IDs, so rows that already exist are skipped and a rerun is safe.
type Importer struct {
	cfg    config.ImportConfig
	sink   Sink
	mapper *Mapper
	logger zerolog.Logger

	mu      sync.RWMutex
	running bool
	stats   *ImportStats
}

// NewImporter creates a PocketBase importer writing into sink.
func NewImporter(cfg config.ImportConfig, sink Sink) *Importer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	return &Importer{
		cfg:    cfg,
		sink:   sink,
		mapper: NewMapper(sink.FileURL),
		logger: logging.WithComponent("pbimport"),
	}
}

type step struct {
	collection string
	tables     []string
	apply      func(ctx context.Context, table string, r Record) error
}

// Import reads every known collection and writes it to the sink. Missing
// collections are skipped. Row-level failures are counted, not returned.
func (i *Importer) Import(ctx context.Context) (stats *ImportStats, err error) {
	i.mu.Lock()
	if i.running {
		i.mu.Unlock()
		return nil, errors.New("import already in progress")
	}
	i.running = true
	i.stats = newImportStats(i.cfg.DryRun)
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.running = false
		i.stats.EndTime = time.Now()
		i.mu.Unlock()
		stats = i.Stats()
	}()

	reader, err := NewSQLiteReader(i.cfg.PocketBasePath)
	if err != nil {
		return i.Stats(), err
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil {
			i.logger.Warn().Err(cerr).Msg("Error closing PocketBase database")
		}
	}()

	// Replies reference their root, so they are held back until every root
	// comment has been written.
	var replies []Record

	steps := []step{
		{CollectionPhotography, []string{CollectionPhotography}, i.importPhotography},
		{CollectionDesign, []string{CollectionDesign, CollectionDesignLegacy}, i.importDesign},
		{CollectionHeroes, []string{CollectionHeroes}, i.importHero},
		{CollectionUsers, []string{CollectionUsers}, i.importUser},
		{CollectionComments, []string{CollectionComments}, func(ctx context.Context, _ string, r Record) error {
			if r.First("parent_id") != "" {
				replies = append(replies, r)
				return errDeferred
			}
			return i.importComment(ctx, r)
		}},
		{CollectionFavorites, []string{CollectionFavorites}, i.importFavorite},
	}

	for _, s := range steps {
		if err := i.runStep(ctx, reader, s); err != nil {
			return i.Stats(), err
		}
		if s.collection == CollectionComments {
			if err := i.importReplies(ctx, replies); err != nil {
				return i.Stats(), err
			}
		}
	}

	totals := i.Stats().Totals()
	i.logger.Info().
		Int64("read", totals.Read).
		Int64("imported", totals.Imported).
		Int64("skipped", totals.Skipped).
		Int64("errors", totals.Errors).
		Bool("dry_run", i.cfg.DryRun).
		Dur("duration", i.Stats().Duration()).
		Msg("PocketBase import complete")
	return i.Stats(), nil
}

var errDeferred = errors.New("deferred")

func (i *Importer) runStep(ctx context.Context, reader *SQLiteReader, s step) error {
	table := ""
	for _, t := range s.tables {
		ok, err := reader.HasTable(ctx, t)
		if err != nil {
			return err
		}
		if ok {
			table = t
			break
		}
	}
	if table == "" {
		i.logger.Info().Str("collection", s.collection).Msg("Collection not present, skipping")
		return nil
	}

	total, err := reader.Count(ctx, table)
	if err != nil {
		return err
	}
	i.logger.Info().Str("collection", s.collection).Str("table", table).Int64("rows", total).Msg("Importing collection")

	var n int64
	err = reader.Each(ctx, table, func(r Record) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		n++
		i.record(s.collection, s.apply(ctx, table, r))
		if n%int64(i.cfg.BatchSize) == 0 {
			i.logger.Info().Str("collection", s.collection).Int64("processed", n).Int64("total", total).Msg("Import progress")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("import %s: %w", s.collection, err)
	}
	return nil
}

func (i *Importer) importReplies(ctx context.Context, replies []Record) error {
	for _, r := range replies {
		if err := ctx.Err(); err != nil {
			return err
		}
		i.record(CollectionComments, i.importComment(ctx, r))
	}
	return nil
}

// record classifies the outcome of one row.
func (i *Importer) record(collection string, err error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	c := i.stats.collection(collection)
	switch {
	case errors.Is(err, errDeferred):
		return
	case err == nil:
		c.Read++
		c.Imported++
	case errors.Is(err, media.ErrValidation), errors.Is(err, media.ErrConflict):
		c.Read++
		c.Skipped++
		i.logger.Debug().Err(err).Str("collection", collection).Msg("Skipped record")
	default:
		c.Read++
		c.Errors++
		i.logger.Warn().Err(err).Str("collection", collection).Msg("Failed to import record")
	}
}

func (i *Importer) importPhotography(ctx context.Context, _ string, r Record) error {
	item, err := i.mapper.Photography(r)
	if err != nil || i.cfg.DryRun {
		return err
	}
	return i.sink.UpsertItem(ctx, &item)
}

func (i *Importer) importDesign(ctx context.Context, table string, r Record) error {
	item, err := i.mapper.Design(table, r)
	if err != nil || i.cfg.DryRun {
		return err
	}
	return i.sink.UpsertItem(ctx, &item)
}

func (i *Importer) importHero(ctx context.Context, _ string, r Record) error {
	h, err := i.mapper.Hero(r)
	if err != nil || i.cfg.DryRun {
		return err
	}
	return i.sink.UpsertHero(ctx, &h)
}

func (i *Importer) importUser(ctx context.Context, _ string, r Record) error {
	u, err := i.mapper.User(r)
	if err != nil || i.cfg.DryRun {
		return err
	}
	return i.sink.CreateUser(ctx, &u)
}

func (i *Importer) importComment(ctx context.Context, r Record) error {
	c, err := i.mapper.Comment(r)
	if err != nil || i.cfg.DryRun {
		return err
	}
	return i.sink.CreateComment(ctx, &c)
}

func (i *Importer) importFavorite(ctx context.Context, _ string, r Record) error {
	f, err := i.mapper.Favorite(r)
	if err != nil || i.cfg.DryRun {
		return err
	}
	return i.sink.CreateFavorite(ctx, &f)
}

// Stats returns a snapshot of the current or last run.
func (i *Importer) Stats() *ImportStats {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.stats == nil {
		return nil
	}
	cp := *i.stats
	cp.Collections = make(map[string]*CollectionStats, len(i.stats.Collections))
	for k, v := range i.stats.Collections {
		c := *v
		cp.Collections[k] = &c
	}
	return &cp
}

// IsRunning reports whether an import is in progress.
func (i *Importer) IsRunning() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.running
}
