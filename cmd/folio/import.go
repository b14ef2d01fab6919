// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomtom215/folio/internal/database"
	pbimport "github.com/tomtom215/folio/internal/import"
	"github.com/tomtom215/folio/internal/logging"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import content from another gallery backend",
	}
	cmd.AddCommand(newImportPocketBaseCmd())
	return cmd
}

func newImportPocketBaseCmd() *cobra.Command {
	var (
		path      string
		batchSize int
		dryRun    bool
	)
	cmd := &cobra.Command{
		Use:   "pocketbase",
		Short: "Import items, heroes, users, comments and favorites from a PocketBase data.db",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("path") {
				cfg.Import.PocketBasePath = path
			}
			if cmd.Flags().Changed("batch-size") {
				cfg.Import.BatchSize = batchSize
			}
			if cmd.Flags().Changed("dry-run") {
				cfg.Import.DryRun = dryRun
			}
			if cfg.Import.PocketBasePath == "" {
				return errors.New("pocketbase path is required (--path or POCKETBASE_PATH)")
			}

			db, err := database.New(&cfg.Database, cfg.Media.FileBaseURL)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					logging.Error().Err(err).Msg("Error closing database")
				}
			}()

			stats, err := pbimport.NewImporter(cfg.Import, db).Import(cmd.Context())
			if stats != nil {
				printImportStats(cmd.OutOrStdout(), stats)
			}
			if err == nil && stats != nil && !stats.DryRun {
				if n, cErr := db.CountItems(cmd.Context()); cErr == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "gallery now holds %d items\n", n)
				}
			}
			return err
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "path to the PocketBase data.db")
	cmd.Flags().IntVar(&batchSize, "batch-size", 500, "rows between progress log lines")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "read and validate without writing")
	return cmd
}

func printImportStats(w io.Writer, stats *pbimport.ImportStats) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLLECTION\tREAD\tIMPORTED\tSKIPPED\tERRORS")
	for _, name := range stats.Names() {
		c := stats.Collections[name]
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", name, c.Read, c.Imported, c.Skipped, c.Errors)
	}
	t := stats.Totals()
	fmt.Fprintf(tw, "total\t%d\t%d\t%d\t%d\n", t.Read, t.Imported, t.Skipped, t.Errors)
	_ = tw.Flush()
	if stats.DryRun {
		fmt.Fprintln(w, "dry run: nothing was written")
	}
}
