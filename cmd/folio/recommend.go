// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/folio/internal/database"
	"github.com/tomtom215/folio/internal/logging"
	"github.com/tomtom215/folio/internal/media"
	"github.com/tomtom215/folio/internal/recommend"
)

// cliViewer is the history key used for simulated preferences.
const cliViewer = "cli"

func newRecommendCmd() *cobra.Command {
	var (
		k       int
		kind    string
		prefer  []string
		asJSON  bool
		explain bool
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank stored items with the configured scoring weights",
		Long: "Rank stored items the way the \"for you\" view does. Viewer history lives in the server's memory, " +
			"so --prefer simulates one: each category given counts as a 30 second view.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			itemKind := media.Kind(kind)
			if kind != "" && !itemKind.Valid() {
				return fmt.Errorf("invalid kind %q: must be photography or design", kind)
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

			engine, err := recommend.NewEngine(recommend.FromAppConfig(&cfg.Recommend), logging.Logger())
			if err != nil {
				return err
			}
			engine.SetCandidateSource(dbCandidates(db))
			for i, cat := range prefer {
				engine.Track(cliViewer, media.ViewSample{ItemID: fmt.Sprintf("cli-%d", i), Category: cat, DwellSeconds: 30})
			}

			resp, err := engine.Recommend(cmd.Context(), recommend.Request{ViewerKey: cliViewer, K: k, Kind: itemKind})
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			printRecommendations(cmd.OutOrStdout(), resp, explain)
			return nil
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", 0, "number of items (0 uses the configured default)")
	cmd.Flags().StringVar(&kind, "kind", "", "restrict to photography or design")
	cmd.Flags().StringSliceVar(&prefer, "prefer", nil, "categories the simulated viewer has looked at")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full response as JSON")
	cmd.Flags().BoolVar(&explain, "explain", false, "show the per-term breakdown")
	return cmd
}

func printRecommendations(w io.Writer, resp *recommend.Response, explain bool) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if explain {
		fmt.Fprintln(tw, "#\tID\tKIND\tCATEGORY\tSCORE\tRECENCY\tENGAGEMENT\tPERSONAL")
	} else {
		fmt.Fprintln(tw, "#\tID\tKIND\tCATEGORY\tSCORE\tTITLE")
	}
	for i, s := range resp.Items {
		if explain {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.4f\t%.3f\t%.3f\t%.3f\n", i+1, s.Item.ID, s.Item.Kind, s.Item.Category,
				s.Score, s.Terms.Recency, s.Terms.Engagement, s.Terms.Personalization)
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.4f\t%s\n", i+1, s.Item.ID, s.Item.Kind, s.Item.Category, s.Score, s.Item.Title)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%d of %d candidates, personalized=%t\n", len(resp.Items), resp.TotalCandidates, resp.Metadata.Personalized)
}
