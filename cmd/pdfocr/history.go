// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfocr/internal/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded conversion runs",
		Long: `History reads the run database configured with --history-db or
PDFOCR_HISTORY_DB and lists past runs, newest first, with their per-page
OCR outcomes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.HistoryDB == "" {
				return fmt.Errorf("no history database configured (set --history-db or PDFOCR_HISTORY_DB)")
			}
			limit, _ := cmd.Flags().GetInt("limit")
			format, _ := cmd.Flags().GetString("format")

			s, err := history.Open(a.cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return history.Export(cmd.OutOrStdout(), runs, history.Format(format))
		},
	}
	cmd.Flags().Int("limit", 20, "maximum number of runs to list")
	cmd.Flags().String("format", "table", "output format: table, yaml, or json")
	return cmd
}
