package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadforge/leadscout/internal/dedup"
	"github.com/leadforge/leadscout/internal/export"
	"github.com/leadforge/leadscout/internal/model"
	"github.com/leadforge/leadscout/internal/prefilter"
)

var (
	dedupInput      string
	dedupOutput     string
	dedupSkipFilter bool
)

var dedupCmd = &cobra.Command{
	Use:   "dedup",
	Short: "Deduplicate a vacancy list from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(dedupInput)
		if err != nil {
			return eris.Wrap(err, "open input file")
		}
		defer f.Close()

		var vacancies []model.VacancyRecord
		if err := json.NewDecoder(f).Decode(&vacancies); err != nil {
			return eris.Wrap(err, "decode vacancies")
		}

		kept := vacancies
		var excluded []prefilter.Exclusion
		if !dedupSkipFilter {
			filtered := prefilter.Filter(vacancies)
			kept = filtered.Kept
			excluded = filtered.Excluded
		}

		d := dedup.New(dedup.DefaultScorerConfig(cfg.Dedup.PriorityKeywords))
		res := d.Run(kept)

		zap.L().Info("deduplication complete",
			zap.Int("total", len(vacancies)),
			zap.Int("excluded", len(excluded)),
			zap.Int("duplicates_removed", res.Stats.DuplicatesRemoved),
			zap.Int("kept", res.Stats.KeptVacancies),
		)

		var w io.Writer = os.Stdout
		if dedupOutput != "" {
			out, err := os.Create(dedupOutput)
			if err != nil {
				return eris.Wrap(err, "create output file")
			}
			defer out.Close()
			w = out
		}

		return export.WriteJSON(w, map[string]any{
			"kept":     res.Kept,
			"removed":  res.Removed,
			"excluded": excluded,
			"stats":    res.Stats,
		})
	},
}

func init() {
	dedupCmd.Flags().StringVar(&dedupInput, "input", "", "JSON file with a vacancy array (required)")
	dedupCmd.Flags().StringVar(&dedupOutput, "output", "", "output file (default stdout)")
	dedupCmd.Flags().BoolVar(&dedupSkipFilter, "skip-filter", false, "skip the relevance pre-filter")
	_ = dedupCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(dedupCmd)
}
