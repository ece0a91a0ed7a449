package main

import (
	"io"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadforge/leadscout/internal/dedup"
	"github.com/leadforge/leadscout/internal/export"
	"github.com/leadforge/leadscout/internal/prefilter"
	"github.com/leadforge/leadscout/pkg/hh"
)

var (
	searchKeywords   string
	searchRegion     int
	searchMinSalary  int
	searchAnySalary  bool
	searchPeriod     int
	searchExcluded   string
	searchMaxPages   int
	searchLimit      int
	searchSkipFilter bool
	searchOutput     string
	searchFormat     string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search vacancies, screen them, and keep one per employer",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		board := initBoard()
		found, err := board.Search(ctx, hh.SearchParams{
			Keywords:       searchKeywords,
			Area:           searchRegion,
			Salary:         searchMinSalary,
			OnlyWithSalary: !searchAnySalary,
			PeriodDays:     searchPeriod,
			ExcludedText:   searchExcluded,
			OrderBy:        "publication_time",
			MaxPages:       searchMaxPages,
		})
		if err != nil {
			return eris.Wrap(err, "board search")
		}

		kept := found
		excluded := 0
		if !searchSkipFilter {
			filtered := prefilter.Filter(found)
			kept = filtered.Kept
			excluded = len(filtered.Excluded)
		}

		d := dedup.New(dedup.DefaultScorerConfig(cfg.Dedup.PriorityKeywords))
		res := d.Run(kept)

		vacancies := res.Kept
		sort.SliceStable(vacancies, func(i, j int) bool {
			return vacancies[i].PublishedAt > vacancies[j].PublishedAt
		})
		if searchLimit > 0 && len(vacancies) > searchLimit {
			vacancies = vacancies[:searchLimit]
		}

		zap.L().Info("search complete",
			zap.Int("found", len(found)),
			zap.Int("excluded", excluded),
			zap.Int("duplicates_removed", res.Stats.DuplicatesRemoved),
			zap.Int("returned", len(vacancies)),
		)

		var w io.Writer = os.Stdout
		if searchOutput != "" {
			f, err := os.Create(searchOutput)
			if err != nil {
				return eris.Wrap(err, "create output file")
			}
			defer f.Close()
			w = f
		}

		switch searchFormat {
		case "csv":
			return export.WriteVacanciesCSV(w, vacancies)
		case "json":
			return export.WriteJSON(w, vacancies)
		default:
			return eris.Errorf("unknown format %q (want csv or json)", searchFormat)
		}
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchKeywords, "keywords", "", "search keywords (required)")
	searchCmd.Flags().IntVar(&searchRegion, "region", 1, "region id")
	searchCmd.Flags().IntVar(&searchMinSalary, "min-salary", 0, "minimum salary filter")
	searchCmd.Flags().BoolVar(&searchAnySalary, "any-salary", false, "include postings without a salary")
	searchCmd.Flags().IntVar(&searchPeriod, "period", 7, "posting age in days")
	searchCmd.Flags().StringVar(&searchExcluded, "excluded", "", "words to exclude from the query")
	searchCmd.Flags().IntVar(&searchMaxPages, "max-pages", 20, "result pages to fetch")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "cap on returned vacancies (0 = all)")
	searchCmd.Flags().BoolVar(&searchSkipFilter, "skip-filter", false, "skip the relevance pre-filter")
	searchCmd.Flags().StringVar(&searchOutput, "output", "", "output file (default stdout)")
	searchCmd.Flags().StringVar(&searchFormat, "format", "json", "output format: csv or json")
	_ = searchCmd.MarkFlagRequired("keywords")
	rootCmd.AddCommand(searchCmd)
}
