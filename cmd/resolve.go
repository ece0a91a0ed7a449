package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadforge/leadscout/internal/export"
	"github.com/leadforge/leadscout/internal/source"
)

var (
	resolveCompany    string
	resolveCity       string
	resolveVacancyURL string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve contacts for a single company",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		board := initBoard()
		engine, store, err := initEngine(ctx, board)
		if err != nil {
			return err
		}
		defer store.Close()

		rec, err := engine.Resolve(ctx, source.Query{
			Company:    resolveCompany,
			City:       resolveCity,
			PostingURL: resolveVacancyURL,
		})
		if err != nil {
			return eris.Wrap(err, "resolve")
		}

		zap.L().Info("resolution complete",
			zap.String("company", rec.CompanyName),
			zap.Bool("found", rec.Found),
			zap.Strings("sources", rec.Sources),
			zap.String("quality", export.Quality(*rec)),
		)

		return export.WriteJSON(os.Stdout, rec)
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveCompany, "company", "", "company name (required)")
	resolveCmd.Flags().StringVar(&resolveCity, "city", "Москва", "city for the directory lookup")
	resolveCmd.Flags().StringVar(&resolveVacancyURL, "vacancy-url", "", "vacancy URL to mine for board contacts")
	_ = resolveCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(resolveCmd)
}
