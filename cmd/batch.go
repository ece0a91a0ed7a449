package main

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadforge/leadscout/internal/export"
	"github.com/leadforge/leadscout/internal/model"
	"github.com/leadforge/leadscout/internal/source"
)

var (
	batchFile        string
	batchCity        string
	batchConcurrency int
	batchOutput      string
	batchFormat      string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Resolve contacts for a list of companies",
	Long:  "Reads one company per line from the input file. A line may carry a city after a semicolon, e.g. \"Ромашка;Казань\".",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		queries, err := readCompanyList(batchFile)
		if err != nil {
			return err
		}
		if len(queries) == 0 {
			return eris.New("input file has no companies")
		}

		board := initBoard()
		engine, store, err := initEngine(ctx, board)
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := engine.ResolveBatch(ctx, queries, batchConcurrency)
		if err != nil {
			return eris.Wrap(err, "resolve batch")
		}

		found := 0
		results := make([]model.ContactRecord, 0, len(records))
		for _, rec := range records {
			if rec == nil {
				continue
			}
			if rec.Found {
				found++
			}
			results = append(results, *rec)
		}

		zap.L().Info("batch complete",
			zap.Int("companies", len(queries)),
			zap.Int("found", found),
		)

		return writeContacts(results, batchFormat, batchOutput)
	},
}

func readCompanyList(path string) ([]source.Query, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open company list")
	}
	defer f.Close()

	var queries []source.Query
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		company, city, ok := strings.Cut(line, ";")
		q := source.Query{Company: strings.TrimSpace(company), City: batchCity}
		if ok && strings.TrimSpace(city) != "" {
			q.City = strings.TrimSpace(city)
		}
		queries = append(queries, q)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "read company list")
	}
	return queries, nil
}

// writeContacts renders the records in the requested format, to the
// given file or stdout.
func writeContacts(records []model.ContactRecord, format, output string) error {
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return eris.Wrap(err, "create output file")
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "csv":
		return export.WriteContactsCSV(w, records)
	case "xlsx":
		return export.WriteContactsXLSX(w, records)
	case "json":
		return export.WriteJSON(w, records)
	default:
		return eris.Errorf("unknown format %q (want csv, xlsx or json)", format)
	}
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "input file with one company per line (required)")
	batchCmd.Flags().StringVar(&batchCity, "city", "Москва", "default city for lines without one")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "parallel lookups")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "output file (default stdout)")
	batchCmd.Flags().StringVar(&batchFormat, "format", "csv", "output format: csv, xlsx or json")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}
