package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadforge/leadscout/internal/cache"
	"github.com/leadforge/leadscout/internal/cascade"
	"github.com/leadforge/leadscout/internal/source"
	"github.com/leadforge/leadscout/internal/stats"
	"github.com/leadforge/leadscout/pkg/hh"
	"github.com/leadforge/leadscout/pkg/twogis"
)

// initBoard builds the job-board client from config.
func initBoard() hh.Client {
	return hh.NewClient(
		hh.WithBaseURL(cfg.JobBoard.BaseURL),
		hh.WithUserAgent(cfg.JobBoard.UserAgent),
		hh.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.JobBoard.TimeoutSecs) * time.Second}),
		hh.WithRequestDelay(time.Duration(cfg.JobBoard.RequestDelayMs)*time.Millisecond),
		hh.WithRateLimitSleep(time.Duration(cfg.JobBoard.RateLimitSleepSecs)*time.Second),
	)
}

// initEngine builds the contact cascade from config: the cache backend,
// the enabled sources in lookup order, and the website scanner. The
// returned store must be closed by the caller.
func initEngine(ctx context.Context, board hh.Client) (*cascade.Engine, cache.Store, error) {
	store, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		return nil, nil, eris.Wrap(err, "open cache")
	}

	var adapters []source.Adapter
	if cfg.Directory.Enabled {
		if cfg.Directory.Key == "" {
			zap.L().Warn("directory source enabled but no API key configured, skipping")
		} else {
			dirClient := twogis.NewClient(cfg.Directory.Key,
				twogis.WithBaseURL(cfg.Directory.BaseURL),
				twogis.WithLocale(cfg.Directory.Locale),
				twogis.WithFields(cfg.Directory.Fields),
			)
			adapters = append(adapters, source.NewDirectoryAdapter(dirClient, cfg.Directory.Regions, cfg.Directory.DefaultRegion))
		}
	}
	if cfg.JobBoard.Enabled {
		adapters = append(adapters, source.NewJobBoardAdapter(board))
	}

	opts := []cascade.Option{cascade.WithAdapters(adapters...)}
	if cfg.Website.Enabled {
		patterns := source.DefaultPatterns()
		if cfg.Website.PatternsFile != "" {
			patterns, err = source.LoadPatterns(cfg.Website.PatternsFile)
			if err != nil {
				store.Close()
				return nil, nil, eris.Wrap(err, "load scan patterns")
			}
		}
		scanner := source.NewPatternScanner(patterns,
			source.WithScannerHTTPClient(&http.Client{Timeout: time.Duration(cfg.Website.TimeoutSecs) * time.Second}),
			source.WithScannerUserAgent(cfg.Website.UserAgent),
		)
		opts = append(opts, cascade.WithSiteScanner(scanner), cascade.WithMaxSites(cfg.Website.MaxSites))
	}

	engine := cascade.NewEngine(store, stats.NewCollector(), opts...)
	return engine, store, nil
}
