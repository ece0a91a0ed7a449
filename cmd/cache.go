package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadforge/leadscout/internal/export"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the contact cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print resolver and cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		engine, store, err := initEngine(ctx, initBoard())
		if err != nil {
			return err
		}
		defer store.Close()

		return export.WriteJSON(os.Stdout, engine.Stats(ctx))
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached contact record",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		engine, store, err := initEngine(ctx, initBoard())
		if err != nil {
			return err
		}
		defer store.Close()

		if err := engine.ClearCache(ctx); err != nil {
			return err
		}
		zap.L().Info("cache cleared")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
