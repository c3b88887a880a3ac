package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deepblue-labs/datachat/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the analysis cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached analysis results",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := cachePath()
		if err != nil {
			return err
		}
		store, err := cache.NewSQLite(dbPath, cache.DefaultTTL)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.InvalidateAll(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
		return nil
	},
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show cache settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := cachePath()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "path: %s\nttl: %s\n", dbPath, cache.DefaultTTL)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd, cacheInfoCmd)
	rootCmd.AddCommand(cacheCmd)
}
