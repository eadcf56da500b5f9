package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/pulsewatch/internal/cache"
)

var cacheCommand = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local response cache",
}

var cachePurgeCommand = &cobra.Command{
	Use:   "purge",
	Short: "Delete every cached provider response",
	RunE:  cachePurgeCmd,
}

var cacheDirFlag string

func init() {
	cachePurgeCommand.Flags().StringVar(&cacheDirFlag, "cache-dir", "", "Cache directory (defaults to the per-user cache dir)")

	cacheCommand.AddCommand(cachePurgeCommand)
	rootCmd.AddCommand(cacheCommand)
}

func cachePurgeCmd(_ *cobra.Command, _ []string) error {
	dir := cacheDirFlag
	if dir == "" {
		var err error
		dir, err = cache.DefaultDir()
		if err != nil {
			return err
		}
	}

	store, err := cache.NewStore(dir)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}

	removed, err := store.Purge()
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Removed %d cached entries from %s\n", removed, dir)
	return nil
}
