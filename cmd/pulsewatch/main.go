// Package main provides the entry point for the pulsewatch CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pulsewatch",
	Short: "Topic pulse aggregator",
	Long:  "pulsewatch fans a topic out to forum, microblog, video, professional-network, and web search providers, then normalizes, scores, and deduplicates the results into one ranked report.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
