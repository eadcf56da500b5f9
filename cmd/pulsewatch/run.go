package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/pulsewatch/internal/cache"
	"github.com/jonathan/pulsewatch/internal/config"
	"github.com/jonathan/pulsewatch/internal/llm"
	"github.com/jonathan/pulsewatch/internal/observability"
	"github.com/jonathan/pulsewatch/internal/pipeline"
	"github.com/jonathan/pulsewatch/internal/providers"
	"github.com/jonathan/pulsewatch/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run one aggregation pass for a topic",
	Long: `Queries every enabled source provider concurrently, then normalizes, scores,
and deduplicates the pooled results into one ranked report.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runAggregationCmd,
}

var (
	runConfigPath string
	runTopic      string
	runDays       int
	runDepth      string
	runSources    []string
	runJSON       bool
	runNoCache    bool
	runVerbose    bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runTopic, "topic", "t", "", "Topic to research (required)")
	runCommand.Flags().IntVar(&runDays, "days", 0, "How many days back to search (default 7)")
	runCommand.Flags().StringVarP(&runDepth, "depth", "d", "", "Search depth: quick, default, or deep")
	runCommand.Flags().StringSliceVarP(&runSources, "sources", "s", nil, "Sources to query (default all): forum, microblog, video, professional-network, web")
	runCommand.Flags().BoolVar(&runJSON, "json", false, "Emit the full report as JSON instead of text")
	runCommand.Flags().BoolVar(&runNoCache, "no-cache", false, "Bypass the response cache for this run")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed progress information")

	rootCmd.AddCommand(runCommand)
}

func runAggregationCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Validate loaded config
		if err := loadedCfg.Validate(); err != nil {
			return err
		}

		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("days") {
		cfg.WindowDays = runDays
	}
	if cmd.Flags().Changed("depth") {
		cfg.Depth = runDepth
	}
	if cmd.Flags().Changed("sources") {
		cfg.Sources = runSources
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}

	// Step 3: Apply defaults for unset values
	defaults := config.Config{
		Depth:         string(types.DepthDefault),
		WindowDays:    7,
		BudgetSeconds: int(pipeline.DefaultBudget / time.Second),
	}
	cfg = cfg.MergeWithDefaults(defaults)
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return err
	}
	if runTopic == "" {
		return fmt.Errorf("--topic is required")
	}

	// Step 4: Wire up the cache, providers, and optional judge
	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		var err error
		cacheDir, err = cache.DefaultDir()
		if err != nil {
			return err
		}
	}
	store, err := cache.NewStore(cacheDir)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	models := cache.NewModelCache(cacheDir, cache.DefaultModelTTL)

	webSearch := providers.NewSearchClient(cfg.SearchAPIKey, &providers.SearchClientOptions{
		BaseURL: cfg.SearchBaseURL,
		Models:  models,
	})
	socialSearch := providers.NewSearchClient(cfg.SocialSearchAPIKey, &providers.SearchClientOptions{
		BaseURL: cfg.SearchBaseURL,
		Models:  models,
	})

	opts := pipeline.Options{
		Adapters: []providers.Adapter{
			providers.NewForumAdapter(webSearch),
			providers.NewMicroblogAdapter(socialSearch),
			providers.NewVideoAdapter(webSearch),
			providers.NewProfessionalAdapter(webSearch),
			providers.NewWebAdapter(webSearch),
		},
		Availability: cfg.Availability(),
		Budget:       time.Duration(cfg.BudgetSeconds) * time.Second,
		Verbose:      cfg.Verbose,
	}
	if !runNoCache {
		opts.Cache = store
	}

	if cfg.GeminiAPIKey != "" {
		judge, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
		if err != nil {
			return fmt.Errorf("failed to create judge client: %w", err)
		}
		defer func() { _ = judge.Close() }()
		opts.Judge = judge
	}

	req := pipeline.Request{
		Topic:   runTopic,
		Window:  types.LastDays(time.Now().UTC(), cfg.WindowDays),
		Depth:   types.Depth(cfg.Depth),
		Sources: cfg.SourceTags(),
	}

	report, err := pipeline.Run(ctx, req, opts)
	if err != nil {
		return err
	}

	if runJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintRunSummary(report)
	printer.PrintProviderErrors(report)
	printer.PrintTopItems(report)

	if report.Failed() {
		return fmt.Errorf("every queried source failed")
	}
	return nil
}
