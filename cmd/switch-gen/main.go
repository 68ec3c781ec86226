// Package main provides the code-switch generation CLI
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/CodeSwitch-Lab/csw-forge/internal/pipeline"
	"github.com/CodeSwitch-Lab/csw-forge/internal/provider"
	"github.com/CodeSwitch-Lab/csw-forge/internal/switching"
	"github.com/CodeSwitch-Lab/csw-forge/pkg/dataset"
	"github.com/CodeSwitch-Lab/csw-forge/pkg/logging"
	"github.com/CodeSwitch-Lab/csw-forge/pkg/ratelimit"
)

func main() {
	var (
		input           = flag.String("input", "", "input CSV file with aligned parallel sentences")
		sourceColumn    = flag.String("source-column", "", "column holding the sentences to switch")
		targetColumns   = flag.String("target-columns", "", "comma-separated parallel sentence columns")
		targetLanguages = flag.String("target-languages", "", "comma-separated language names matching -target-columns")
		cswColumn       = flag.String("csw-column", "", "name of the generated column")
		outputDir       = flag.String("output-dir", "output", "directory for the output CSV and run log")
		sampleSize      = flag.Int("sample-size", 0, "de-duplicate on the source column and keep the first N rows (0 keeps all)")
		strategy        = flag.String("strategy", "noun", "switching strategy: noun, random, reverse or multi")
		providerName    = flag.String("provider", "openai", "generation provider: openai or anthropic")
		model           = flag.String("model", "", "model name override")
		maskRate        = flag.Float64("mask-rate", switching.DefaultMaskRate, "fraction of words masked by the random strategy")
		concurrency     = flag.Int("concurrency", 1, "rows processed in parallel")
		logLevel        = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	if *input == "" || *sourceColumn == "" || *targetColumns == "" || *targetLanguages == "" || *cswColumn == "" {
		fmt.Fprintln(os.Stderr, "usage: switch-gen -input file.csv -source-column eng_text -target-columns fra_text -target-languages French -csw-column csw_fra")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := &switching.RunConfig{
		RunID:           uuid.New().String(),
		Strategy:        switching.Strategy(*strategy),
		SourceColumn:    *sourceColumn,
		TargetColumns:   splitList(*targetColumns),
		TargetLanguages: splitList(*targetLanguages),
		CSWColumn:       *cswColumn,
		Provider:        *providerName,
		SampleSize:      *sampleSize,
		MaskRate:        *maskRate,
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	if err := logging.SetupRunLogger(*outputDir, runLogName(cfg.Strategy, cfg.TargetLanguages), *logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	logger := logging.GetRunLogger(cfg.RunID, string(cfg.Strategy))

	table, err := dataset.Load(*input)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load input table")
	}

	limiter := ratelimit.NewProviderRateLimiter()
	registry := provider.NewRegistry(
		provider.NewOpenAIProvider(os.Getenv("OPENAI_API_KEY"), modelOrDefault(*model, "gpt-4o"), limiter),
		provider.NewAnthropicProvider(os.Getenv("ANTHROPIC_API_KEY"), modelOrDefault(*model, "claude-3-5-sonnet-20241022"), limiter),
	)

	events := pipeline.NewEventBus(1000, 2)
	defer events.Close()

	engine := switching.NewSwitchEngine(registry, events, &switching.EngineConfig{
		MaxConcurrentRequests: *concurrency,
		DefaultTimeout:        switching.DefaultEngineConfig().DefaultTimeout,
	})

	out, err := engine.Run(context.Background(), table, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Run failed")
	}

	outputPath := dataset.OutputPath(*outputDir, *input, cfg.CSWColumn)
	if err := out.Save(outputPath); err != nil {
		logger.Fatal().Err(err).Msg("Failed to write output table")
	}

	metrics := engine.GetMetrics()
	logger.Info().
		Str("output", outputPath).
		Int64("rows", metrics.RowsProcessed).
		Int64("failed", metrics.RowsFailed).
		Float64("avg_masks", metrics.AverageMasks).
		Int64("leftover_masks", metrics.LeftoverMasks).
		Msg("Run finished")
	fmt.Printf("Wrote %s (%d rows, %d failed)\n", outputPath, metrics.RowsProcessed, metrics.RowsFailed)
}

// runLogName names the per-run log file next to the output CSV. Single-target
// runs log to <language>.log; multi runs share one mixed-language log.
func runLogName(strategy switching.Strategy, languages []string) string {
	if strategy == switching.StrategyMulti {
		return "multi_language_code_switch"
	}
	return strings.Join(languages, "_")
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}
