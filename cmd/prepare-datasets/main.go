// Package main downloads and reshapes benchmark corpora into aligned
// parallel CSVs
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/CodeSwitch-Lab/csw-forge/internal/benchmark"
	"github.com/CodeSwitch-Lab/csw-forge/pkg/logging"
	"github.com/CodeSwitch-Lab/csw-forge/pkg/ratelimit"
)

func main() {
	var (
		corpora   = flag.String("corpora", strings.Join(benchmark.AllCorpora, ","), "comma-separated corpora to prepare")
		outputDir = flag.String("output-dir", "datasets", "directory for the prepared CSVs")
		logLevel  = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	if err := logging.SetupLogger(&logging.LogConfig{Level: *logLevel, Format: "pretty", Console: true}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	logger := logging.GetLogger("prepare-datasets")

	client := benchmark.NewClient(ratelimit.NewProviderRateLimiter())

	ctx := context.Background()
	failed := 0
	for _, corpus := range strings.Split(*corpora, ",") {
		corpus = strings.TrimSpace(corpus)
		if corpus == "" {
			continue
		}
		path, err := client.PrepareTo(ctx, corpus, *outputDir)
		if err != nil {
			logger.Error().Err(err).Str("corpus", corpus).Msg("Corpus preparation failed")
			failed++
			continue
		}
		fmt.Printf("Wrote %s\n", path)
	}
	if failed > 0 {
		os.Exit(1)
	}
}
