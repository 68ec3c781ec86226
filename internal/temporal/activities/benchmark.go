package activities

import (
	"context"
	"fmt"

	"github.com/CodeSwitch-Lab/csw-forge/internal/benchmark"
	"github.com/CodeSwitch-Lab/csw-forge/internal/temporal/workflows"
)

var globalBenchmarkClient *benchmark.Client

// SetGlobalBenchmarkClient sets the datasets-server client used by
// benchmark activities
func SetGlobalBenchmarkClient(client *benchmark.Client) {
	globalBenchmarkClient = client
}

// FetchBenchmarkActivity prepares one benchmark corpus and writes its CSV
func FetchBenchmarkActivity(ctx context.Context, input workflows.FetchBenchmarkInput) (string, error) {
	if globalBenchmarkClient == nil {
		return "", fmt.Errorf("benchmark client not initialized")
	}
	return globalBenchmarkClient.PrepareTo(ctx, input.Corpus, input.OutputDir)
}
