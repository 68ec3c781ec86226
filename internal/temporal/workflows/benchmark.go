package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// BenchmarkPrepInput selects which corpora to prepare
type BenchmarkPrepInput struct {
	Corpora   []string `json:"corpora"`
	OutputDir string   `json:"output_dir"`
}

// BenchmarkPrepResult maps corpus names to written CSV paths
type BenchmarkPrepResult struct {
	Paths map[string]string `json:"paths"`
}

// BenchmarkPrepWorkflow downloads and reshapes each requested benchmark
// corpus into an aligned parallel CSV.
func BenchmarkPrepWorkflow(ctx workflow.Context, input BenchmarkPrepInput) (*BenchmarkPrepResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting benchmark preparation", "corpora", input.Corpora)

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		HeartbeatTimeout:    5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:    3,
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    1 * time.Minute,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	result := &BenchmarkPrepResult{Paths: make(map[string]string)}
	for _, corpus := range input.Corpora {
		var path string
		if err := workflow.ExecuteActivity(ctx, FetchBenchmarkActivityName, FetchBenchmarkInput{
			Corpus:    corpus,
			OutputDir: input.OutputDir,
		}).Get(ctx, &path); err != nil {
			return nil, err
		}
		result.Paths[corpus] = path
		logger.Info("Corpus prepared", "corpus", corpus, "path", path)
	}

	logger.Info("Benchmark preparation completed", "count", len(result.Paths))
	return result, nil
}

// FetchBenchmarkInput names one corpus to prepare
type FetchBenchmarkInput struct {
	Corpus    string `json:"corpus"`
	OutputDir string `json:"output_dir"`
}

// FetchBenchmarkActivityName is used for registration
const FetchBenchmarkActivityName = "FetchBenchmarkActivity"
