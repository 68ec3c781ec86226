package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/CodeSwitch-Lab/csw-forge/internal/switching"
)

// rowsPerChunk bounds the size of one generation activity so progress is
// checkpointed between chunks
const rowsPerChunk = 25

// CodeSwitchRunInput starts a full generation run over an input CSV
type CodeSwitchRunInput struct {
	RunID      string              `json:"run_id"`
	InputPath  string              `json:"input_path"`
	OutputDir  string              `json:"output_dir"`
	Config     switching.RunConfig `json:"config"`
	StoreInGit bool                `json:"store_in_git"`
}

// CodeSwitchRunResult summarizes a completed run
type CodeSwitchRunResult struct {
	RunID      string `json:"run_id"`
	OutputPath string `json:"output_path"`
	Rows       int    `json:"rows"`
	Failed     int    `json:"failed"`
	CommitHash string `json:"commit_hash,omitempty"`
}

// CodeSwitchRunWorkflow loads a table, switches its rows in chunks, writes
// the output CSV and optionally commits it to the dataset store.
func CodeSwitchRunWorkflow(ctx workflow.Context, input CodeSwitchRunInput) (*CodeSwitchRunResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting code-switch run", "runID", input.RunID, "input", input.InputPath, "strategy", input.Config.Strategy)

	ioOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:    3,
			InitialInterval:    1 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
		},
	}
	ioCtx := workflow.WithActivityOptions(ctx, ioOptions)

	var loadResult LoadTableResult
	if err := workflow.ExecuteActivity(ioCtx, LoadTableActivityName, LoadTableInput{
		Path:   input.InputPath,
		Config: input.Config,
	}).Get(ioCtx, &loadResult); err != nil {
		return nil, err
	}

	// Generation calls never retry; a failed row stays failed
	genOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		HeartbeatTimeout:    5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	genCtx := workflow.WithActivityOptions(ctx, genOptions)

	rows := make([]SwitchedRow, 0, loadResult.RowCount)
	failed := 0
	for offset := 0; offset < loadResult.RowCount; offset += rowsPerChunk {
		length := rowsPerChunk
		if offset+length > loadResult.RowCount {
			length = loadResult.RowCount - offset
		}

		var chunk SwitchRowsResult
		if err := workflow.ExecuteActivity(genCtx, SwitchRowsActivityName, SwitchRowsInput{
			RunID:  input.RunID,
			Path:   input.InputPath,
			Config: input.Config,
			Offset: offset,
			Length: length,
		}).Get(genCtx, &chunk); err != nil {
			return nil, err
		}
		rows = append(rows, chunk.Rows...)
		failed += chunk.Failed
		logger.Info("Chunk complete", "offset", offset, "rows", len(chunk.Rows), "failed", chunk.Failed)
	}

	var writeResult WriteTableResult
	if err := workflow.ExecuteActivity(ioCtx, WriteTableActivityName, WriteTableInput{
		RunID:     input.RunID,
		InputPath: input.InputPath,
		OutputDir: input.OutputDir,
		Config:    input.Config,
		Rows:      rows,
	}).Get(ioCtx, &writeResult); err != nil {
		return nil, err
	}

	result := &CodeSwitchRunResult{
		RunID:      input.RunID,
		OutputPath: writeResult.Path,
		Rows:       len(rows),
		Failed:     failed,
	}

	if input.StoreInGit {
		var commitHash string
		if err := workflow.ExecuteActivity(ioCtx, StoreDatasetActivityName, StoreDatasetInput{
			RunID:      input.RunID,
			OutputPath: writeResult.Path,
			Strategy:   string(input.Config.Strategy),
			Provider:   input.Config.Provider,
			RowCount:   len(rows),
		}).Get(ioCtx, &commitHash); err != nil {
			return nil, err
		}
		result.CommitHash = commitHash
	}

	logger.Info("Code-switch run completed", "runID", input.RunID, "output", result.OutputPath, "failed", failed)
	return result, nil
}

// Activity types

type LoadTableInput struct {
	Path   string              `json:"path"`
	Config switching.RunConfig `json:"config"`
}

type LoadTableResult struct {
	RowCount int      `json:"row_count"`
	Header   []string `json:"header"`
}

type SwitchRowsInput struct {
	RunID  string              `json:"run_id"`
	Path   string              `json:"path"`
	Config switching.RunConfig `json:"config"`
	Offset int                 `json:"offset"`
	Length int                 `json:"length"`
}

// SwitchedRow carries one processed row back to the workflow
type SwitchedRow struct {
	RowIndex        int    `json:"row_index"`
	PlaceholderText string `json:"placeholder_text"`
	SwitchedText    string `json:"switched_text"`
	Success         bool   `json:"success"`
	Error           string `json:"error,omitempty"`
}

type SwitchRowsResult struct {
	Rows   []SwitchedRow `json:"rows"`
	Failed int           `json:"failed"`
}

type WriteTableInput struct {
	RunID     string              `json:"run_id"`
	InputPath string              `json:"input_path"`
	OutputDir string              `json:"output_dir"`
	Config    switching.RunConfig `json:"config"`
	Rows      []SwitchedRow       `json:"rows"`
}

type WriteTableResult struct {
	Path string `json:"path"`
}

type StoreDatasetInput struct {
	RunID      string `json:"run_id"`
	OutputPath string `json:"output_path"`
	Strategy   string `json:"strategy"`
	Provider   string `json:"provider"`
	RowCount   int    `json:"row_count"`
}

// Activity names for registration
const (
	LoadTableActivityName    = "LoadTableActivity"
	SwitchRowsActivityName   = "SwitchRowsActivity"
	WriteTableActivityName   = "WriteTableActivity"
	StoreDatasetActivityName = "StoreDatasetActivity"
)
