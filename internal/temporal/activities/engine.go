package activities

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/CodeSwitch-Lab/csw-forge/internal/switching"
	"github.com/CodeSwitch-Lab/csw-forge/internal/temporal/workflows"
	"github.com/CodeSwitch-Lab/csw-forge/pkg/dataset"
)

var globalEngine *switching.SwitchEngine

// SetGlobalEngine sets the engine instance used by generation activities
func SetGlobalEngine(engine *switching.SwitchEngine) {
	globalEngine = engine
}

// LoadTableActivity loads and samples the input CSV, returning its shape
func LoadTableActivity(ctx context.Context, input workflows.LoadTableInput) (workflows.LoadTableResult, error) {
	table, err := dataset.Load(input.Path)
	if err != nil {
		return workflows.LoadTableResult{}, fmt.Errorf("failed to load input table: %w", err)
	}

	work, err := switching.PrepareTable(table, &input.Config)
	if err != nil {
		return workflows.LoadTableResult{}, err
	}

	return workflows.LoadTableResult{
		RowCount: work.NumRows(),
		Header:   work.Header,
	}, nil
}

// SwitchRowsActivity runs the mask and fill stages over one chunk of rows
func SwitchRowsActivity(ctx context.Context, input workflows.SwitchRowsInput) (workflows.SwitchRowsResult, error) {
	if globalEngine == nil {
		return workflows.SwitchRowsResult{}, fmt.Errorf("switch engine not initialized")
	}

	table, err := dataset.Load(input.Path)
	if err != nil {
		return workflows.SwitchRowsResult{}, fmt.Errorf("failed to load input table: %w", err)
	}
	work, err := switching.PrepareTable(table, &input.Config)
	if err != nil {
		return workflows.SwitchRowsResult{}, err
	}

	reqs := switching.BuildRequests(work, &input.Config)
	if input.Offset < 0 || input.Offset >= len(reqs) {
		return workflows.SwitchRowsResult{}, fmt.Errorf("chunk offset %d out of range for %d rows", input.Offset, len(reqs))
	}
	end := input.Offset + input.Length
	if end > len(reqs) {
		end = len(reqs)
	}
	chunk := reqs[input.Offset:end]

	activity.RecordHeartbeat(ctx, input.Offset)
	results := globalEngine.SwitchBatch(ctx, input.Config.Provider, chunk)

	out := workflows.SwitchRowsResult{Rows: make([]workflows.SwitchedRow, len(results))}
	for i, res := range results {
		out.Rows[i] = workflows.SwitchedRow{
			RowIndex:        res.RowIndex,
			PlaceholderText: res.PlaceholderText,
			SwitchedText:    res.SwitchedText,
			Success:         res.Success,
			Error:           res.Error,
		}
		if !res.Success {
			out.Failed++
		}
	}
	return out, nil
}

// WriteTableActivity appends the generated columns and writes the output CSV
func WriteTableActivity(ctx context.Context, input workflows.WriteTableInput) (workflows.WriteTableResult, error) {
	table, err := dataset.Load(input.InputPath)
	if err != nil {
		return workflows.WriteTableResult{}, fmt.Errorf("failed to load input table: %w", err)
	}
	work, err := switching.PrepareTable(table, &input.Config)
	if err != nil {
		return workflows.WriteTableResult{}, err
	}

	placeholders := make([]string, work.NumRows())
	switched := make([]string, work.NumRows())
	for _, row := range input.Rows {
		if row.RowIndex < 0 || row.RowIndex >= work.NumRows() {
			return workflows.WriteTableResult{}, fmt.Errorf("row index %d out of range for %d rows", row.RowIndex, work.NumRows())
		}
		placeholders[row.RowIndex] = row.PlaceholderText
		switched[row.RowIndex] = row.SwitchedText
	}

	out := work.Clone()
	if !out.HasColumn(switching.PlaceholderColumn) {
		if err := out.AddColumn(switching.PlaceholderColumn, placeholders); err != nil {
			return workflows.WriteTableResult{}, err
		}
	}
	if err := out.AddColumn(input.Config.CSWColumn, switched); err != nil {
		return workflows.WriteTableResult{}, err
	}

	path := dataset.OutputPath(input.OutputDir, input.InputPath, input.Config.CSWColumn)
	if err := out.Save(path); err != nil {
		return workflows.WriteTableResult{}, fmt.Errorf("failed to write output table: %w", err)
	}
	return workflows.WriteTableResult{Path: path}, nil
}
