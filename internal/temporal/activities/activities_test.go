package activities

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/CodeSwitch-Lab/csw-forge/internal/provider"
	"github.com/CodeSwitch-Lab/csw-forge/internal/storage"
	"github.com/CodeSwitch-Lab/csw-forge/internal/switching"
	"github.com/CodeSwitch-Lab/csw-forge/internal/temporal/workflows"
	"github.com/CodeSwitch-Lab/csw-forge/pkg/dataset"
)

type stubProvider struct{}

func (stubProvider) Complete(context.Context, string) (string, error) {
	return "The chat sat on the #######-free mat.", nil
}
func (stubProvider) GetModelName() string        { return "stub-model" }
func (stubProvider) GetProviderName() string     { return "stub" }
func (stubProvider) IsAvailable() bool           { return true }
func (stubProvider) EstimateCost(string) float64 { return 0 }

func writeInputCSV(t *testing.T) string {
	t.Helper()
	table := dataset.NewTable("eng_text", "fra_text")
	require.NoError(t, table.AppendRow([]string{"The cat sat.", "Le chat était assis."}))
	require.NoError(t, table.AppendRow([]string{"The dog ran.", "Le chien a couru."}))

	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, table.Save(path))
	return path
}

func runConfig() switching.RunConfig {
	return switching.RunConfig{
		Strategy:        switching.StrategyRandom,
		SourceColumn:    "eng_text",
		TargetColumns:   []string{"fra_text"},
		TargetLanguages: []string{"French"},
		CSWColumn:       "csw_fra",
		Provider:        "stub",
	}
}

func TestLoadTableActivity(t *testing.T) {
	path := writeInputCSV(t)

	result, err := LoadTableActivity(context.Background(), workflows.LoadTableInput{
		Path:   path,
		Config: runConfig(),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.RowCount)
	assert.Equal(t, []string{"eng_text", "fra_text"}, result.Header)
}

func TestLoadTableActivityMissingFile(t *testing.T) {
	_, err := LoadTableActivity(context.Background(), workflows.LoadTableInput{
		Path:   "does-not-exist.csv",
		Config: runConfig(),
	})
	assert.Error(t, err)
}

func TestSwitchRowsActivity(t *testing.T) {
	SetGlobalEngine(switching.NewSwitchEngine(provider.NewRegistry(stubProvider{}), nil, nil))
	defer SetGlobalEngine(nil)

	path := writeInputCSV(t)

	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()
	env.RegisterActivity(SwitchRowsActivity)

	val, err := env.ExecuteActivity(SwitchRowsActivity, workflows.SwitchRowsInput{
		RunID:  "run-1",
		Path:   path,
		Config: runConfig(),
		Offset: 0,
		Length: 2,
	})
	require.NoError(t, err)

	var result workflows.SwitchRowsResult
	require.NoError(t, val.Get(&result))
	require.Len(t, result.Rows, 2)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 0, result.Rows[0].RowIndex)
	assert.True(t, result.Rows[0].Success)
	assert.NotEmpty(t, result.Rows[0].SwitchedText)
}

func TestSwitchRowsActivityWithoutEngine(t *testing.T) {
	SetGlobalEngine(nil)

	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()
	env.RegisterActivity(SwitchRowsActivity)

	_, err := env.ExecuteActivity(SwitchRowsActivity, workflows.SwitchRowsInput{
		Path:   "input.csv",
		Config: runConfig(),
	})
	assert.Error(t, err)
}

func TestWriteTableActivity(t *testing.T) {
	path := writeInputCSV(t)
	outDir := t.TempDir()

	result, err := WriteTableActivity(context.Background(), workflows.WriteTableInput{
		RunID:     "run-1",
		InputPath: path,
		OutputDir: outDir,
		Config:    runConfig(),
		Rows: []workflows.SwitchedRow{
			{RowIndex: 0, PlaceholderText: "The ####### sat.", SwitchedText: "The chat sat.", Success: true},
			{RowIndex: 1, PlaceholderText: "The ####### ran.", SwitchedText: "The chien ran.", Success: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "input_with_csw_fra.csv"), result.Path)

	out, err := dataset.Load(result.Path)
	require.NoError(t, err)
	assert.Equal(t, []string{"eng_text", "fra_text", "placeholder_text", "csw_fra"}, out.Header)
	cell, err := out.Cell(1, "csw_fra")
	require.NoError(t, err)
	assert.Equal(t, "The chien ran.", cell)
}

func TestStoreDatasetActivity(t *testing.T) {
	store, err := storage.NewFileBackend(t.TempDir(), nil)
	require.NoError(t, err)
	SetGlobalStore(store, storage.NewSimpleMetricsCollector())
	defer SetGlobalStore(nil, nil)

	path := writeInputCSV(t)
	_, err = StoreDatasetActivity(context.Background(), workflows.StoreDatasetInput{
		RunID:      "run-1",
		OutputPath: path,
		Strategy:   "random",
		Provider:   "stub",
		RowCount:   2,
	})
	require.NoError(t, err)

	records, err := store.ListDatasets(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "input.csv", records[0].Filename)
}
