package activities

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/CodeSwitch-Lab/csw-forge/internal/storage"
	"github.com/CodeSwitch-Lab/csw-forge/internal/temporal/workflows"
)

var (
	globalStore        storage.DatasetStore
	globalStoreMetrics *storage.SimpleMetricsCollector
)

// SetGlobalStore sets the dataset store used by storage activities
func SetGlobalStore(store storage.DatasetStore, metrics *storage.SimpleMetricsCollector) {
	globalStore = store
	globalStoreMetrics = metrics
}

// GetGlobalStoreMetrics exposes storage metrics for the API surface
func GetGlobalStoreMetrics() *storage.SimpleMetricsCollector {
	return globalStoreMetrics
}

// StoreDatasetActivity commits a generated dataset file to the store
func StoreDatasetActivity(ctx context.Context, input workflows.StoreDatasetInput) (string, error) {
	if globalStore == nil {
		return "", fmt.Errorf("dataset store not initialized")
	}

	content, err := os.ReadFile(input.OutputPath)
	if err != nil {
		return "", fmt.Errorf("failed to read output file: %w", err)
	}

	record := &storage.DatasetRecord{
		RunID:    input.RunID,
		Filename: filepath.Base(input.OutputPath),
		Strategy: input.Strategy,
		Provider: input.Provider,
		RowCount: input.RowCount,
	}
	return globalStore.StoreDataset(ctx, record, content)
}
