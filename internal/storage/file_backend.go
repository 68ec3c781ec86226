package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileBackend stores dataset files on the plain filesystem, for users who
// don't want git provenance.
type FileBackend struct {
	root             string
	metricsCollector MetricsCollector
}

// NewFileBackend creates a filesystem-backed store rooted at root
func NewFileBackend(root string, metrics MetricsCollector) (*FileBackend, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &FileBackend{root: root, metricsCollector: metrics}, nil
}

func (f *FileBackend) StoreDataset(ctx context.Context, record *DatasetRecord, content []byte) (string, error) {
	start := time.Now()
	err := f.store(record, content)

	f.recordMetric("store", start, err == nil, err)
	return "", err
}

func (f *FileBackend) GetDataset(ctx context.Context, runID, filename string) ([]byte, error) {
	start := time.Now()

	content, err := os.ReadFile(filepath.Join(f.root, datasetPath(runID, filename)))
	if err != nil {
		err = fmt.Errorf("dataset not found: %s/%s: %w", runID, filename, err)
	}

	f.recordMetric("get", start, err == nil, err)
	return content, err
}

func (f *FileBackend) ListDatasets(ctx context.Context) ([]*DatasetRecord, error) {
	start := time.Now()

	records, err := listRecords(filepath.Join(f.root, "datasets"))

	f.recordMetric("list", start, err == nil, err)
	return records, err
}

func (f *FileBackend) Health(ctx context.Context) error {
	start := time.Now()

	_, err := os.Stat(f.root)

	f.recordMetric("health", start, err == nil, err)
	return err
}

func (f *FileBackend) store(record *DatasetRecord, content []byte) error {
	if record.RunID == "" || record.Filename == "" {
		return fmt.Errorf("dataset record needs a run ID and filename")
	}

	relPath := datasetPath(record.RunID, record.Filename)
	dir := filepath.Join(f.root, filepath.Dir(relPath))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(filepath.Join(f.root, relPath), content, 0644); err != nil {
		return fmt.Errorf("failed to write dataset file: %w", err)
	}

	record.Path = relPath
	record.StoredAt = time.Now()
	metadataBytes, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run metadata: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "metadata.json"), metadataBytes, 0644)
}

func (f *FileBackend) recordMetric(operation string, start time.Time, success bool, err error) {
	if f.metricsCollector != nil {
		f.metricsCollector.RecordMetric(StorageMetrics{
			OperationType: operation,
			Duration:      time.Since(start).Nanoseconds(),
			Success:       success,
			Backend:       "file",
			Error:         err,
		})
	}
}
