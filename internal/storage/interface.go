package storage

import (
	"context"
	"time"
)

// DatasetRecord describes one stored dataset file
type DatasetRecord struct {
	RunID      string    `json:"run_id"`
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	Strategy   string    `json:"strategy"`
	Provider   string    `json:"provider"`
	RowCount   int       `json:"row_count"`
	CommitHash string    `json:"commit_hash,omitempty"`
	StoredAt   time.Time `json:"stored_at"`
}

// DatasetStore persists generated dataset files with their run metadata
type DatasetStore interface {
	StoreDataset(ctx context.Context, record *DatasetRecord, content []byte) (string, error)
	GetDataset(ctx context.Context, runID, filename string) ([]byte, error)
	ListDatasets(ctx context.Context) ([]*DatasetRecord, error)
	Health(ctx context.Context) error
}

// StorageMetrics provides telemetry for storage operations
type StorageMetrics struct {
	OperationType string
	Duration      int64 // nanoseconds
	Success       bool
	Backend       string
	Error         error
}

// MetricsCollector receives storage operation metrics
type MetricsCollector interface {
	RecordMetric(metric StorageMetrics)
}
