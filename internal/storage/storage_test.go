package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() *DatasetRecord {
	return &DatasetRecord{
		RunID:    "run-123",
		Filename: "belebele_with_csw_fra.csv",
		Strategy: "noun",
		Provider: "openai",
		RowCount: 2,
	}
}

func TestGitBackendStoreAndGet(t *testing.T) {
	metrics := NewSimpleMetricsCollector()
	backend, err := NewGitBackend(t.TempDir(), metrics)
	require.NoError(t, err)

	content := []byte("eng_text,csw_fra\nhello,bonjour le monde\n")
	record := testRecord()
	commit, err := backend.StoreDataset(context.Background(), record, content)
	require.NoError(t, err)
	assert.NotEmpty(t, commit)
	assert.Equal(t, commit, record.CommitHash)

	got, err := backend.GetDataset(context.Background(), "run-123", "belebele_with_csw_fra.csv")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	assert.NoError(t, backend.Health(context.Background()))

	recorded := metrics.GetMetrics()
	require.NotEmpty(t, recorded)
	assert.Equal(t, "store", recorded[0].OperationType)
	assert.True(t, recorded[0].Success)
}

func TestGitBackendList(t *testing.T) {
	backend, err := NewGitBackend(t.TempDir(), nil)
	require.NoError(t, err)

	records, err := backend.ListDatasets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = backend.StoreDataset(context.Background(), testRecord(), []byte("a,b\n1,2\n"))
	require.NoError(t, err)

	records, err = backend.ListDatasets(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "run-123", records[0].RunID)
	assert.Equal(t, "noun", records[0].Strategy)
	assert.NotEmpty(t, records[0].CommitHash)
}

func TestGitBackendRejectsEmptyRecord(t *testing.T) {
	backend, err := NewGitBackend(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = backend.StoreDataset(context.Background(), &DatasetRecord{}, []byte("x"))
	assert.Error(t, err)
}

func TestFileBackendStoreAndGet(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir(), NewSimpleMetricsCollector())
	require.NoError(t, err)

	content := []byte("a,b\n1,2\n")
	_, err = backend.StoreDataset(context.Background(), testRecord(), content)
	require.NoError(t, err)

	got, err := backend.GetDataset(context.Background(), "run-123", "belebele_with_csw_fra.csv")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	_, err = backend.GetDataset(context.Background(), "run-123", "missing.csv")
	assert.Error(t, err)

	records, err := backend.ListDatasets(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "openai", records[0].Provider)

	assert.NoError(t, backend.Health(context.Background()))
}

func TestMetricsSummary(t *testing.T) {
	collector := NewSimpleMetricsCollector()
	collector.RecordMetric(StorageMetrics{OperationType: "store", Backend: "git", Duration: 100, Success: true})
	collector.RecordMetric(StorageMetrics{OperationType: "store", Backend: "git", Duration: 300, Success: false})

	summary := collector.GetMetricsSummary()
	assert.Equal(t, 2, summary["total_operations"])

	byBackend := summary["by_backend"].(map[string]map[string]*OperationStats)
	stats := byBackend["git"]["store"]
	require.NotNil(t, stats)
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.Equal(t, int64(200), stats.AvgDuration)
}
