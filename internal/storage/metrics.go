package storage

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// SimpleMetricsCollector accumulates storage operation metrics in memory
type SimpleMetricsCollector struct {
	metrics []StorageMetrics
	mutex   sync.RWMutex
}

// NewSimpleMetricsCollector creates an empty collector
func NewSimpleMetricsCollector() *SimpleMetricsCollector {
	return &SimpleMetricsCollector{
		metrics: make([]StorageMetrics, 0),
	}
}

// RecordMetric records one storage operation
func (s *SimpleMetricsCollector) RecordMetric(metric StorageMetrics) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.metrics = append(s.metrics, metric)

	logger := log.With().
		Str("operation", metric.OperationType).
		Str("backend", metric.Backend).
		Int64("duration_ns", metric.Duration).
		Bool("success", metric.Success).
		Logger()
	if metric.Error != nil {
		logger = logger.With().Err(metric.Error).Logger()
	}
	logger.Debug().Msg("Storage operation recorded")
}

// GetMetrics returns a copy of all collected metrics
func (s *SimpleMetricsCollector) GetMetrics() []StorageMetrics {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make([]StorageMetrics, len(s.metrics))
	copy(result, s.metrics)
	return result
}

// OperationStats aggregates metrics for one backend/operation pair
type OperationStats struct {
	Count         int   `json:"count"`
	SuccessCount  int   `json:"success_count"`
	FailureCount  int   `json:"failure_count"`
	TotalDuration int64 `json:"total_duration_ns"`
	AvgDuration   int64 `json:"avg_duration_ns"`
}

// GetAvgDurationMs returns the average duration in milliseconds
func (o *OperationStats) GetAvgDurationMs() float64 {
	return float64(o.AvgDuration) / float64(time.Millisecond)
}

// GetMetricsSummary aggregates collected metrics per backend and operation
func (s *SimpleMetricsCollector) GetMetricsSummary() map[string]interface{} {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	byBackend := make(map[string]map[string]*OperationStats)
	for _, metric := range s.metrics {
		if byBackend[metric.Backend] == nil {
			byBackend[metric.Backend] = make(map[string]*OperationStats)
		}
		stats := byBackend[metric.Backend][metric.OperationType]
		if stats == nil {
			stats = &OperationStats{}
			byBackend[metric.Backend][metric.OperationType] = stats
		}
		stats.Count++
		stats.TotalDuration += metric.Duration
		if metric.Success {
			stats.SuccessCount++
		} else {
			stats.FailureCount++
		}
		stats.AvgDuration = stats.TotalDuration / int64(stats.Count)
	}

	return map[string]interface{}{
		"by_backend":       byBackend,
		"total_operations": len(s.metrics),
	}
}
