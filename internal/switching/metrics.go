package switching

import (
	"sync"
	"time"
)

// RunMetrics tracks engine performance across a run
type RunMetrics struct {
	RowsProcessed     int64                    `json:"rows_processed"`
	RowsSucceeded     int64                    `json:"rows_succeeded"`
	RowsFailed        int64                    `json:"rows_failed"`
	TotalMasks        int64                    `json:"total_masks"`
	LeftoverMasks     int64                    `json:"leftover_masks"`
	AverageMasks      float64                  `json:"average_masks_per_row"`
	AverageProcessing time.Duration            `json:"average_processing_time"`
	ModelPerformance  map[string]*ModelMetrics `json:"model_performance"`
	LastUpdated       time.Time                `json:"last_updated"`
	mu                sync.RWMutex
}

// ModelMetrics tracks per-model performance
type ModelMetrics struct {
	RequestCount   int64         `json:"request_count"`
	SuccessCount   int64         `json:"success_count"`
	FailureCount   int64         `json:"failure_count"`
	AverageLatency time.Duration `json:"average_latency"`
	LastUsed       time.Time     `json:"last_used"`
}

func newRunMetrics() *RunMetrics {
	return &RunMetrics{
		ModelPerformance: make(map[string]*ModelMetrics),
	}
}

func (m *RunMetrics) record(result *SwitchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RowsProcessed++
	if result.Success {
		m.RowsSucceeded++
		m.TotalMasks += int64(result.MaskCount)
		m.LeftoverMasks += int64(result.LeftoverMasks)
		if m.RowsSucceeded > 0 {
			m.AverageMasks = float64(m.TotalMasks) / float64(m.RowsSucceeded)
		}
	} else {
		m.RowsFailed++
	}

	// Running average over all rows
	if m.RowsProcessed == 1 {
		m.AverageProcessing = result.ProcessingTime
	} else {
		m.AverageProcessing = (m.AverageProcessing*time.Duration(m.RowsProcessed-1) + result.ProcessingTime) / time.Duration(m.RowsProcessed)
	}

	if result.GenerationModel != "" {
		model, exists := m.ModelPerformance[result.GenerationModel]
		if !exists {
			model = &ModelMetrics{}
			m.ModelPerformance[result.GenerationModel] = model
		}
		model.RequestCount++
		if result.Success {
			model.SuccessCount++
		} else {
			model.FailureCount++
		}
		if model.RequestCount == 1 {
			model.AverageLatency = result.ProcessingTime
		} else {
			model.AverageLatency = (model.AverageLatency*time.Duration(model.RequestCount-1) + result.ProcessingTime) / time.Duration(model.RequestCount)
		}
		model.LastUsed = time.Now()
	}

	m.LastUpdated = time.Now()
}

// Snapshot returns a copy safe for concurrent readers
func (m *RunMetrics) Snapshot() RunMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := RunMetrics{
		RowsProcessed:     m.RowsProcessed,
		RowsSucceeded:     m.RowsSucceeded,
		RowsFailed:        m.RowsFailed,
		TotalMasks:        m.TotalMasks,
		LeftoverMasks:     m.LeftoverMasks,
		AverageMasks:      m.AverageMasks,
		AverageProcessing: m.AverageProcessing,
		ModelPerformance:  make(map[string]*ModelMetrics, len(m.ModelPerformance)),
		LastUpdated:       m.LastUpdated,
	}
	for name, model := range m.ModelPerformance {
		copied := *model
		snapshot.ModelPerformance[name] = &copied
	}
	return snapshot
}
