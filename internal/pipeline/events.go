package pipeline

import (
	"fmt"
	"math/rand"
	"time"
)

// EventType represents the type of generation event
type EventType string

const (
	EventRunStarted   EventType = "run.started"
	EventRowMasked    EventType = "row.masked"
	EventRowSwitched  EventType = "row.switched"
	EventRowFailed    EventType = "row.failed"
	EventRunCompleted EventType = "run.completed"
)

// RowEvent represents an event in the code-switching pipeline
type RowEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	RunID     string                 `json:"run_id"`
	RowIndex  int                    `json:"row_index"`
	Strategy  string                 `json:"strategy,omitempty"`
	MaskCount int                    `json:"mask_count,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// NewRowEvent creates a new event for a row of a generation run
func NewRowEvent(eventType EventType, runID string, rowIndex int) *RowEvent {
	return &RowEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now(),
		RunID:     runID,
		RowIndex:  rowIndex,
		Metadata:  make(map[string]interface{}),
	}
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return fmt.Sprintf("evt_%d_%s", time.Now().UnixNano(), generateRandomString(8))
}

func generateRandomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
