// Package switching implements the two-stage mask-then-fill pipeline that
// turns aligned parallel sentences into synthetic code-switched text.
package switching

import (
	"fmt"
	"time"
)

// Strategy selects how switch points are chosen and filled
type Strategy string

const (
	// StrategyNoun masks nouns in the English sentence via an LLM call
	// guided by the Equivalence Constraint Theory and the Matrix Language
	// Frame model, then fills them from a single parallel sentence.
	StrategyNoun Strategy = "noun"
	// StrategyRandom masks a random fraction of words locally, then fills
	// them from a single parallel sentence.
	StrategyRandom Strategy = "random"
	// StrategyReverse masks nouns in the target-language sentence and
	// fills them with words from the parallel English sentence.
	StrategyReverse Strategy = "reverse"
	// StrategyMulti masks nouns in the English sentence and fills them
	// from several parallel languages at once, distributing switches
	// evenly.
	StrategyMulti Strategy = "multi"
)

// DefaultMaskRate is the fraction of words masked by StrategyRandom
const DefaultMaskRate = 0.2

// ParseStrategy validates a strategy name
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyNoun, StrategyRandom, StrategyReverse, StrategyMulti:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown strategy: %s", s)
	}
}

// SwitchRequest represents one row of a generation run
type SwitchRequest struct {
	ID              string   `json:"id"`
	RowIndex        int      `json:"row_index"`
	SourceText      string   `json:"source_text"`
	TargetTexts     []string `json:"target_texts"`
	TargetLanguages []string `json:"target_languages"`
	Strategy        Strategy `json:"strategy"`
	MaskRate        float64  `json:"mask_rate,omitempty"`
	// PlaceholderText carries a pre-masked sentence when the input table
	// already has one; the mask stage is skipped for such rows.
	PlaceholderText string `json:"placeholder_text,omitempty"`
}

// Validate checks that a request is well-formed for its strategy
func (r *SwitchRequest) Validate() error {
	if r.SourceText == "" {
		return fmt.Errorf("source text cannot be empty")
	}
	if len(r.TargetTexts) == 0 {
		return fmt.Errorf("request needs at least one target text")
	}
	if len(r.TargetTexts) != len(r.TargetLanguages) {
		return fmt.Errorf("got %d target texts for %d target languages", len(r.TargetTexts), len(r.TargetLanguages))
	}
	if r.Strategy != StrategyMulti && len(r.TargetTexts) != 1 {
		return fmt.Errorf("strategy %s takes exactly one target text, got %d", r.Strategy, len(r.TargetTexts))
	}
	return nil
}

// SwitchResult represents the outcome of one row
type SwitchResult struct {
	RequestID       string        `json:"request_id"`
	RowIndex        int           `json:"row_index"`
	PlaceholderText string        `json:"placeholder_text"`
	SwitchedText    string        `json:"switched_text"`
	MaskCount       int           `json:"mask_count"`
	LeftoverMasks   int           `json:"leftover_masks"`
	GenerationModel string        `json:"generation_model"`
	ProcessingTime  time.Duration `json:"processing_time"`
	Success         bool          `json:"success"`
	Error           string        `json:"error,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// RunConfig describes a full generation run over an input table
type RunConfig struct {
	RunID           string   `json:"run_id"`
	Strategy        Strategy `json:"strategy"`
	SourceColumn    string   `json:"source_column"`
	TargetColumns   []string `json:"target_columns"`
	TargetLanguages []string `json:"target_languages"`
	CSWColumn       string   `json:"csw_column"`
	Provider        string   `json:"provider"`
	SampleSize      int      `json:"sample_size,omitempty"`
	MaskRate        float64  `json:"mask_rate,omitempty"`
}

// Validate checks the run configuration before any row is processed
func (c *RunConfig) Validate() error {
	if _, err := ParseStrategy(string(c.Strategy)); err != nil {
		return err
	}
	if c.SourceColumn == "" {
		return fmt.Errorf("source column is required")
	}
	if len(c.TargetColumns) == 0 {
		return fmt.Errorf("at least one target column is required")
	}
	if len(c.TargetColumns) != len(c.TargetLanguages) {
		return fmt.Errorf("the number of target columns and target languages must match")
	}
	if c.Strategy != StrategyMulti && len(c.TargetColumns) != 1 {
		return fmt.Errorf("strategy %s takes exactly one target column", c.Strategy)
	}
	if c.CSWColumn == "" {
		return fmt.Errorf("output column name is required")
	}
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if c.MaskRate < 0 || c.MaskRate > 1 {
		return fmt.Errorf("mask rate must be between 0 and 1")
	}
	return nil
}

// EngineConfig holds engine-level settings
type EngineConfig struct {
	MaxConcurrentRequests int           `json:"max_concurrent_requests"`
	DefaultTimeout        time.Duration `json:"default_timeout"`
}

// DefaultEngineConfig processes rows one at a time, matching the original
// sequential experiment setup
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		MaxConcurrentRequests: 1,
		DefaultTimeout:        2 * time.Minute,
	}
}
