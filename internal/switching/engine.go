package switching

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/CodeSwitch-Lab/csw-forge/internal/pipeline"
	"github.com/CodeSwitch-Lab/csw-forge/internal/prompt"
	"github.com/CodeSwitch-Lab/csw-forge/internal/provider"
	"github.com/CodeSwitch-Lab/csw-forge/pkg/dataset"
	"github.com/CodeSwitch-Lab/csw-forge/pkg/logging"
)

// PlaceholderColumn is the intermediate column added to run output tables
const PlaceholderColumn = "placeholder_text"

// SwitchEngine orchestrates the mask and fill stages for generation runs
type SwitchEngine struct {
	providers      *provider.Registry
	events         *pipeline.EventBus
	config         *EngineConfig
	metrics        *RunMetrics
	activeRequests map[string]*SwitchRequest
	mu             sync.RWMutex
	logger         zerolog.Logger
}

// NewSwitchEngine creates an engine over the given provider registry. The
// event bus is optional.
func NewSwitchEngine(providers *provider.Registry, events *pipeline.EventBus, config *EngineConfig) *SwitchEngine {
	if config == nil {
		config = DefaultEngineConfig()
	}
	return &SwitchEngine{
		providers:      providers,
		events:         events,
		config:         config,
		metrics:        newRunMetrics(),
		activeRequests: make(map[string]*SwitchRequest),
		logger:         logging.GetLogger("switch-engine"),
	}
}

// Switch processes a single row through the mask and fill stages. Failures
// come back as a result with Success=false, not an error.
func (e *SwitchEngine) Switch(ctx context.Context, providerName string, req *SwitchRequest) *SwitchResult {
	start := time.Now()

	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	e.mu.Lock()
	e.activeRequests[req.ID] = req
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		delete(e.activeRequests, req.ID)
		e.mu.Unlock()
	}()

	result := &SwitchResult{
		RequestID: req.ID,
		RowIndex:  req.RowIndex,
		CreatedAt: time.Now(),
	}

	fail := func(err error) *SwitchResult {
		result.Success = false
		result.Error = err.Error()
		result.ProcessingTime = time.Since(start)
		e.metrics.record(result)
		e.publishRowEvent(pipeline.EventRowFailed, req, result)
		e.logger.Warn().
			Err(err).
			Int("row", req.RowIndex).
			Str("strategy", string(req.Strategy)).
			Msg("Row failed")
		return result
	}

	if err := req.Validate(); err != nil {
		return fail(err)
	}

	p, err := e.providers.Get(providerName)
	if err != nil {
		return fail(err)
	}
	result.GenerationModel = p.GetModelName()

	placeholder := req.PlaceholderText
	if placeholder == "" {
		placeholder, err = e.maskText(ctx, p, req)
		if err != nil {
			return fail(err)
		}
	}
	result.PlaceholderText = placeholder
	result.MaskCount = prompt.CountMasks(placeholder)
	e.publishRowEvent(pipeline.EventRowMasked, req, result)

	switched, err := e.fillText(ctx, p, req, placeholder)
	if err != nil {
		return fail(err)
	}
	result.SwitchedText = switched
	result.LeftoverMasks = prompt.CountMasks(switched)
	if result.LeftoverMasks > 0 {
		e.logger.Warn().
			Int("row", req.RowIndex).
			Int("leftover_masks", result.LeftoverMasks).
			Msg("Fill output still contains mask tokens")
	}

	result.Success = true
	result.ProcessingTime = time.Since(start)
	e.metrics.record(result)
	e.publishRowEvent(pipeline.EventRowSwitched, req, result)

	e.logger.Debug().
		Int("row", req.RowIndex).
		Int("masks", result.MaskCount).
		Dur("duration", result.ProcessingTime).
		Msg("Row switched")
	return result
}

// SwitchBatch processes requests under the engine's concurrency bound.
// Results are returned in request order.
func (e *SwitchEngine) SwitchBatch(ctx context.Context, providerName string, reqs []*SwitchRequest) []*SwitchResult {
	results := make([]*SwitchResult, len(reqs))

	limit := e.config.MaxConcurrentRequests
	if limit < 1 {
		limit = 1
	}
	semaphore := make(chan struct{}, limit)

	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(idx int, r *SwitchRequest) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			rowCtx, cancel := context.WithTimeout(ctx, e.config.DefaultTimeout)
			defer cancel()
			results[idx] = e.Switch(rowCtx, providerName, r)
		}(i, req)
	}
	wg.Wait()

	return results
}

// Run executes a full generation run over a table and returns the output
// table with placeholder and switched columns appended.
func (e *SwitchEngine) Run(ctx context.Context, table *dataset.Table, cfg *RunConfig) (*dataset.Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run config: %w", err)
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.New().String()
	}

	logger := logging.GetRunLogger(cfg.RunID, string(cfg.Strategy))

	work, err := PrepareTable(table, cfg)
	if err != nil {
		return nil, err
	}
	reqs := BuildRequests(work, cfg)

	e.publishRunEvent(pipeline.EventRunStarted, cfg, nil)
	logger.Info().
		Str("strategy", string(cfg.Strategy)).
		Str("provider", cfg.Provider).
		Int("rows", len(reqs)).
		Msg("Starting generation run")

	results := e.SwitchBatch(ctx, cfg.Provider, reqs)

	placeholders := make([]string, len(results))
	switched := make([]string, len(results))
	failed := 0
	for i, res := range results {
		placeholders[i] = res.PlaceholderText
		switched[i] = res.SwitchedText
		if !res.Success {
			failed++
		}
	}

	out := work.Clone()
	if !out.HasColumn(PlaceholderColumn) {
		if err := out.AddColumn(PlaceholderColumn, placeholders); err != nil {
			return nil, fmt.Errorf("failed to add placeholder column: %w", err)
		}
	}
	if err := out.AddColumn(cfg.CSWColumn, switched); err != nil {
		return nil, fmt.Errorf("failed to add output column: %w", err)
	}

	e.publishRunEvent(pipeline.EventRunCompleted, cfg, map[string]interface{}{
		"rows":   len(results),
		"failed": failed,
	})
	logger.Info().
		Int("rows", len(results)).
		Int("failed", failed).
		Msg("Generation run complete")

	return out, nil
}

// PrepareTable validates the input columns and applies source-column
// de-duplication and sampling when a sample size is set.
func PrepareTable(table *dataset.Table, cfg *RunConfig) (*dataset.Table, error) {
	if !table.HasColumn(cfg.SourceColumn) {
		return nil, fmt.Errorf("input table has no column %q", cfg.SourceColumn)
	}
	for _, col := range cfg.TargetColumns {
		if !table.HasColumn(col) {
			return nil, fmt.Errorf("input table has no column %q", col)
		}
	}

	if cfg.SampleSize > 0 {
		deduped, err := table.DeduplicateBy(cfg.SourceColumn)
		if err != nil {
			return nil, fmt.Errorf("failed to sample input table: %w", err)
		}
		return deduped.Head(cfg.SampleSize), nil
	}
	return table, nil
}

// BuildRequests constructs one request per row of a prepared table. When
// the table already carries a placeholder column, requests skip the mask
// stage.
func BuildRequests(work *dataset.Table, cfg *RunConfig) []*SwitchRequest {
	hasPlaceholders := work.HasColumn(PlaceholderColumn)

	reqs := make([]*SwitchRequest, work.NumRows())
	for i := 0; i < work.NumRows(); i++ {
		req := &SwitchRequest{
			ID:              uuid.New().String(),
			RowIndex:        i,
			Strategy:        cfg.Strategy,
			MaskRate:        cfg.MaskRate,
			TargetLanguages: cfg.TargetLanguages,
		}
		req.SourceText, _ = work.Cell(i, cfg.SourceColumn)
		for _, col := range cfg.TargetColumns {
			text, _ := work.Cell(i, col)
			req.TargetTexts = append(req.TargetTexts, text)
		}
		if hasPlaceholders {
			if cell, err := work.Cell(i, PlaceholderColumn); err == nil {
				req.PlaceholderText = cell
			}
		}
		reqs[i] = req
	}
	return reqs
}

// GetMetrics returns a snapshot of engine metrics
func (e *SwitchEngine) GetMetrics() RunMetrics {
	return e.metrics.Snapshot()
}

// GetActiveRequestCount returns the number of rows currently in flight
func (e *SwitchEngine) GetActiveRequestCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.activeRequests)
}

func (e *SwitchEngine) maskText(ctx context.Context, p provider.Provider, req *SwitchRequest) (string, error) {
	if req.Strategy == StrategyRandom {
		masker := NewRandomMasker(req.MaskRate, rand.New(rand.NewSource(time.Now().UnixNano())))
		return masker.MaskText(ctx, req)
	}
	masker, err := NewLLMMasker(p, req.Strategy)
	if err != nil {
		return "", err
	}
	return masker.MaskText(ctx, req)
}

func (e *SwitchEngine) fillText(ctx context.Context, p provider.Provider, req *SwitchRequest, placeholder string) (string, error) {
	var (
		promptText string
		err        error
	)
	switch req.Strategy {
	case StrategyNoun:
		promptText, err = prompt.Fill(placeholder, req.TargetTexts[0], req.TargetLanguages[0])
	case StrategyRandom:
		promptText, err = prompt.RandomFill(placeholder, req.TargetTexts[0], req.TargetLanguages[0])
	case StrategyReverse:
		promptText, err = prompt.ReverseFill(placeholder, req.SourceText, req.TargetLanguages[0])
	case StrategyMulti:
		promptText, err = prompt.MultiFill(placeholder, req.TargetTexts, req.TargetLanguages)
	default:
		return "", fmt.Errorf("unsupported strategy: %s", req.Strategy)
	}
	if err != nil {
		return "", fmt.Errorf("failed to render fill prompt: %w", err)
	}

	filled, err := p.Complete(ctx, promptText)
	if err != nil {
		return "", fmt.Errorf("fill call failed: %w", err)
	}
	return strings.TrimSpace(filled), nil
}

func (e *SwitchEngine) publishRowEvent(eventType pipeline.EventType, req *SwitchRequest, result *SwitchResult) {
	if e.events == nil {
		return
	}
	event := pipeline.NewRowEvent(eventType, "", req.RowIndex)
	event.Strategy = string(req.Strategy)
	event.MaskCount = result.MaskCount
	event.Error = result.Error
	if err := e.events.Publish(event); err != nil {
		e.logger.Debug().Err(err).Msg("Failed to publish row event")
	}
}

func (e *SwitchEngine) publishRunEvent(eventType pipeline.EventType, cfg *RunConfig, metadata map[string]interface{}) {
	if e.events == nil {
		return
	}
	event := pipeline.NewRowEvent(eventType, cfg.RunID, -1)
	event.Strategy = string(cfg.Strategy)
	for k, v := range metadata {
		event.Metadata[k] = v
	}
	if err := e.events.Publish(event); err != nil {
		e.logger.Debug().Err(err).Msg("Failed to publish run event")
	}
}
