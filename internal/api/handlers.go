package api

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/CodeSwitch-Lab/csw-forge/internal/pipeline"
	"github.com/CodeSwitch-Lab/csw-forge/internal/storage"
	"github.com/CodeSwitch-Lab/csw-forge/internal/switching"
	"github.com/CodeSwitch-Lab/csw-forge/internal/temporal/workflows"
	"github.com/CodeSwitch-Lab/csw-forge/pkg/logging"
)

// TaskQueue is the Temporal task queue for all workflows
const TaskQueue = "csw-forge"

// Handlers contains the HTTP handlers for the API
type Handlers struct {
	temporal     client.Client
	engine       *switching.SwitchEngine
	store        storage.DatasetStore
	storeMetrics *storage.SimpleMetricsCollector
	events       *pipeline.EventBus
}

// NewHandlers creates a new handlers instance
func NewHandlers(temporal client.Client, engine *switching.SwitchEngine, store storage.DatasetStore, storeMetrics *storage.SimpleMetricsCollector, events *pipeline.EventBus) *Handlers {
	return &Handlers{
		temporal:     temporal,
		engine:       engine,
		store:        store,
		storeMetrics: storeMetrics,
		events:       events,
	}
}

// Health returns the service health status
func (h *Handlers) Health(c *fiber.Ctx) error {
	status := fiber.Map{
		"status":    "healthy",
		"service":   "csw-forge",
		"version":   "0.1.0",
		"timestamp": time.Now().UTC(),
	}
	if h.store != nil {
		if err := h.store.Health(c.Context()); err != nil {
			status["status"] = "degraded"
			status["storage_error"] = err.Error()
		}
	}
	return c.JSON(status)
}

// SubmitRunRequest starts a generation run over a prepared input CSV
type SubmitRunRequest struct {
	InputPath       string   `json:"input_path"`
	OutputDir       string   `json:"output_dir"`
	Strategy        string   `json:"strategy"`
	SourceColumn    string   `json:"source_column"`
	TargetColumns   []string `json:"target_columns"`
	TargetLanguages []string `json:"target_languages"`
	CSWColumn       string   `json:"csw_column"`
	Provider        string   `json:"provider"`
	SampleSize      int      `json:"sample_size"`
	MaskRate        float64  `json:"mask_rate"`
	StoreInGit      bool     `json:"store_in_git"`
}

// SubmitRunResponse carries the workflow identifiers of a started run
type SubmitRunResponse struct {
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`
}

// SubmitRun starts a new code-switch generation workflow
func (h *Handlers) SubmitRun(c *fiber.Ctx) error {
	logger := logging.GetLogger("api")

	var req SubmitRunRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
	}

	if req.InputPath == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "input_path is required",
		})
	}
	if req.OutputDir == "" {
		req.OutputDir = "output"
	}

	cfg := switching.RunConfig{
		RunID:           uuid.New().String(),
		Strategy:        switching.Strategy(req.Strategy),
		SourceColumn:    req.SourceColumn,
		TargetColumns:   req.TargetColumns,
		TargetLanguages: req.TargetLanguages,
		CSWColumn:       req.CSWColumn,
		Provider:        req.Provider,
		SampleSize:      req.SampleSize,
		MaskRate:        req.MaskRate,
	}
	if err := cfg.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": err.Error(),
		})
	}

	workflowID := fmt.Sprintf("csw-run-%s", cfg.RunID)
	we, err := h.temporal.ExecuteWorkflow(c.Context(), client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: TaskQueue,
	}, workflows.CodeSwitchRunWorkflow, workflows.CodeSwitchRunInput{
		RunID:      cfg.RunID,
		InputPath:  req.InputPath,
		OutputDir:  req.OutputDir,
		Config:     cfg,
		StoreInGit: req.StoreInGit,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to start run workflow")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to start generation run",
			"details": err.Error(),
		})
	}

	logger.Info().
		Str("workflow_id", we.GetID()).
		Str("strategy", req.Strategy).
		Str("input", req.InputPath).
		Msg("Started generation run")

	return c.Status(fiber.StatusAccepted).JSON(SubmitRunResponse{
		WorkflowID: we.GetID(),
		RunID:      we.GetRunID(),
	})
}

// GetRunStatus reports the state of a run workflow
func (h *Handlers) GetRunStatus(c *fiber.Ctx) error {
	workflowID := c.Params("id")
	if workflowID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Workflow ID is required",
		})
	}

	desc, err := h.temporal.DescribeWorkflowExecution(c.Context(), workflowID, "")
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Run not found",
			"details": err.Error(),
		})
	}

	info := desc.GetWorkflowExecutionInfo()
	return c.JSON(fiber.Map{
		"workflow_id": workflowID,
		"status":      info.GetStatus().String(),
		"start_time":  info.GetStartTime(),
		"close_time":  info.GetCloseTime(),
	})
}

// GetMetrics exposes engine, event bus and storage statistics
func (h *Handlers) GetMetrics(c *fiber.Ctx) error {
	metrics := fiber.Map{
		"timestamp": time.Now().UTC(),
	}
	if h.engine != nil {
		metrics["engine"] = h.engine.GetMetrics()
		metrics["active_requests"] = h.engine.GetActiveRequestCount()
	}
	if h.events != nil {
		metrics["events"] = h.events.GetStats()
	}
	if h.storeMetrics != nil {
		metrics["storage"] = h.storeMetrics.GetMetricsSummary()
	}
	return c.JSON(metrics)
}

// ListDatasets returns every stored dataset record
func (h *Handlers) ListDatasets(c *fiber.Ctx) error {
	if h.store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Dataset store not configured",
		})
	}

	records, err := h.store.ListDatasets(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to list datasets",
			"details": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"datasets": records,
		"count":    len(records),
	})
}
