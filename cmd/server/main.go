// Package main provides the entry point for the csw-forge server
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/CodeSwitch-Lab/csw-forge/internal/api"
	"github.com/CodeSwitch-Lab/csw-forge/internal/benchmark"
	"github.com/CodeSwitch-Lab/csw-forge/internal/pipeline"
	"github.com/CodeSwitch-Lab/csw-forge/internal/provider"
	"github.com/CodeSwitch-Lab/csw-forge/internal/storage"
	"github.com/CodeSwitch-Lab/csw-forge/internal/switching"
	"github.com/CodeSwitch-Lab/csw-forge/internal/temporal/activities"
	"github.com/CodeSwitch-Lab/csw-forge/internal/temporal/workflows"
	"github.com/CodeSwitch-Lab/csw-forge/pkg/logging"
	"github.com/CodeSwitch-Lab/csw-forge/pkg/ratelimit"
)

func main() {
	if err := logging.SetupLogger(logging.DefaultLogConfig()); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	temporalClient, err := client.Dial(client.Options{
		HostPort: getEnv("TEMPORAL_HOST", "localhost:7233"),
	})
	if err != nil {
		log.Fatalf("Failed to create Temporal client: %v", err)
	}
	defer temporalClient.Close()

	limiter := ratelimit.NewProviderRateLimiter()
	registry := provider.NewRegistry(
		provider.NewOpenAIProvider(os.Getenv("OPENAI_API_KEY"), getEnv("OPENAI_MODEL", "gpt-4o"), limiter),
		provider.NewAnthropicProvider(os.Getenv("ANTHROPIC_API_KEY"), getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"), limiter),
	)

	events := pipeline.NewEventBus(1000, 4)
	defer events.Close()

	engine := switching.NewSwitchEngine(registry, events, switching.DefaultEngineConfig())
	activities.SetGlobalEngine(engine)

	metricsCollector := storage.NewSimpleMetricsCollector()
	var store storage.DatasetStore
	storagePath := getEnv("STORAGE_PATH", "./data/datasets")
	if getEnv("STORAGE_BACKEND", "git") == "git" {
		store, err = storage.NewGitBackend(storagePath, metricsCollector)
	} else {
		store, err = storage.NewFileBackend(storagePath, metricsCollector)
	}
	if err != nil {
		log.Fatalf("Failed to initialize dataset store: %v", err)
	}
	activities.SetGlobalStore(store, metricsCollector)
	activities.SetGlobalBenchmarkClient(benchmark.NewClient(limiter))

	w := worker.New(temporalClient, api.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     10,
		MaxConcurrentWorkflowTaskExecutionSize: 10,
	})

	w.RegisterWorkflow(workflows.CodeSwitchRunWorkflow)
	w.RegisterWorkflow(workflows.BenchmarkPrepWorkflow)

	w.RegisterActivity(activities.LoadTableActivity)
	w.RegisterActivity(activities.SwitchRowsActivity)
	w.RegisterActivity(activities.WriteTableActivity)
	w.RegisterActivity(activities.StoreDatasetActivity)
	w.RegisterActivity(activities.FetchBenchmarkActivity)

	go func() {
		if err := w.Run(worker.InterruptCh()); err != nil {
			log.Fatalf("Failed to start worker: %v", err)
		}
	}()

	h := api.NewHandlers(temporalClient, engine, store, metricsCollector, events)
	app := api.NewApp(h)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	port := getEnv("PORT", "8080")
	log.Printf("Starting csw-forge server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// getEnv retrieves an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
