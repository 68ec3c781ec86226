package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp builds the fiber application with middleware and routes
func NewApp(h *Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "csw-forge",
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(logger.New())

	app.Get("/health", h.Health)

	v1 := app.Group("/api/v1")
	v1.Post("/runs", h.SubmitRun)
	v1.Get("/runs/:id", h.GetRunStatus)
	v1.Get("/metrics", h.GetMetrics)
	v1.Get("/datasets", h.ListDatasets)

	return app
}
