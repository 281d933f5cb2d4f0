package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/smartbackpack/loadreport/internal/config"
	"github.com/smartbackpack/loadreport/internal/handlers"
	"github.com/smartbackpack/loadreport/internal/logging"
	"github.com/smartbackpack/loadreport/internal/middleware"
	"github.com/smartbackpack/loadreport/internal/queue"
	"github.com/smartbackpack/loadreport/internal/report"
	"github.com/smartbackpack/loadreport/internal/storage"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, store storage.ReadingStore,
	publisher queue.Publisher, aggregator *report.Aggregator, cfg config.Config,
) *handlers.Handler {
	h := handlers.New(logger, store, publisher, aggregator)
	h.SetReportDefaults(report.Options{
		BodyWeightKg: cfg.Report.BodyWeightKg,
		MaxLoadPct:   cfg.Report.MaxLoadPct,
	})

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger, logging.DefaultMiddlewareConfig()))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	authMiddleware := middleware.APIKeyAuth(logger, cfg.Auth.APIKeys, cfg.Auth.Enabled)

	// API v1 routes (protected by API key)
	v1 := app.Group("/v1", authMiddleware)
	backpack := v1.Group("/backpacks/:code")

	// Reading ingestion
	backpack.Post("/readings", h.WriteReadings)

	// Reports
	backpack.Get("/reports/daily", h.DailyReport)
	backpack.Get("/reports/weekly", h.WeeklyReport)
	backpack.Get("/reports/period", h.PeriodReport)
	backpack.Get("/reports/monthly", h.MonthlyReport)
	backpack.Get("/reports/annual", h.AnnualReport)

	// Forecast
	backpack.Get("/forecast", h.Forecast)

	// Admin routes (protected by API key)
	admin := app.Group("/admin", authMiddleware)
	admin.Get("/stats", h.Stats)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, store storage.ReadingStore,
	publisher queue.Publisher, aggregator *report.Aggregator, cfg config.Config,
) (*fiber.App, *handlers.Handler) {
	app := fiber.New(fiber.Config{
		AppName:               "Loadreport",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	h := Setup(app, logger, store, publisher, aggregator, cfg)

	return app, h
}
