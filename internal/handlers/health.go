package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/smartbackpack/loadreport/internal/models"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Health handles health check requests
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   Version,
	})
}

// Stats reports store and ingestion counters
// GET /admin/stats
func (h *Handler) Stats(c *fiber.Ctx) error {
	resp := fiber.Map{}
	if src, ok := h.store.(StatsSource); ok {
		resp["store"] = src.GetStats()
	}
	if h.ingestHandler != nil {
		resp["ingest"] = h.ingestHandler.Stats()
	}
	resp["queue_enabled"] = h.queuePublisher != nil
	return c.JSON(resp)
}

// NotFound handles 404 errors
func (h *Handler) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "NOT_FOUND",
			Message: "Route not found",
			Path:    c.Path(),
		},
	})
}
