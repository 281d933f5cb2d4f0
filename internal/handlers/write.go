package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/smartbackpack/loadreport/internal/ingest"
	"github.com/smartbackpack/loadreport/internal/models"
	"github.com/smartbackpack/loadreport/internal/storage"
	"github.com/smartbackpack/loadreport/internal/utils"
)

// WriteReadings handles single and batch reading writes
// POST /v1/backpacks/:code/readings
//
// Invalid readings of a batch are skipped and counted in the response; the
// request fails only when no reading is valid.
func (h *Handler) WriteReadings(c *fiber.Ctx) error {
	code := c.Params("code")
	if err := ingest.ValidateBackpackCode(code); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
	}

	reqs, err := ingest.Decode(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: "Failed to parse request body: " + err.Error(),
			},
		})
	}

	readings, rejected := ingest.Convert(reqs, code, h.loc)
	if len(readings) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: "No valid readings in request",
				Details: map[string]interface{}{"rejected": rejected},
			},
		})
	}

	resp := models.WriteResponse{
		Backpack: code,
		Accepted: len(readings),
		Rejected: len(rejected),
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), utils.BatchWriteTimeout)
	defer cancel()

	if h.queuePublisher != nil {
		data, err := json.Marshal(readings)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    "SERIALIZATION_ERROR",
					Message: "Failed to serialize readings: " + err.Error(),
				},
			})
		}

		subject := ingest.Subject(code)
		if err := h.queuePublisher.Publish(ctx, subject, data); err != nil {
			h.logger.Error("Failed to publish readings",
				"error", err,
				"subject", subject,
				"count", len(readings))
			return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    "QUEUE_UNAVAILABLE",
					Message: "Failed to queue readings: " + err.Error(),
				},
			})
		}

		h.logger.Debug("Readings queued",
			"subject", subject,
			"accepted", resp.Accepted,
			"rejected", resp.Rejected)
		return c.Status(fiber.StatusAccepted).JSON(resp)
	}

	if err := h.store.Write(ctx, readings...); err != nil {
		if errors.Is(err, storage.ErrInvalidReading) {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    "INVALID_REQUEST",
					Message: err.Error(),
				},
			})
		}
		h.logger.Error("Failed to store readings",
			"error", err,
			"backpack", code,
			"count", len(readings))
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "WRITE_FAILED",
				Message: "Failed to store readings: " + err.Error(),
			},
		})
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}
