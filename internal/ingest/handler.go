package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/smartbackpack/loadreport/internal/logging"
	"github.com/smartbackpack/loadreport/internal/storage"
)

// Stats counts what the handler has processed since start
type Stats struct {
	Messages int64 `json:"messages"`
	Accepted int64 `json:"accepted"`
	Rejected int64 `json:"rejected"`
	Dropped  int64 `json:"dropped"` // undecodable messages
}

// Handler consumes reading messages and writes them to a ReadingSink.
// Its Handle method satisfies subscriber.MessageHandler.
//
// Bad input is logged and acknowledged so the broker does not redeliver it
// forever; only store failures are returned, which makes the broker retry.
type Handler struct {
	sink   storage.ReadingSink
	loc    *time.Location
	logger *logging.Logger

	messages atomic.Int64
	accepted atomic.Int64
	rejected atomic.Int64
	dropped  atomic.Int64
}

// NewHandler creates a Handler. Local timestamps in payloads are read in loc.
func NewHandler(sink storage.ReadingSink, loc *time.Location, logger *logging.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		sink:   sink,
		loc:    loc,
		logger: logger.With("component", "ingest"),
	}
}

// Handle processes one message published on subject
func (h *Handler) Handle(ctx context.Context, subject string, data []byte) error {
	h.messages.Add(1)

	reqs, err := Decode(data)
	if err != nil {
		h.dropped.Add(1)
		h.logger.Warn("Dropping undecodable reading message",
			"subject", subject,
			"error", err,
			"data_preview", string(data[:min(100, len(data))]))
		return nil
	}

	readings, rejected := Convert(reqs, BackpackFromSubject(subject), h.loc)
	if len(rejected) > 0 {
		h.rejected.Add(int64(len(rejected)))
		h.logger.Warn("Rejected invalid readings",
			"subject", subject,
			"rejected", len(rejected),
			"first_reason", rejected[0].Reason)
	}
	if len(readings) == 0 {
		return nil
	}

	if err := h.sink.Write(ctx, readings...); err != nil {
		if errors.Is(err, storage.ErrInvalidReading) {
			h.rejected.Add(int64(len(readings)))
			h.logger.Warn("Store rejected readings", "subject", subject, "error", err)
			return nil
		}
		return fmt.Errorf("failed to store %d readings: %w", len(readings), err)
	}

	h.accepted.Add(int64(len(readings)))
	h.logger.Debug("Stored readings",
		"subject", subject,
		"backpack", readings[0].Backpack,
		"count", len(readings))
	return nil
}

// Stats returns the processing counters
func (h *Handler) Stats() Stats {
	return Stats{
		Messages: h.messages.Load(),
		Accepted: h.accepted.Load(),
		Rejected: h.rejected.Load(),
		Dropped:  h.dropped.Load(),
	}
}
