package storage

import (
	"context"
	"errors"
	"time"

	"github.com/smartbackpack/loadreport/internal/models"
)

// ErrInvalidReading is returned for readings that cannot be stored
var ErrInvalidReading = errors.New("invalid reading")

// ReadingSource is the read side used by the report services
type ReadingSource interface {
	// Query returns the readings of backpack with timestamps in [start, end),
	// ordered by time. A zero end means no upper bound.
	Query(ctx context.Context, backpack string, start, end time.Time) ([]models.Reading, error)
}

// ReadingSink is the write side used by ingestion and the HTTP write handler
type ReadingSink interface {
	Write(ctx context.Context, readings ...models.Reading) error
}

// ReadingStore combines both sides
type ReadingStore interface {
	ReadingSource
	ReadingSink
}
