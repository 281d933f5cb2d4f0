// Package queue publishes readings onto the ingestion broker. It is the
// producing counterpart of package subscriber and maps subjects onto each
// backend the same way, so a reading published on "readings.<code>" reaches
// a subscription on "readings.>" whatever the broker.
package queue

import (
	"context"
	"errors"
)

// ErrNoSubscribers is returned by the memory publisher when nothing listens
// on the subject, since the message would be lost
var ErrNoSubscribers = errors.New("no subscribers for subject")

// Publisher publishes messages to a queue
type Publisher interface {
	// Publish publishes a message to a subject and waits for the broker
	// to accept it
	Publish(ctx context.Context, subject string, data []byte) error

	// PublishBatch publishes multiple messages and waits for all to complete.
	// Returns the number of successfully published messages.
	PublishBatch(ctx context.Context, messages []BatchMessage) (int, error)

	// Close closes the connection
	Close() error
}

// BatchMessage represents a message for batch publishing
type BatchMessage struct {
	Subject string
	Data    []byte
}
