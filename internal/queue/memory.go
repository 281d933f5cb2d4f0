package queue

import (
	"context"
	"fmt"

	"github.com/smartbackpack/loadreport/internal/subscriber"
)

// MemoryPublisher publishes onto the in-process broker shared with
// subscriber.MemorySubscriber
type MemoryPublisher struct{}

// NewMemoryPublisher creates a new in-memory publisher
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// Publish delivers the message to every matching memory subscription
func (p *MemoryPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if subscriber.PublishToMemory(subject, data) == 0 {
		return fmt.Errorf("%w: %s", ErrNoSubscribers, subject)
	}
	return nil
}

// PublishBatch publishes multiple messages
func (p *MemoryPublisher) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	successCount := 0
	var lastErr error

	for _, msg := range messages {
		if err := p.Publish(ctx, msg.Subject, msg.Data); err != nil {
			lastErr = err
			continue
		}
		successCount++
	}

	if lastErr != nil && successCount == 0 {
		return 0, fmt.Errorf("failed to publish batch: %w", lastErr)
	}
	return successCount, nil
}

// Close is a no-op, the broker outlives its publishers
func (p *MemoryPublisher) Close() error {
	return nil
}
