package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smartbackpack/loadreport/internal/subscriber"
)

// RedisPublisher implements Publisher using Redis Streams. The concrete
// subject travels in the entry's "subject" field since the stream name only
// holds the subject prefix.
type RedisPublisher struct {
	client       *redis.Client
	streamPrefix string
}

// NewRedisPublisher creates a new Redis Streams publisher
func NewRedisPublisher(cfg subscriber.RedisConfig) (*RedisPublisher, error) {
	client := redis.NewClient(subscriber.RedisOptions(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisPublisher{client: client, streamPrefix: cfg.StreamPrefix}, nil
}

func (p *RedisPublisher) args(subject string, data []byte) *redis.XAddArgs {
	return &redis.XAddArgs{
		Stream: subscriber.RedisStreamName(p.streamPrefix, subject),
		ID:     "*",
		Values: map[string]interface{}{
			"data":                   data,
			subscriber.SubjectHeader: subject,
		},
	}
}

// Publish appends a message to the subject's stream
func (p *RedisPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := p.args(subject, data)
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis stream %s: %w", args.Stream, err)
	}
	return nil
}

// PublishBatch publishes multiple messages using a Redis pipeline
func (p *RedisPublisher) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	pipe := p.client.Pipeline()
	for _, msg := range messages {
		pipe.XAdd(ctx, p.args(msg.Subject, msg.Data))
	}

	cmds, err := pipe.Exec(ctx)
	successCount := 0
	for _, cmd := range cmds {
		if cmd.Err() == nil {
			successCount++
		}
	}
	if err != nil && successCount == 0 {
		return 0, fmt.Errorf("failed to execute batch publish: %w", err)
	}
	return successCount, nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
