package subscriber

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smartbackpack/loadreport/internal/logging"
)

// DefaultStreamPrefix prefixes every Redis stream name
const DefaultStreamPrefix = "loadreport"

// RedisConfig holds the connection settings of a Redis Streams subscriber
type RedisConfig struct {
	URL          string // redis://host:6379/0 or a bare host:port
	Password     string
	DB           int
	StreamPrefix string
}

// RedisOptions turns a RedisConfig into client options. Shared with the
// Redis publisher so both sides resolve the same server.
func RedisOptions(cfg RedisConfig) *redis.Options {
	if opts, err := redis.ParseURL(cfg.URL); err == nil {
		if cfg.Password != "" {
			opts.Password = cfg.Password
		}
		return opts
	}

	addr := cfg.URL
	if addr == "" {
		addr = "localhost:6379"
	}
	return &redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// RedisStreamName maps a subject onto its stream: wildcard tokens are
// dropped, since streams have no subject hierarchy
func RedisStreamName(prefix, subject string) string {
	if prefix == "" {
		prefix = DefaultStreamPrefix
	}
	return fmt.Sprintf("%s:%s", prefix, baseSubject(subject))
}

// RedisSubscriber implements Subscriber for Redis Streams
type RedisSubscriber struct {
	client        *redis.Client
	streamPrefix  string
	consumerGroup string
	consumerID    string
	subscriptions map[string]context.CancelFunc
	log           *logging.Logger
	mu            sync.RWMutex
}

// NewRedisSubscriber creates a new Redis Streams subscriber
func NewRedisSubscriber(cfg RedisConfig, opts Options) (*RedisSubscriber, error) {
	opts = opts.withDefaults()
	client := redis.NewClient(RedisOptions(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := cfg.StreamPrefix
	if prefix == "" {
		prefix = DefaultStreamPrefix
	}

	return &RedisSubscriber{
		client:        client,
		streamPrefix:  prefix,
		consumerGroup: opts.ConsumerGroup,
		consumerID:    opts.ClientName,
		subscriptions: make(map[string]context.CancelFunc),
		log:           opts.logger("subscriber.redis"),
	}, nil
}

// Subscribe subscribes to a stream with the given handler
func (s *RedisSubscriber) Subscribe(ctx context.Context, subject string, handler MessageHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	streamName := RedisStreamName(s.streamPrefix, subject)

	if _, exists := s.subscriptions[streamName]; exists {
		return fmt.Errorf("already subscribed to stream: %s", streamName)
	}

	err := s.client.XGroupCreateMkStream(ctx, streamName, s.consumerGroup, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	s.subscriptions[streamName] = cancel

	go s.consume(subCtx, streamName, subject, handler)

	s.log.Info("Subscribed to Redis stream", "stream", streamName, "group", s.consumerGroup, "consumer", s.consumerID)
	return nil
}

// consume reads messages from the stream and processes them
func (s *RedisSubscriber) consume(ctx context.Context, streamName, subject string, handler MessageHandler) {
	fallbackSubject := baseSubject(subject)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.consumerGroup,
			Consumer: s.consumerID,
			Streams:  []string{streamName, ">"},
			Count:    100,
			Block:    time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			s.log.Error("Failed to read from stream", "stream", streamName, "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				data, ok := message.Values["data"].(string)
				if !ok {
					s.log.Warn("Invalid message format", "stream", streamName, "id", message.ID)
					s.client.XAck(ctx, streamName, s.consumerGroup, message.ID)
					continue
				}

				msgSubject, _ := message.Values["subject"].(string)
				if msgSubject == "" {
					msgSubject = fallbackSubject
				}

				if err := handler(ctx, msgSubject, []byte(data)); err != nil {
					s.log.Error("Failed to handle message", "stream", streamName, "id", message.ID, "error", err)
					// Left pending for redelivery
					continue
				}

				if err := s.client.XAck(ctx, streamName, s.consumerGroup, message.ID).Err(); err != nil {
					s.log.Error("Failed to ACK message", "stream", streamName, "id", message.ID, "error", err)
				}
			}
		}
	}
}

// Unsubscribe unsubscribes from a stream
func (s *RedisSubscriber) Unsubscribe(subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	streamName := RedisStreamName(s.streamPrefix, subject)
	cancel, exists := s.subscriptions[streamName]
	if !exists {
		return fmt.Errorf("not subscribed to stream: %s", streamName)
	}

	cancel()
	delete(s.subscriptions, streamName)
	s.log.Info("Unsubscribed from Redis stream", "stream", streamName)
	return nil
}

// Close closes all subscriptions and the connection
func (s *RedisSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for streamName, cancel := range s.subscriptions {
		cancel()
		s.log.Debug("Cancelled subscription", "stream", streamName)
	}
	s.subscriptions = make(map[string]context.CancelFunc)

	if err := s.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}

	s.log.Info("Redis subscriber closed")
	return nil
}
