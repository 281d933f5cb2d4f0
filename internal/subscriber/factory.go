package subscriber

import (
	"fmt"
	"strings"

	"github.com/smartbackpack/loadreport/internal/config"
)

// QueueType names a message broker backend
type QueueType string

const (
	QueueTypeNATS   QueueType = "nats"
	QueueTypeRedis  QueueType = "redis"
	QueueTypeKafka  QueueType = "kafka"
	QueueTypeMemory QueueType = "memory"
)

// ParseQueueType normalizes a configured queue type; empty means NATS
func ParseQueueType(s string) QueueType {
	t := QueueType(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return QueueTypeNATS
	}
	return t
}

// NewSubscriber creates a new Subscriber based on the queue configuration
func NewSubscriber(cfg config.QueueConfig, opts Options) (Subscriber, error) {
	opts = opts.withDefaults()
	if cfg.ConsumerGroup != "" {
		opts.ConsumerGroup = cfg.ConsumerGroup
	}

	switch ParseQueueType(cfg.Type) {
	case QueueTypeNATS:
		return NewNATSSubscriber(NATSConfig{
			URL:      cfg.URL,
			Username: cfg.Username,
			Password: cfg.Password,
		}, opts)
	case QueueTypeRedis:
		return NewRedisSubscriber(RedisConfig{
			URL:          cfg.URL,
			Password:     cfg.Password,
			DB:           cfg.RedisDB,
			StreamPrefix: cfg.RedisStream,
		}, opts)
	case QueueTypeKafka:
		return NewKafkaSubscriber(cfg.KafkaBrokers, opts)
	case QueueTypeMemory:
		return NewMemorySubscriber(opts), nil
	default:
		return nil, fmt.Errorf("unsupported queue type: %s (supported: nats, redis, kafka, memory)", cfg.Type)
	}
}
