package queue

import (
	"fmt"

	"github.com/smartbackpack/loadreport/internal/config"
	"github.com/smartbackpack/loadreport/internal/subscriber"
)

// NewPublisher creates a Publisher for the configured broker. Default is
// NATS when the type is empty.
func NewPublisher(cfg config.QueueConfig) (Publisher, error) {
	switch subscriber.ParseQueueType(cfg.Type) {
	case subscriber.QueueTypeNATS:
		return NewNATSPublisher(subscriber.NATSConfig{
			URL:      cfg.URL,
			Username: cfg.Username,
			Password: cfg.Password,
		}, cfg.Subject)

	case subscriber.QueueTypeRedis:
		return NewRedisPublisher(subscriber.RedisConfig{
			URL:          cfg.URL,
			Password:     cfg.Password,
			DB:           cfg.RedisDB,
			StreamPrefix: cfg.RedisStream,
		})

	case subscriber.QueueTypeKafka:
		return NewKafkaPublisher(KafkaConfig{Brokers: cfg.KafkaBrokers})

	case subscriber.QueueTypeMemory:
		return NewMemoryPublisher(), nil

	default:
		return nil, fmt.Errorf("unsupported queue type: %s (supported: nats, redis, kafka, memory)", cfg.Type)
	}
}
