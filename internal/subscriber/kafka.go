package subscriber

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/smartbackpack/loadreport/internal/logging"
)

// SubjectHeader carries the concrete subject on brokers whose topic or
// stream names cannot hold it
const SubjectHeader = "subject"

// KafkaTopicName maps a subject onto its topic, dropping wildcard tokens
func KafkaTopicName(subject string) string {
	return baseSubject(subject)
}

// KafkaSubscriber implements Subscriber for Kafka
type KafkaSubscriber struct {
	brokers       []string
	consumerGroup string
	readers       map[string]*kafka.Reader
	cancels       map[string]context.CancelFunc
	log           *logging.Logger
	mu            sync.RWMutex
}

// NewKafkaSubscriber creates a new Kafka subscriber
func NewKafkaSubscriber(brokers []string, opts Options) (*KafkaSubscriber, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	opts = opts.withDefaults()

	return &KafkaSubscriber{
		brokers:       brokers,
		consumerGroup: opts.ConsumerGroup,
		readers:       make(map[string]*kafka.Reader),
		cancels:       make(map[string]context.CancelFunc),
		log:           opts.logger("subscriber.kafka"),
	}, nil
}

// Subscribe subscribes to a topic with the given handler
func (s *KafkaSubscriber) Subscribe(ctx context.Context, subject string, handler MessageHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	topic := KafkaTopicName(subject)
	if topic == "" {
		return fmt.Errorf("subject %q does not name a topic", subject)
	}

	if _, exists := s.readers[topic]; exists {
		return fmt.Errorf("already subscribed to topic: %s", topic)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:               s.brokers,
		GroupID:               s.consumerGroup,
		Topic:                 topic,
		MinBytes:              1,
		MaxBytes:              10e6, // 10MB
		MaxWait:               3 * time.Second,
		CommitInterval:        time.Second,
		StartOffset:           kafka.FirstOffset,
		HeartbeatInterval:     3 * time.Second,
		SessionTimeout:        30 * time.Second,
		RebalanceTimeout:      60 * time.Second,
		RetentionTime:         24 * time.Hour,
		WatchPartitionChanges: true,
		ErrorLogger:           kafka.LoggerFunc(func(msg string, args ...interface{}) { s.log.Debug(fmt.Sprintf(msg, args...)) }),
	})

	s.readers[topic] = reader

	subCtx, cancel := context.WithCancel(ctx)
	s.cancels[topic] = cancel

	go s.consume(subCtx, reader, topic, handler)

	s.log.Info("Subscribed to Kafka topic", "topic", topic, "group", s.consumerGroup)
	return nil
}

// consume reads messages from the topic and processes them
func (s *KafkaSubscriber) consume(ctx context.Context, reader *kafka.Reader, topic string, handler MessageHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Error("Failed to fetch message", "topic", topic, "error", err)
			time.Sleep(time.Second)
			continue
		}

		if err := handler(ctx, messageSubject(msg, topic), msg.Value); err != nil {
			s.log.Error("Failed to handle message", "topic", topic, "offset", msg.Offset, "error", err)
			// Not committed, reprocessed after rebalance
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			s.log.Error("Failed to commit message", "topic", topic, "offset", msg.Offset, "error", err)
		}
	}
}

// messageSubject reads the subject header, falling back to the topic
func messageSubject(msg kafka.Message, topic string) string {
	for _, h := range msg.Headers {
		if h.Key == SubjectHeader && len(h.Value) > 0 {
			return string(h.Value)
		}
	}
	return topic
}

// Unsubscribe unsubscribes from a topic
func (s *KafkaSubscriber) Unsubscribe(subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	topic := KafkaTopicName(subject)

	cancel, exists := s.cancels[topic]
	if !exists {
		return fmt.Errorf("not subscribed to topic: %s", topic)
	}

	cancel()
	delete(s.cancels, topic)

	if reader, ok := s.readers[topic]; ok {
		if err := reader.Close(); err != nil {
			s.log.Warn("Failed to close reader", "topic", topic, "error", err)
		}
		delete(s.readers, topic)
	}

	s.log.Info("Unsubscribed from Kafka topic", "topic", topic)
	return nil
}

// Close closes all readers and subscriptions
func (s *KafkaSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for topic, cancel := range s.cancels {
		cancel()
		s.log.Debug("Cancelled subscription", "topic", topic)
	}
	s.cancels = make(map[string]context.CancelFunc)

	var lastErr error
	for topic, reader := range s.readers {
		if err := reader.Close(); err != nil {
			s.log.Warn("Failed to close reader", "topic", topic, "error", err)
			lastErr = err
		}
	}
	s.readers = make(map[string]*kafka.Reader)

	s.log.Info("Kafka subscriber closed")
	return lastErr
}
