package subscriber

import (
	"strings"
	"testing"

	"github.com/smartbackpack/loadreport/internal/config"
	"github.com/smartbackpack/loadreport/internal/logging"
)

func TestParseQueueType(t *testing.T) {
	tests := map[string]QueueType{
		"":         QueueTypeNATS,
		"NATS":     QueueTypeNATS,
		" redis ":  QueueTypeRedis,
		"Kafka":    QueueTypeKafka,
		"memory":   QueueTypeMemory,
		"rabbitmq": QueueType("rabbitmq"),
	}
	for in, want := range tests {
		if got := ParseQueueType(in); got != want {
			t.Errorf("ParseQueueType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewSubscriber_Memory(t *testing.T) {
	sub, err := NewSubscriber(config.QueueConfig{Type: "memory"}, Options{Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = sub.Close() }()

	if _, ok := sub.(*MemorySubscriber); !ok {
		t.Errorf("expected *MemorySubscriber, got %T", sub)
	}
}

func TestNewSubscriber_Unsupported(t *testing.T) {
	_, err := NewSubscriber(config.QueueConfig{Type: "rabbitmq"}, Options{})
	if err == nil {
		t.Fatal("expected error for unsupported queue type")
	}
	if !strings.Contains(err.Error(), "rabbitmq") {
		t.Errorf("error should name the type, got %v", err)
	}
}

func TestNewSubscriber_KafkaWithoutBrokers(t *testing.T) {
	if _, err := NewSubscriber(config.QueueConfig{Type: "kafka"}, Options{}); err == nil {
		t.Fatal("expected error without brokers")
	}
}

func TestNewSubscriber_KafkaConsumerGroupFromConfig(t *testing.T) {
	sub, err := NewSubscriber(config.QueueConfig{
		Type:          "kafka",
		KafkaBrokers:  []string{"localhost:9092"},
		ConsumerGroup: "reporters",
	}, Options{ConsumerGroup: "ignored", Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = sub.Close() }()

	ks := sub.(*KafkaSubscriber)
	if ks.consumerGroup != "reporters" {
		t.Errorf("expected consumer group from config, got %q", ks.consumerGroup)
	}
}

func TestNewSubscriber_NATSUnreachable(t *testing.T) {
	_, err := NewSubscriber(config.QueueConfig{Type: "nats", URL: "nats://127.0.0.1:1"}, Options{Logger: logging.NewNop()})
	if err == nil {
		t.Fatal("expected connection error")
	}
}
