package subscriber

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/smartbackpack/loadreport/internal/logging"
)

// NATSConfig holds the connection settings of a NATS JetStream subscriber
type NATSConfig struct {
	URL      string
	Username string
	Password string
}

// NATSSubscriber implements Subscriber for NATS JetStream
type NATSSubscriber struct {
	conn          *nats.Conn
	js            nats.JetStreamContext
	clientName    string
	consumerGroup string
	subscriptions map[string]*nats.Subscription
	log           *logging.Logger
	mu            sync.RWMutex
}

// NewNATSSubscriber creates a new NATS subscriber
func NewNATSSubscriber(cfg NATSConfig, opts Options) (*NATSSubscriber, error) {
	opts = opts.withDefaults()
	log := opts.logger("subscriber.nats")

	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}

	natsOpts := []nats.Option{
		nats.Name(fmt.Sprintf("loadreport-subscriber-%s", opts.ClientName)),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}
	if cfg.Username != "" {
		natsOpts = append(natsOpts, nats.UserInfo(cfg.Username, cfg.Password))
	}

	conn, err := nats.Connect(url, natsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &NATSSubscriber{
		conn:          conn,
		js:            js,
		clientName:    opts.ClientName,
		consumerGroup: opts.ConsumerGroup,
		subscriptions: make(map[string]*nats.Subscription),
		log:           log,
	}, nil
}

// Subscribe subscribes to a subject with the given handler. A durable
// consumer is created per subject, so restarts resume where they stopped.
func (s *NATSSubscriber) Subscribe(ctx context.Context, subject string, handler MessageHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	if err := s.ensureStream(subject); err != nil {
		return err
	}

	durableName := fmt.Sprintf("%s-%s-%s", s.consumerGroup, s.clientName, sanitizeName(subject))

	var msgCount uint64

	sub, err := s.js.Subscribe(subject, func(msg *nats.Msg) {
		currentCount := atomic.AddUint64(&msgCount, 1)

		if ctx.Err() != nil {
			s.log.Warn("Context cancelled, skipping message",
				"subject", msg.Subject,
				"msg_count", currentCount,
				"ctx_err", ctx.Err())
			_ = msg.Nak()
			return
		}

		if err := handler(ctx, msg.Subject, msg.Data); err != nil {
			s.log.Error("Failed to handle message",
				"subject", msg.Subject,
				"msg_count", currentCount,
				"error", err,
				"data_preview", string(msg.Data[:min(100, len(msg.Data))]))
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(durableName),
		nats.ManualAck(),
		nats.MaxAckPending(100),
		nats.AckWait(30*time.Second),
		nats.MaxDeliver(3),
		nats.DeliverAll(),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	s.subscriptions[subject] = sub
	s.log.Info("Subscribed to subject", "subject", subject, "durable", durableName)
	return nil
}

// ensureStream ensures a stream captures the subject
func (s *NATSSubscriber) ensureStream(subject string) error {
	if err := EnsureStream(s.js, subject); err != nil {
		s.log.Error("Failed to create stream", "stream", streamName(subject), "error", err)
		return err
	}
	return nil
}

// EnsureStream creates the work-queue stream capturing subject unless some
// stream already does. Publishers call it too, so either side may start first.
func EnsureStream(js nats.JetStreamContext, subject string) error {
	if existing, err := js.StreamNameBySubject(subject); err == nil && existing != "" {
		return nil
	}

	name := streamName(subject)
	if _, err := js.StreamInfo(name); err == nil {
		return nil
	}

	_, err := js.AddStream(&nats.StreamConfig{
		Name:      name,
		Subjects:  []string{subject},
		Retention: nats.WorkQueuePolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
		Replicas:  1,
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		return fmt.Errorf("failed to create stream %s: %w", name, err)
	}
	return nil
}

// streamName returns the JetStream stream name for a subject
func streamName(subject string) string {
	return "STREAM_" + sanitizeName(subject)
}

// sanitizeName maps a subject to a valid stream or consumer name. Names
// allow only letters, digits, dash and underscore; wildcards become words.
func sanitizeName(subject string) string {
	var b strings.Builder
	b.Grow(len(subject) + 4)
	for i := 0; i < len(subject); i++ {
		c := subject[i]
		switch {
		case c == '*':
			b.WriteString("any")
		case c == '>':
			b.WriteString("all")
		case (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Unsubscribe unsubscribes from a subject
func (s *NATSSubscriber) Unsubscribe(subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, exists := s.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}

	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("failed to unsubscribe from %s: %w", subject, err)
	}

	delete(s.subscriptions, subject)
	s.log.Info("Unsubscribed from subject", "subject", subject)
	return nil
}

// Close closes all subscriptions and the connection
func (s *NATSSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for subject, sub := range s.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			s.log.Warn("Failed to unsubscribe", "subject", subject, "error", err)
		}
	}
	s.subscriptions = make(map[string]*nats.Subscription)

	s.conn.Close()
	s.log.Info("NATS subscriber closed")
	return nil
}
