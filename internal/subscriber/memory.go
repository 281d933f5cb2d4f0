package subscriber

import (
	"context"
	"fmt"
	"sync"

	"github.com/smartbackpack/loadreport/internal/logging"
)

const memoryBufferSize = 1000

// memorySubscription represents an active subscription
type memorySubscription struct {
	pattern string
	handler MessageHandler
	ctx     context.Context
	cancel  context.CancelFunc
	ch      chan memoryMessage
	log     *logging.Logger
}

type memoryMessage struct {
	subject string
	data    []byte
}

// MemorySubscriber implements Subscriber for the in-process broker
type MemorySubscriber struct {
	subscriptions map[string]*memorySubscription
	log           *logging.Logger
	mu            sync.RWMutex
}

// memBroker is the process-wide in-memory broker shared by every
// MemorySubscriber and the memory publisher
var memBroker = &memoryBroker{}

type memoryBroker struct {
	subs []*memorySubscription
	mu   sync.RWMutex
}

func (b *memoryBroker) add(sub *memorySubscription) {
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
}

func (b *memoryBroker) remove(sub *memorySubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// PublishToMemory delivers a message to every memory subscription whose
// pattern matches subject. It returns the number of subscriptions reached;
// a full subscription buffer drops the message for that subscription.
func PublishToMemory(subject string, data []byte) int {
	memBroker.mu.RLock()
	matched := make([]*memorySubscription, 0, len(memBroker.subs))
	for _, sub := range memBroker.subs {
		if SubjectMatches(sub.pattern, subject) {
			matched = append(matched, sub)
		}
	}
	memBroker.mu.RUnlock()

	payload := make([]byte, len(data))
	copy(payload, data)

	delivered := 0
	for _, sub := range matched {
		select {
		case sub.ch <- memoryMessage{subject: subject, data: payload}:
			delivered++
		default:
			sub.log.Warn("Subscriber channel full, dropping message", "subject", subject)
		}
	}
	return delivered
}

// NewMemorySubscriber creates a new in-memory subscriber
func NewMemorySubscriber(opts Options) *MemorySubscriber {
	return &MemorySubscriber{
		subscriptions: make(map[string]*memorySubscription),
		log:           opts.logger("subscriber.memory"),
	}
}

// Subscribe subscribes to a subject pattern with the given handler
func (s *MemorySubscriber) Subscribe(ctx context.Context, subject string, handler MessageHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &memorySubscription{
		pattern: subject,
		handler: handler,
		ctx:     subCtx,
		cancel:  cancel,
		ch:      make(chan memoryMessage, memoryBufferSize),
		log:     s.log,
	}

	s.subscriptions[subject] = sub
	memBroker.add(sub)

	go s.consume(sub)

	s.log.Info("Subscribed to in-memory subject", "subject", subject)
	return nil
}

// consume reads messages and processes them
func (s *MemorySubscriber) consume(sub *memorySubscription) {
	for {
		select {
		case <-sub.ctx.Done():
			return
		case msg := <-sub.ch:
			if err := sub.handler(sub.ctx, msg.subject, msg.data); err != nil {
				s.log.Error("Failed to handle message", "subject", msg.subject, "error", err)
			}
		}
	}
}

// Unsubscribe unsubscribes from a subject
func (s *MemorySubscriber) Unsubscribe(subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, exists := s.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}

	sub.cancel()
	memBroker.remove(sub)
	delete(s.subscriptions, subject)

	s.log.Info("Unsubscribed from in-memory subject", "subject", subject)
	return nil
}

// Close closes all subscriptions
func (s *MemorySubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subscriptions {
		sub.cancel()
		memBroker.remove(sub)
	}
	s.subscriptions = make(map[string]*memorySubscription)

	s.log.Info("Memory subscriber closed")
	return nil
}
