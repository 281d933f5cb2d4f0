package subscriber

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/smartbackpack/loadreport/internal/logging"
)

// setupTestNATS starts an embedded JetStream server on a random port
func setupTestNATS(t *testing.T) string {
	t.Helper()
	opts := &server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		t.Fatalf("Failed to create NATS server: %v", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready")
	}

	t.Cleanup(func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	})
	return ns.ClientURL()
}

func publishJS(t *testing.T, url, subject string, data []byte) {
	t.Helper()
	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		t.Fatalf("jetstream: %v", err)
	}
	if _, err := js.Publish(subject, data); err != nil {
		t.Fatalf("publish %s: %v", subject, err)
	}
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"readings.BP1": "readings_BP1",
		"readings.>":   "readings_all",
		"readings.*":   "readings_any",
		"a-b.c":        "a_b_c",
		"":             "",
	}
	for in, want := range tests {
		if got := sanitizeName(in); got != want {
			t.Errorf("sanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
	if got := streamName("readings.>"); got != "STREAM_readings_all" {
		t.Errorf("unexpected stream name %q", got)
	}
}

func TestNATSSubscriber_New_InvalidURL(t *testing.T) {
	_, err := NewNATSSubscriber(NATSConfig{URL: "nats://127.0.0.1:1"}, Options{Logger: logging.NewNop()})
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}
}

func TestNATSSubscriber_WildcardRoundTrip(t *testing.T) {
	url := setupTestNATS(t)

	sub, err := NewNATSSubscriber(NATSConfig{URL: url}, Options{ClientName: "test", Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = sub.Close() }()

	var mu sync.Mutex
	received := map[string]string{}
	err = sub.Subscribe(context.Background(), "readings.>", func(ctx context.Context, subject string, data []byte) error {
		mu.Lock()
		received[subject] = string(data)
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	publishJS(t, url, "readings.BP1", []byte(`{"weight":1}`))
	publishJS(t, url, "readings.BP2", []byte(`{"weight":2}`))

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	})

	mu.Lock()
	defer mu.Unlock()
	if received["readings.BP1"] != `{"weight":1}` || received["readings.BP2"] != `{"weight":2}` {
		t.Errorf("unexpected deliveries %v", received)
	}
}

func TestNATSSubscriber_RedeliversOnHandlerError(t *testing.T) {
	url := setupTestNATS(t)

	sub, err := NewNATSSubscriber(NATSConfig{URL: url}, Options{Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = sub.Close() }()

	var attempts atomic.Int32
	err = sub.Subscribe(context.Background(), "readings.>", func(ctx context.Context, subject string, data []byte) error {
		if attempts.Add(1) == 1 {
			return errors.New("store unavailable")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	publishJS(t, url, "readings.BP1", []byte(`{}`))
	waitFor(t, func() bool { return attempts.Load() >= 2 })
}

func TestNATSSubscriber_SubscribeDuplicate(t *testing.T) {
	url := setupTestNATS(t)

	sub, err := NewNATSSubscriber(NATSConfig{URL: url}, Options{Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = sub.Close() }()

	handler := func(ctx context.Context, subject string, data []byte) error { return nil }
	if err := sub.Subscribe(context.Background(), "readings.>", handler); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := sub.Subscribe(context.Background(), "readings.>", handler); err == nil {
		t.Fatal("expected error for duplicate subscription")
	}

	if err := sub.Unsubscribe("readings.>"); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if err := sub.Unsubscribe("readings.>"); err == nil {
		t.Error("expected error unsubscribing twice")
	}
}
