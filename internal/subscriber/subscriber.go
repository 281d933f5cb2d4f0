package subscriber

import (
	"context"
	"strings"

	"github.com/smartbackpack/loadreport/internal/logging"
)

// MessageHandler processes one incoming message. subject is the concrete
// subject the message was published on, never the wildcard pattern.
type MessageHandler func(ctx context.Context, subject string, data []byte) error

// Subscriber defines the interface for message subscription
type Subscriber interface {
	// Subscribe subscribes to a subject/topic with the given handler.
	// The subject may end in a "*" or ">" wildcard.
	Subscribe(ctx context.Context, subject string, handler MessageHandler) error

	// Unsubscribe unsubscribes from a subject/topic
	Unsubscribe(subject string) error

	// Close closes the subscriber and releases resources
	Close() error
}

// Options holds common subscriber configuration
type Options struct {
	// ClientName identifies this consumer to the broker (connection name,
	// Redis consumer ID)
	ClientName string

	// ConsumerGroup is the consumer group name for group-based consumption
	ConsumerGroup string

	// Logger receives subscriber events. Nil uses the global logger.
	Logger *logging.Logger
}

// DefaultOptions returns Options with default values
func DefaultOptions() Options {
	return Options{
		ClientName:    "loadreport",
		ConsumerGroup: "loadreport",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ClientName == "" {
		o.ClientName = d.ClientName
	}
	if o.ConsumerGroup == "" {
		o.ConsumerGroup = d.ConsumerGroup
	}
	return o
}

func (o Options) logger(component string) *logging.Logger {
	l := o.Logger
	if l == nil {
		l = logging.Global()
	}
	return l.With("component", component)
}

// SubjectMatches reports whether subject matches pattern using NATS token
// rules: "*" matches exactly one token, a trailing ">" matches one or more.
func SubjectMatches(pattern, subject string) bool {
	if pattern == subject {
		return true
	}
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")

	for i, p := range pt {
		if p == ">" {
			return i == len(pt)-1 && len(st) > i
		}
		if i >= len(st) {
			return false
		}
		if p != "*" && p != st[i] {
			return false
		}
	}
	return len(pt) == len(st)
}

// baseSubject strips trailing wildcard tokens, e.g. "readings.>" -> "readings".
// Brokers without subject wildcards use it as the stream or topic name.
func baseSubject(subject string) string {
	for {
		switch {
		case strings.HasSuffix(subject, ".>"), strings.HasSuffix(subject, ".*"):
			subject = subject[:len(subject)-2]
		case subject == ">" || subject == "*":
			return ""
		default:
			return subject
		}
	}
}
