package messaging

import (
	"context"
	"errors"
	"io"
	"maps"
	"time"
)

var (
	// ErrTopicRequired is returned when publishing or consuming without a topic.
	ErrTopicRequired = errors.New("messaging: topic is required")
	// ErrHandlerRequired is returned when Consume is called with a nil handler.
	ErrHandlerRequired = errors.New("messaging: handler is required")
	// ErrGroupRequired is returned by brokers that need a consumer group.
	ErrGroupRequired = errors.New("messaging: consumer group is required")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("messaging: client is closed")
)

// Messaging is a broker client that can publish and consume.
type Messaging interface {
	io.Closer
	Publisher
	Consumer
}

// Publisher publishes messages to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, msg OutgoingMessage) error
}

// Consumer consumes messages from a topic. Consume blocks until ctx is done
// or the subscription fails.
type Consumer interface {
	Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes a received message.
type Handler func(ctx context.Context, msg *Message) error

// OutgoingMessage is a message to be published.
type OutgoingMessage struct {
	Body []byte
	// Key is used for partitioning (Kafka) and ordering (Pub/Sub).
	Key     []byte
	Headers map[string]string
}

// Message is a received message.
type Message struct {
	ID        string
	Topic     string
	Key       []byte
	Body      []byte
	Headers   map[string]string
	Timestamp time.Time
	// Attempt counts deliveries of this message, starting at 1, when the broker reports it.
	Attempt int
}

// Header returns the header value for key, or "".
func (m *Message) Header(key string) string {
	if m == nil {
		return ""
	}
	return m.Headers[key]
}

func cloneHeaders(h map[string]string) map[string]string {
	if len(h) == 0 {
		return map[string]string{}
	}
	return maps.Clone(h)
}
