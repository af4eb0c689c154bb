package messaging

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const memoryQueueSize = 256

// Memory is an in-process broker. Every consumer group of a topic receives
// each message once; messages published to a topic without consumers, or to
// a group whose queue is full, are discarded.
type Memory struct {
	mu     sync.Mutex
	topics map[string]map[string]*memoryQueue
	closed bool
	done   chan struct{}

	seq     atomic.Uint64
	private atomic.Uint64
}

type memoryQueue struct {
	ch   chan *Message
	refs int
}

// NewMemory constructs an empty in-process broker.
func NewMemory() *Memory {
	return &Memory{
		topics: make(map[string]map[string]*memoryQueue),
		done:   make(chan struct{}),
	}
}

// Close stops all consumers. It is safe to call more than once.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

// Publish delivers msg to every consumer group subscribed to topic. It never
// waits on a slow consumer.
func (m *Memory) Publish(ctx context.Context, topic string, msg OutgoingMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrTopicRequired
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	queues := make([]*memoryQueue, 0, len(m.topics[topic]))
	for _, q := range m.topics[topic] {
		queues = append(queues, q)
	}
	m.mu.Unlock()

	id := strconv.FormatUint(m.seq.Add(1), 10)
	now := time.Now()

	for _, q := range queues {
		delivery := &Message{
			ID:        id,
			Topic:     topic,
			Key:       append([]byte(nil), msg.Key...),
			Body:      append([]byte(nil), msg.Body...),
			Headers:   cloneHeaders(msg.Headers),
			Timestamp: now,
			Attempt:   1,
		}

		select {
		case q.ch <- delivery:
		default:
			slog.WarnContext(ctx, "memory message dropped, queue is full", "topic", topic, "id", id)
		}
	}

	return nil
}

// Consume registers handler under the configured group and processes
// messages until ctx is done or the broker is closed. A consumer without a
// group gets a private queue.
func (m *Memory) Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrTopicRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	co := newConsumeOptions(opts...)
	group := co.group
	if group == "" {
		group = "private-" + strconv.FormatUint(m.private.Add(1), 10)
	}

	q, err := m.join(topic, group)
	if err != nil {
		return err
	}
	defer m.leave(topic, group)

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.work(ctx, q, handler, co.maxAttempts)
		}()
	}
	wg.Wait()

	select {
	case <-m.done:
		return nil
	default:
		return ctx.Err()
	}
}

func (m *Memory) join(topic, group string) (*memoryQueue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	groups, ok := m.topics[topic]
	if !ok {
		groups = make(map[string]*memoryQueue)
		m.topics[topic] = groups
	}

	q, ok := groups[group]
	if !ok {
		q = &memoryQueue{ch: make(chan *Message, memoryQueueSize)}
		groups[group] = q
	}
	q.refs++

	return q, nil
}

func (m *Memory) leave(topic, group string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	groups := m.topics[topic]
	q, ok := groups[group]
	if !ok {
		return
	}

	q.refs--
	if q.refs > 0 {
		return
	}

	delete(groups, group)
	if len(groups) == 0 {
		delete(m.topics, topic)
	}
}

func (m *Memory) work(ctx context.Context, q *memoryQueue, handler Handler, maxAttempts int) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case msg := <-q.ch:
			err := dispatch(ctx, DriverMemory, handler, msg)
			if err == nil {
				continue
			}

			if msg.Attempt >= maxAttempts {
				slog.WarnContext(ctx, "memory message dropped after max attempts",
					"topic", msg.Topic, "id", msg.ID, "attempt", msg.Attempt, "error", err)
				continue
			}

			msg.Attempt++
			select {
			case q.ch <- msg:
			default:
				slog.WarnContext(ctx, "memory message dropped, queue is full",
					"topic", msg.Topic, "id", msg.ID, "error", err)
			}
		}
	}
}
