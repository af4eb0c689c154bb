package mail

import (
	"context"
	"log/slog"
	"sync"
)

// Memory keeps sent messages in process. It backs the "memory" mail driver
// for local runs and stands in for SMTP in tests.
type Memory struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

// NewMemory returns an empty Memory mailer.
func NewMemory() *Memory {
	return &Memory{}
}

// Send records msg, or returns the error set with FailWith.
func (m *Memory) Send(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	m.sent = append(m.sent, msg)
	slog.DebugContext(ctx, "mail kept in memory", "to", msg.To, "subject", msg.Subject)

	return nil
}

// FailWith makes subsequent sends fail with err. A nil err restores delivery.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Sent returns a copy of every message recorded so far.
func (m *Memory) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

// Last returns the most recent message and whether one exists.
func (m *Memory) Last() (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return Message{}, false
	}
	return m.sent[len(m.sent)-1], true
}

func (m *Memory) Close() error {
	return nil
}
