package store

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
)

// Memory keeps challenges and sessions in process. It is the default
// driver for a single instance; expired entries stay until swept.
type Memory struct {
	mu         sync.Mutex
	challenges map[string]entity.Challenge
	sessions   map[string]entity.Session
}

func NewMemory() *Memory {
	return &Memory{
		challenges: make(map[string]entity.Challenge),
		sessions:   make(map[string]entity.Session),
	}
}

func (m *Memory) GetChallenge(_ context.Context, email string) (*entity.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.challenges[email]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &c, nil
}

func (m *Memory) PutChallenge(_ context.Context, c entity.Challenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.challenges[c.Email] = c
	return nil
}

func (m *Memory) IncrementAttempts(_ context.Context, email string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.challenges[email]
	if !ok {
		return 0, goerror.ErrNotFound
	}
	c.Attempts++
	m.challenges[email] = c
	return c.Attempts, nil
}

func (m *Memory) DeleteChallenge(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.challenges[email]
	delete(m.challenges, email)
	return ok, nil
}

// ConsumeChallenge deletes the challenge only while it still carries code.
func (m *Memory) ConsumeChallenge(_ context.Context, email, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.challenges[email]
	if !ok {
		return false, goerror.ErrNotFound
	}
	if subtle.ConstantTimeCompare([]byte(c.Code), []byte(code)) != 1 {
		return false, nil
	}
	delete(m.challenges, email)
	return true, nil
}

func (m *Memory) SweepChallenges(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for k, c := range m.challenges {
		if c.Expired(now) {
			delete(m.challenges, k)
			n++
		}
	}
	return n, nil
}

func (m *Memory) GetSession(_ context.Context, token string) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &s, nil
}

func (m *Memory) PutSession(_ context.Context, s entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.Token] = s
	return nil
}

func (m *Memory) DeleteSession(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.sessions[token]
	delete(m.sessions, token)
	return ok, nil
}

func (m *Memory) SweepSessions(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for k, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, k)
			n++
		}
	}
	return n, nil
}
