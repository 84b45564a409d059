package session

import (
	"context"
	"sync"
)

// MemoryBackend keeps the token for the life of the process only.
type MemoryBackend struct {
	mu    sync.Mutex
	token string
}

func NewMemoryBackend(initial string) *MemoryBackend {
	return &MemoryBackend{token: initial}
}

func (m *MemoryBackend) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryBackend) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryBackend) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
