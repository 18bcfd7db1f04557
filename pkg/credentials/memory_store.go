package credentials

import (
	"context"
	"sync"
)

// MemoryStore implements Store in memory. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	set   bool
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the current credential, or ErrNoCredential when absent.
func (m *MemoryStore) Get(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.set {
		return "", ErrNoCredential
	}
	return m.token, nil
}

// Set replaces the credential.
func (m *MemoryStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyCredential
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
	m.set = true
	return nil
}

// Clear removes the credential.
func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = ""
	m.set = false
	return nil
}
