// Package configstore persists the credentials entered in the setup portal.
package configstore

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Get for a key that was never set.
var ErrNotFound = errors.New("configstore: key not found")

// Store is a flat string key/value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	// SetAll writes every pair or none of them.
	SetAll(ctx context.Context, kv map[string]string) error
	Close() error
}

// Memory is a process-local Store, used when no Redis is configured.
type Memory struct {
	mu sync.RWMutex
	kv map[string]string
}

func NewMemory() *Memory {
	return &Memory{kv: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.kv[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) SetAll(_ context.Context, kv map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range kv {
		m.kv[k] = v
	}
	return nil
}

func (m *Memory) Close() error { return nil }
