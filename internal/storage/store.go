// Package storage defines the key-value abstraction the credential store is
// built on. Two roles exist: a durable store (user directory, task lists,
// biometric flags) shared by every client of the same data directory, and a
// volatile store (the session) private to one running client.
//
// Implementations:
//   - MemoryStore        in-process map, used as the default volatile store
//   - sqlite.Store       durable, local file (default)
//   - postgres.Store     durable, shared database
//   - objectstore.Store  durable, S3-compatible bucket
//   - rediskv.Store      volatile or durable, Redis with optional key TTL
package storage

import (
	"context"
	"sync"
)

// Store is a flat string-keyed byte store. Writes are atomic per key; there
// is no multi-key transaction and concurrent writers of the same key follow
// last-writer-wins.
type Store interface {
	// Get returns the value of key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set creates or overwrites key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// MemoryStore is a Store backed by a map. The zero value is not usable;
// call NewMemoryStore.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// Len reports the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
