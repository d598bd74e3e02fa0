package persistence

import (
	"context"
	"sync"
)

// MemoryStore keeps blobs in a map. Used for tests and ephemeral runs.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Load returns the stored blob, if any.
func (m *MemoryStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, true, nil
}

// Save stores a copy of the blob.
func (m *MemoryStore) Save(_ context.Context, key string, blob []byte) error {
	stored := make([]byte, len(blob))
	copy(stored, blob)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = stored
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() {}
