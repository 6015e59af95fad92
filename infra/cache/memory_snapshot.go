package cache

import (
	"context"
	"sync"
)

// MemorySnapshotStore implements SnapshotStore in process memory.
type MemorySnapshotStore struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// NewMemorySnapshotStore creates an empty store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{}
}

// Load implements SnapshotStore.
func (m *MemorySnapshotStore) Load(context.Context) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap, nil
}

// Save implements SnapshotStore.
func (m *MemorySnapshotStore) Save(_ context.Context, s *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = s
	return nil
}
