package cache

import (
	"context"
	"sync"
)

var _ GraphCache = (*MemGraphCache)(nil)

// MemGraphCache keeps snapshots in process memory. Used by tests and by
// deployments running without redis.
type MemGraphCache struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
}

func NewMemGraphCache() *MemGraphCache {
	return &MemGraphCache{
		snapshots: make(map[string]*Snapshot),
	}
}

func (m *MemGraphCache) SetSnapshot(ctx context.Context, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snap.Key] = snap
	return nil
}

func (m *MemGraphCache) GetSnapshot(ctx context.Context, key string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if snap, ok := m.snapshots[key]; ok {
		return snap, nil
	}
	return nil, nil
}

func (m *MemGraphCache) DeleteSnapshot(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, key)
	return nil
}
