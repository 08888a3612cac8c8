package kv

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/tripauth/internal/common"
)

// MemoryStore keeps values in a map. It is the default backend for local
// runs and the fake substrate in tests.
type MemoryStore struct {
	mu     sync.Mutex
	data   map[string]string
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(key)
}

func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set(key, value)
}

func (m *MemoryStore) get(key string) (string, bool, error) {
	if m.closed {
		return "", false, common.ErrStoreClosed
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) set(key, value string) error {
	if m.closed {
		return common.ErrStoreClosed
	}
	m.data[key] = value
	return nil
}

// Update holds the store lock for the whole of fn.
func (m *MemoryStore) Update(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return common.ErrStoreClosed
	}

	tx := newStagedTx(lockedMemory{m})
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit(ctx)
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// lockedMemory accesses the map of a MemoryStore whose lock is already held.
type lockedMemory struct{ m *MemoryStore }

func (l lockedMemory) Get(_ context.Context, key string) (string, bool, error) {
	return l.m.get(key)
}

func (l lockedMemory) Set(_ context.Context, key, value string) error {
	return l.m.set(key, value)
}
