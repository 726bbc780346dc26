package store

import (
	"context"
	"sync"
)

// MemoryStore keeps blobs in process. Used by tests and TOGORE_STORE=memory.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: map[string][]byte{}}
}

func (m *MemoryStore) Load(ctx context.Context, saveID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.blobs[saveID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *MemoryStore) Save(ctx context.Context, saveID string, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := cleanID(saveID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs[id] = append([]byte(nil), blob...)
	m.saves++
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, saveID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blobs[saveID]; !ok {
		return ErrNotFound
	}
	delete(m.blobs, saveID)
	return nil
}

// Saves counts successful Save calls.
func (m *MemoryStore) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

func (m *MemoryStore) Close() error { return nil }
