package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryStore is a volatile, size-bounded Store backed by an LRU
// eviction policy, suitable for the replay and ticket caches where
// unbounded growth from malicious or buggy clients must not exhaust
// memory.
type MemoryStore[V any] struct {
	lru *lru.Cache[string, V]
}

// NewMemoryStore creates a MemoryStore holding at most size entries,
// evicting the least recently used entry once that capacity is
// exceeded.
func NewMemoryStore[V any](size int) (*MemoryStore[V], error) {
	l, err := lru.New[string, V](size)
	if err != nil {
		return nil, err
	}
	return &MemoryStore[V]{lru: l}, nil
}

func (m *MemoryStore[V]) Get(key string) (V, error) {
	v, ok := m.lru.Get(key)
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore[V]) Set(key string, value V) error {
	m.lru.Add(key, value)
	return nil
}

func (m *MemoryStore[V]) Remove(key string) error {
	m.lru.Remove(key)
	return nil
}

func (m *MemoryStore[V]) Iterate(fn func(key string, value V) bool) error {
	for _, key := range m.lru.Keys() {
		value, ok := m.lru.Peek(key)
		if !ok {
			continue
		}
		if !fn(key, value) {
			break
		}
	}
	return nil
}

func (m *MemoryStore[V]) Destroy() error {
	m.lru.Purge()
	return nil
}
