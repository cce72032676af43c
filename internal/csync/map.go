// Package csync holds small concurrency-safe containers shared across the
// app.
package csync

import "sync"

// Map is a mutex-guarded map for straightforward concurrent access.
type Map[K comparable, V any] struct {
	mu    sync.RWMutex
	inner map[K]V
}

// NewMap allocates an empty Map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{inner: make(map[K]V)}
}

func (m *Map[K, V]) Set(key K, value V) {
	m.mu.Lock()
	m.inner[key] = value
	m.mu.Unlock()
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.inner[key]
	return v, ok
}

// GetOrSet returns the existing value for key, or stores and returns the
// result of fn.
func (m *Map[K, V]) GetOrSet(key K, fn func() V) V {
	if v, ok := m.Get(key); ok {
		return v
	}
	v := fn()
	m.Set(key, v)
	return v
}

func (m *Map[K, V]) Del(key K) {
	m.mu.Lock()
	delete(m.inner, key)
	m.mu.Unlock()
}

// Take removes and returns the value for key.
func (m *Map[K, V]) Take(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.inner[key]
	if ok {
		delete(m.inner, key)
	}
	return v, ok
}

func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.inner)
}

func (m *Map[K, V]) Keys() []K {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]K, 0, len(m.inner))
	for k := range m.inner {
		keys = append(keys, k)
	}
	return keys
}

// Snapshot returns a point-in-time copy of the entries.
func (m *Map[K, V]) Snapshot() map[K]V {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[K]V, len(m.inner))
	for k, v := range m.inner {
		out[k] = v
	}
	return out
}

// Range calls fn for each entry of a snapshot, stopping early if fn returns
// false.
func (m *Map[K, V]) Range(fn func(K, V) bool) {
	for k, v := range m.Snapshot() {
		if !fn(k, v) {
			return
		}
	}
}
