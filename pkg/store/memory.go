package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps values in process memory with an optional per-key cap
// and total quota, the way browser session storage behaves.
type MemoryStore struct {
	mu           sync.Mutex
	data         map[string][]byte
	used         int
	maxValueSize int
	quota        int
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMaxValueSize caps each value at n bytes.
func WithMaxValueSize(n int) MemoryOption {
	return func(m *MemoryStore) {
		m.maxValueSize = n
	}
}

// WithQuota caps the sum of all stored keys and values at n bytes.
func WithQuota(n int) MemoryOption {
	return func(m *MemoryStore) {
		m.quota = n
	}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{data: make(map[string][]byte)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	if m.maxValueSize > 0 && len(value) > m.maxValueSize {
		return fmt.Errorf("setting %s (%d bytes): %w", key, len(value), ErrValueTooLarge)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	used := m.used + len(key) + len(value)
	if old, ok := m.data[key]; ok {
		used -= len(key) + len(old)
	}
	if m.quota > 0 && used > m.quota {
		return fmt.Errorf("setting %s: %w", key, ErrQuotaExceeded)
	}

	buf := make([]byte, len(value))
	copy(buf, value)
	m.data[key] = buf
	m.used = used
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	buf := make([]byte, len(v))
	copy(buf, v)
	return buf, true, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.data[key]; ok {
		m.used -= len(key) + len(old)
		delete(m.data, key)
	}
	return nil
}

func (m *MemoryStore) MaxValueSize() int {
	return m.maxValueSize
}

// Len returns the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

func (m *MemoryStore) Close() error {
	return nil
}
