package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory is a process-local KV
type Memory struct {
	mu   sync.RWMutex
	data map[string]memValue
}

type memValue struct {
	data []byte
	flag int
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{data: make(map[string]memValue)}
}

// Get returns a copy of the value stored under key
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	v, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	out, err := unpack(v.data, v.flag)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), out...), nil
}

// Set stores a copy of value under key
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	data, flag := pack(append([]byte(nil), value...))
	m.mu.Lock()
	m.data[key] = memValue{data: data, flag: flag}
	m.mu.Unlock()
	return nil
}

// Delete removes key
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// Keys lists keys starting with prefix, sorted
func (m *Memory) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op
func (m *Memory) Close() error { return nil }
