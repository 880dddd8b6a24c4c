package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/maypok86/otter/v2"
)

// DefaultMemorySize is the entry bound used by NewMemory when size <= 0.
const DefaultMemorySize = 10_000

type memoryEntry struct {
	data      []byte
	expiresAt time.Time // zero means no expiry
}

// Memory is an in-process store bounded by entry count.
type Memory struct {
	cache *otter.Cache[string, memoryEntry]
}

// NewMemory creates an in-memory store holding at most maxSize entries.
func NewMemory(maxSize int) (*Memory, error) {
	if maxSize <= 0 {
		maxSize = DefaultMemorySize
	}
	c, err := otter.New(&otter.Options[string, memoryEntry]{
		MaximumSize: maxSize,
	})
	if err != nil {
		return nil, fmt.Errorf("create memory store: %w", err)
	}
	return &Memory{cache: c}, nil
}

// Get returns the value stored under key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := m.cache.GetIfPresent(key)
	if !ok {
		return nil, ErrNotFound
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		m.cache.Invalidate(key)
		return nil, ErrNotFound
	}
	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, nil
}

// Set stores value under key.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{data: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	m.cache.Set(key, e)
	return nil
}

// Delete removes key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.cache.Invalidate(key)
	return nil
}
