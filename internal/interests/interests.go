package interests

import (
	"context"
	"sync"
)

// Registry stores the interest topics that steer recommendations. A single
// user has one global interest list.
type Registry interface {
	Get(ctx context.Context) ([]string, error)
	Set(ctx context.Context, interests []string) error
}

// Memory is the in-process registry, seeded with the configured defaults.
type Memory struct {
	mu        sync.RWMutex
	interests []string
}

// NewMemory creates a registry seeded with the given defaults.
func NewMemory(defaults []string) *Memory {
	seeded := make([]string, len(defaults))
	copy(seeded, defaults)
	return &Memory{interests: seeded}
}

// Get returns a copy of the current interest list.
func (m *Memory) Get(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.interests))
	copy(out, m.interests)
	return out, nil
}

// Set replaces the interest list.
func (m *Memory) Set(ctx context.Context, interests []string) error {
	replacement := make([]string, len(interests))
	copy(replacement, interests)
	m.mu.Lock()
	m.interests = replacement
	m.mu.Unlock()
	return nil
}

var _ Registry = (*Memory)(nil)
