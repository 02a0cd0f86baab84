package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonathan/resume-matcher/internal/types"
)

type memoryEntry struct {
	value   types.RequirementSet
	expires time.Time
}

// Memory is a process-local Store
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates an in-memory store. A ttl <= 0 uses DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a copy of the cached set
func (m *Memory) Get(_ context.Context, key string) (*types.RequirementSet, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrMiss
	}
	if !m.now().Before(entry.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, ErrMiss
	}
	rs := cloneSet(entry.value)
	return &rs, nil
}

// Set stores a copy of rs
func (m *Memory) Set(_ context.Context, key string, rs *types.RequirementSet) error {
	if rs == nil {
		return nil
	}
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: cloneSet(*rs), expires: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

// Len reports the number of entries, expired ones included
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) Close() error { return nil }

func cloneSet(rs types.RequirementSet) types.RequirementSet {
	rs.Required = append([]types.Requirement(nil), rs.Required...)
	rs.Preferred = append([]types.Requirement(nil), rs.Preferred...)
	rs.Keywords = append([]string(nil), rs.Keywords...)
	return rs
}
