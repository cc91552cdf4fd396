package store

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-memory Store used by tests and dry runs.
type Memory struct {
	mu    sync.Mutex
	lists map[Collection][]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{lists: make(map[Collection][]string)}
}

func known(c Collection) bool {
	for _, k := range Collections {
		if k == c {
			return true
		}
	}
	return false
}

func (m *Memory) Load(_ context.Context, c Collection) ([]string, error) {
	if !known(c) {
		return nil, fmt.Errorf("%q: %w", c, ErrUnknownCollection)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return normalizeLines(m.lists[c]), nil
}

func (m *Memory) Append(_ context.Context, c Collection, urls ...string) error {
	if !known(c) {
		return fmt.Errorf("%q: %w", c, ErrUnknownCollection)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[c] = append(m.lists[c], urls...)
	return nil
}

func (m *Memory) Overwrite(_ context.Context, c Collection, urls []string) error {
	if !known(c) {
		return fmt.Errorf("%q: %w", c, ErrUnknownCollection)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[c] = append([]string(nil), urls...)
	return nil
}

// Raw returns the entries exactly as appended, without normalization.
func (m *Memory) Raw(c Collection) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lists[c]...)
}

func (m *Memory) Close() error { return nil }
