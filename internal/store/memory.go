package store

import (
	"context"
	"sync"
)

// MemoryKV is an in-memory KV used by tests and throwaway environments.
// It is safe for concurrent use.
type MemoryKV struct {
	mu sync.RWMutex
	m  map[string]string

	// FailSets, when > 0, makes the next N Set calls fail. Tests use it to
	// exercise the store's shrink-and-retry policy.
	FailSets int
	failErr  error
}

// NewMemoryKV returns an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: make(map[string]string)}
}

// FailNextSets arranges for the next n Set calls to return err.
func (s *MemoryKV) FailNextSets(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailSets = n
	s.failErr = err
}

// Get implements KV.
func (s *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

// Set implements KV.
func (s *MemoryKV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSets > 0 {
		s.FailSets--
		return s.failErr
	}
	s.m[key] = value
	return nil
}

// Delete implements KV.
func (s *MemoryKV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
