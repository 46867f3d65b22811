// Package memstore is a process-local key-value slot. Values live as long as
// the Store does, which makes it the session-scoped slot for tests and for
// the "memory" backend.
package memstore

import "sync"

// Store is an in-memory slot safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	m      map[string]string
	writes int
}

// New returns an empty slot.
func New() *Store {
	return &Store{m: make(map[string]string)}
}

// Get returns the value under key.
func (s *Store) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	s.writes++
	return nil
}

// Writes reports how many Set calls the store has seen.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
