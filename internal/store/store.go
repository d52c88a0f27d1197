// internal/store/store.go
package store

import (
	"sync"

	"github.com/tamzrod/tulsbot-supervisor/internal/status"
)

// Store is the single shared cell holding the latest aggregate health.
// Created once at startup and handed to every component that needs it.
// Writes replace the whole snapshot; reads return a private copy.
type Store struct {
	mu   sync.RWMutex
	snap status.Snapshot
}

// New creates a store seeded with initial (normally status.Initial).
func New(initial status.Snapshot) *Store {
	return &Store{snap: initial.Clone()}
}

// Read returns a copy of the current snapshot. Never blocks on a tick.
func (s *Store) Read() status.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone()
}

// Write atomically replaces the stored snapshot. A snapshot whose overall
// does not match its services is stored with overall re-derived.
func (s *Store) Write(snap status.Snapshot) {
	cp := snap.Clone()
	if !cp.Consistent() {
		cp = status.New(cp.Services)
	}

	s.mu.Lock()
	s.snap = cp
	s.mu.Unlock()
}
