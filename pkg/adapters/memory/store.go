// Package memory provides the in-memory session store used by tests and
// single-process deployments.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/tgflow/pkg/ports"
)

type entry struct {
	data []byte
	// expiresAt is zero for sessions without TTL.
	expiresAt time.Time
}

// Store implements ports.SessionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]entry
	mu   sync.RWMutex

	// now is swapped in tests to simulate expiry.
	now func() time.Time
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

func (s *Store) expired(e entry) bool {
	return !e.expiresAt.IsZero() && s.now().After(e.expiresAt)
}

// Save persists the session in memory.
func (s *Store) Save(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	// Copy on write so the caller can't mutate stored bytes.
	cp := make([]byte, len(data))
	copy(cp, data)

	e := entry{data: cp}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = e
	return nil
}

// Load retrieves the session from memory.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ports.ErrNotFound
	}
	if s.expired(e) {
		s.mu.Lock()
		delete(s.data, key)
		s.mu.Unlock()
		return nil, ports.ErrNotFound
	}

	// Copy on read so the caller can't mutate store state.
	cp := make([]byte, len(e.data))
	copy(cp, e.data)
	return cp, nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns the keys of every live session.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k, e := range s.data {
		if s.expired(e) {
			continue
		}
		keys = append(keys, k)
	}
	return keys, nil
}
