package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/tgflow/pkg/ports"
)

// Store is a typed view over the Manager for one session kind, namespacing
// its keys with a prefix and handling JSON serialization.
type Store[T any] struct {
	mgr    *Manager
	prefix string
}

// NewStore creates a typed store. prefix should end with a separator, e.g.
// "browse:tasks:".
func NewStore[T any](mgr *Manager, prefix string) *Store[T] {
	return &Store[T]{mgr: mgr, prefix: prefix}
}

// Get loads the session for key. ok is false when none exists.
func (s *Store[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var v T
	data, err := s.mgr.Load(ctx, s.prefix+key)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return v, false, nil
		}
		return v, false, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, fmt.Errorf("corrupt session %s%s: %w", s.prefix, key, err)
	}
	return v, true, nil
}

// Set saves the session for key.
func (s *Store[T]) Set(ctx context.Context, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.mgr.Save(ctx, s.prefix+key, data)
}

// Delete removes the session for key.
func (s *Store[T]) Delete(ctx context.Context, key string) error {
	return s.mgr.Delete(ctx, s.prefix+key)
}
