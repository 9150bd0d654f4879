package ports_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/tgflow/pkg/ports"
	"github.com/aretw0/tgflow/pkg/ports/tests"
)

// mockStore is a minimal in-memory SessionStore used to validate the
// contract suite itself.
type mockStore struct {
	data    map[string][]byte
	expires map[string]time.Time
	now     time.Time
}

func newMockStore() *mockStore {
	return &mockStore{
		data:    make(map[string][]byte),
		expires: make(map[string]time.Time),
		now:     time.Now(),
	}
}

func (m *mockStore) Save(_ context.Context, key string, data []byte, ttl time.Duration) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[key] = cp
	delete(m.expires, key)
	if ttl > 0 {
		m.expires[key] = m.now.Add(ttl)
	}
	return nil
}

func (m *mockStore) live(key string) bool {
	if _, ok := m.data[key]; !ok {
		return false
	}
	if exp, ok := m.expires[key]; ok && m.now.After(exp) {
		return false
	}
	return true
}

func (m *mockStore) Load(_ context.Context, key string) ([]byte, error) {
	if !m.live(key) {
		return nil, ports.ErrNotFound
	}
	return m.data[key], nil
}

func (m *mockStore) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	delete(m.expires, key)
	return nil
}

func (m *mockStore) List(_ context.Context) ([]string, error) {
	var keys []string
	for k := range m.data {
		if m.live(k) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func TestSessionStore_Contract(t *testing.T) {
	store := newMockStore()
	tests.SessionStoreContractTest(t, store, func(d time.Duration) {
		store.now = store.now.Add(d)
	})
}
