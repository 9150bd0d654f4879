package browse

import "sync"

// RedirectStore hands context from a Redirect action to the command it
// points at. Entries are consumed on first read and live in memory only.
type RedirectStore struct {
	mu   sync.Mutex
	data map[string]map[string]any
}

// NewRedirectStore returns an empty store shared by all controllers of one
// app.
func NewRedirectStore() *RedirectStore {
	return &RedirectStore{data: make(map[string]map[string]any)}
}

func redirectKey(userKey, command string) string {
	return userKey + ":" + command
}

// Put stashes context for the user's next invocation of command.
func (r *RedirectStore) Put(userKey, command string, ctx map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[redirectKey(userKey, command)] = ctx
}

// Take removes and returns the stashed context, if any.
func (r *RedirectStore) Take(userKey, command string) (map[string]any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := redirectKey(userKey, command)
	ctx, ok := r.data[k]
	if ok {
		delete(r.data, k)
	}
	return ctx, ok
}
