package browse

import "context"

// Query narrows what a browse source returns.
type Query struct {
	// FilterKey is the active filter tab, empty for the default view.
	FilterKey string
	// Search is the free-text query, used by search controllers.
	Search string
}

// Source yields one page of entities at a time. Implementations typically
// wrap a repository or database query.
type Source interface {
	FetchPage(ctx context.Context, offset, limit int) ([]any, error)
	Count(ctx context.Context) (int, error)
}

// ByID is an optional Source refinement for direct entity lookup. Sources
// without it fall back to a page scan when an action button is pressed.
// A (nil, nil) return means the entity no longer exists.
type ByID interface {
	FetchByID(ctx context.Context, id int64) (any, error)
}

// SliceSource adapts an in-memory slice, mostly for tests and demos.
type SliceSource struct {
	Items []any
}

func (s *SliceSource) FetchPage(_ context.Context, offset, limit int) ([]any, error) {
	if offset >= len(s.Items) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.Items) {
		end = len(s.Items)
	}
	return s.Items[offset:end], nil
}

func (s *SliceSource) Count(_ context.Context) (int, error) {
	return len(s.Items), nil
}
