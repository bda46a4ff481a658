package query

import (
	"context"
	"time"
)

// State is what a UI collaborator renders for a query.
type State[T any] struct {
	Data       T
	HasData    bool
	Status     Status
	IsLoading  bool // first fetch in flight, nothing to show yet
	IsFetching bool
	IsStale    bool
	Err        error
	UpdatedAt  time.Time
}

// Query is a typed handle to one cache key.
type Query[T any] struct {
	cache *Cache
	key   Key
	fetch FetchFunc
}

func NewQuery[T any](cache *Cache, key Key, fetch func(ctx context.Context) (T, error)) *Query[T] {
	return &Query[T]{
		cache: cache,
		key:   key,
		fetch: func(ctx context.Context) (any, error) {
			return fetch(ctx)
		},
	}
}

func (q *Query[T]) Key() Key { return q.key }

// Fetch returns the cached value when it is fresh and fetches it otherwise.
func (q *Query[T]) Fetch(ctx context.Context) (T, error) {
	v, err := q.cache.Fetch(ctx, q.key, q.fetch)
	if err != nil {
		var zero T
		return zero, err
	}
	t, _ := v.(T)
	return t, nil
}

// Subscribe calls fn with the current state and after every change until the
// returned function is called.
func (q *Query[T]) Subscribe(fn func(State[T])) (unsubscribe func()) {
	return q.cache.Subscribe(q.key, q.fetch, func(s Snapshot) {
		fn(stateOf[T](s))
	})
}

// Peek returns the cached state without fetching.
func (q *Query[T]) Peek() State[T] {
	return stateOf[T](q.cache.Peek(q.key))
}

func (q *Query[T]) Invalidate() {
	q.cache.Invalidate(q.key)
}

func stateOf[T any](s Snapshot) State[T] {
	st := State[T]{
		HasData:    s.HasValue,
		Status:     s.Status,
		IsLoading:  s.Fetching && !s.HasValue,
		IsFetching: s.Fetching,
		IsStale:    s.Stale,
		Err:        s.Err,
		UpdatedAt:  s.UpdatedAt,
	}
	if s.HasValue {
		st.Data, _ = s.Value.(T)
	}
	return st
}
