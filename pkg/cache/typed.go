package cache

import (
	"context"
	"time"
)

// Query is the typed form of Cache.Fetch.
func Query[T any](ctx context.Context, c *Cache, key Key, policy Policy, fetch func(context.Context) (T, error)) (T, error) {
	v, err := c.Fetch(ctx, key, policy, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

type TypedState[T any] struct {
	Status    Status
	Value     T
	HasValue  bool
	Err       error
	UpdatedAt time.Time
	Fetching  bool
}

func typed[T any](s State) TypedState[T] {
	ts := TypedState[T]{
		Status:    s.Status,
		Err:       s.Err,
		UpdatedAt: s.UpdatedAt,
		Fetching:  s.Fetching,
	}
	if v, ok := s.Value.(T); ok {
		ts.Value, ts.HasValue = v, true
	}
	return ts
}

// Watch is the typed form of Cache.Observe.
func Watch[T any](c *Cache, key Key, policy Policy, fetch func(context.Context) (T, error), fn func(TypedState[T])) *Subscription {
	return c.Observe(key, policy, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}, func(s State) {
		fn(typed[T](s))
	})
}
