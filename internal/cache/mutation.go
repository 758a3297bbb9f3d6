package cache

import "context"

// Mutation is a one-shot write. OnSuccess runs whenever Fn returns without
// an error; failed writes are never retried.
type Mutation[V, R any] struct {
	Fn        func(ctx context.Context, v V) (R, error)
	OnSuccess func(ctx context.Context, result R, v V)
}

func (m Mutation[V, R]) Do(ctx context.Context, v V) (R, error) {
	result, err := m.Fn(ctx, v)
	if err != nil {
		return result, err
	}
	if m.OnSuccess != nil {
		m.OnSuccess(ctx, result, v)
	}
	return result, nil
}
