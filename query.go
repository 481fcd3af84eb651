package impact

import "context"

// Query is an async value fetched as soon as it is created.
// Invalidate refetches it, keeping the last value readable while pending.
type Query[T any] struct {
	*Async[T]

	fetch func(ctx context.Context) (T, error)
}

func NewQuery[T any](ctx context.Context, exec Executor, fetch func(ctx context.Context) (T, error), opts ...Option) *Query[T] {
	q := &Query[T]{
		Async: newAsync(exec, AsyncState[T]{Status: AsyncPending}, opts),
		fetch: fetch,
	}

	q.launch(ctx, fetch)
	return q
}

// Invalidate aborts the fetch in flight, if any, and starts a new one.
func (q *Query[T]) Invalidate(ctx context.Context) {
	q.Run(ctx, q.fetch)
}

// Mutation is an async value produced by submitting an input.
// Submitting again aborts the previous submission.
type Mutation[In, T any] struct {
	*Async[T]

	mutate func(ctx context.Context, input In) (T, error)
}

func NewMutation[In, T any](exec Executor, mutate func(ctx context.Context, input In) (T, error), opts ...Option) *Mutation[In, T] {
	return &Mutation[In, T]{
		Async:  newAsync(exec, AsyncState[T]{}, opts),
		mutate: mutate,
	}
}

func (m *Mutation[In, T]) Mutate(ctx context.Context, input In) {
	m.Run(ctx, func(ctx context.Context) (T, error) {
		return m.mutate(ctx, input)
	})
}
