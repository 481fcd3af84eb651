// Package impact is a fine-grained reactive state engine: signals, lazily derived values,
// effects and the scopes that own them.
//
// Every goroutine gets its own runtime. A graph of signals must only be driven by one
// goroutine at a time.
package impact

import "github.com/AnatoleLucet/impact/internal"

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

// ReadOnly is the read side shared by signals and derived values.
type ReadOnly[T any] interface {
	// Read returns the current value and tracks it in the active frame.
	Read() T
	// Peek returns the current value without tracking.
	Peek() T
}

type Signal[T any] struct {
	signal *internal.Signal
}

// NewSignal creates your typical read/write signal.
// Every write notifies, use Equal or SkipEqual to drop writes of an equal value.
func NewSignal[T any](initial T, opts ...Option) *Signal[T] {
	return &Signal[T]{
		internal.GetRuntime().NewSignal(initial, buildOptions(opts)),
	}
}

// Read the current value of the signal, tracking the dependency if within a reactive context.
func (s *Signal[T]) Read() T {
	return as[T](s.signal.Read())
}

func (s *Signal[T]) Peek() T {
	return as[T](s.signal.Value())
}

// Write a new value to the signal, triggering updates to any dependents.
func (s *Signal[T]) Write(v T) {
	s.signal.Write(v)
}

// Update writes the result of fn applied to the current value.
func (s *Signal[T]) Update(fn func(T) T) {
	s.Write(fn(s.Peek()))
}

// Version increases on every write that notified subscribers.
func (s *Signal[T]) Version() uint64 { return s.signal.Version() }

func (s *Signal[T]) ID() uint64   { return s.signal.ID() }
func (s *Signal[T]) Name() string { return s.signal.Name() }

// Disposed reports whether the signal's owner tore it down.
// A disposed signal keeps its value but no longer notifies.
func (s *Signal[T]) Disposed() bool { return s.signal.Disposed() }

type Derived[T any] struct {
	derived *internal.Derived
}

// NewDerived creates a memoized value computed from other signals.
// It only recomputes when read after one of its dependencies changed.
func NewDerived[T any](compute func() T, opts ...Option) *Derived[T] {
	return &Derived[T]{
		internal.GetRuntime().NewDerived(func() any {
			return compute()
		}, buildOptions(opts)),
	}
}

// Read the current value, recomputing it if stale and tracking the dependency if within a reactive context.
func (d *Derived[T]) Read() T {
	return as[T](d.derived.Read())
}

func (d *Derived[T]) Peek() T {
	return as[T](d.derived.Value())
}

// Valid reports whether the cached value is up to date.
func (d *Derived[T]) Valid() bool { return d.derived.Valid() }

// Version increases on every recompute.
func (d *Derived[T]) Version() uint64 { return d.derived.Version() }

func (d *Derived[T]) ID() uint64   { return d.derived.ID() }
func (d *Derived[T]) Name() string { return d.derived.Name() }

// Dispose drops the derived value's subscriptions. Its owner disposes it otherwise.
func (d *Derived[T]) Dispose() { d.derived.Dispose() }

type EffectFunc interface {
	func() | func() func()
}

type Effect struct {
	effect *internal.Effect
}

// NewEffect creates a reactive effect that runs the given function now
// and again whenever its dependencies change.
// The function can return a cleanup, called before the next run and on dispose.
func NewEffect[F EffectFunc](fn F, opts ...Option) *Effect {
	var body func() func()
	switch f := any(fn).(type) {
	case func():
		body = func() func() {
			f()
			return nil
		}
	case func() func():
		body = f
	}

	return &Effect{
		internal.GetRuntime().NewEffect(body, buildOptions(opts)),
	}
}

// Dispose stops the effect and runs its last cleanup.
func (e *Effect) Dispose() { e.effect.Dispose() }

func (e *Effect) Disposed() bool { return e.effect.Disposed() }
func (e *Effect) ID() uint64     { return e.effect.ID() }

// Batch multiple signal writes into a single update cycle,
// instead of triggering updates after each write.
func Batch(fn func()) {
	internal.GetRuntime().Batch(fn)
}

// Untrack runs the given function without tracking any reactive dependencies.
func Untrack[T any](fn func() T) T {
	var result T
	internal.GetRuntime().Untrack(func() { result = fn() })
	return result
}

// OnCleanup registers a function to be called when the current owner is disposed,
// or before the next run when called inside an effect.
// It panics with ErrNoOwner outside of any scope, effect or derived value.
func OnCleanup(fn func()) {
	if err := internal.GetRuntime().OnCleanup(fn); err != nil {
		panic(err)
	}
}

// OnSettled runs fn once, when the next round of updates is over.
func OnSettled(fn func()) {
	internal.GetRuntime().OnSettled(fn)
}

// Release drops the calling goroutine's runtime when it has nothing in flight.
// It reports whether the runtime was released.
func Release() bool {
	return internal.ReleaseRuntime()
}

type Context[T any] struct {
	ctx *internal.Context
}

// NewContext creates a new reactive context with a default value.
func NewContext[T any](defaultValue T) *Context[T] {
	return &Context[T]{
		internal.GetRuntime().NewContext(defaultValue),
	}
}

// Value retrieves the current value of the context,
// inheriting from parent owners if not set in the current owner.
func (c *Context[T]) Value() T {
	return as[T](c.ctx.Value())
}

// Set a new value for the context in the current owner.
func (c *Context[T]) Set(value T) {
	c.ctx.Set(value)
}
