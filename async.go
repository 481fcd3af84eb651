package impact

import (
	"context"

	"github.com/AnatoleLucet/impact/internal"
)

type AsyncStatus int

const (
	AsyncIdle AsyncStatus = iota
	AsyncPending
	AsyncFulfilled
	AsyncRejected
)

func (s AsyncStatus) String() string {
	switch s {
	case AsyncIdle:
		return "idle"
	case AsyncPending:
		return "pending"
	case AsyncFulfilled:
		return "fulfilled"
	case AsyncRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// AsyncState is the observable state of an asynchronous value.
// Value keeps the last fulfilled value while a new one is pending or after a rejection.
type AsyncState[T any] struct {
	Status AsyncStatus
	Value  T
	Err    error
}

// Executor runs fn on the goroutine driving the graph.
// It is how a value computed on another goroutine gets written back.
type Executor func(fn func())

// Async is a signal holding the state of an asynchronous computation.
// Starting a new computation aborts the one in flight, whose result is then ignored.
type Async[T any] struct {
	state *Signal[AsyncState[T]]
	exec  Executor

	// run generation, results of older generations are dropped
	gen    uint64
	cancel context.CancelFunc

	disposed bool
}

var _ ReadOnly[AsyncState[int]] = (*Async[int])(nil)

// NewAsync creates an idle async value. Results are written back through exec.
// Created under an owner, the computation in flight is aborted when the owner is reset or disposed.
func NewAsync[T any](exec Executor, opts ...Option) *Async[T] {
	return newAsync(exec, AsyncState[T]{}, opts)
}

func newAsync[T any](exec Executor, initial AsyncState[T], opts []Option) *Async[T] {
	a := &Async[T]{
		state: NewSignal(initial, opts...),
		exec:  exec,
	}

	if owner := internal.GetRuntime().CurrentOwner(); owner != nil {
		owner.OnCleanup(a.dispose)
	}

	return a
}

func (a *Async[T]) Read() AsyncState[T] { return a.state.Read() }
func (a *Async[T]) Peek() AsyncState[T] { return a.state.Peek() }

// Run starts fn on a new goroutine and marks the value pending.
// fn's context is canceled when another run starts, on Resolve and on dispose.
func (a *Async[T]) Run(ctx context.Context, fn func(ctx context.Context) (T, error)) {
	if a.disposed {
		return
	}

	a.abort()
	a.state.Write(AsyncState[T]{Status: AsyncPending, Value: a.state.Peek().Value})
	a.launch(ctx, fn)
}

// Resolve fulfills the value right away, aborting the computation in flight.
func (a *Async[T]) Resolve(v T) {
	if a.disposed {
		return
	}

	a.abort()
	a.state.Write(AsyncState[T]{Status: AsyncFulfilled, Value: v})
}

// Pending reports whether a computation is in flight.
func (a *Async[T]) Pending() bool { return a.cancel != nil }

func (a *Async[T]) launch(ctx context.Context, fn func(ctx context.Context) (T, error)) {
	ctx, cancel := context.WithCancel(ctx)

	a.gen++
	gen := a.gen
	a.cancel = cancel

	go func() {
		v, err := fn(ctx)
		a.exec(func() { a.settle(gen, v, err) })
	}()
}

func (a *Async[T]) settle(gen uint64, v T, err error) {
	if a.disposed || gen != a.gen {
		return
	}

	a.cancel()
	a.cancel = nil

	if err != nil {
		a.state.Write(AsyncState[T]{Status: AsyncRejected, Value: a.state.Peek().Value, Err: err})
		return
	}

	a.state.Write(AsyncState[T]{Status: AsyncFulfilled, Value: v})
}

func (a *Async[T]) abort() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.gen++
}

func (a *Async[T]) dispose() {
	a.abort()
	a.disposed = true
}
