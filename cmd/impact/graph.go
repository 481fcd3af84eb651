package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnatoleLucet/impact"
)

var (
	errGraphStopped = errors.New("graph stopped")
	errUnknownStore = errors.New("unknown store")
	errUnknownCall  = errors.New("unknown action")
)

const saveLatency = 10 * time.Millisecond

type snapshotter interface {
	Snapshot() map[string]any
}

// graph owns the mounted stores. Signals are only read and written on the goroutine
// running the graph, other goroutines hand it work through do.
type graph struct {
	ops  chan func()
	done chan struct{}

	stores  map[string]snapshotter
	actions map[string]map[string]func()
}

func newGraph() *graph {
	return &graph{
		ops:  make(chan func()),
		done: make(chan struct{}),
	}
}

// run mounts the stores and serves work until ctx is done. The counter is
// incremented on every tick.
func (g *graph) run(ctx context.Context, tick time.Duration) error {
	defer close(g.done)
	defer impact.Release()

	scope, release := impact.Open()
	defer release()

	store := newCounterStore(ctx, g.post, g.persist)

	var inst *impact.Instance[counterProps, counter]
	err := scope.Run(func() error {
		var err error
		inst, err = store.Mount(counterProps{Step: 1})
		return err
	})
	if err != nil {
		return err
	}

	g.stores = map[string]snapshotter{store.Name(): inst}
	g.actions = map[string]map[string]func(){store.Name(): inst.Value().actions()}

	ticker := time.NewTicker(tick)
	scope.OnCleanup(ticker.Stop)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			inst.Value().Increment()
		case op := <-g.ops:
			op()
		}
	}
}

// post hands fn to the graph goroutine without waiting for it to run.
// Work posted once the graph stopped is dropped.
func (g *graph) post(fn func()) {
	select {
	case g.ops <- fn:
	case <-g.done:
	}
}

// persist stands in for a slow write to durable storage.
func (g *graph) persist(ctx context.Context, count int) error {
	select {
	case <-time.After(saveLatency):
		return nil
	case <-ctx.Done():
		return fmt.Errorf("saving %d: %w", count, ctx.Err())
	}
}

// do runs fn on the graph goroutine and waits for it. A panic in fn is returned as an error.
func (g *graph) do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	op := func() {
		defer func() {
			if rec := recover(); rec != nil {
				result <- fmt.Errorf("graph operation panicked: %v", rec)
			}
		}()
		result <- fn()
	}

	select {
	case g.ops <- op:
	case <-g.done:
		return errGraphStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *graph) snapshot(ctx context.Context) (map[string]map[string]any, error) {
	var snap map[string]map[string]any

	err := g.do(ctx, func() error {
		snap = make(map[string]map[string]any, len(g.stores))
		for name, s := range g.stores {
			snap[name] = s.Snapshot()
		}
		return nil
	})

	return snap, err
}

func (g *graph) call(ctx context.Context, store, action string) error {
	return g.do(ctx, func() error {
		actions, ok := g.actions[store]
		if !ok {
			return fmt.Errorf("%w %q", errUnknownStore, store)
		}

		fn, ok := actions[action]
		if !ok {
			return fmt.Errorf("%w %q on %q", errUnknownCall, action, store)
		}

		fn()
		return nil
	})
}
