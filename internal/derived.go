package internal

import (
	"fmt"
	"time"
)

type Derived struct {
	*Node

	// owns whatever the computation creates, reset before each recompute
	owner *Owner

	dependencies Deps

	compute func() any
	value   any
	valid   bool

	computing bool
}

func (r *Runtime) NewDerived(compute func() any, opts Options) *Derived {
	d := &Derived{
		Node:    newNode(KindDerived, opts.Name),
		compute: compute,
	}

	d.owner = r.newOwner()
	d.owner.onRelease(d.dispose)

	return d
}

func (d *Derived) deps() *Deps { return &d.dependencies }

func (d *Derived) Valid() bool { return d.valid }

func (d *Derived) Dependencies() []*Node { return d.dependencies.Nodes() }

// mark invalidates the cache and its subscribers. A value recomputed since it was
// last marked by p is marked again.
func (d *Derived) mark(p *pass) {
	if d.computing || (d.marked == p.id && !d.valid) {
		return
	}

	d.marked = p.id
	d.valid = false
	d.propagate(p)
}

// Read returns the cached value, recomputing it first if it is stale.
// The derived value is tracked in the current frame either way.
func (d *Derived) Read() any {
	r := GetRuntime()

	if d.computing {
		panic(fmt.Errorf("%w: %s read while computing", ErrCircularDependency, d.label()))
	}

	r.tracker.Track(d.Node)

	if !d.valid {
		d.recompute(r)
	}

	return d.value
}

// Value returns the value without tracking. A stale value is still recomputed.
func (d *Derived) Value() any {
	var v any
	GetRuntime().tracker.RunUntracked(func() { v = d.Read() })
	return v
}

func (d *Derived) recompute(r *Runtime) {
	if d.disposed {
		// no subscriptions left to keep a cache valid
		r.tracker.RunUntracked(func() { d.value = d.compute() })
		return
	}

	d.owner.reset()

	d.computing = true
	r.computing++
	frame := r.tracker.Push(d)

	start := time.Now()
	ok := false
	defer func() {
		r.tracker.Pop(frame)
		d.dependencies.update(d, frame.deps)
		d.computing = false
		r.computing--

		r.hooks().DerivedComputed(d.Info(), time.Since(start), !ok)

		if ok {
			r.drain()
		}
	}()

	var value any
	r.tracker.RunWithOwner(d.owner, func() {
		value = d.compute()
	})

	d.value = value
	d.valid = true
	d.version++
	ok = true
}

func (d *Derived) Dispose() {
	d.owner.Dispose()
}

func (d *Derived) dispose() {
	d.disposed = true
	d.dependencies.clear()
	d.clearSubs()
}

func (d *Derived) label() string {
	if d.name != "" {
		return d.name
	}

	return fmt.Sprintf("derived#%d", d.id)
}
