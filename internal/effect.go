package internal

import (
	"fmt"
	"time"
)

// Effect re-runs its body whenever something it read during the last run changes.
type Effect struct {
	id   uint64
	name string

	// owns the per-run cleanups and whatever the body creates
	owner *Owner

	dependencies Deps

	fn func() func()

	marked   uint64
	running  bool
	disposed bool
	runs     int
}

// NewEffect creates the effect and runs it once before returning.
func (r *Runtime) NewEffect(fn func() func(), opts Options) *Effect {
	e := &Effect{
		id:   nextID(),
		name: opts.Name,
		fn:   fn,
	}

	e.owner = r.newOwner()
	e.owner.effect = e
	e.owner.onRelease(e.release)

	e.run(r)
	return e
}

func (e *Effect) ID() uint64 { return e.id }

func (e *Effect) Info() Info {
	return Info{ID: e.id, Name: e.name, Kind: KindEffect}
}

func (e *Effect) deps() *Deps { return &e.dependencies }

func (e *Effect) runOwner() *Owner { return e.owner }

func (e *Effect) Dependencies() []*Node { return e.dependencies.Nodes() }

func (e *Effect) Disposed() bool { return e.disposed }

func (e *Effect) Runs() int { return e.runs }

func (e *Effect) mark(p *pass) {
	if e.disposed || e.running || e.marked == p.id {
		return
	}

	e.marked = p.id
	p.enqueue(e)
}

func (e *Effect) react(r *Runtime) {
	if e.disposed {
		return
	}

	e.run(r)
}

func (e *Effect) run(r *Runtime) {
	// cleanups and children of the previous run
	e.owner.reset()
	if e.disposed {
		return
	}

	e.running = true
	e.runs++
	frame := r.tracker.Push(e)

	start := time.Now()
	ok := false
	defer func() {
		r.tracker.Pop(frame)
		e.running = false
		if !e.disposed {
			e.dependencies.update(e, frame.deps)
		}

		r.hooks().EffectRan(e.Info(), time.Since(start), !ok)
	}()

	var cleanup func()
	r.tracker.RunWithOwner(e.owner, func() {
		cleanup = e.fn()
	})

	if cleanup != nil {
		e.owner.OnCleanup(cleanup)
	}
	ok = true
}

// Dispose stops the effect and runs its last cleanups. Later calls are no-ops.
func (e *Effect) Dispose() {
	e.owner.Dispose()
}

func (e *Effect) release() {
	e.disposed = true
	e.dependencies.clear()
}

func (e *Effect) String() string {
	if e.name != "" {
		return e.name
	}

	return fmt.Sprintf("effect#%d", e.id)
}
