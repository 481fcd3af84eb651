package internal

import (
	"iter"

	"github.com/google/uuid"
)

type Owner struct {
	// set for scopes only, nodes owning their children don't need one
	id string

	// cleanup functions called in registration order when the owner is reset or disposed
	cleanups []func()

	// node teardown, run first on dispose
	release []func()

	// teardown of the signals created under the owner, run on every reset
	owned []func()

	// the context values of this owner
	context map[any]any

	parent       *Owner
	prevSibling  *Owner
	nextSibling  *Owner
	childrenHead *Owner

	// the effect running under this owner, if any
	effect *Effect

	disposed bool
}

// NewScope creates an owner under the current one.
func (r *Runtime) NewScope() *Owner {
	o := r.newOwner()
	o.id = uuid.NewString()

	r.hooks().ScopeOpened(o.id)
	r.logger().V(1).Info("scope opened", "scope", o.id)

	return o
}

// newOwner creates an anonymous owner under the current one.
func (r *Runtime) newOwner() *Owner {
	o := &Owner{
		cleanups: make([]func(), 0),
		context:  make(map[any]any),
	}

	if parent := r.tracker.CurrentOwner(); parent != nil && !parent.disposed {
		parent.AddChild(o)
	}

	return o
}

func (o *Owner) ID() string     { return o.id }
func (o *Owner) Parent() *Owner { return o.parent }
func (o *Owner) Disposed() bool { return o.disposed }

// Run fn with o as the current owner.
func (o *Owner) Run(fn func()) {
	GetRuntime().tracker.RunWithOwner(o, fn)
}

func (parent *Owner) AddChild(child *Owner) {
	child.parent = parent
	child.prevSibling = nil
	child.nextSibling = parent.childrenHead

	if parent.childrenHead != nil {
		parent.childrenHead.prevSibling = child
	}

	parent.childrenHead = child
}

func (parent *Owner) removeChild(child *Owner) {
	if child.prevSibling != nil {
		child.prevSibling.nextSibling = child.nextSibling
	} else if parent.childrenHead == child {
		parent.childrenHead = child.nextSibling
	}

	if child.nextSibling != nil {
		child.nextSibling.prevSibling = child.prevSibling
	}

	child.parent = nil
	child.prevSibling = nil
	child.nextSibling = nil
}

// Children yields the owner's children, last created first.
func (n *Owner) Children() iter.Seq[*Owner] {
	return func(yield func(*Owner) bool) {
		child := n.childrenHead

		for child != nil {
			next := child.nextSibling
			if !yield(child) {
				return
			}

			child = next
		}
	}
}

// Dispose tears the owner down once: node teardown, then children (last created first),
// then cleanups in registration order. Later calls are no-ops.
func (n *Owner) Dispose() {
	if n.disposed {
		return
	}
	n.disposed = true

	if n.parent != nil {
		n.parent.removeChild(n)
	}

	release := n.release
	n.release = nil
	for _, fn := range release {
		fn()
	}

	n.reset()
	clear(n.context)

	if n.id != "" {
		r := GetRuntime()
		r.hooks().ScopeClosed(n.id)
		r.logger().V(1).Info("scope closed", "scope", n.id)
	}
}

// reset disposes the children, runs the cleanups, then tears down the signals of the last run.
// The owner itself stays usable.
func (n *Owner) reset() {
	n.DisposeChildren()

	for len(n.cleanups) > 0 {
		fn := n.cleanups[0]
		n.cleanups = n.cleanups[1:]
		fn()
	}
	n.cleanups = make([]func(), 0)

	owned := n.owned
	n.owned = nil
	for _, fn := range owned {
		fn()
	}
}

func (n *Owner) DisposeChildren() {
	for n.childrenHead != nil {
		n.childrenHead.Dispose()
	}
}

// OnCleanup registers fn to run when the owner is reset or disposed.
// On a disposed owner fn runs immediately.
func (n *Owner) OnCleanup(fn func()) {
	if n.disposed {
		fn()
		return
	}

	n.cleanups = append(n.cleanups, fn)
}

// own ties fn to the current run of the owner: it runs on the next reset or on dispose.
func (n *Owner) own(fn func()) {
	if n.disposed {
		fn()
		return
	}

	n.owned = append(n.owned, fn)
}

func (n *Owner) onRelease(fn func()) {
	n.release = append(n.release, fn)
}

func (r *Runtime) OnCleanup(fn func()) error {
	owner := r.tracker.CurrentOwner()
	if owner == nil {
		return ErrNoOwner
	}

	owner.OnCleanup(fn)
	return nil
}

func (r *Runtime) CurrentOwner() *Owner {
	return r.tracker.CurrentOwner()
}
