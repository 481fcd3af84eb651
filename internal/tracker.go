package internal

import (
	"fmt"
	"slices"
)

// Frame records the nodes read while it is the innermost active frame.
type Frame struct {
	id     uint64
	parent *Frame

	// the subscriber this frame tracks for, nil for bare frames
	sub Subscriber

	// tracking state to restore when the frame is popped
	prevTracking bool

	deps    []*Node
	seen    map[*Node]struct{}
	written map[*Node]struct{}

	// callbacks run by the bridge once the consumption ends
	onConsumed []func()
}

func (f *Frame) ID() uint64           { return f.id }
func (f *Frame) Parent() *Frame       { return f.parent }
func (f *Frame) Owner() Subscriber    { return f.sub }
func (f *Frame) Deps() []*Node        { return slices.Clone(f.deps) }
func (f *Frame) OnConsumed(fn func()) { f.onConsumed = append(f.onConsumed, fn) }

func (f *Frame) add(n *Node) {
	if _, ok := f.written[n]; ok {
		return
	}
	if _, ok := f.seen[n]; ok {
		return
	}

	f.seen[n] = struct{}{}
	f.deps = append(f.deps, n)
}

// wrote drops n from the frame's dependencies: a computation that writes a node
// must not be re-run by its own write.
func (f *Frame) wrote(n *Node) {
	f.written[n] = struct{}{}

	if _, ok := f.seen[n]; ok {
		delete(f.seen, n)
		f.deps = slices.DeleteFunc(f.deps, func(d *Node) bool { return d == n })
	}
}

func (f *Frame) runConsumed() {
	callbacks := f.onConsumed
	f.onConsumed = nil

	for _, fn := range callbacks {
		fn()
	}
}

type Tracker struct {
	tracking bool

	top   *Frame // innermost frame, for dependency tracking
	depth int

	currentOwner *Owner // for lifecycle/cleanup tracking
}

func NewTracker() *Tracker {
	return &Tracker{
		tracking: true,
	}
}

// Push activates a new frame on top of the stack.
func (t *Tracker) Push(sub Subscriber) *Frame {
	f := &Frame{
		id:           nextID(),
		parent:       t.top,
		sub:          sub,
		prevTracking: t.tracking,
		seen:         make(map[*Node]struct{}),
		written:      make(map[*Node]struct{}),
	}

	t.top = f
	t.depth++
	t.tracking = true

	return f
}

// Pop deactivates f, which must be the innermost frame.
func (t *Tracker) Pop(f *Frame) {
	if t.top == nil {
		panic(fmt.Errorf("%w: pop on an empty stack", ErrTrackingImbalance))
	}
	if t.top != f {
		panic(fmt.Errorf("%w: frame %d popped while frame %d is on top", ErrTrackingImbalance, f.id, t.top.id))
	}

	t.top = f.parent
	t.depth--
	t.tracking = f.prevTracking
}

func (t *Tracker) Current() *Frame {
	return t.top
}

func (t *Tracker) Depth() int {
	return t.depth
}

func (t *Tracker) Track(n *Node) {
	if t.ShouldTrack() && !n.disposed {
		t.top.add(n)
	}
}

func (t *Tracker) Wrote(n *Node) {
	if t.top != nil {
		t.top.wrote(n)
	}
}

func (t *Tracker) ShouldTrack() bool {
	return t.top != nil && t.tracking
}

func (t *Tracker) RunWithOwner(owner *Owner, fn func()) {
	prev := t.currentOwner
	t.currentOwner = owner
	defer func() { t.currentOwner = prev }()

	fn()
}

func (t *Tracker) RunUntracked(fn func()) {
	prev := t.tracking
	t.tracking = false
	defer func() { t.tracking = prev }()

	fn()
}

func (t *Tracker) CurrentOwner() *Owner {
	return t.currentOwner
}
