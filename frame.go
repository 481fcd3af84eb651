package impact

import (
	"fmt"

	"github.com/AnatoleLucet/impact/internal"
)

// Dependency is a signal or derived value recorded by a frame.
type Dependency interface {
	ID() uint64
	Name() string
	Version() uint64
}

// Frame collects the dependencies read while it is the innermost active frame.
type Frame struct {
	frame *internal.Frame
}

func (f *Frame) ID() uint64 { return f.frame.ID() }

func (f *Frame) Dependencies() []Dependency {
	return dependencies(f.frame.Deps())
}

// PushFrame activates a new frame. Every push needs a PopFrame.
func PushFrame() *Frame {
	return &Frame{internal.GetRuntime().Tracker().Push(nil)}
}

// CurrentFrame returns the innermost active frame, or nil.
func CurrentFrame() *Frame {
	f := internal.GetRuntime().Tracker().Current()
	if f == nil {
		return nil
	}

	return &Frame{f}
}

// PopFrame deactivates the innermost frame and returns what was read in it.
// It panics with ErrTrackingImbalance when there is no frame pushed by PushFrame on top.
func PopFrame() []Dependency {
	t := internal.GetRuntime().Tracker()

	top := t.Current()
	if top == nil {
		panic(fmt.Errorf("%w: pop on an empty stack", ErrTrackingImbalance))
	}
	if owner := top.Owner(); owner != nil {
		panic(fmt.Errorf("%w: top frame belongs to %s %d", ErrTrackingImbalance, owner.Info().Kind, owner.Info().ID))
	}

	t.Pop(top)
	return dependencies(top.Deps())
}

// Track runs fn in a fresh frame and returns what it read. The frame is popped even if fn panics.
func Track(fn func()) []Dependency {
	t := internal.GetRuntime().Tracker()

	f := t.Push(nil)
	defer t.Pop(f)

	fn()
	return dependencies(f.Deps())
}

func dependencies(nodes []*internal.Node) []Dependency {
	deps := make([]Dependency, len(nodes))
	for i, n := range nodes {
		deps[i] = n
	}

	return deps
}
