package internal

type Signal struct {
	*Node

	value any
	equal func(a, b any) bool
}

func (r *Runtime) NewSignal(initial any, opts Options) *Signal {
	s := &Signal{
		Node:  newNode(KindSignal, opts.Name),
		value: initial,
		equal: opts.Equal,
	}

	if owner := r.tracker.CurrentOwner(); owner != nil {
		owner.own(s.dispose)
	}

	return s
}

// Read returns the value, tracking the signal in the current frame.
func (s *Signal) Read() any {
	GetRuntime().tracker.Track(s.Node)
	return s.value
}

func (s *Signal) Value() any {
	return s.value
}

// Write replaces the value and propagates to subscribers. Every write notifies,
// unless the signal was created with an equality func that reports the values equal.
func (s *Signal) Write(v any) {
	if s.equal != nil && s.equal(s.value, v) {
		return
	}

	r := GetRuntime()

	s.value = v
	s.version++
	r.tracker.Wrote(s.Node)
	r.hooks().SignalWritten(s.Info(), s.version)

	if s.disposed {
		return
	}

	r.notify(s.Node)
}

func (s *Signal) dispose() {
	s.disposed = true
	s.clearSubs()
}
