package internal

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-logr/logr"
)

// Runtime holds the tracking and propagation state of one goroutine.
type Runtime struct {
	tracker *Tracker
	batcher *Batcher
	settled *SettledQueue

	// pass collecting the reactions of writes not propagated yet
	next *pass

	// > 0 while passes are running
	draining int

	// > 0 while a derived value computes
	computing int
}

func NewRuntime() *Runtime {
	return &Runtime{
		tracker: NewTracker(),
		batcher: NewBatcher(),
		settled: NewSettledQueue(),
	}
}

func (r *Runtime) Tracker() *Tracker {
	return r.tracker
}

func (r *Runtime) hooks() Hooks {
	return config.Load().Hooks
}

func (r *Runtime) logger() logr.Logger {
	return config.Load().Logger
}

// holding reports whether reactions have to wait for the current pass, batch or computation.
func (r *Runtime) holding() bool {
	return r.batcher.IsBatching() || r.draining > 0 || r.computing > 0
}

// Draining reports whether a propagation pass is in flight.
func (r *Runtime) Draining() bool {
	return r.draining > 0
}

// notify invalidates everything depending on a written node right away.
// The reactions it reaches run once nothing holds them back: a write made while a pass
// is running is picked up by the following pass instead of re-entering the current one.
func (r *Runtime) notify(n *Node) {
	if r.draining > 0 || r.computing > 0 {
		r.hooks().WriteDeferred(n.Info())
		r.logger().V(2).Info("write deferred", "node", n.name, "id", n.id)
	}

	if r.next == nil {
		r.next = newPass()
	}

	r.next.addSource(n)
	n.propagate(r.next)

	r.drain()
}

// drain runs passes until no write is left to propagate, then the settled callbacks.
func (r *Runtime) drain() {
	if r.holding() || r.next == nil {
		return
	}

	func() {
		r.draining++
		ok := false
		defer func() {
			r.draining--
			if !ok {
				r.next = nil
			}
		}()

		maxPasses := config.Load().MaxPasses
		for passes := 1; r.next != nil; passes++ {
			if passes > maxPasses {
				err := fmt.Errorf("%w after %d passes", ErrPropagationCycle, maxPasses)
				r.logger().Error(err, "dropping pending writes", "pending", nodeNames(r.next.sources))
				panic(err)
			}

			p := r.next
			r.next = nil
			r.runPass(p)
		}

		ok = true
	}()

	r.settled.Run()
}

// runPass runs the reactions of a pass in the order they were reached, except that an
// effect queued in the same pass as one of its ancestors runs after that ancestor.
// Marking already happened on write, so they only ever observe fully invalidated derived values.
func (r *Runtime) runPass(p *pass) {
	start := time.Now()

	queued := make(map[Reaction]struct{}, len(p.reactions))
	for _, re := range p.reactions {
		queued[re] = struct{}{}
	}

	done := make(map[Reaction]struct{}, len(p.reactions))
	run := func(re Reaction) {
		if _, ok := done[re]; ok {
			return
		}

		done[re] = struct{}{}
		re.react(r)
	}

	for _, re := range p.reactions {
		// the ancestor's re-run disposes re before it gets a stale run
		for _, anc := range queuedAncestors(re, queued) {
			run(anc)
		}

		run(re)
	}

	r.hooks().PassCompleted(len(p.sources), len(p.reactions), time.Since(start))
	r.logger().V(2).Info("pass completed", "pass", p.id, "sources", len(p.sources), "reactions", len(p.reactions))
}

func (r *Runtime) Untrack(fn func()) {
	r.tracker.RunUntracked(fn)
}

func (r *Runtime) OnSettled(fn func()) {
	r.settled.Enqueue(fn)
}

// queuedAncestors returns the effects owning re that are queued too, outermost first.
func queuedAncestors(re Reaction, queued map[Reaction]struct{}) []Reaction {
	owner := re.runOwner()
	if owner == nil {
		return nil
	}

	var ancestors []Reaction
	for o := owner.parent; o != nil; o = o.parent {
		if o.effect == nil {
			continue
		}

		if _, ok := queued[o.effect]; ok {
			ancestors = append(ancestors, o.effect)
		}
	}

	slices.Reverse(ancestors)
	return ancestors
}

func nodeNames(nodes []*Node) []string {
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n.name != "" {
			names = append(names, n.name)
		} else {
			names = append(names, fmt.Sprintf("%s#%d", n.kind, n.id))
		}
	}

	return names
}

func (r *Runtime) idle() bool {
	return r.tracker.top == nil &&
		r.tracker.currentOwner == nil &&
		!r.holding() &&
		r.next == nil &&
		len(r.settled.callbacks) == 0
}
