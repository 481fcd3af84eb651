package internal

import "errors"

var (
	// ErrTrackingImbalance reports a frame popped without a matching push.
	ErrTrackingImbalance = errors.New("impact: unbalanced observer frame")

	// ErrCircularDependency reports a derived value read by its own computation.
	ErrCircularDependency = errors.New("impact: circular dependency")

	// ErrPropagationCycle reports writes that kept re-triggering each other past the pass limit.
	ErrPropagationCycle = errors.New("impact: propagation did not settle")

	ErrNoOwner     = errors.New("impact: no active scope")
	ErrScopeClosed = errors.New("impact: scope is closed")
	ErrNoFrame     = errors.New("impact: no active observer frame")
)
