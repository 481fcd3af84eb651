package internal

import (
	"slices"
	"sync/atomic"
)

// Reaction is a subscriber that runs once marking is over: effects and consumers.
type Reaction interface {
	Subscriber
	react(r *Runtime)

	// owner of the reaction's runs, nil for consumers
	runOwner() *Owner
}

var passClock atomic.Uint64

// pass groups the writes propagated together and the reactions they reached.
// Its id stamps the subscribers it marked so each one is queued once.
type pass struct {
	id uint64

	// written nodes, in write order
	sources []*Node

	// reactions in the order they were reached
	reactions []Reaction
}

func newPass() *pass {
	return &pass{
		id:        passClock.Add(1),
		sources:   make([]*Node, 0),
		reactions: make([]Reaction, 0),
	}
}

func (p *pass) addSource(n *Node) {
	if !slices.Contains(p.sources, n) {
		p.sources = append(p.sources, n)
	}
}

func (p *pass) enqueue(re Reaction) {
	p.reactions = append(p.reactions, re)
}

type SettledQueue struct {
	callbacks []func()
}

func NewSettledQueue() *SettledQueue {
	return &SettledQueue{
		callbacks: make([]func(), 0),
	}
}

func (q *SettledQueue) Enqueue(fn func()) {
	q.callbacks = append(q.callbacks, fn)
}

func (q *SettledQueue) Run() {
	callbacks := q.callbacks
	q.callbacks = make([]func(), 0)

	for _, cb := range callbacks {
		cb()
	}
}
