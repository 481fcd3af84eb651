package internal

import "sync/atomic"

type NodeKind int

const (
	KindSignal NodeKind = iota
	KindDerived
	KindEffect
	KindConsumer
)

func (k NodeKind) String() string {
	switch k {
	case KindSignal:
		return "signal"
	case KindDerived:
		return "derived"
	case KindEffect:
		return "effect"
	case KindConsumer:
		return "consumer"
	default:
		return "unknown"
	}
}

var lastID atomic.Uint64

func nextID() uint64 {
	return lastID.Add(1)
}

// Info identifies a node in hooks and logs.
type Info struct {
	ID   uint64
	Name string
	Kind NodeKind
}

// Node is the observable half of a signal or derived value.
type Node struct {
	id   uint64
	name string
	kind NodeKind

	// bumped on every notifying write (signals) or recompute (derived)
	version uint64

	// id of the last pass that reached this node
	marked uint64

	disposed bool

	subsHead *Link
}

func newNode(kind NodeKind, name string) *Node {
	return &Node{
		id:   nextID(),
		name: name,
		kind: kind,
	}
}

func (n *Node) ID() uint64      { return n.id }
func (n *Node) Name() string    { return n.name }
func (n *Node) Kind() NodeKind  { return n.kind }
func (n *Node) Version() uint64 { return n.version }
func (n *Node) Disposed() bool  { return n.disposed }

func (n *Node) Info() Info {
	return Info{ID: n.id, Name: n.name, Kind: n.kind}
}

// Subs returns a snapshot of the node's subscribers in subscription order.
func (n *Node) Subs() []Subscriber {
	subs := make([]Subscriber, 0)
	for l := n.subsHead; l != nil; l = l.nextSub {
		subs = append(subs, l.sub)
	}

	return subs
}

func (n *Node) HasSubs() bool {
	return n.subsHead != nil
}

// propagate marks every subscriber of n for the given pass.
func (n *Node) propagate(p *pass) {
	// clone to avoid mutation during iteration
	for _, sub := range n.Subs() {
		sub.mark(p)
	}
}

func (n *Node) clearSubs() {
	for n.subsHead != nil {
		l := n.subsHead
		l.sub.deps().unlink(l)
	}
}

func (n *Node) addSubLink(link *Link) {
	if n.subsHead == nil {
		n.subsHead = link
		link.prevSub = link // loop to self
		link.nextSub = nil
		return
	}

	tail := n.subsHead.prevSub
	tail.nextSub = link
	link.prevSub = tail
	link.nextSub = nil
	n.subsHead.prevSub = link
}

func (n *Node) removeSubLink(link *Link) {
	if link == n.subsHead {
		n.subsHead = link.nextSub
		if n.subsHead != nil {
			n.subsHead.prevSub = link.prevSub
		}
	} else {
		link.prevSub.nextSub = link.nextSub
		if link.nextSub != nil {
			link.nextSub.prevSub = link.prevSub
		} else {
			n.subsHead.prevSub = link.prevSub
		}
	}

	link.prevSub = nil
	link.nextSub = nil
}
