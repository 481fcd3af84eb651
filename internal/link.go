package internal

// Subscriber is anything that depends on nodes: derived values, effects and consumers.
type Subscriber interface {
	Info() Info

	// mark is called when one of the subscriber's dependencies changes during a pass.
	mark(p *pass)

	deps() *Deps
}

// Link is a bidirectional edge between a dependency and a subscriber.
// It lives in both the dependency's subscriber list and the subscriber's dependency list.
type Link struct {
	dep *Node
	sub Subscriber

	prevDep *Link
	nextDep *Link

	prevSub *Link
	nextSub *Link
}

// Deps is a subscriber's ordered list of dependency links.
type Deps struct {
	head *Link
}

func (d *Deps) Nodes() []*Node {
	nodes := make([]*Node, 0)
	for l := d.head; l != nil; l = l.nextDep {
		nodes = append(nodes, l.dep)
	}

	return nodes
}

func (d *Deps) Len() int {
	n := 0
	for l := d.head; l != nil; l = l.nextDep {
		n++
	}

	return n
}

func (d *Deps) link(sub Subscriber, dep *Node) {
	link := &Link{dep: dep, sub: sub}

	if d.head == nil {
		d.head = link
		link.prevDep = link // loop to self
	} else {
		tail := d.head.prevDep
		tail.nextDep = link
		link.prevDep = tail
		d.head.prevDep = link
	}

	dep.addSubLink(link)
}

func (d *Deps) unlink(link *Link) {
	if link == d.head {
		d.head = link.nextDep
		if d.head != nil {
			d.head.prevDep = link.prevDep
		}
	} else {
		link.prevDep.nextDep = link.nextDep
		if link.nextDep != nil {
			link.nextDep.prevDep = link.prevDep
		} else {
			d.head.prevDep = link.prevDep
		}
	}

	link.prevDep = nil
	link.nextDep = nil
	link.dep.removeSubLink(link)
}

// update replaces the dependency set with nodes, keeping links that are still used
// and subscribing to new ones in the order they were read.
func (d *Deps) update(sub Subscriber, nodes []*Node) {
	keep := make(map[*Node]struct{}, len(nodes))
	for _, n := range nodes {
		keep[n] = struct{}{}
	}

	linked := make(map[*Node]struct{})
	for l := d.head; l != nil; {
		next := l.nextDep
		if _, ok := keep[l.dep]; ok {
			linked[l.dep] = struct{}{}
		} else {
			d.unlink(l)
		}
		l = next
	}

	for _, n := range nodes {
		if _, ok := linked[n]; ok || n.disposed {
			continue
		}

		d.link(sub, n)
	}
}

func (d *Deps) clear() {
	for d.head != nil {
		d.unlink(d.head)
	}
}
