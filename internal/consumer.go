package internal

import "fmt"

// Consumer tracks what an external consumption (a render) reads and is notified
// when any of it changes. Its frame is pushed and popped by the bridge calls.
type Consumer struct {
	id   uint64
	name string

	dependencies Deps

	onChange func()

	// active frame, nil between consumptions
	frame *Frame

	marked   uint64
	snapshot uint64
	disposed bool
}

func (r *Runtime) NewConsumer(onChange func(), opts Options) *Consumer {
	return &Consumer{
		id:       nextID(),
		name:     opts.Name,
		onChange: onChange,
	}
}

func (c *Consumer) Info() Info {
	return Info{ID: c.id, Name: c.name, Kind: KindConsumer}
}

func (c *Consumer) deps() *Deps { return &c.dependencies }

func (c *Consumer) runOwner() *Owner { return nil }

func (c *Consumer) Dependencies() []*Node { return c.dependencies.Nodes() }

func (c *Consumer) Consuming() bool { return c.frame != nil }

func (c *Consumer) Snapshot() uint64 { return c.snapshot }

func (c *Consumer) Disposed() bool { return c.disposed }

// OnConsume starts a tracked consumption.
func (c *Consumer) OnConsume() {
	if c.frame != nil {
		panic(fmt.Errorf("%w: consumer %d is already consuming", ErrTrackingImbalance, c.id))
	}

	c.frame = GetRuntime().tracker.Push(c)
}

// OnConsumed ends the consumption, replaces the subscriptions with what was read
// and runs the disposals registered on the frame.
func (c *Consumer) OnConsumed() {
	if c.frame == nil {
		panic(fmt.Errorf("%w: consumer %d ended a consumption it never started", ErrTrackingImbalance, c.id))
	}

	f := c.frame
	c.frame = nil

	GetRuntime().tracker.Pop(f)

	if !c.disposed {
		c.dependencies.update(c, f.deps)
	}

	f.runConsumed()
}

func (c *Consumer) mark(p *pass) {
	if c.disposed || c.frame != nil || c.marked == p.id {
		return
	}

	c.marked = p.id
	p.enqueue(c)
}

func (c *Consumer) react(r *Runtime) {
	if c.disposed {
		return
	}

	c.snapshot++
	if c.onChange != nil {
		c.onChange()
	}
}

func (c *Consumer) Dispose() {
	if c.disposed {
		return
	}

	c.disposed = true
	c.dependencies.clear()
}
