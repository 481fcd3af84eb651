package impact

import (
	"fmt"

	"github.com/AnatoleLucet/impact/internal"
)

// Bridge is what a component adapter calls around each tracked consumption (a render).
// Adapters receive one per component instance, no global hooks are involved.
type Bridge interface {
	// OnConsume is called right before the consumption starts.
	OnConsume()
	// OnConsumed is called right after it ends, including when it failed.
	OnConsumed()
}

// Consumer is the Bridge of one component instance.
// It subscribes to whatever the last consumption read and calls onChange when any of it changes.
type Consumer struct {
	consumer *internal.Consumer
}

var _ Bridge = (*Consumer)(nil)

func NewConsumer(onChange func(), opts ...Option) *Consumer {
	return &Consumer{
		internal.GetRuntime().NewConsumer(onChange, buildOptions(opts)),
	}
}

func (c *Consumer) OnConsume()  { c.consumer.OnConsume() }
func (c *Consumer) OnConsumed() { c.consumer.OnConsumed() }

// Consuming reports whether a consumption is in progress.
func (c *Consumer) Consuming() bool { return c.consumer.Consuming() }

// Snapshot changes every time the consumer is notified.
func (c *Consumer) Snapshot() uint64 { return c.consumer.Snapshot() }

func (c *Consumer) Dependencies() []Dependency {
	return dependencies(c.consumer.Dependencies())
}

// Dispose unsubscribes the consumer for good.
func (c *Consumer) Dispose() { c.consumer.Dispose() }

// Consume runs fn between the bridge calls.
func Consume(b Bridge, fn func()) {
	b.OnConsume()
	defer b.OnConsumed()

	fn()
}

// OnConsumed registers fn to run when the current consumption ends.
// It panics with ErrNoFrame outside of a consumption.
func OnConsumed(fn func()) {
	for f := internal.GetRuntime().Tracker().Current(); f != nil; f = f.Parent() {
		if _, ok := f.Owner().(*internal.Consumer); ok {
			f.OnConsumed(fn)
			return
		}
	}

	panic(fmt.Errorf("%w: OnConsumed called outside of a consumption", ErrNoFrame))
}
