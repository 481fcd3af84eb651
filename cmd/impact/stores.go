package main

import (
	"context"
	"fmt"

	"github.com/AnatoleLucet/impact"
)

type counterProps struct {
	Step int
}

type counter struct {
	Count     impact.ReadOnly[int]
	Parity    impact.ReadOnly[string]
	Saved     impact.ReadOnly[string]
	Increment func()
	Reset     func()
	Save      func()
}

// persistFunc stores a count somewhere slow.
type persistFunc func(ctx context.Context, count int) error

// newCounterStore defines the counter. Saves run on their own goroutine with ctx,
// their outcome is written back through exec.
func newCounterStore(ctx context.Context, exec impact.Executor, persist persistFunc) *impact.Store[counterProps, counter] {
	return impact.DefineStore("counter", func(props impact.ReadOnly[counterProps]) counter {
		count := impact.NewSignal(0, impact.Name("count"))
		parity := impact.NewDerived(func() string {
			if count.Read()%2 == 0 {
				return "even"
			}
			return "odd"
		}, impact.Name("parity"))

		save := impact.NewMutation(exec, func(ctx context.Context, c int) (int, error) {
			return c, persist(ctx, c)
		}, impact.Name("save"))

		saved := impact.NewDerived(func() string {
			switch s := save.Read(); s.Status {
			case impact.AsyncIdle:
				return "never"
			case impact.AsyncPending:
				return "saving"
			case impact.AsyncRejected:
				return "failed: " + s.Err.Error()
			default:
				return fmt.Sprintf("saved %d", s.Value)
			}
		}, impact.Name("saved"))

		return counter{
			Count:  count,
			Parity: parity,
			Saved:  saved,
			Increment: func() {
				count.Update(func(c int) int { return c + props.Peek().Step })
			},
			Reset: func() { count.Write(0) },
			Save:  func() { save.Mutate(ctx, count.Peek()) },
		}
	})
}

// actions exposes the callables of a counter by name.
func (c counter) actions() map[string]func() {
	return map[string]func(){
		"increment": c.Increment,
		"reset":     c.Reset,
		"save":      c.Save,
	}
}
