package impact

import (
	"fmt"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHooks struct {
	NopHooks
	events []string
}

func (h *recordingHooks) SignalWritten(n NodeInfo, version uint64) {
	h.events = append(h.events, fmt.Sprintf("write %s v%d", n.Name, version))
}

func (h *recordingHooks) WriteDeferred(n NodeInfo) {
	h.events = append(h.events, fmt.Sprintf("deferred %s", n.Name))
}

func (h *recordingHooks) EffectRan(n NodeInfo, _ time.Duration, failed bool) {
	h.events = append(h.events, fmt.Sprintf("effect %s failed=%t", n.Name, failed))
}

func (h *recordingHooks) DerivedComputed(n NodeInfo, _ time.Duration, failed bool) {
	h.events = append(h.events, fmt.Sprintf("derived %s failed=%t", n.Name, failed))
}

func (h *recordingHooks) PassCompleted(sources, reactions int, _ time.Duration) {
	h.events = append(h.events, fmt.Sprintf("pass %d/%d", sources, reactions))
}

func (h *recordingHooks) ScopeOpened(string) { h.events = append(h.events, "scope opened") }
func (h *recordingHooks) ScopeClosed(string) { h.events = append(h.events, "scope closed") }

func configure(t *testing.T, c Config) {
	t.Helper()

	c.Logger = testr.NewWithOptions(t, testr.Options{Verbosity: 2})
	Configure(c)
	t.Cleanup(func() { Configure(DefaultConfig()) })
}

func TestPropagation(t *testing.T) {
	t.Run("writes made by effects are deferred to the next pass", func(t *testing.T) {
		hooks := &recordingHooks{}
		configure(t, Config{Hooks: []Hooks{hooks}})

		s, release := Open()
		s.Run(func() error {
			count := NewSignal(0, Name("count"))
			double := NewSignal(0, Name("double"))

			NewEffect(func() {
				double.Write(count.Read() * 2)
			}, Name("mirror"))

			count.Write(1)
			assert.Equal(t, 2, double.Peek())
			return nil
		})
		release()

		assert.Equal(t, []string{
			"scope opened",
			"write double v1",
			"pass 1/0",
			"effect mirror failed=false",
			"write count v1",
			"write double v2",
			"deferred double",
			"effect mirror failed=false",
			"pass 1/1",
			"pass 1/0",
			"scope closed",
		}, hooks.events)
	})

	t.Run("deferred writes are visible right away", func(t *testing.T) {
		log := []string{}

		count := NewSignal(0)
		mirror := NewSignal(0)
		double := NewDerived(func() int { return mirror.Read() * 2 })

		NewEffect(func() {
			mirror.Write(count.Read())
			log = append(log, fmt.Sprintf("mirror %d double %d", mirror.Read(), double.Read()))
		})

		count.Write(3)

		assert.Equal(t, []string{"mirror 0 double 0", "mirror 3 double 6"}, log)
	})

	t.Run("cycles are reported", func(t *testing.T) {
		configure(t, Config{MaxPasses: 10})

		a := NewSignal(0)
		b := NewSignal(0)

		NewEffect(func() { b.Write(a.Read() + 1) })
		NewEffect(func() { a.Write(b.Read() + 1) })

		defer func() {
			err, ok := recover().(error)
			require.True(t, ok)
			assert.ErrorIs(t, err, ErrPropagationCycle)

			// the runtime is usable again
			c := NewSignal(0)
			seen := 0
			NewEffect(func() { seen = c.Read() })
			c.Write(1)
			assert.Equal(t, 1, seen)
		}()

		a.Write(10)
	})

	t.Run("failed runs are reported", func(t *testing.T) {
		hooks := &recordingHooks{}
		configure(t, Config{Hooks: []Hooks{hooks, NopHooks{}}})

		fail := NewSignal(false, Name("fail"))
		d := NewDerived(func() bool {
			if fail.Read() {
				panic("oops")
			}
			return true
		}, Name("check"))

		d.Read()
		fail.Write(true)
		assert.Panics(t, func() { d.Read() })

		assert.Equal(t, []string{
			"derived check failed=false",
			"write fail v1",
			"pass 1/0",
			"derived check failed=true",
		}, hooks.events)
	})
}
