package impact

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignal(t *testing.T) {
	t.Run("read and write", func(t *testing.T) {
		count := NewSignal(0)
		assert.Equal(t, 0, count.Read())

		count.Write(10)
		assert.Equal(t, 10, count.Read())
	})

	t.Run("concurrent read/write", func(t *testing.T) {
		var wg sync.WaitGroup
		count := NewSignal(0)

		wg.Go(func() {
			count.Write(count.Read() + 1)
			Release()
		})

		wg.Wait()
		assert.Equal(t, 1, count.Read())
	})

	t.Run("zero values", func(t *testing.T) {
		err := NewSignal[error](nil)
		assert.Nil(t, err.Read())

		err.Write(errors.New("oops"))
		assert.EqualError(t, err.Read(), "oops")

		err.Write(nil)
		assert.Nil(t, err.Read())
	})

	t.Run("every write notifies", func(t *testing.T) {
		log := []string{}

		name := NewSignal("foo")
		NewEffect(func() {
			log = append(log, name.Read())
		})

		name.Write("foo")
		name.Write("foo")

		assert.Equal(t, []string{"foo", "foo", "foo"}, log)
		assert.Equal(t, uint64(2), name.Version())
	})

	t.Run("skips equal writes when asked to", func(t *testing.T) {
		log := []string{}

		name := NewSignal("foo", SkipEqual[string]())
		NewEffect(func() {
			log = append(log, name.Read())
		})

		name.Write("foo")
		name.Write("bar")
		name.Write("bar")

		assert.Equal(t, []string{"foo", "bar"}, log)
		assert.Equal(t, uint64(1), name.Version())
	})

	t.Run("custom equality", func(t *testing.T) {
		log := []int{}

		type point struct{ x, y int }
		p := NewSignal(point{1, 2}, Equal(func(a, b point) bool { return a.x == b.x }))
		NewEffect(func() {
			log = append(log, p.Read().y)
		})

		p.Write(point{1, 3})
		p.Write(point{2, 4})

		assert.Equal(t, []int{2, 4}, log)
		assert.Equal(t, point{2, 4}, p.Peek())
	})

	t.Run("update", func(t *testing.T) {
		count := NewSignal(1, Name("count"))
		count.Update(func(c int) int { return c + 41 })

		assert.Equal(t, 42, count.Peek())
		assert.Equal(t, "count", count.Name())
	})

	t.Run("peek does not track", func(t *testing.T) {
		log := []string{}

		count := NewSignal(0)
		NewEffect(func() {
			log = append(log, fmt.Sprintf("effect %d", count.Peek()))
		})

		count.Write(1)

		assert.Equal(t, []string{"effect 0"}, log)
	})

	t.Run("destroyed with its scope", func(t *testing.T) {
		log := []int{}

		scope, release := Open()

		var count *Signal[int]
		scope.Run(func() error {
			count = NewSignal(0)
			return nil
		})

		NewEffect(func() {
			log = append(log, count.Read())
		})

		release()
		count.Write(1)

		assert.Equal(t, []int{0}, log)
		assert.Equal(t, 1, count.Peek())
	})
}
