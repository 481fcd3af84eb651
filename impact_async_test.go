package impact

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queueExecutor() (Executor, chan func()) {
	queue := make(chan func(), 4)
	return func(fn func()) { queue <- fn }, queue
}

func TestAsync(t *testing.T) {
	t.Run("pending then fulfilled", func(t *testing.T) {
		events := []string{}
		exec, queue := queueExecutor()

		user := NewAsync[string](exec)
		NewEffect(func() {
			s := user.Read()
			events = append(events, fmt.Sprintf("%s %q", s.Status, s.Value))
		})

		user.Run(context.Background(), func(ctx context.Context) (string, error) {
			return "ada", nil
		})
		assert.True(t, user.Pending())

		(<-queue)()

		assert.False(t, user.Pending())
		assert.Equal(t, []string{`idle ""`, `pending ""`, `fulfilled "ada"`}, events)
	})

	t.Run("pending then rejected keeps the last value", func(t *testing.T) {
		events := []string{}
		exec, queue := queueExecutor()
		errOffline := errors.New("offline")

		balance := NewAsync[int](exec)
		balance.Resolve(10)

		NewEffect(func() {
			s := balance.Read()
			events = append(events, fmt.Sprintf("%s %d", s.Status, s.Value))
		})

		balance.Run(context.Background(), func(ctx context.Context) (int, error) {
			return 0, errOffline
		})
		(<-queue)()

		state := balance.Peek()
		assert.Equal(t, AsyncRejected, state.Status)
		assert.ErrorIs(t, state.Err, errOffline)
		assert.Equal(t, []string{"fulfilled 10", "pending 10", "rejected 10"}, events)
	})

	t.Run("a new run aborts the superseded one", func(t *testing.T) {
		events := []string{}
		exec, queue := queueExecutor()
		aborted := make(chan error, 1)

		search := NewAsync[string](exec)
		NewEffect(func() {
			s := search.Read()
			events = append(events, fmt.Sprintf("%s %q", s.Status, s.Value))
		})

		search.Run(context.Background(), func(ctx context.Context) (string, error) {
			<-ctx.Done()
			aborted <- ctx.Err()
			return "stale", ctx.Err()
		})
		search.Run(context.Background(), func(ctx context.Context) (string, error) {
			return "fresh", nil
		})

		require.ErrorIs(t, <-aborted, context.Canceled)

		(<-queue)()
		(<-queue)()

		assert.Equal(t, AsyncFulfilled, search.Peek().Status)
		assert.Equal(t, []string{
			`idle ""`,
			`pending ""`,
			`pending ""`,
			`fulfilled "fresh"`,
		}, events)
	})

	t.Run("resolve aborts the run in flight", func(t *testing.T) {
		exec, queue := queueExecutor()

		name := NewAsync[string](exec)
		name.Run(context.Background(), func(ctx context.Context) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})
		name.Resolve("grace")

		(<-queue)()

		assert.Equal(t, AsyncState[string]{Status: AsyncFulfilled, Value: "grace"}, name.Peek())
	})

	t.Run("closing the owner aborts the run in flight", func(t *testing.T) {
		exec, queue := queueExecutor()

		scope, release := Open()

		var upload *Async[int]
		require.NoError(t, scope.Run(func() error {
			upload = NewAsync[int](exec)
			upload.Run(context.Background(), func(ctx context.Context) (int, error) {
				<-ctx.Done()
				return 0, ctx.Err()
			})
			return nil
		}))

		release()
		(<-queue)()

		assert.Equal(t, AsyncPending, upload.Peek().Status)

		upload.Resolve(1)
		assert.Equal(t, AsyncPending, upload.Peek().Status)
	})

	t.Run("status names", func(t *testing.T) {
		assert.Equal(t, "idle", AsyncIdle.String())
		assert.Equal(t, "pending", AsyncPending.String())
		assert.Equal(t, "fulfilled", AsyncFulfilled.String())
		assert.Equal(t, "rejected", AsyncRejected.String())
		assert.Equal(t, "unknown", AsyncStatus(9).String())
	})
}

func TestQuery(t *testing.T) {
	t.Run("fetches on creation and refetches on invalidate", func(t *testing.T) {
		events := []string{}
		exec, queue := queueExecutor()
		fetches := 0

		todos := NewQuery(context.Background(), exec, func(ctx context.Context) (int, error) {
			fetches++
			return fetches, nil
		})

		NewEffect(func() {
			s := todos.Read()
			events = append(events, fmt.Sprintf("%s %d", s.Status, s.Value))
		})

		(<-queue)()
		todos.Invalidate(context.Background())
		(<-queue)()

		assert.Equal(t, []string{"pending 0", "fulfilled 1", "pending 1", "fulfilled 2"}, events)
	})
}

func TestMutation(t *testing.T) {
	t.Run("settles with the submitted input", func(t *testing.T) {
		exec, queue := queueExecutor()

		rename := NewMutation(exec, func(ctx context.Context, name string) (int, error) {
			if name == "" {
				return 0, errors.New("empty name")
			}
			return len(name), nil
		})
		assert.Equal(t, AsyncIdle, rename.Peek().Status)

		rename.Mutate(context.Background(), "")
		(<-queue)()
		assert.Equal(t, AsyncRejected, rename.Peek().Status)
		assert.EqualError(t, rename.Peek().Err, "empty name")

		rename.Mutate(context.Background(), "lovelace")
		(<-queue)()
		assert.Equal(t, AsyncState[int]{Status: AsyncFulfilled, Value: 8}, rename.Peek())
	})
}
