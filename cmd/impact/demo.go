package main

import (
	"context"
	"fmt"
	"io"

	"github.com/AnatoleLucet/impact"
	"github.com/spf13/cobra"
)

func demoCmd(opts *options) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Mount a counter store and print every update",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if err := c.Validate(); err != nil {
				return err
			}

			setup(c, cmd.ErrOrStderr(), nil)
			defer impact.Release()

			return runDemo(cmd.OutOrStdout(), steps)
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 3, "number of single increments")

	return cmd
}

func runDemo(out io.Writer, steps int) error {
	// saves settle on this goroutine, when the demo drains them
	settled := make(chan func(), 1)
	exec := func(fn func()) { settled <- fn }
	store := newCounterStore(context.Background(), exec, func(ctx context.Context, count int) error { return nil })

	scope, release := impact.Open()
	defer release()

	return scope.Run(func() error {
		inst, err := store.Mount(counterProps{Step: 1})
		if err != nil {
			return err
		}
		inst.Scope().OnCleanup(func() { fmt.Fprintln(out, "unmounted") })

		c := inst.Value()
		impact.NewEffect(func() {
			fmt.Fprintf(out, "count=%d parity=%s\n", c.Count.Read(), c.Parity.Read())
		})
		impact.NewEffect(func() {
			fmt.Fprintf(out, "save: %s\n", c.Saved.Read())
		})

		for range steps {
			c.Increment()
		}

		impact.Batch(func() {
			c.Increment()
			c.Increment()
		})

		inst.SetProps(counterProps{Step: 10})
		c.Increment()
		c.Reset()

		c.Save()
		(<-settled)()

		fmt.Fprintf(out, "snapshot %v\n", inst.Snapshot())
		return nil
	})
}
