package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/AnatoleLucet/impact"
	"github.com/AnatoleLucet/impact/internal/config"
	"github.com/AnatoleLucet/impact/metrics"
	"github.com/AnatoleLucet/impact/tracing"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// flags shared by every command, applied over the config file
type options struct {
	configPath string
	verbosity  int
	maxPasses  int
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "impact",
		Short: "Run reactive stores built with impact",
		Long: `impact runs stores built on signals, derived values and effects.

  demo   mounts a counter store and prints every update
  serve  keeps a store ticking and exposes snapshots and metrics over HTTP`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().IntVarP(&opts.verbosity, "verbosity", "v", 0, "log verbosity (1: scopes, 2: passes and deferred writes)")
	cmd.PersistentFlags().IntVar(&opts.maxPasses, "max-passes", 0, "passes an update may chain before it is reported as a cycle")

	cmd.AddCommand(
		demoCmd(opts),
		serveCmd(opts),
	)

	return cmd
}

// load reads the config file and applies the flags set on the command line.
// The result is not validated, commands validate once their own flags are applied.
func (o *options) load(cmd *cobra.Command) (config.Config, error) {
	c, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("verbosity") {
		c.Log.Verbosity = o.verbosity
	}
	if flags.Changed("max-passes") {
		c.Runtime.MaxPasses = o.maxPasses
	}

	return c, nil
}

// setup configures the runtime: a stdr logger writing to out, and the metrics and tracing hooks.
// Metrics are registered on reg, and skipped when it is nil.
func setup(c config.Config, out io.Writer, reg prometheus.Registerer) logr.Logger {
	stdr.SetVerbosity(c.Log.Verbosity)
	logger := stdr.New(log.New(out, "", log.LstdFlags)).WithName("impact")

	var hooks []impact.Hooks
	if c.Metrics.Enabled && reg != nil {
		hooks = append(hooks, metrics.New(
			metrics.WithRegistry(reg),
			metrics.WithNamespace(c.Metrics.Namespace),
		))
	}
	if c.Tracing.Enabled {
		hooks = append(hooks, tracing.New(tracing.WithPasses(c.Tracing.Passes)))
	}

	impact.Configure(impact.Config{
		Logger:    logger,
		Hooks:     hooks,
		MaxPasses: c.Runtime.MaxPasses,
	})

	return logger
}
