package impact

import (
	"github.com/AnatoleLucet/impact/internal"
	"github.com/go-logr/logr"
)

// Hooks observes the runtime: writes, recomputes, effect runs, passes and scopes.
type Hooks = internal.Hooks

// NopHooks ignores every event. Embed it to implement a subset of Hooks.
type NopHooks = internal.NopHooks

type NodeInfo = internal.Info

type NodeKind = internal.NodeKind

const (
	KindSignal   = internal.KindSignal
	KindDerived  = internal.KindDerived
	KindEffect   = internal.KindEffect
	KindConsumer = internal.KindConsumer
)

// DefaultMaxPasses is the number of passes a single update may chain before it is reported as a cycle.
const DefaultMaxPasses = internal.DefaultMaxPasses

// Config holds process-wide runtime settings.
type Config struct {
	// Logger receives scope lifecycle at V(1), deferred writes and passes at V(2), and cycles as errors.
	Logger logr.Logger

	Hooks []Hooks

	// MaxPasses bounds how many times writes made by effects may re-trigger propagation
	// before the write panics with ErrPropagationCycle.
	MaxPasses int
}

func DefaultConfig() Config {
	return Config{
		Logger:    logr.Discard(),
		MaxPasses: DefaultMaxPasses,
	}
}

// Configure replaces the runtime settings of every goroutine. Call it once at startup.
func Configure(c Config) {
	cfg := internal.Config{
		Logger:    c.Logger,
		MaxPasses: c.MaxPasses,
	}

	switch len(c.Hooks) {
	case 0:
	case 1:
		cfg.Hooks = c.Hooks[0]
	default:
		cfg.Hooks = internal.MultiHooks(c.Hooks)
	}

	internal.SetConfig(cfg)
}

func logger() logr.Logger {
	return internal.CurrentConfig().Logger
}
