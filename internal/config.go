package internal

import (
	"sync/atomic"

	"github.com/go-logr/logr"
)

const DefaultMaxPasses = 100

type Config struct {
	Logger logr.Logger
	Hooks  Hooks

	// consecutive passes a single drain may run before it is treated as a cycle
	MaxPasses int
}

var config atomic.Pointer[Config]

func init() {
	SetConfig(Config{})
}

// SetConfig replaces the process-wide settings, filling in defaults.
func SetConfig(c Config) {
	if c.Logger.GetSink() == nil {
		c.Logger = logr.Discard()
	}
	if c.Hooks == nil {
		c.Hooks = NopHooks{}
	}
	if c.MaxPasses <= 0 {
		c.MaxPasses = DefaultMaxPasses
	}

	config.Store(&c)
}

func CurrentConfig() Config {
	return *config.Load()
}
