// Package config loads the YAML configuration of the impact command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Log     Log     `yaml:"log"`
	Runtime Runtime `yaml:"runtime"`
	Serve   Serve   `yaml:"serve"`
	Metrics Metrics `yaml:"metrics"`
	Tracing Tracing `yaml:"tracing"`
}

type Log struct {
	// logr verbosity: 1 logs scopes, 2 logs passes and deferred writes
	Verbosity int `yaml:"verbosity"`
}

type Runtime struct {
	MaxPasses int `yaml:"max_passes"`
}

type Serve struct {
	Addr string        `yaml:"addr"`
	Tick time.Duration `yaml:"tick"`
}

type Metrics struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

type Tracing struct {
	Enabled bool `yaml:"enabled"`
	Passes  bool `yaml:"passes"`
}

func Default() Config {
	return Config{
		Runtime: Runtime{MaxPasses: 100},
		Serve: Serve{
			Addr: ":8080",
			Tick: time.Second,
		},
		Metrics: Metrics{
			Enabled:   true,
			Namespace: "impact",
		},
	}
}

// Load reads the file at path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes data over the defaults and validates the result. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	c := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.Log.Verbosity < 0 {
		errs = append(errs, fmt.Errorf("log.verbosity must not be negative, got %d", c.Log.Verbosity))
	}
	if c.Runtime.MaxPasses < 1 {
		errs = append(errs, fmt.Errorf("runtime.max_passes must be at least 1, got %d", c.Runtime.MaxPasses))
	}
	if c.Serve.Addr == "" {
		errs = append(errs, errors.New("serve.addr is required"))
	}
	if c.Serve.Tick <= 0 {
		errs = append(errs, fmt.Errorf("serve.tick must be positive, got %s", c.Serve.Tick))
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		errs = append(errs, errors.New("metrics.namespace is required when metrics are enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}

	return nil
}
