// Package metrics exports runtime activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/AnatoleLucet/impact"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the Prometheus hooks.
type Config struct {
	// Namespace is the metrics namespace (default: "impact").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for run durations.
	// Default: exponential from 10µs.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

type Option func(*Config)

func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "impact",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Hooks implements impact.Hooks with Prometheus collectors.
type Hooks struct {
	writes        *prometheus.CounterVec
	deferred      prometheus.Counter
	runs          *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	passes        prometheus.Counter
	passReactions prometheus.Histogram
	openScopes    prometheus.Gauge
}

var _ impact.Hooks = (*Hooks)(nil)

// New registers the collectors and returns the hooks, pass them to impact.Configure.
func New(opts ...Option) *Hooks {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Hooks{
		writes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "signal_writes_total",
			Help:        "Total number of notifying signal writes",
			ConstLabels: config.ConstLabels,
		}, []string{"signal"}),

		deferred: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "deferred_writes_total",
			Help:        "Total number of writes made during a pass or a computation",
			ConstLabels: config.ConstLabels,
		}),

		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "runs_total",
			Help:        "Total number of effect runs and derived recomputes",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "status"}),

		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "run_duration_seconds",
			Help:        "Effect run and derived recompute duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		passes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "passes_total",
			Help:        "Total number of propagation passes",
			ConstLabels: config.ConstLabels,
		}),

		passReactions: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pass_reactions",
			Help:        "Effects and consumers run per pass",
			ConstLabels: config.ConstLabels,
			Buckets:     prometheus.LinearBuckets(0, 5, 10),
		}),

		openScopes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "open_scopes",
			Help:        "Number of scopes currently open",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (h *Hooks) SignalWritten(node impact.NodeInfo, _ uint64) {
	h.writes.WithLabelValues(label(node)).Inc()
}

func (h *Hooks) DerivedComputed(node impact.NodeInfo, took time.Duration, failed bool) {
	h.observeRun(node, took, failed)
}

func (h *Hooks) EffectRan(node impact.NodeInfo, took time.Duration, failed bool) {
	h.observeRun(node, took, failed)
}

func (h *Hooks) PassCompleted(_, reactions int, _ time.Duration) {
	h.passes.Inc()
	h.passReactions.Observe(float64(reactions))
}

func (h *Hooks) WriteDeferred(impact.NodeInfo) {
	h.deferred.Inc()
}

func (h *Hooks) ScopeOpened(string) { h.openScopes.Inc() }
func (h *Hooks) ScopeClosed(string) { h.openScopes.Dec() }

func (h *Hooks) observeRun(node impact.NodeInfo, took time.Duration, failed bool) {
	status := "ok"
	if failed {
		status = "failed"
	}

	kind := node.Kind.String()
	h.runs.WithLabelValues(kind, status).Inc()
	h.runDuration.WithLabelValues(kind).Observe(took.Seconds())
}

// unnamed signals share one label to keep cardinality bounded
func label(node impact.NodeInfo) string {
	if node.Name == "" {
		return "unnamed"
	}

	return node.Name
}
