// Package tracing records effect runs, derived recomputes and passes as OpenTelemetry spans.
package tracing

import (
	"context"
	"time"

	"github.com/AnatoleLucet/impact"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "impact"

type Config struct {
	// TracerName is the name of the tracer resolved from the global provider (default: "impact").
	TracerName string

	// Tracer overrides the global provider.
	Tracer trace.Tracer

	// Passes also records one span per propagation pass.
	Passes bool

	// Context is the parent of every span (default: context.Background()).
	Context context.Context
}

type Option func(*Config)

func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *Config) {
		c.Tracer = tracer
	}
}

func WithPasses(enabled bool) Option {
	return func(c *Config) {
		c.Passes = enabled
	}
}

func WithContext(ctx context.Context) Option {
	return func(c *Config) {
		c.Context = ctx
	}
}

// Hooks implements impact.Hooks. Spans are recorded once a run has finished,
// backdated to when it started.
type Hooks struct {
	impact.NopHooks

	tracer trace.Tracer
	ctx    context.Context
	passes bool
}

var _ impact.Hooks = (*Hooks)(nil)

func New(opts ...Option) *Hooks {
	config := Config{
		TracerName: defaultTracerName,
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&config)
	}

	if config.Tracer == nil {
		config.Tracer = otel.Tracer(config.TracerName)
	}

	return &Hooks{
		tracer: config.Tracer,
		ctx:    config.Context,
		passes: config.Passes,
	}
}

func (h *Hooks) DerivedComputed(node impact.NodeInfo, took time.Duration, failed bool) {
	h.record("impact.derived", node, took, failed)
}

func (h *Hooks) EffectRan(node impact.NodeInfo, took time.Duration, failed bool) {
	h.record("impact.effect", node, took, failed)
}

func (h *Hooks) PassCompleted(sources, reactions int, took time.Duration) {
	if !h.passes {
		return
	}

	end := time.Now()
	_, span := h.tracer.Start(h.ctx, "impact.pass",
		trace.WithTimestamp(end.Add(-took)),
		trace.WithAttributes(
			attribute.Int("impact.pass.sources", sources),
			attribute.Int("impact.pass.reactions", reactions),
		),
	)
	span.End(trace.WithTimestamp(end))
}

func (h *Hooks) record(name string, node impact.NodeInfo, took time.Duration, failed bool) {
	end := time.Now()

	attrs := []attribute.KeyValue{
		attribute.Int64("impact.node.id", int64(node.ID)),
		attribute.String("impact.node.kind", node.Kind.String()),
	}
	if node.Name != "" {
		attrs = append(attrs, attribute.String("impact.node.name", node.Name))
	}

	_, span := h.tracer.Start(h.ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(end.Add(-took)),
		trace.WithAttributes(attrs...),
	)

	if failed {
		span.SetStatus(codes.Error, "run panicked")
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End(trace.WithTimestamp(end))
}
