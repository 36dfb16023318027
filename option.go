package llmtel

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type config struct {
	tracerProvider trace.TracerProvider
	loggerProvider log.LoggerProvider
	meterProvider  metric.MeterProvider

	policy  EmissionPolicy
	emitter Emitter

	logger        *slog.Logger
	defaultSystem string
	now           func() time.Time
}

// Option is a functional option for configuring the Handler.
type Option func(*config)

// WithTracerProvider sets an explicit TracerProvider.
// If not set, the global TracerProvider is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) {
		c.tracerProvider = tp
	}
}

// WithLoggerProvider sets the LoggerProvider used by the full emission policy.
// If not set, the global LoggerProvider is used.
func WithLoggerProvider(lp log.LoggerProvider) Option {
	return func(c *config) {
		c.loggerProvider = lp
	}
}

// WithMeterProvider sets the MeterProvider for duration and token usage
// histograms. If not set, the global MeterProvider is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) {
		c.meterProvider = mp
	}
}

// WithEmissionPolicy sets the emission policy. Default is EmitSpanOnly.
func WithEmissionPolicy(p EmissionPolicy) Option {
	return func(c *config) {
		c.policy = p
	}
}

// WithFullEmission is a shorthand of WithEmissionPolicy(EmitFull).
func WithFullEmission() Option {
	return WithEmissionPolicy(EmitFull)
}

// WithEmitter sets the emission strategy explicitly. It takes precedence over
// the emission policy.
func WithEmitter(e Emitter) Option {
	return func(c *config) {
		c.emitter = e
	}
}

// WithLogger sets a slog.Logger for the Handler's own diagnostics.
// Default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithDefaultSystem sets the system label used when Start is called without
// WithSystem. Default is DefaultSystem ("unknown").
func WithDefaultSystem(system string) Option {
	return func(c *config) {
		c.defaultSystem = system
	}
}

// WithClock replaces time.Now for invocation and span timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

type startConfig struct {
	system    string
	framework string
	parent    uuid.UUID
	attrs     []attribute.KeyValue
}

// StartOption configures a single Start call.
type StartOption func(*startConfig)

// WithSystem sets the provider/system identifier, e.g. "openai".
// It names the span "<system>.chat".
func WithSystem(system string) StartOption {
	return func(c *startConfig) {
		c.system = system
	}
}

// WithFramework sets the framework identifier. The gen_ai.framework key is
// omitted when it is not set.
func WithFramework(framework string) StartOption {
	return func(c *startConfig) {
		c.framework = framework
	}
}

// WithAttributes adds extra attributes at Start. They override the base
// attributes on key collision.
func WithAttributes(kv ...attribute.KeyValue) StartOption {
	return func(c *startConfig) {
		c.attrs = append(c.attrs, kv...)
	}
}

// WithParentRunID makes the invocation span a child of the span of another
// OPEN invocation.
func WithParentRunID(id uuid.UUID) StartOption {
	return func(c *startConfig) {
		c.parent = id
	}
}
