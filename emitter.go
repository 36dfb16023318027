package llmtel

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/trace"
)

// Emitter receives the structured events of an invocation. It is the strategy
// behind the emission policy and is fixed when the Handler is created.
//
// EmitInput is called at Start after the span is open. EmitChoices is called
// at Stop after the span has ended. ctx carries the invocation span in both
// cases so records can be correlated with it.
type Emitter interface {
	EmitInput(ctx context.Context, inv *Invocation) error
	EmitChoices(ctx context.Context, inv *Invocation) error
}

// EmissionPolicy selects which telemetry is produced besides the span.
type EmissionPolicy int

const (
	// EmitSpanOnly puts everything on the span. No log records are emitted.
	EmitSpanOnly EmissionPolicy = iota
	// EmitFull additionally emits one log record per input message and one per
	// output choice.
	EmitFull
)

// String returns the string representation of the policy.
func (x EmissionPolicy) String() string {
	switch x {
	case EmitFull:
		return "full"
	default:
		return "span"
	}
}

// ParseEmissionPolicy parses a policy name. Accepted values are "span",
// "span_only", "full" and "span_metric_event" (case-insensitive). An empty
// string yields EmitSpanOnly.
func ParseEmissionPolicy(s string) (EmissionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "span", "span_only", "span_metric":
		return EmitSpanOnly, nil
	case "full", "span_metric_event":
		return EmitFull, nil
	}
	return EmitSpanOnly, goerr.New("unknown emission policy", goerr.V("policy", s))
}

type spanOnlyEmitter struct{}

// SpanOnlyEmitter returns an Emitter that emits nothing.
func SpanOnlyEmitter() Emitter { return spanOnlyEmitter{} }

func (spanOnlyEmitter) EmitInput(context.Context, *Invocation) error   { return nil }
func (spanOnlyEmitter) EmitChoices(context.Context, *Invocation) error { return nil }

const loggerName = "github.com/m-mizutani/llmtel"

// logEmitter emits GenAI events through the OpenTelemetry Logs API.
type logEmitter struct {
	logger log.Logger
}

// NewLogEmitter returns an Emitter writing one log record per input message
// and per output choice to a logger obtained from lp.
func NewLogEmitter(lp log.LoggerProvider) Emitter {
	return &logEmitter{
		logger: lp.Logger(loggerName),
	}
}

func (x *logEmitter) EmitInput(ctx context.Context, inv *Invocation) error {
	attrs := EventAttributes(InputDetails, inv.System, inv.Framework)
	for _, msg := range inv.Messages {
		x.emit(ctx, EventInputDetails, MessageBody(msg), attrs)
	}
	return nil
}

func (x *logEmitter) EmitChoices(ctx context.Context, inv *Invocation) error {
	attrs := EventAttributes(Choice, inv.System, inv.Framework)
	for i, gen := range inv.Generations {
		x.emit(ctx, EventChoice, GenerationBody(gen, i), attrs)
	}
	return nil
}

func (x *logEmitter) emit(ctx context.Context, name string, body log.Value, attrs []log.KeyValue) {
	var r log.Record
	now := time.Now()
	r.SetTimestamp(now)
	r.SetObservedTimestamp(now)
	r.SetEventName(name)
	r.SetSeverity(log.SeverityInfo)
	r.SetBody(body)
	r.AddAttributes(attrs...)
	x.logger.Emit(ctx, r)
}

// multiEmitter fans out events to several emitters.
type multiEmitter struct {
	emitters []Emitter
}

// MultiEmitter returns an Emitter forwarding every event to all emitters.
// All emitters are called even if one fails; errors are joined.
func MultiEmitter(emitters ...Emitter) Emitter {
	return &multiEmitter{emitters: emitters}
}

func (m *multiEmitter) EmitInput(ctx context.Context, inv *Invocation) error {
	var errs []error
	for _, e := range m.emitters {
		if err := e.EmitInput(ctx, inv); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multiEmitter) EmitChoices(ctx context.Context, inv *Invocation) error {
	var errs []error
	for _, e := range m.emitters {
		if err := e.EmitChoices(ctx, inv); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// contextWithInvocation returns ctx carrying the invocation span.
func contextWithInvocation(ctx context.Context, inv *Invocation) context.Context {
	if inv.span == nil {
		return ctx
	}
	return trace.ContextWithSpan(ctx, inv.span)
}
