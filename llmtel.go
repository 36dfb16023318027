// Package llmtel instruments LLM invocations with OpenTelemetry.
//
// Callers notify a Handler when an LLM call starts and when it stops. The
// Handler correlates both notifications by run ID, opens a CLIENT span named
// "<system>.chat" for the lifetime of the call and, with the full emission
// policy, emits one structured log record per input message and per output
// choice.
//
// Basic usage with global providers:
//
//	h := llmtel.New()
//	runID := uuid.New()
//	if err := h.Start(ctx, runID, msgs, llmtel.WithSystem("openai")); err != nil {
//	    return err
//	}
//	// ... call the LLM ...
//	inv, err := h.Stop(ctx, runID, gens)
//
// With structured log events:
//
//	h := llmtel.New(
//	    llmtel.WithTracerProvider(tp),
//	    llmtel.WithLoggerProvider(lp),
//	    llmtel.WithFullEmission(),
//	)
package llmtel

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "github.com/m-mizutani/llmtel"
)

// Handler tracks in-flight LLM invocations and emits their telemetry.
// It is safe for concurrent use across distinct run IDs. Concurrent calls
// for the same run ID are the caller's responsibility to avoid.
type Handler struct {
	tracer        trace.Tracer
	emitter       Emitter
	policy        EmissionPolicy
	metrics       *instruments
	registry      *registry
	logger        *slog.Logger
	defaultSystem string
	now           func() time.Time
}

// New creates a Handler. Providers not given via options are taken from the
// OTel globals at this point. The emission policy is fixed for the lifetime of
// the Handler.
func New(opts ...Option) *Handler {
	cfg := config{
		logger:        slog.New(slog.DiscardHandler),
		defaultSystem: DefaultSystem,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.tracerProvider == nil {
		cfg.tracerProvider = otel.GetTracerProvider()
	}
	if cfg.loggerProvider == nil {
		cfg.loggerProvider = global.GetLoggerProvider()
	}
	if cfg.meterProvider == nil {
		cfg.meterProvider = otel.GetMeterProvider()
	}

	emitter := cfg.emitter
	if emitter == nil {
		switch cfg.policy {
		case EmitFull:
			emitter = NewLogEmitter(cfg.loggerProvider)
		default:
			emitter = SpanOnlyEmitter()
		}
	}

	metrics, err := newInstruments(cfg.meterProvider)
	if err != nil {
		cfg.logger.Warn("failed to create metric instruments, metrics disabled", "error", err)
		metrics = noopInstruments()
	}

	return &Handler{
		tracer:        cfg.tracerProvider.Tracer(tracerName),
		emitter:       emitter,
		policy:        cfg.policy,
		metrics:       metrics,
		registry:      newRegistry(),
		logger:        cfg.logger,
		defaultSystem: cfg.defaultSystem,
		now:           cfg.now,
	}
}

// Policy returns the emission policy the Handler was created with. When an
// explicit Emitter was set, it reports the configured policy regardless.
func (h *Handler) Policy() EmissionPolicy {
	return h.policy
}

// InFlight returns the number of OPEN invocations.
func (h *Handler) InFlight() int {
	return h.registry.len()
}

// Start opens an invocation for runID: it registers the record, opens the
// span and, under the full policy, emits one input-details event per message.
//
// Start fails with ErrDuplicateInvocation if runID is already OPEN; the
// existing invocation is not modified and no span is opened. If the emitter
// fails, the invocation stays OPEN and the error is returned.
func (h *Handler) Start(ctx context.Context, runID uuid.UUID, messages []Message, opts ...StartOption) error {
	if runID == uuid.Nil {
		return goerr.Wrap(ErrNilRunID, "failed to start invocation")
	}

	var sc startConfig
	for _, opt := range opts {
		opt(&sc)
	}

	system := systemOrDefault(sc.system, h.defaultSystem)
	attrs := NewAttributes(BaseAttributes(system, sc.framework, OperationChat)...)
	attrs.Set(sc.attrs...)

	inv := &Invocation{
		RunID:       runID,
		ParentRunID: sc.parent,
		System:      system,
		Framework:   sc.framework,
		Messages:    slices.Clone(messages),
		Attributes:  attrs,
		StartTime:   h.now(),
	}

	if err := h.registry.register(inv); err != nil {
		return err
	}

	parentCtx := ctx
	if sc.parent != uuid.Nil {
		if parent, ok := h.registry.spanOf(sc.parent); ok {
			parentCtx = trace.ContextWithSpan(ctx, parent)
		}
	}

	_, span := h.tracer.Start(parentCtx, spanName(system),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithTimestamp(inv.StartTime),
		trace.WithAttributes(attrs.KeyValues()...),
	)
	h.registry.attach(inv, span)

	h.logger.Debug("invocation started",
		"run_id", runID,
		"system", system,
		"messages", len(messages),
	)

	if err := h.emitter.EmitInput(contextWithInvocation(ctx, inv), inv); err != nil {
		h.logger.Warn("failed to emit input events", "run_id", runID, "error", err)
		return goerr.Wrap(err, "failed to emit input events", goerr.V("run_id", runID))
	}

	return nil
}

// Stop closes the invocation for runID and returns its completed record.
//
// attrs are merged into the record attributes and override start-time values
// on key collision. The merged attributes are set on the span before it ends.
// Under the full policy one choice event is emitted per generation, indexed by
// its position in generations.
//
// Stop fails with ErrInvocationNotFound if runID is not OPEN. If the emitter
// fails, the record has already been removed and the span ended; the record is
// returned together with the error.
func (h *Handler) Stop(ctx context.Context, runID uuid.UUID, generations []ChatGeneration, attrs ...attribute.KeyValue) (*Invocation, error) {
	inv, err := h.registry.take(runID)
	if err != nil {
		return nil, err
	}

	inv.Generations = slices.Clone(generations)
	inv.Attributes.Set(attrs...)

	spanAttrs := inv.Attributes.KeyValues()
	if _, ok := inv.Attributes.Get(KeyResponseFinishReasons); !ok {
		if reasons := finishReasons(inv.Generations); len(reasons) > 0 {
			spanAttrs = append(spanAttrs, KeyResponseFinishReasons.StringSlice(reasons))
		}
	}

	inv.EndTime = h.endTime(inv.StartTime)
	span := spanOf(inv)
	span.SetAttributes(spanAttrs...)
	span.End(trace.WithTimestamp(inv.EndTime))

	h.metrics.record(ctx, inv, "")

	h.logger.Debug("invocation stopped",
		"run_id", runID,
		"generations", len(generations),
		"duration", inv.Duration(),
	)

	if err := h.emitter.EmitChoices(contextWithInvocation(ctx, inv), inv); err != nil {
		h.logger.Warn("failed to emit choice events", "run_id", runID, "error", err)
		return inv, goerr.Wrap(err, "failed to emit choice events", goerr.V("run_id", runID))
	}

	return inv, nil
}

// Fail closes the invocation for runID as failed. The span gets an error
// status, the error.type attribute and an exception event for cause. No choice
// events are emitted.
func (h *Handler) Fail(ctx context.Context, runID uuid.UUID, cause error, attrs ...attribute.KeyValue) (*Invocation, error) {
	inv, err := h.registry.take(runID)
	if err != nil {
		return nil, err
	}

	errType := errorType(cause)
	inv.Attributes.Set(attrs...)
	inv.Attributes.Set(KeyErrorType.String(errType))
	inv.EndTime = h.endTime(inv.StartTime)

	span := spanOf(inv)
	span.SetAttributes(inv.Attributes.KeyValues()...)
	if cause != nil {
		span.RecordError(cause, trace.WithTimestamp(inv.EndTime))
		span.SetStatus(codes.Error, cause.Error())
	} else {
		span.SetStatus(codes.Error, "")
	}
	span.End(trace.WithTimestamp(inv.EndTime))

	h.metrics.record(ctx, inv, errType)

	h.logger.Debug("invocation failed",
		"run_id", runID,
		"error", cause,
		"duration", inv.Duration(),
	)

	return inv, nil
}

// endTime returns the current time, forced to be strictly after start.
func (h *Handler) endTime(start time.Time) time.Time {
	end := h.now()
	if !end.After(start) {
		end = start.Add(time.Nanosecond)
	}
	return end
}

// spanOf returns the span of inv, or a no-op span if none was attached.
func spanOf(inv *Invocation) trace.Span {
	if inv.span == nil {
		return trace.SpanFromContext(context.Background())
	}
	return inv.span
}

func errorType(err error) string {
	if err == nil {
		return errorTypeOther
	}
	return fmt.Sprintf("%T", err)
}
