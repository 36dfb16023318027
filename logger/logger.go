// Package logger provides an llmtel.Emitter that writes GenAI events via slog.
//
// It is useful during development, or combined with the OTel log emitter:
//
//	h := llmtel.New(llmtel.WithEmitter(llmtel.MultiEmitter(
//	    llmtel.NewLogEmitter(lp),
//	    logger.New(logger.WithLogger(slog.Default())),
//	)))
package logger

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/llmtel"
)

// Event represents an event type that can be selectively enabled.
type Event int

const (
	// InputEvent enables logging of input messages at Start.
	InputEvent Event = iota
	// ChoiceEvent enables logging of output choices at Stop.
	ChoiceEvent

	eventCount // sentinel for iteration
)

type config struct {
	logger *slog.Logger
	level  slog.Level
	events map[Event]bool
}

// Option configures the logger emitter.
type Option func(*config)

// WithLogger sets a custom slog.Logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithLevel sets the level of emitted records. Default is slog.LevelInfo.
func WithLevel(level slog.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithEvents enables only the specified event types.
// When not specified, all events are enabled.
func WithEvents(events ...Event) Option {
	return func(c *config) {
		c.events = make(map[Event]bool, len(events))
		for _, e := range events {
			c.events[e] = true
		}
	}
}

// emitter implements llmtel.Emitter by logging events via slog.
type emitter struct {
	cfg config
}

// New creates a new llmtel.Emitter that logs events via slog.
func New(opts ...Option) llmtel.Emitter {
	cfg := config{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.events == nil {
		cfg.events = make(map[Event]bool, eventCount)
		for i := Event(0); i < eventCount; i++ {
			cfg.events[i] = true
		}
	}

	return &emitter{cfg: cfg}
}

func (x *emitter) logger() *slog.Logger {
	if x.cfg.logger != nil {
		return x.cfg.logger
	}
	return slog.Default()
}

func (x *emitter) enabled(e Event) bool {
	return x.cfg.events[e]
}

func invocationAttrs(inv *llmtel.Invocation, kind llmtel.EventKind) []any {
	attrs := []any{
		slog.String("event.name", llmtel.EventName(kind)),
		slog.String("run_id", inv.RunID.String()),
		slog.String(string(llmtel.KeyProviderName), inv.System),
	}
	if inv.Framework != "" {
		attrs = append(attrs, slog.String(string(llmtel.KeyFramework), inv.Framework))
	}
	if sc := inv.SpanContext(); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return attrs
}

// EmitInput logs one record per input message.
func (x *emitter) EmitInput(ctx context.Context, inv *llmtel.Invocation) error {
	if !x.enabled(InputEvent) {
		return nil
	}

	base := invocationAttrs(inv, llmtel.InputDetails)
	for _, msg := range inv.Messages {
		attrs := append(base[:len(base):len(base)], slog.Group("body",
			slog.String("type", msg.Type),
			slog.String("content", msg.Content),
		))
		x.logger().Log(ctx, x.cfg.level, "gen_ai input", attrs...)
	}
	return nil
}

// EmitChoices logs one record per output choice.
func (x *emitter) EmitChoices(ctx context.Context, inv *llmtel.Invocation) error {
	if !x.enabled(ChoiceEvent) {
		return nil
	}

	base := invocationAttrs(inv, llmtel.Choice)
	for i, gen := range inv.Generations {
		body := []any{slog.Int("index", i)}
		if gen.FinishReason != "" {
			body = append(body, slog.String("finish_reason", gen.FinishReason))
		}
		body = append(body, slog.Group("message",
			slog.String("type", gen.Type),
			slog.String("content", gen.Content),
		))

		attrs := append(base[:len(base):len(base)], slog.Group("body", body...))
		x.logger().Log(ctx, x.cfg.level, "gen_ai choice", attrs...)
	}
	return nil
}
