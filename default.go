package llmtel

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// EnvEmitters names the environment variable read by Default to choose the
// emission policy. See ParseEmissionPolicy for accepted values.
const EnvEmitters = "OTEL_INSTRUMENTATION_GENAI_EMITTERS"

var defaultHandler atomic.Pointer[Handler]

// Default returns the process-wide Handler used by the package-level Start,
// Stop and Fail functions. It is created on first use from the global OTel
// providers and the EnvEmitters environment variable.
func Default() *Handler {
	if h := defaultHandler.Load(); h != nil {
		return h
	}

	policy, err := ParseEmissionPolicy(os.Getenv(EnvEmitters))
	if err != nil {
		slog.Default().Warn("invalid emission policy, falling back to span only",
			"env", EnvEmitters,
			"error", err,
		)
	}

	h := New(WithEmissionPolicy(policy))
	if defaultHandler.CompareAndSwap(nil, h) {
		return h
	}
	return defaultHandler.Load()
}

// SetDefault replaces the process-wide Handler. Invocations still OPEN in the
// previous Handler can only be stopped through that Handler.
func SetDefault(h *Handler) {
	defaultHandler.Store(h)
}

// Start calls Default().Start.
func Start(ctx context.Context, runID uuid.UUID, messages []Message, opts ...StartOption) error {
	return Default().Start(ctx, runID, messages, opts...)
}

// Stop calls Default().Stop.
func Stop(ctx context.Context, runID uuid.UUID, generations []ChatGeneration, attrs ...attribute.KeyValue) (*Invocation, error) {
	return Default().Stop(ctx, runID, generations, attrs...)
}

// Fail calls Default().Fail.
func Fail(ctx context.Context, runID uuid.UUID, cause error, attrs ...attribute.KeyValue) (*Invocation, error) {
	return Default().Fail(ctx, runID, cause, attrs...)
}
