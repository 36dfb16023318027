package llmtel

import (
	"sync"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"go.opentelemetry.io/otel/trace"
)

// registry holds OPEN invocations keyed by run ID. Each Handler owns one.
type registry struct {
	mu      sync.Mutex
	records map[uuid.UUID]*Invocation
}

func newRegistry() *registry {
	return &registry{
		records: make(map[uuid.UUID]*Invocation),
	}
}

// register inserts inv. It fails if the run ID is already OPEN.
func (r *registry) register(inv *Invocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[inv.RunID]; ok {
		return goerr.Wrap(ErrDuplicateInvocation, "failed to register invocation", goerr.V("run_id", inv.RunID))
	}
	r.records[inv.RunID] = inv
	return nil
}

// take removes and returns the invocation for runID.
func (r *registry) take(runID uuid.UUID) (*Invocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.records[runID]
	if !ok {
		return nil, goerr.Wrap(ErrInvocationNotFound, "failed to take invocation", goerr.V("run_id", runID))
	}
	delete(r.records, runID)
	return inv, nil
}

// attach sets the span of an already registered invocation.
func (r *registry) attach(inv *Invocation, span trace.Span) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv.span = span
}

// spanOf returns the span of the OPEN invocation for runID.
func (r *registry) spanOf(runID uuid.UUID) (trace.Span, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.records[runID]
	if !ok || inv.span == nil {
		return nil, false
	}
	return inv.span, true
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
