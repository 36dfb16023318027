package llmtel

import "github.com/google/uuid"

// Registry internals for testing
type TestRegistry = registry

var NewTestRegistry = newRegistry

func (r *registry) Register(inv *Invocation) error { return r.register(inv) }

func (r *registry) Take(runID uuid.UUID) (*Invocation, error) { return r.take(runID) }

func (r *registry) Len() int { return r.len() }

var FinishReasons = finishReasons
