package llmtel

import (
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Message is one input turn passed to the LLM.
type Message struct {
	Content string `json:"content"`
	// Type is the role of the turn, e.g. "user" or "Human".
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// ChatGeneration is one output candidate returned by the LLM. Its index is the
// position in the slice given to Stop.
type ChatGeneration struct {
	Content      string `json:"content"`
	Type         string `json:"type"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// Attributes is an insertion-ordered set of attributes keyed by attribute.Key.
// Setting an existing key replaces its value and keeps its position.
type Attributes struct {
	keys   []attribute.Key
	values map[attribute.Key]attribute.Value
}

// NewAttributes creates Attributes from the given key-values. Later entries win.
func NewAttributes(kv ...attribute.KeyValue) *Attributes {
	a := &Attributes{
		values: make(map[attribute.Key]attribute.Value, len(kv)),
	}
	a.Set(kv...)
	return a
}

// Set adds or replaces the given key-values. Invalid key-values (empty key or
// INVALID value type) are ignored.
func (x *Attributes) Set(kv ...attribute.KeyValue) {
	if x.values == nil {
		x.values = make(map[attribute.Key]attribute.Value, len(kv))
	}
	for _, v := range kv {
		if !v.Valid() {
			continue
		}
		if _, ok := x.values[v.Key]; !ok {
			x.keys = append(x.keys, v.Key)
		}
		x.values[v.Key] = v.Value
	}
}

// Merge copies all entries of other into x. Values of other win on collision.
func (x *Attributes) Merge(other *Attributes) {
	if other == nil {
		return
	}
	x.Set(other.KeyValues()...)
}

// Get returns the value for key.
func (x *Attributes) Get(key attribute.Key) (attribute.Value, bool) {
	if x == nil || x.values == nil {
		return attribute.Value{}, false
	}
	v, ok := x.values[key]
	return v, ok
}

// Len returns the number of entries.
func (x *Attributes) Len() int {
	if x == nil {
		return 0
	}
	return len(x.keys)
}

// KeyValues returns the entries in insertion order.
func (x *Attributes) KeyValues() []attribute.KeyValue {
	if x == nil {
		return nil
	}
	kvs := make([]attribute.KeyValue, 0, len(x.keys))
	for _, k := range x.keys {
		kvs = append(kvs, attribute.KeyValue{Key: k, Value: x.values[k]})
	}
	return kvs
}

// Clone returns a deep copy.
func (x *Attributes) Clone() *Attributes {
	return NewAttributes(x.KeyValues()...)
}

// Invocation is the record of one LLM call, from Start to Stop (or Fail).
// While OPEN it is owned by the Handler; after Stop it is handed back to the
// caller and the Handler keeps no reference to it.
type Invocation struct {
	RunID       uuid.UUID
	ParentRunID uuid.UUID

	System    string
	Framework string

	Messages    []Message
	Generations []ChatGeneration
	Attributes  *Attributes

	StartTime time.Time
	EndTime   time.Time

	span trace.Span
}

// Duration returns EndTime - StartTime, or zero while the invocation is OPEN.
func (x *Invocation) Duration() time.Duration {
	if x.EndTime.IsZero() {
		return 0
	}
	return x.EndTime.Sub(x.StartTime)
}

// SpanContext returns the span context of the invocation span. It stays valid
// after the span has ended, so it can be used for correlation.
func (x *Invocation) SpanContext() trace.SpanContext {
	if x.span == nil {
		return trace.SpanContext{}
	}
	return x.span.SpanContext()
}
