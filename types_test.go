package llmtel_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/llmtel"
	"go.opentelemetry.io/otel/attribute"
)

func TestAttributesKeepInsertionOrder(t *testing.T) {
	attrs := llmtel.NewAttributes(
		attribute.String("b", "1"),
		attribute.String("a", "2"),
	)
	attrs.Set(attribute.String("c", "3"), attribute.String("b", "updated"))

	kvs := attrs.KeyValues()
	gt.Equal(t, len(kvs), 3)
	gt.Equal(t, kvs[0].Key, attribute.Key("b"))
	gt.Equal(t, kvs[0].Value.AsString(), "updated")
	gt.Equal(t, kvs[1].Key, attribute.Key("a"))
	gt.Equal(t, kvs[2].Key, attribute.Key("c"))
}

func TestAttributesMerge(t *testing.T) {
	start := llmtel.NewAttributes(
		attribute.String("shared", "start"),
		attribute.Bool("start_only", true),
	)
	stop := llmtel.NewAttributes(
		attribute.String("shared", "stop"),
		attribute.Float64("stop_only", 0.5),
	)
	start.Merge(stop)

	gt.Equal(t, start.Len(), 3)
	v, _ := start.Get("shared")
	gt.Equal(t, v.AsString(), "stop")
	b, _ := start.Get("start_only")
	gt.True(t, b.AsBool())
	f, _ := start.Get("stop_only")
	gt.Equal(t, f.AsFloat64(), 0.5)

	start.Merge(nil)
	gt.Equal(t, start.Len(), 3)
}

func TestAttributesIgnoreInvalid(t *testing.T) {
	attrs := llmtel.NewAttributes(
		attribute.KeyValue{Key: "", Value: attribute.StringValue("x")},
		attribute.KeyValue{Key: "no_value"},
		attribute.Int64("ok", 1),
	)
	gt.Equal(t, attrs.Len(), 1)
	_, ok := attrs.Get("no_value")
	gt.False(t, ok)
}

func TestAttributesZeroValueAndNil(t *testing.T) {
	var zero llmtel.Attributes
	zero.Set(attribute.String("k", "v"))
	gt.Equal(t, zero.Len(), 1)

	var nilAttrs *llmtel.Attributes
	gt.Equal(t, nilAttrs.Len(), 0)
	_, ok := nilAttrs.Get("k")
	gt.False(t, ok)
	gt.Equal(t, len(nilAttrs.KeyValues()), 0)
}

func TestAttributesClone(t *testing.T) {
	orig := llmtel.NewAttributes(attribute.String("k", "v"))
	cloned := orig.Clone()
	cloned.Set(attribute.String("k", "changed"))

	v, _ := orig.Get("k")
	gt.Equal(t, v.AsString(), "v")
}

func TestInvocationDurationWhileOpen(t *testing.T) {
	inv := &llmtel.Invocation{}
	gt.Equal(t, inv.Duration(), 0)
	gt.False(t, inv.SpanContext().IsValid())
}
