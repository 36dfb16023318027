package llmtel_test

import (
	"context"
	"sync"
	"testing"

	"github.com/m-mizutani/llmtel"
	"github.com/m-mizutani/llmtel/internal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/log"
	sdkLog "go.opentelemetry.io/otel/sdk/log"
	sdkMetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdkTrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// logRecorder is an sdklog.Exporter keeping every exported record.
type logRecorder struct {
	mu      sync.Mutex
	records []sdkLog.Record
}

func (r *logRecorder) Export(_ context.Context, records []sdkLog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		r.records = append(r.records, rec.Clone())
	}
	return nil
}

func (r *logRecorder) Shutdown(context.Context) error   { return nil }
func (r *logRecorder) ForceFlush(context.Context) error { return nil }

func (r *logRecorder) get() []sdkLog.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sdkLog.Record, len(r.records))
	copy(out, r.records)
	return out
}

type testEnv struct {
	spans   *tracetest.InMemoryExporter
	logs    *logRecorder
	metrics *sdkMetric.ManualReader
	opts    []llmtel.Option
}

func newTestEnv() *testEnv {
	spans := tracetest.NewInMemoryExporter()
	tp := sdkTrace.NewTracerProvider(sdkTrace.WithSyncer(spans))

	logs := &logRecorder{}
	lp := sdkLog.NewLoggerProvider(sdkLog.WithProcessor(sdkLog.NewSimpleProcessor(logs)))

	reader := sdkMetric.NewManualReader()
	mp := sdkMetric.NewMeterProvider(sdkMetric.WithReader(reader))

	return &testEnv{
		spans:   spans,
		logs:    logs,
		metrics: reader,
		opts: []llmtel.Option{
			llmtel.WithTracerProvider(tp),
			llmtel.WithLoggerProvider(lp),
			llmtel.WithMeterProvider(mp),
			llmtel.WithLogger(internal.TestLogger()),
		},
	}
}

func (e *testEnv) handler(opts ...llmtel.Option) *llmtel.Handler {
	return llmtel.New(append(e.opts[:len(e.opts):len(e.opts)], opts...)...)
}

func (e *testEnv) collect(t *testing.T) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := e.metrics.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func spanAttr(attrs []attribute.KeyValue, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range attrs {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func recordAttrs(rec sdkLog.Record) map[string]any {
	attrs := make(map[string]any)
	rec.WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = logValue(kv.Value)
		return true
	})
	return attrs
}

// logValue converts a log.Value into plain Go values for comparison.
func logValue(v log.Value) any {
	switch v.Kind() {
	case log.KindString:
		return v.AsString()
	case log.KindInt64:
		return v.AsInt64()
	case log.KindFloat64:
		return v.AsFloat64()
	case log.KindBool:
		return v.AsBool()
	case log.KindBytes:
		return v.AsBytes()
	case log.KindSlice:
		var out []any
		for _, e := range v.AsSlice() {
			out = append(out, logValue(e))
		}
		return out
	case log.KindMap:
		out := make(map[string]any)
		for _, kv := range v.AsMap() {
			out[kv.Key] = logValue(kv.Value)
		}
		return out
	default:
		return nil
	}
}

func recordsByEvent(records []sdkLog.Record) map[string][]sdkLog.Record {
	out := make(map[string][]sdkLog.Record)
	for _, rec := range records {
		name, _ := recordAttrs(rec)["event.name"].(string)
		out[name] = append(out[name], rec)
	}
	return out
}
