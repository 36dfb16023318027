package llmtel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	meterName = "github.com/m-mizutani/llmtel"

	metricOperationDuration = "gen_ai.client.operation.duration"
	metricTokenUsage        = "gen_ai.client.token.usage"
)

// Bucket boundaries recommended by the GenAI semantic conventions.
var (
	durationBuckets = []float64{0.01, 0.02, 0.04, 0.08, 0.16, 0.32, 0.64, 1.28, 2.56, 5.12, 10.24, 20.48, 40.96, 81.92}
	tokenBuckets    = []float64{1, 4, 16, 64, 256, 1024, 4096, 16384, 65536, 262144, 1048576, 4194304, 16777216, 67108864}
)

type instruments struct {
	duration metric.Float64Histogram
	tokens   metric.Int64Histogram
}

func newInstruments(mp metric.MeterProvider) (*instruments, error) {
	m := mp.Meter(meterName)

	duration, err := m.Float64Histogram(metricOperationDuration,
		metric.WithDescription("GenAI operation duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, err
	}

	tokens, err := m.Int64Histogram(metricTokenUsage,
		metric.WithDescription("Measures number of input and output tokens used"),
		metric.WithUnit("{token}"),
		metric.WithExplicitBucketBoundaries(tokenBuckets...),
	)
	if err != nil {
		return nil, err
	}

	return &instruments{duration: duration, tokens: tokens}, nil
}

func noopInstruments() *instruments {
	// noop instruments never fail to be created
	ins, _ := newInstruments(noop.NewMeterProvider())
	return ins
}

// record measures a finished invocation. errType is empty on success.
func (x *instruments) record(ctx context.Context, inv *Invocation, errType string) {
	attrs := []attribute.KeyValue{
		KeyOperationName.String(OperationChat),
		KeySystem.String(inv.System),
		KeyProviderName.String(inv.System),
	}
	for _, key := range []attribute.Key{KeyRequestModel, KeyResponseModel} {
		if v, ok := inv.Attributes.Get(key); ok {
			attrs = append(attrs, attribute.KeyValue{Key: key, Value: v})
		}
	}
	if errType != "" {
		attrs = append(attrs, KeyErrorType.String(errType))
	}

	x.duration.Record(ctx, inv.Duration().Seconds(), metric.WithAttributes(attrs...))

	usage := []struct {
		key       attribute.Key
		tokenType string
	}{
		{KeyUsageInputTokens, "input"},
		{KeyUsageOutputTokens, "output"},
	}
	for _, u := range usage {
		v, ok := inv.Attributes.Get(u.key)
		if !ok || v.Type() != attribute.INT64 {
			continue
		}
		tokenAttrs := append(attrs[:len(attrs):len(attrs)], KeyTokenType.String(u.tokenType))
		x.tokens.Record(ctx, v.AsInt64(), metric.WithAttributes(tokenAttrs...))
	}
}
