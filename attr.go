package llmtel

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/log"
)

// Attribute keys and literal values of the GenAI telemetry contract. Consumers
// match on these strings, so they must not change.
const (
	KeyOperationName         = attribute.Key("gen_ai.operation.name")
	KeySystem                = attribute.Key("gen_ai.system")
	KeyProviderName          = attribute.Key("gen_ai.provider.name")
	KeyFramework             = attribute.Key("gen_ai.framework")
	KeyResponseFinishReasons = attribute.Key("gen_ai.response.finish_reasons")
	KeyResponseModel         = attribute.Key("gen_ai.response.model")
	KeyResponseID            = attribute.Key("gen_ai.response.id")
	KeyRequestModel          = attribute.Key("gen_ai.request.model")
	KeyUsageInputTokens      = attribute.Key("gen_ai.usage.input_tokens")
	KeyUsageOutputTokens     = attribute.Key("gen_ai.usage.output_tokens")
	KeyTokenType             = attribute.Key("gen_ai.token.type")
	KeyErrorType             = attribute.Key("error.type")
	KeyEventName             = "event.name"

	OperationChat = "chat"
	DefaultSystem = "unknown"

	EventInputDetails = "gen_ai.client.inference.operation.details"
	EventChoice       = "gen_ai.choice"

	errorTypeOther = "_OTHER"
)

// EventKind selects one of the two structured log event kinds.
type EventKind int

const (
	// InputDetails is emitted once per input message at Start.
	InputDetails EventKind = iota
	// Choice is emitted once per output generation at Stop.
	Choice
)

// EventName returns the fixed event name literal of kind.
func EventName(kind EventKind) string {
	if kind == Choice {
		return EventChoice
	}
	return EventInputDetails
}

// BaseAttributes returns the span attributes every invocation starts with.
// The framework key is omitted when framework is empty.
func BaseAttributes(system, framework, operation string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		KeyOperationName.String(operation),
		KeySystem.String(system),
		KeyProviderName.String(system),
	}
	if framework != "" {
		attrs = append(attrs, KeyFramework.String(framework))
	}
	return attrs
}

// EventAttributes returns the attributes carried by a structured log event.
func EventAttributes(kind EventKind, system, framework string) []log.KeyValue {
	attrs := []log.KeyValue{
		log.String(KeyEventName, EventName(kind)),
		log.String(string(KeyOperationName), OperationChat),
		log.String(string(KeyProviderName), system),
	}
	if framework != "" {
		attrs = append(attrs, log.String(string(KeyFramework), framework))
	}
	return attrs
}

// MessageBody converts msg into the input-details event body
// {"type": <role>, "content": <text>}.
func MessageBody(msg Message) log.Value {
	return log.MapValue(
		log.String("type", msg.Type),
		log.String("content", msg.Content),
	)
}

// GenerationBody converts gen into the choice event body
// {"index": i, "finish_reason": <reason>, "message": {"type", "content"}}.
// finish_reason is absent when gen has none.
func GenerationBody(gen ChatGeneration, index int) log.Value {
	kvs := []log.KeyValue{
		log.Int("index", index),
	}
	if gen.FinishReason != "" {
		kvs = append(kvs, log.String("finish_reason", gen.FinishReason))
	}
	kvs = append(kvs, log.Map("message",
		log.String("type", gen.Type),
		log.String("content", gen.Content),
	))
	return log.MapValue(kvs...)
}

func finishReasons(gens []ChatGeneration) []string {
	var reasons []string
	for _, g := range gens {
		if g.FinishReason != "" {
			reasons = append(reasons, g.FinishReason)
		}
	}
	return reasons
}

func systemOrDefault(system, fallback string) string {
	if system != "" {
		return system
	}
	return fallback
}

func spanName(system string) string {
	return system + "." + OperationChat
}
