// Package claude maps Anthropic Messages API types to llmtel invocations.
package claude

import (
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/m-mizutani/llmtel"
	"go.opentelemetry.io/otel/attribute"
)

// System is the gen_ai.system value for Anthropic.
const System = "anthropic"

// StartOptions returns the options for llmtel.Handler.Start describing params.
// The system prompt is not a message in the Anthropic API and is not included.
func StartOptions(params anthropic.MessageNewParams) []llmtel.StartOption {
	opts := []llmtel.StartOption{llmtel.WithSystem(System)}
	if params.Model != "" {
		opts = append(opts, llmtel.WithAttributes(llmtel.KeyRequestModel.String(string(params.Model))))
	}
	return opts
}

// Messages converts request messages. Only text blocks contribute content.
func Messages(messages []anthropic.MessageParam) []llmtel.Message {
	out := make([]llmtel.Message, 0, len(messages))
	for _, msg := range messages {
		var texts []string
		for _, block := range msg.Content {
			if block.OfText != nil {
				texts = append(texts, block.OfText.Text)
			}
		}
		out = append(out, llmtel.Message{
			Content: strings.Join(texts, "\n"),
			Type:    string(msg.Role),
		})
	}
	return out
}

// Generations converts resp into a single generation. Claude returns one
// choice per response, made of text and tool_use blocks.
func Generations(resp *anthropic.Message) []llmtel.ChatGeneration {
	if resp == nil {
		return nil
	}

	var texts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			texts = append(texts, block.Text)
		}
	}

	return []llmtel.ChatGeneration{
		{
			Content:      strings.Join(texts, "\n"),
			Type:         string(resp.Role),
			FinishReason: string(resp.StopReason),
		},
	}
}

// Attributes returns the response attributes for llmtel.Handler.Stop.
func Attributes(resp *anthropic.Message) []attribute.KeyValue {
	if resp == nil {
		return nil
	}

	var attrs []attribute.KeyValue
	if resp.Model != "" {
		attrs = append(attrs, llmtel.KeyResponseModel.String(string(resp.Model)))
	}
	if resp.ID != "" {
		attrs = append(attrs, llmtel.KeyResponseID.String(resp.ID))
	}
	if resp.Usage.InputTokens > 0 || resp.Usage.OutputTokens > 0 {
		attrs = append(attrs,
			llmtel.KeyUsageInputTokens.Int64(resp.Usage.InputTokens),
			llmtel.KeyUsageOutputTokens.Int64(resp.Usage.OutputTokens),
		)
	}
	return attrs
}
