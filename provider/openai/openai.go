// Package openai maps go-openai chat completion types to llmtel invocations.
package openai

import (
	"github.com/m-mizutani/llmtel"
	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
)

// System is the gen_ai.system value for OpenAI.
const System = "openai"

// StartOptions returns the options for llmtel.Handler.Start describing req.
func StartOptions(req openai.ChatCompletionRequest) []llmtel.StartOption {
	opts := []llmtel.StartOption{llmtel.WithSystem(System)}
	if req.Model != "" {
		opts = append(opts, llmtel.WithAttributes(llmtel.KeyRequestModel.String(req.Model)))
	}
	return opts
}

// Messages converts request messages. Text parts of MultiContent are joined
// with newlines; non-text parts are dropped.
func Messages(messages []openai.ChatCompletionMessage) []llmtel.Message {
	out := make([]llmtel.Message, 0, len(messages))
	for _, msg := range messages {
		out = append(out, llmtel.Message{
			Content: messageText(msg),
			Type:    msg.Role,
			Name:    msg.Name,
		})
	}
	return out
}

func messageText(msg openai.ChatCompletionMessage) string {
	if msg.Content != "" || len(msg.MultiContent) == 0 {
		return msg.Content
	}

	var text string
	for _, part := range msg.MultiContent {
		if part.Type != openai.ChatMessagePartTypeText {
			continue
		}
		if text != "" {
			text += "\n"
		}
		text += part.Text
	}
	return text
}

// Generations converts the choices of resp in their index order.
func Generations(resp openai.ChatCompletionResponse) []llmtel.ChatGeneration {
	out := make([]llmtel.ChatGeneration, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		out = append(out, llmtel.ChatGeneration{
			Content:      messageText(choice.Message),
			Type:         choice.Message.Role,
			FinishReason: string(choice.FinishReason),
		})
	}
	return out
}

// Attributes returns the response attributes for llmtel.Handler.Stop.
func Attributes(resp openai.ChatCompletionResponse) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if resp.Model != "" {
		attrs = append(attrs, llmtel.KeyResponseModel.String(resp.Model))
	}
	if resp.ID != "" {
		attrs = append(attrs, llmtel.KeyResponseID.String(resp.ID))
	}
	if resp.Usage.PromptTokens > 0 || resp.Usage.CompletionTokens > 0 {
		attrs = append(attrs,
			llmtel.KeyUsageInputTokens.Int(resp.Usage.PromptTokens),
			llmtel.KeyUsageOutputTokens.Int(resp.Usage.CompletionTokens),
		)
	}
	return attrs
}
