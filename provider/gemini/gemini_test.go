package gemini_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/llmtel"
	"github.com/m-mizutani/llmtel/provider/gemini"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

func TestMessages(t *testing.T) {
	msgs := gemini.Messages([]*genai.Content{
		genai.NewContentFromText("hello", genai.RoleUser),
		{Role: "model", Parts: []*genai.Part{
			{Text: "thinking...", Thought: true},
			{Text: "answer"},
		}},
		nil,
	})

	gt.Equal(t, msgs, []llmtel.Message{
		{Content: "hello", Type: "user"},
		{Content: "answer", Type: "model"},
	})
}

func TestGenerations(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		ResponseID:   "resp-1",
		ModelVersion: "gemini-2.0-flash",
		Candidates: []*genai.Candidate{
			{Index: 1, Content: genai.NewContentFromText("second", genai.RoleModel), FinishReason: genai.FinishReasonMaxTokens},
			{Index: 0, Content: genai.NewContentFromText("first", genai.RoleModel), FinishReason: genai.FinishReasonStop},
		},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     5,
			CandidatesTokenCount: 11,
		},
	}

	gt.Equal(t, gemini.Generations(resp), []llmtel.ChatGeneration{
		{Content: "first", Type: "model", FinishReason: "STOP"},
		{Content: "second", Type: "model", FinishReason: "MAX_TOKENS"},
	})

	gt.Equal(t, gemini.Attributes(resp), []attribute.KeyValue{
		attribute.String("gen_ai.response.model", "gemini-2.0-flash"),
		attribute.String("gen_ai.response.id", "resp-1"),
		attribute.Int64("gen_ai.usage.input_tokens", 5),
		attribute.Int64("gen_ai.usage.output_tokens", 11),
	})
}

func TestStartOptions(t *testing.T) {
	gt.Equal(t, len(gemini.StartOptions("")), 1)
	gt.Equal(t, len(gemini.StartOptions("gemini-2.0-flash")), 2)
}
