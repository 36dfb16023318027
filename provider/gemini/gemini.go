// Package gemini maps google.golang.org/genai types to llmtel invocations.
package gemini

import (
	"sort"
	"strings"

	"github.com/m-mizutani/llmtel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

// System is the gen_ai.system value for Gemini.
const System = "gcp.gemini"

// StartOptions returns the options for llmtel.Handler.Start for a request to
// model.
func StartOptions(model string) []llmtel.StartOption {
	opts := []llmtel.StartOption{llmtel.WithSystem(System)}
	if model != "" {
		opts = append(opts, llmtel.WithAttributes(llmtel.KeyRequestModel.String(model)))
	}
	return opts
}

// Messages converts request contents. Thought parts and non-text parts are
// skipped.
func Messages(contents []*genai.Content) []llmtel.Message {
	out := make([]llmtel.Message, 0, len(contents))
	for _, content := range contents {
		if content == nil {
			continue
		}
		out = append(out, llmtel.Message{
			Content: contentText(content),
			Type:    content.Role,
		})
	}
	return out
}

func contentText(content *genai.Content) string {
	if content == nil {
		return ""
	}
	var texts []string
	for _, part := range content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		texts = append(texts, part.Text)
	}
	return strings.Join(texts, "\n")
}

// Generations converts the candidates of resp ordered by candidate index.
func Generations(resp *genai.GenerateContentResponse) []llmtel.ChatGeneration {
	if resp == nil {
		return nil
	}

	candidates := make([]*genai.Candidate, 0, len(resp.Candidates))
	for _, c := range resp.Candidates {
		if c != nil {
			candidates = append(candidates, c)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Index < candidates[j].Index
	})

	out := make([]llmtel.ChatGeneration, 0, len(candidates))
	for _, c := range candidates {
		gen := llmtel.ChatGeneration{
			Content:      contentText(c.Content),
			FinishReason: string(c.FinishReason),
		}
		if c.Content != nil {
			gen.Type = c.Content.Role
		}
		out = append(out, gen)
	}
	return out
}

// Attributes returns the response attributes for llmtel.Handler.Stop.
func Attributes(resp *genai.GenerateContentResponse) []attribute.KeyValue {
	if resp == nil {
		return nil
	}

	var attrs []attribute.KeyValue
	if resp.ModelVersion != "" {
		attrs = append(attrs, llmtel.KeyResponseModel.String(resp.ModelVersion))
	}
	if resp.ResponseID != "" {
		attrs = append(attrs, llmtel.KeyResponseID.String(resp.ResponseID))
	}
	if u := resp.UsageMetadata; u != nil {
		attrs = append(attrs,
			llmtel.KeyUsageInputTokens.Int64(int64(u.PromptTokenCount)),
			llmtel.KeyUsageOutputTokens.Int64(int64(u.CandidatesTokenCount)),
		)
	}
	return attrs
}
