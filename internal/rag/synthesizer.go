package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"omnidoc/internal/llm"
	"omnidoc/internal/models"
)

// Synthesizer grounds the language model on retrieved chunks and extracts
// token accounting from the response.
type Synthesizer struct {
	model llms.Model
}

func NewSynthesizer(model llms.Model) *Synthesizer {
	return &Synthesizer{model: model}
}

// Answer builds the grounding prompt from the chunk texts (order preserved,
// blank-line separated) and asks the model. The system instruction differs
// for comparative questions and always tells the model to admit when the
// context is insufficient. Missing usage metadata yields zero token counts,
// not an error.
func (s *Synthesizer) Answer(ctx context.Context, question string, chunks []string, comparative bool) (answer string, tokensIn, tokensOut int, err error) {
	tmpl := models.SimpleSystemPromptTemplate
	if comparative {
		tmpl = models.ComparativeSystemPromptTemplate
	}
	system := fmt.Sprintf(tmpl, strings.Join(chunks, "\n\n"))

	resp, err := llm.Generate(ctx, s.model, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, question),
	})
	if err != nil {
		return "", 0, 0, err
	}

	choice := resp.Choices[0]
	tokensIn, tokensOut = tokenUsage(choice.GenerationInfo)
	return choice.Content, tokensIn, tokensOut, nil
}

func tokenUsage(info map[string]any) (in, out int) {
	return asInt(info["PromptTokens"]), asInt(info["CompletionTokens"])
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
