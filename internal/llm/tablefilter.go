package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"omnidoc/internal/models"
)

// TableFilter gates extracted tables through a one-token yes/no check and
// serializes the ones that pass into plain text suitable for indexing.
type TableFilter struct {
	model llms.Model
}

func NewTableFilter(model llms.Model) *TableFilter {
	return &TableFilter{model: model}
}

// Serialize classifies the table and, if it is judged well formed, returns
// its records rewritten as natural-language text. Malformed tables and any
// model failure report ok=false; extraction noise is expected here, so
// neither is an error.
func (f *TableFilter) Serialize(ctx context.Context, table string) (text string, ok bool) {
	verdict, err := f.generate(ctx, fmt.Sprintf(models.TableCheckPromptTemplate, table), llms.WithMaxTokens(1), llms.WithTemperature(0))
	if err != nil {
		log.Debug().Err(err).Msg("Table classification failed, skipping table")
		return "", false
	}
	if !strings.Contains(verdict, "True") {
		log.Debug().Msg("Table rejected by classifier")
		return "", false
	}

	serialized, err := f.generate(ctx, fmt.Sprintf(models.TableSerializePromptTemplate, table), llms.WithTemperature(0))
	if err != nil {
		log.Debug().Err(err).Msg("Table serialization failed, skipping table")
		return "", false
	}
	if strings.TrimSpace(serialized) == "" {
		return "", false
	}
	return serialized, true
}

func (f *TableFilter) generate(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	resp, err := Generate(ctx, f.model, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}, opts...)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}
