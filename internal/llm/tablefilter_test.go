package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// scriptedModel returns canned responses in order.
type scriptedModel struct {
	responses []string
	errs      []error
	prompts   []string
}

func (s *scriptedModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	call := len(s.prompts)
	part := messages[0].Parts[0].(llms.TextContent)
	s.prompts = append(s.prompts, part.Text)
	if call < len(s.errs) && s.errs[call] != nil {
		return nil, s.errs[call]
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: s.responses[call]}},
	}, nil
}

func (s *scriptedModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

func TestSerializeAcceptedTable(t *testing.T) {
	model := &scriptedModel{responses: []string{"True", "Q1 revenue was 100. Q2 revenue was 110."}}
	filter := NewTableFilter(model)

	text, ok := filter.Serialize(context.Background(), "Quarter\tRevenue\nQ1\t100\nQ2\t110")
	require.True(t, ok)
	assert.Equal(t, "Q1 revenue was 100. Q2 revenue was 110.", text)

	require.Len(t, model.prompts, 2)
	assert.Contains(t, model.prompts[0], "'True' or 'False'")
	assert.Contains(t, model.prompts[1], "serialized format")
}

func TestSerializeRejectedTable(t *testing.T) {
	model := &scriptedModel{responses: []string{"False"}}
	filter := NewTableFilter(model)

	text, ok := filter.Serialize(context.Background(), "garbled | scraps || of text")
	assert.False(t, ok)
	assert.Empty(t, text)
	assert.Len(t, model.prompts, 1, "a rejected table must not be serialized")
}

func TestSerializeClassifierFailureIsSkip(t *testing.T) {
	model := &scriptedModel{responses: []string{""}, errs: []error{errors.New("model down")}}
	filter := NewTableFilter(model)

	_, ok := filter.Serialize(context.Background(), "whatever")
	assert.False(t, ok)
}

func TestSerializeSerializerFailureIsSkip(t *testing.T) {
	model := &scriptedModel{responses: []string{"True", ""}, errs: []error{nil, errors.New("model down")}}
	filter := NewTableFilter(model)

	_, ok := filter.Serialize(context.Background(), "Quarter\tRevenue")
	assert.False(t, ok)
}

func TestSerializeEmptySerializationIsSkip(t *testing.T) {
	model := &scriptedModel{responses: []string{"True", "   "}}
	filter := NewTableFilter(model)

	_, ok := filter.Serialize(context.Background(), "Quarter\tRevenue")
	assert.False(t, ok)
}
