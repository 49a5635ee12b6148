package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"omnidoc/internal/models"
)

type fakeModel struct {
	resp     *llms.ContentResponse
	err      error
	messages []llms.MessageContent
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

type fakeSink struct {
	entries []models.QueryLogEntry
	err     error
}

func (f *fakeSink) Log(entry models.QueryLogEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func modelResponse(text string, info map[string]any) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: text, GenerationInfo: info}},
	}
}

func systemPrompt(t *testing.T, messages []llms.MessageContent) string {
	t.Helper()
	require.NotEmpty(t, messages)
	require.Equal(t, llms.ChatMessageTypeSystem, messages[0].Role)
	part, ok := messages[0].Parts[0].(llms.TextContent)
	require.True(t, ok)
	return part.Text
}

func TestQuerySuccessLogsOneEntry(t *testing.T) {
	idx := &fakeIndex{results: []models.ScoredChunk{
		scoredChunk("doc1", 0),
		scoredChunk("doc1", 1),
	}}
	model := &fakeModel{resp: modelResponse("The revenue grew.", map[string]any{
		"PromptTokens":     120,
		"CompletionTokens": 34,
	})}
	sink := &fakeSink{}

	r := New(idx, model, sink, testRAGConfig())
	result, err := r.Query(context.Background(), "what is the revenue")
	require.NoError(t, err)

	assert.Equal(t, "The revenue grew.", result.Answer)
	assert.Equal(t, 2, result.ChunkCount)
	assert.Equal(t, 120, result.TokensIn)
	assert.Equal(t, 34, result.TokensOut)
	assert.NotEmpty(t, result.QueryID)

	require.Len(t, sink.entries, 1)
	entry := sink.entries[0]
	assert.Equal(t, result.QueryID, entry.ID)
	assert.Equal(t, "what is the revenue", entry.Query)
	assert.Equal(t, 120, entry.TokensInput)
	assert.Equal(t, 34, entry.TokensOutput)
	assert.Equal(t, 2, entry.ChunksRetrieved)
	assert.Nil(t, entry.Error)
	assert.Nil(t, entry.Feedback)
}

func TestQueryLLMFailureStillLogged(t *testing.T) {
	idx := &fakeIndex{results: []models.ScoredChunk{scoredChunk("doc1", 0)}}
	model := &fakeModel{err: errors.New("model unavailable")}
	sink := &fakeSink{}

	r := New(idx, model, sink, testRAGConfig())
	_, err := r.Query(context.Background(), "what is the revenue")
	require.Error(t, err)

	require.Len(t, sink.entries, 1)
	entry := sink.entries[0]
	assert.Zero(t, entry.TokensInput)
	assert.Zero(t, entry.TokensOutput)
	require.NotNil(t, entry.Error)
	assert.Contains(t, *entry.Error, "model unavailable")
}

func TestQuerySearchFailureStillLogged(t *testing.T) {
	idx := &fakeIndex{searchErr: errors.New("embedding provider down")}
	sink := &fakeSink{}

	r := New(idx, &fakeModel{}, sink, testRAGConfig())
	_, err := r.Query(context.Background(), "what is the revenue")
	require.Error(t, err)

	require.Len(t, sink.entries, 1)
	require.NotNil(t, sink.entries[0].Error)
	assert.Zero(t, sink.entries[0].ChunksRetrieved)
}

func TestQuerySinkFailureDoesNotFailQuery(t *testing.T) {
	idx := &fakeIndex{results: []models.ScoredChunk{scoredChunk("doc1", 0)}}
	model := &fakeModel{resp: modelResponse("fine", nil)}
	sink := &fakeSink{err: errors.New("disk full")}

	r := New(idx, model, sink, testRAGConfig())
	result, err := r.Query(context.Background(), "what is the revenue")
	require.NoError(t, err)
	assert.Equal(t, "fine", result.Answer)
}

func TestQueryMissingUsageDefaultsToZero(t *testing.T) {
	idx := &fakeIndex{results: []models.ScoredChunk{scoredChunk("doc1", 0)}}
	model := &fakeModel{resp: modelResponse("no usage here", nil)}
	sink := &fakeSink{}

	r := New(idx, model, sink, testRAGConfig())
	result, err := r.Query(context.Background(), "what is the revenue")
	require.NoError(t, err)
	assert.Zero(t, result.TokensIn)
	assert.Zero(t, result.TokensOut)
}

func TestSynthesizerPromptGrounding(t *testing.T) {
	model := &fakeModel{resp: modelResponse("ok", nil)}
	s := NewSynthesizer(model)

	_, _, _, err := s.Answer(context.Background(), "what grew?", []string{"Revenue grew 10%.", "Costs fell 5%."}, false)
	require.NoError(t, err)

	prompt := systemPrompt(t, model.messages)
	assert.Contains(t, prompt, "Revenue grew 10%.\n\nCosts fell 5%.")
	assert.Contains(t, prompt, "don't know")
	assert.NotContains(t, prompt, "compare and contrast")

	require.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
	human, ok := model.messages[1].Parts[0].(llms.TextContent)
	require.True(t, ok)
	assert.Equal(t, "what grew?", human.Text)
}

func TestSynthesizerComparativePrompt(t *testing.T) {
	model := &fakeModel{resp: modelResponse("ok", nil)}
	s := NewSynthesizer(model)

	_, _, _, err := s.Answer(context.Background(), "compare them", []string{"chunk one"}, true)
	require.NoError(t, err)

	prompt := systemPrompt(t, model.messages)
	assert.Contains(t, strings.ToLower(prompt), "compare and contrast")
	assert.Contains(t, prompt, "don't know")
}

func TestTokenUsageCoercion(t *testing.T) {
	in, out := tokenUsage(map[string]any{"PromptTokens": float64(7), "CompletionTokens": int64(9)})
	assert.Equal(t, 7, in)
	assert.Equal(t, 9, out)

	in, out = tokenUsage(nil)
	assert.Zero(t, in)
	assert.Zero(t, out)
}
