package rag

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omnidoc/internal/config"
	"omnidoc/internal/models"
)

type fakeIndex struct {
	results   []models.ScoredChunk
	searchErr error
	lastK     int
}

func (f *fakeIndex) Add(_ context.Context, _ []models.Chunk) error { return nil }

func (f *fakeIndex) Search(_ context.Context, _ string, k int) ([]models.ScoredChunk, error) {
	f.lastK = k
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if len(f.results) > k {
		return f.results[:k], nil
	}
	return f.results, nil
}

func (f *fakeIndex) DeleteSource(_ context.Context, _ string) error { return nil }

func (f *fakeIndex) Count(_ context.Context) (int, error) { return len(f.results), nil }

func testRAGConfig() *config.RAGConfig {
	return &config.RAGConfig{
		ChunkSize:    500,
		ChunkOverlap: 50,
		SimpleK:      8,
		ComparativeK: 20,
		MinPerSource: 4,
	}
}

func scoredChunk(source string, n int) models.ScoredChunk {
	return models.ScoredChunk{
		Chunk: models.Chunk{Content: fmt.Sprintf("%s chunk %d", source, n), SourceID: source},
	}
}

func TestIsComparative(t *testing.T) {
	r := NewRetriever(&fakeIndex{}, testRAGConfig())

	tests := []struct {
		question string
		want     bool
	}{
		{"compare document A and document B", true},
		{"What is the DIFFERENCE between these?", true},
		{"revenue versus costs", true},
		{"summarize both reports", true},
		{"what does each document say about margins", true},
		{"what is the revenue", false},
		{"who is the CEO", false},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, r.IsComparative(tt.question))
		})
	}
}

func TestRetrieveKSelection(t *testing.T) {
	idx := &fakeIndex{}
	r := NewRetriever(idx, testRAGConfig())

	_, _, err := r.Retrieve(context.Background(), "compare document A and document B")
	require.NoError(t, err)
	assert.Equal(t, 20, idx.lastK)

	_, _, err = r.Retrieve(context.Background(), "what is the revenue")
	require.NoError(t, err)
	assert.Equal(t, 8, idx.lastK)
}

func TestRetrieveBalancesSources(t *testing.T) {
	// 20 chunks from 4 sources, heavily skewed toward source a.
	var results []models.ScoredChunk
	for i := 0; i < 8; i++ {
		results = append(results, scoredChunk("a", i))
	}
	for i := 0; i < 6; i++ {
		results = append(results, scoredChunk("b", i))
	}
	for i := 0; i < 4; i++ {
		results = append(results, scoredChunk("c", i))
	}
	for i := 0; i < 2; i++ {
		results = append(results, scoredChunk("d", i))
	}

	idx := &fakeIndex{results: results}
	r := NewRetriever(idx, testRAGConfig())

	chunks, _, err := r.Retrieve(context.Background(), "compare all documents")
	require.NoError(t, err)

	counts := make(map[string]int)
	for _, c := range chunks {
		counts[c.SourceID]++
	}
	// k/n = 5, above the floor of 4: five from the bigger sources, all
	// available chunks from the smaller ones.
	assert.Equal(t, 5, counts["a"])
	assert.Equal(t, 5, counts["b"])
	assert.Equal(t, 4, counts["c"])
	assert.Equal(t, 2, counts["d"])

	// Source-encounter order with internal relevance order preserved.
	assert.Equal(t, "a chunk 0", chunks[0].Content)
	assert.Equal(t, "a chunk 4", chunks[4].Content)
	assert.Equal(t, "b chunk 0", chunks[5].Content)
}

func TestRetrieveSingleSourceNoRebalance(t *testing.T) {
	var results []models.ScoredChunk
	for i := 0; i < 12; i++ {
		results = append(results, scoredChunk("only", i))
	}
	idx := &fakeIndex{results: results}
	r := NewRetriever(idx, testRAGConfig())

	chunks, _, err := r.Retrieve(context.Background(), "compare the sections")
	require.NoError(t, err)
	assert.Len(t, chunks, 12)
	for i, c := range chunks {
		assert.Equal(t, fmt.Sprintf("only chunk %d", i), c.Content)
	}
}

func TestRetrievePerSourceFloor(t *testing.T) {
	// With six sources k/n drops to 3, below the floor of 4: each source
	// may still contribute up to 4, so group caps sum above k.
	var results []models.ScoredChunk
	for i := 0; i < 20; i++ {
		results = append(results, scoredChunk(fmt.Sprintf("s%d", i%6), i/6))
	}
	idx := &fakeIndex{results: results}
	r := NewRetriever(idx, testRAGConfig())

	chunks, _, err := r.Retrieve(context.Background(), "compare everything")
	require.NoError(t, err)

	counts := make(map[string]int)
	for _, c := range chunks {
		counts[c.SourceID]++
	}
	for src, n := range counts {
		assert.LessOrEqual(t, n, 4, "source %s over its cap", src)
	}
	assert.Equal(t, 4, counts["s0"])
}

func TestRetrieveEmptyResult(t *testing.T) {
	r := NewRetriever(&fakeIndex{}, testRAGConfig())
	chunks, _, err := r.Retrieve(context.Background(), "anything at all")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
