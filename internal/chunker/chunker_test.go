package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reassemble(chunks []string, overlap int) string {
	var b strings.Builder
	for i, c := range chunks {
		if i == 0 {
			b.WriteString(c)
			continue
		}
		b.WriteString(c[overlap:])
	}
	return b.String()
}

func TestSplitEmpty(t *testing.T) {
	s := NewSplitter(500, 50)
	assert.Nil(t, s.Split(""))
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(500, 50)
	text := "Revenue grew 10% in Q1. Costs fell 5%."
	chunks := s.Split(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitCoverage(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"paragraphs", strings.Repeat("First paragraph about revenue growth.\n\nSecond paragraph about operating costs and margins.\n\n", 30)},
		{"sentences", strings.Repeat("The quarter closed strong. Margins improved across segments. ", 40)},
		{"words only", strings.Repeat("alpha beta gamma delta epsilon ", 100)},
		{"no boundaries", strings.Repeat("x", 2357)},
	}

	s := NewSplitter(500, 50)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := s.Split(tt.text)
			require.NotEmpty(t, chunks)
			for _, c := range chunks {
				assert.LessOrEqual(t, len(c), 500)
				assert.Greater(t, len(c), 50)
			}
			assert.Equal(t, tt.text, reassemble(chunks, 50))
		})
	}
}

func TestSplitPrefersParagraphBoundary(t *testing.T) {
	s := NewSplitter(500, 50)
	text := strings.Repeat("a", 300) + "\n\n" + strings.Repeat("b", 300)
	chunks := s.Split(text)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.True(t, strings.HasSuffix(chunks[0], "\n\n"), "first chunk should end at the paragraph break")
}

func TestSplitDeterministic(t *testing.T) {
	s := NewSplitter(500, 50)
	text := strings.Repeat("Some sentence about the report. ", 60)
	assert.Equal(t, s.Split(text), s.Split(text))
}

func TestNewSplitterClampsOverlap(t *testing.T) {
	s := NewSplitter(100, 200)
	assert.Equal(t, 50, s.ChunkOverlap)
}
