package chunker

import (
	"strings"
	"unicode/utf8"
)

const (
	defaultChunkSize    = 500 // characters
	defaultChunkOverlap = 50  // characters
)

// separators in decreasing granularity: paragraph, line, sentence, word.
// Anything below a word boundary falls back to a raw character cut.
var separators = []string{"\n\n", "\n", ". ", " "}

// Splitter cuts text into overlapping chunks, preferring to break at the
// coarsest natural boundary that fits inside the chunk size. Each chunk
// after the first starts exactly ChunkOverlap bytes before the previous
// chunk's end, so joining the chunks and dropping that prefix from every
// chunk but the first reconstructs the input byte for byte.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
}

func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}
	return &Splitter{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}
}

// Split returns the ordered chunks of text. Empty input yields no chunks.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	if len(text) <= s.ChunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		limit := start + s.ChunkSize
		if limit >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}
		end := s.breakPoint(text, start, limit)
		chunks = append(chunks, text[start:end])
		start = end - s.ChunkOverlap
	}
	return chunks
}

// breakPoint picks the cut position in (start, limit]. It takes the last
// occurrence of the coarsest separator found in the window, never cutting
// so early that the chunk would be shorter than the carried overlap.
func (s *Splitter) breakPoint(text string, start, limit int) int {
	floor := start + s.ChunkOverlap + 1
	for _, sep := range separators {
		if idx := strings.LastIndex(text[floor:limit], sep); idx >= 0 {
			return floor + idx + len(sep)
		}
	}
	// Character fallback: back off to a rune boundary.
	end := limit
	for end > floor && !utf8.RuneStart(text[end]) {
		end--
	}
	return end
}
