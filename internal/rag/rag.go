// Package rag is the retrieval pipeline core: query classification, index
// retrieval with source balancing, answer synthesis, and per-query
// telemetry.
package rag

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"omnidoc/internal/config"
	"omnidoc/internal/index"
	"omnidoc/internal/models"
)

// TelemetrySink records one entry per query. Implemented by monitor.Sink.
type TelemetrySink interface {
	Log(entry models.QueryLogEntry) error
}

// RAG answers questions against the vector index.
type RAG struct {
	retriever   *Retriever
	synthesizer *Synthesizer
	sink        TelemetrySink
}

func New(idx index.Index, model llms.Model, sink TelemetrySink, cfg *config.RAGConfig) *RAG {
	return &RAG{
		retriever:   NewRetriever(idx, cfg),
		synthesizer: NewSynthesizer(model),
		sink:        sink,
	}
}

// Query retrieves grounding chunks for the question, synthesizes an answer,
// and records exactly one telemetry entry whether it succeeds or fails.
// Callers are expected to have checked that at least one document is
// indexed. Telemetry write failures never fail the query itself.
func (r *RAG) Query(ctx context.Context, question string) (*models.QueryResult, error) {
	queryID := uuid.NewString()
	start := time.Now()

	comparative := r.retriever.IsComparative(question)
	chunks, retrieval, err := r.retriever.Retrieve(ctx, question)
	if err != nil {
		r.logEntry(queryID, question, "", time.Since(start), 0, 0, 0, err)
		return nil, err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	answer, tokensIn, tokensOut, err := r.synthesizer.Answer(ctx, question, texts, comparative)
	latency := time.Since(start)
	if err != nil {
		r.logEntry(queryID, question, "", latency, 0, 0, len(chunks), err)
		return nil, err
	}

	r.logEntry(queryID, question, answer, latency, tokensIn, tokensOut, len(chunks), nil)

	log.Debug().
		Str("query_id", queryID).
		Bool("comparative", comparative).
		Int("chunks", len(chunks)).
		Dur("retrieval", retrieval).
		Dur("latency", latency).
		Msg("Answered query")

	return &models.QueryResult{
		QueryID:    queryID,
		Answer:     answer,
		ChunkCount: len(chunks),
		TokensIn:   tokensIn,
		TokensOut:  tokensOut,
		Latency:    latency,
		Retrieval:  retrieval,
	}, nil
}

func (r *RAG) logEntry(queryID, question, answer string, latency time.Duration, tokensIn, tokensOut, chunkCount int, qerr error) {
	entry := models.QueryLogEntry{
		ID:              queryID,
		Timestamp:       float64(time.Now().UnixNano()) / 1e9,
		Query:           question,
		Answer:          answer,
		Latency:         latency.Seconds(),
		TokensInput:     tokensIn,
		TokensOutput:    tokensOut,
		ChunksRetrieved: chunkCount,
	}
	if qerr != nil {
		msg := qerr.Error()
		entry.Error = &msg
	}
	if err := r.sink.Log(entry); err != nil {
		log.Warn().Err(err).Str("query_id", queryID).Msg("Failed to write telemetry entry")
	}
}
