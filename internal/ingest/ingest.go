// Package ingest routes extracted document content into the vector index:
// raw text is chunked, tables are filtered and serialized, and everything
// lands in the index under the document's source id.
package ingest

import (
	"context"

	"github.com/rs/zerolog/log"

	"omnidoc/internal/chunker"
	"omnidoc/internal/extract"
	"omnidoc/internal/index"
	"omnidoc/internal/models"
)

// TableSerializer is the table filter capability. Implemented by
// llm.TableFilter; ok=false means the table was rejected or the filter
// failed, both of which just skip the table.
type TableSerializer interface {
	Serialize(ctx context.Context, table string) (text string, ok bool)
}

type Router struct {
	index    index.Index
	splitter *chunker.Splitter
	tables   TableSerializer
}

func NewRouter(idx index.Index, splitter *chunker.Splitter, tables TableSerializer) *Router {
	return &Router{index: idx, splitter: splitter, tables: tables}
}

// Ingest chunks the content, folds in accepted tables as extra chunks under
// the same source id, and writes the whole batch to the index in one atomic
// Add. Returns the number of chunks indexed.
func (r *Router) Ingest(ctx context.Context, content *extract.Content, sourceID string) (int, error) {
	var chunks []models.Chunk
	for _, text := range r.splitter.Split(content.Text) {
		chunks = append(chunks, models.Chunk{Content: text, SourceID: sourceID})
	}

	accepted := 0
	for _, table := range content.Tables {
		if r.tables == nil {
			break
		}
		serialized, ok := r.tables.Serialize(ctx, table)
		if !ok {
			continue
		}
		chunks = append(chunks, models.Chunk{Content: serialized, SourceID: sourceID})
		accepted++
	}

	if len(chunks) == 0 {
		log.Warn().Str("source_id", sourceID).Msg("Nothing to index for document")
		return 0, nil
	}

	if err := r.index.Add(ctx, chunks); err != nil {
		return 0, err
	}

	log.Info().
		Str("source_id", sourceID).
		Int("chunks", len(chunks)).
		Int("tables_accepted", accepted).
		Int("tables_seen", len(content.Tables)).
		Msg("Indexed document")
	return len(chunks), nil
}

// Delete cascades a document deletion to the index, removing every chunk
// tagged with the source id.
func (r *Router) Delete(ctx context.Context, sourceID string) error {
	return r.index.DeleteSource(ctx, sourceID)
}
