// Package index defines the vector index abstraction the retrieval pipeline
// runs against, with an in-memory chromem-go backend and a Postgres/pgvector
// backend.
package index

import (
	"context"

	"omnidoc/internal/models"
)

// Index stores embedded chunks keyed by their source document and answers
// similarity searches.
//
// Add must be atomic per call: if embedding fails partway through a batch,
// none of the batch's chunks may become retrievable. DeleteSource must
// remove every chunk tagged with the source id and is a no-op for ids that
// were never indexed.
type Index interface {
	Add(ctx context.Context, chunks []models.Chunk) error
	Search(ctx context.Context, query string, k int) ([]models.ScoredChunk, error)
	DeleteSource(ctx context.Context, sourceID string) error
	Count(ctx context.Context) (int, error)
}
