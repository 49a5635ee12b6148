package chromemdb

import (
	"context"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
	"github.com/tmc/langchaingo/embeddings"

	"omnidoc/internal/index"
	"omnidoc/internal/models"
)

const sourceIDKey = "source_id"

var _ index.Index = (*Store)(nil)

// Store keeps embedded chunks in a chromem-go collection. Similarity is
// cosine, nearest first (chromem's metric).
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   embeddings.Embedder
}

// New creates a chromem-backed store. An empty dbPath keeps everything in
// memory; otherwise the collection is persisted under dbPath.
func New(dbPath, collectionName string, embedder embeddings.Embedder) (*Store, error) {
	var db *chromem.DB
	var err error
	if dbPath == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, false)
		if err != nil {
			return nil, fmt.Errorf("creating persistent database: %w", err)
		}
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	return &Store{db: db, collection: collection, embedder: embedder}, nil
}

// Add embeds the whole batch up front, then stores it. A failed embedding
// aborts the call with nothing written.
func (s *Store) Add(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunk batch: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:        uuid.NewString(),
			Content:   c.Content,
			Metadata:  map[string]string{sourceIDKey: c.SourceID},
			Embedding: vectors[i],
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("adding documents to collection: %w", err)
	}
	return nil
}

// Search returns up to k nearest chunks. k is clamped to the collection
// size because chromem rejects nResults above it.
func (s *Store) Search(ctx context.Context, query string, k int) ([]models.ScoredChunk, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	queryVec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryVec,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	scored := make([]models.ScoredChunk, 0, len(results))
	for _, r := range results {
		scored = append(scored, models.ScoredChunk{
			Chunk: models.Chunk{
				Content:  r.Content,
				SourceID: r.Metadata[sourceIDKey],
			},
			Similarity: r.Similarity,
		})
	}
	return scored, nil
}

// DeleteSource removes every chunk tagged with the source id. Unknown ids
// are a no-op.
func (s *Store) DeleteSource(ctx context.Context, sourceID string) error {
	if s.collection.Count() == 0 {
		return nil
	}
	if err := s.collection.Delete(ctx, map[string]string{sourceIDKey: sourceID}, nil); err != nil {
		return fmt.Errorf("deleting chunks for source %s: %w", sourceID, err)
	}
	return nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	return s.collection.Count(), nil
}
