package pgindex

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"golang.org/x/sync/errgroup"

	"omnidoc/internal/config"
	"omnidoc/internal/index"
	"omnidoc/internal/models"
)

// embedConcurrency caps parallel embedding calls per Add batch.
const embedConcurrency = 4

var _ index.Index = (*Store)(nil)

// ChunkRow is one indexed chunk. Search orders by pgvector L2 distance,
// nearest first.
type ChunkRow struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Content       string    `bun:"content,notnull"`
	SourceID      string    `bun:"source_id,notnull"`
	Embedding     []float32 `bun:"embedding,notnull,type:vector(768)"`
}

// Store is the Postgres/pgvector index backend.
type Store struct {
	db       *bun.DB
	embedder embeddings.Embedder
}

func ConnectDB(cfg *config.IndexConfig) (*sql.DB, error) {
	dsn := cfg.DSN + "?sslmode=disable"
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.Password))), nil
}

func New(sqldb *sql.DB, embedder embeddings.Embedder, debug bool) *Store {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &Store{db: db, embedder: embedder}
}

// Init creates the chunks table if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().Model((*ChunkRow)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Add embeds every chunk, then inserts the rows in one transaction so a
// failed batch leaves nothing behind.
func (s *Store) Add(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	vectors := make([][]float32, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, c := range chunks {
		g.Go(func() error {
			vec, err := s.embedder.EmbedQuery(gctx, c.Content)
			if err != nil {
				return fmt.Errorf("embedding chunk %d: %w", i, err)
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	rows := make([]ChunkRow, len(chunks))
	for i, c := range chunks {
		rows[i] = ChunkRow{
			Content:   c.Content,
			SourceID:  c.SourceID,
			Embedding: vectors[i],
		}
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
}

func (s *Store) Search(ctx context.Context, query string, k int) ([]models.ScoredChunk, error) {
	queryVec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	var rows []ChunkRow
	err = s.db.NewSelect().
		Model(&rows).
		Column("id", "content", "source_id").
		OrderExpr("embedding <-> ?", queryVec).
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}

	scored := make([]models.ScoredChunk, 0, len(rows))
	for _, row := range rows {
		scored = append(scored, models.ScoredChunk{
			Chunk: models.Chunk{Content: row.Content, SourceID: row.SourceID},
		})
	}
	return scored, nil
}

func (s *Store) DeleteSource(ctx context.Context, sourceID string) error {
	_, err := s.db.NewDelete().
		Model((*ChunkRow)(nil)).
		Where("source_id = ?", sourceID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("deleting chunks for source %s: %w", sourceID, err)
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	return s.db.NewSelect().Model((*ChunkRow)(nil)).Count(ctx)
}
