package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/avolkov/grounded-qa/internal/core/domain"
)

// ChunkStore reads chunk text and provenance from the corpus database.
// The ingestion pipeline owns the table; this store never writes.
type ChunkStore struct {
	db *sql.DB
}

func NewChunkStore(db *sql.DB) *ChunkStore {
	return &ChunkStore{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (s *ChunkStore) GetChunk(ctx context.Context, chunkID string) (domain.StoredChunk, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT document_id, clean_text
FROM chunks
WHERE chunk_id = $1
`, chunkID)

	chunk := domain.StoredChunk{ChunkID: chunkID}
	err := row.Scan(&chunk.DocumentID, &chunk.Text)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StoredChunk{}, domain.WrapError(domain.ErrChunkNotFound, "chunk lookup", fmt.Errorf("chunk not found: %s", chunkID))
		}
		return domain.StoredChunk{}, fmt.Errorf("scan chunk: %w", err)
	}
	return chunk, nil
}
