package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/studyhall-ai/studyhall/internal/domain"
)

var ErrChunkNotFound = errors.New("chunk not found")

// ChunkRepository handles persistence and nearest-neighbor search for course
// material chunks. Two tables exist: documents_v3072 is the current store
// with chunk provenance in a jsonb metadata column, document_chunks is the
// legacy flat-column store still holding older course material.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// SearchPrimary runs nearest-neighbor search on documents_v3072, filtered to
// one course server-side through the metadata column. Rows with metadata that
// no longer decodes or validates fail the search instead of silently
// degrading into unattributable context.
func (r *ChunkRepository) SearchPrimary(ctx context.Context, embedding []float32, courseID string, limit int) ([]domain.ScoredChunk, error) {
	if limit <= 0 {
		limit = 3
	}

	vec := pgvector.NewVector(embedding)
	rows, err := r.db.Query(ctx,
		`SELECT id, content, metadata,
		        1.0 / (1.0 + (embedding <=> $1)) AS score
		 FROM documents_v3072
		 WHERE metadata->>'course_id' = $2 AND embedding IS NOT NULL
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		vec, courseID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.ScoredChunk
	for rows.Next() {
		var chunk domain.Chunk
		var metadataRaw []byte
		var score float64
		if err := rows.Scan(&chunk.ID, &chunk.Content, &metadataRaw, &score); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(metadataRaw, &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("chunk %d has malformed metadata: %w", chunk.ID, err)
		}
		if err := domain.ValidateChunkMetadata(&chunk.Metadata); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", chunk.ID, err)
		}
		s := score
		results = append(results, domain.ScoredChunk{Chunk: chunk, Score: &s})
	}
	return results, rows.Err()
}

// SearchLegacy runs nearest-neighbor search on the legacy document_chunks
// table. The table has no course column the planner can filter on, so
// callers over-fetch and filter on the course recorded per chunk.
func (r *ChunkRepository) SearchLegacy(ctx context.Context, embedding []float32, limit int) ([]domain.ScoredChunk, error) {
	if limit <= 0 {
		limit = 6
	}

	vec := pgvector.NewVector(embedding)
	rows, err := r.db.Query(ctx,
		`SELECT id, course_id, document_id, chunk_index, file_name, file_type, page, start_time, end_time, content,
		        1.0 / (1.0 + (embedding <=> $1)) AS score
		 FROM document_chunks
		 WHERE embedding IS NOT NULL
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		vec, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.ScoredChunk
	for rows.Next() {
		var chunk domain.Chunk
		var page *int
		var startTime, endTime *float64
		var score float64
		if err := rows.Scan(
			&chunk.ID,
			&chunk.Metadata.CourseID,
			&chunk.Metadata.DocumentID,
			&chunk.Metadata.ChunkIndex,
			&chunk.Metadata.FileName,
			&chunk.Metadata.Type,
			&page,
			&startTime,
			&endTime,
			&chunk.Content,
			&score,
		); err != nil {
			return nil, err
		}
		chunk.Metadata.Page = page
		chunk.Metadata.StartTime = startTime
		chunk.Metadata.EndTime = endTime
		s := score
		results = append(results, domain.ScoredChunk{Chunk: chunk, Score: &s})
	}
	return results, rows.Err()
}

// InsertBatch stores freshly parsed chunks. Embeddings are usually still
// empty at this point; the background worker fills them in later.
func (r *ChunkRepository) InsertBatch(ctx context.Context, chunks []*domain.Chunk) error {
	for _, c := range chunks {
		if err := domain.ValidateChunk(c); err != nil {
			return err
		}
		metadata, err := json.Marshal(c.Metadata)
		if err != nil {
			return err
		}

		var embedding any
		if len(c.Embedding) > 0 {
			embedding = pgvector.NewVector(c.Embedding)
		}

		err = r.db.QueryRow(ctx,
			`INSERT INTO documents_v3072 (content, metadata, embedding)
			 VALUES ($1, $2, $3)
			 RETURNING id`,
			c.Content, metadata, embedding,
		).Scan(&c.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

// ListUnembeddedByDocument pages through a document's chunks that still lack
// an embedding, in chunk order.
func (r *ChunkRepository) ListUnembeddedByDocument(ctx context.Context, documentID string, limit int) ([]*domain.Chunk, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, content, metadata
		 FROM documents_v3072
		 WHERE metadata->>'document_id' = $1 AND embedding IS NULL
		 ORDER BY (metadata->>'chunk_index')::int ASC
		 LIMIT $2`,
		documentID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*domain.Chunk
	for rows.Next() {
		var chunk domain.Chunk
		var metadataRaw []byte
		if err := rows.Scan(&chunk.ID, &chunk.Content, &metadataRaw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(metadataRaw, &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("chunk %d has malformed metadata: %w", chunk.ID, err)
		}
		chunks = append(chunks, &chunk)
	}
	return chunks, rows.Err()
}

func (r *ChunkRepository) UpdateEmbedding(ctx context.Context, id int64, embedding []float32) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE documents_v3072 SET embedding = $1 WHERE id = $2`,
		pgvector.NewVector(embedding), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrChunkNotFound
	}
	return nil
}
