package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyhall-ai/studyhall/internal/domain"
)

// CourseDocumentRepository tracks course material uploads through the
// ingestion lifecycle.
type CourseDocumentRepository struct {
	db dbtx
}

func NewCourseDocumentRepository(pool *pgxpool.Pool) *CourseDocumentRepository {
	return &CourseDocumentRepository{db: pool}
}

func NewCourseDocumentRepositoryWithTx(tx pgx.Tx) *CourseDocumentRepository {
	return &CourseDocumentRepository{db: tx}
}

func (r *CourseDocumentRepository) Create(ctx context.Context, d *domain.CourseDocument) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO course_documents (id, course_id, file_name, file_type, status, chunk_count, last_error, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.CourseID, d.FileName, d.FileType, d.Status, d.ChunkCount, nullableString(d.LastError), d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (r *CourseDocumentRepository) GetByID(ctx context.Context, id string) (*domain.CourseDocument, error) {
	var d domain.CourseDocument
	var lastError *string
	err := r.db.QueryRow(ctx,
		`SELECT id, course_id, file_name, file_type, status, chunk_count, last_error, created_at, updated_at
		 FROM course_documents WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.CourseID, &d.FileName, &d.FileType, &d.Status, &d.ChunkCount, &lastError, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCourseDocumentNotFound
		}
		return nil, err
	}
	if lastError != nil {
		d.LastError = *lastError
	}
	return &d, nil
}

func (r *CourseDocumentRepository) ListByCourse(ctx context.Context, courseID string) ([]*domain.CourseDocument, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, course_id, file_name, file_type, status, chunk_count, last_error, created_at, updated_at
		 FROM course_documents
		 WHERE course_id = $1
		 ORDER BY created_at DESC`,
		courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.CourseDocument
	for rows.Next() {
		var d domain.CourseDocument
		var lastError *string
		if err := rows.Scan(&d.ID, &d.CourseID, &d.FileName, &d.FileType, &d.Status, &d.ChunkCount, &lastError, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		if lastError != nil {
			d.LastError = *lastError
		}
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}

func (r *CourseDocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE course_documents SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrCourseDocumentNotFound
	}
	return nil
}

func (r *CourseDocumentRepository) MarkChunked(ctx context.Context, id string, chunkCount int) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE course_documents SET status = $1, chunk_count = $2, last_error = NULL, updated_at = $3 WHERE id = $4`,
		domain.DocumentStatusChunked, chunkCount, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrCourseDocumentNotFound
	}
	return nil
}

func (r *CourseDocumentRepository) MarkFailed(ctx context.Context, id string, lastError string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE course_documents SET status = $1, last_error = $2, updated_at = $3 WHERE id = $4`,
		domain.DocumentStatusFailed, nullableString(lastError), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrCourseDocumentNotFound
	}
	return nil
}

func (r *CourseDocumentRepository) MarkCompleted(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE course_documents SET status = $1, last_error = NULL, updated_at = $2 WHERE id = $3`,
		domain.DocumentStatusCompleted, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrCourseDocumentNotFound
	}
	return nil
}

// ClaimNextChunked atomically moves the oldest chunked document to the
// embedding state and returns it. Concurrent workers skip rows each other
// hold. No claimable document returns (nil, nil).
// TODO: requeue documents left in embedding state by an unclean shutdown.
func (r *CourseDocumentRepository) ClaimNextChunked(ctx context.Context) (*domain.CourseDocument, error) {
	var d domain.CourseDocument
	var lastError *string
	err := r.db.QueryRow(ctx,
		`WITH cte AS (
			 SELECT id
			 FROM course_documents
			 WHERE status = $1
			 ORDER BY created_at ASC
			 FOR UPDATE SKIP LOCKED
			 LIMIT 1
		 )
		 UPDATE course_documents
		 SET status = $2,
		     updated_at = $3
		 FROM cte
		 WHERE course_documents.id = cte.id
		 RETURNING course_documents.id, course_documents.course_id, course_documents.file_name, course_documents.file_type,
		           course_documents.status, course_documents.chunk_count, course_documents.last_error,
		           course_documents.created_at, course_documents.updated_at`,
		domain.DocumentStatusChunked, domain.DocumentStatusEmbedding, time.Now().UTC(),
	).Scan(&d.ID, &d.CourseID, &d.FileName, &d.FileType, &d.Status, &d.ChunkCount, &lastError, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if lastError != nil {
		d.LastError = *lastError
	}
	return &d, nil
}
