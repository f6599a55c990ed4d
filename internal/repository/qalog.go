package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/pagination"
	"github.com/studyhall-ai/studyhall/internal/service"
)

// QALogRepository handles persistence of question-answer interaction logs.
type QALogRepository struct {
	db dbtx
}

func NewQALogRepository(pool *pgxpool.Pool) *QALogRepository {
	return &QALogRepository{db: pool}
}

func NewQALogRepositoryWithTx(tx pgx.Tx) *QALogRepository {
	return &QALogRepository{db: tx}
}

func (r *QALogRepository) Create(ctx context.Context, l *domain.QALog) error {
	cited := l.SourcesCited
	if cited == nil {
		cited = []domain.Citation{}
	}
	sources, err := json.Marshal(cited)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO qa_logs (id, course_id, user_id, question, ai_answer, sources_cited, confidence_score, retrieval_confidence, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		l.ID, l.CourseID, l.UserID, l.Question, l.AIAnswer, sources, l.ConfidenceScore, l.RetrievalConfidence, l.Status, l.CreatedAt, l.UpdatedAt,
	)
	return err
}

func (r *QALogRepository) GetByID(ctx context.Context, id string) (*domain.QALog, error) {
	var l domain.QALog
	var sources []byte
	err := r.db.QueryRow(ctx,
		`SELECT id, course_id, user_id, question, ai_answer, sources_cited, confidence_score, retrieval_confidence, status, created_at, updated_at
		 FROM qa_logs WHERE id = $1`,
		id,
	).Scan(&l.ID, &l.CourseID, &l.UserID, &l.Question, &l.AIAnswer, &sources, &l.ConfidenceScore, &l.RetrievalConfidence, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQALogNotFound
		}
		return nil, err
	}
	if l.SourcesCited, err = decodeCitations(sources, l.ID); err != nil {
		return nil, err
	}
	return &l, nil
}

// decodeCitations rejects malformed citation records instead of carrying
// them silently out of storage.
func decodeCitations(raw []byte, logID string) ([]domain.Citation, error) {
	var cited []domain.Citation
	if err := json.Unmarshal(raw, &cited); err != nil {
		return nil, fmt.Errorf("qa log %s has malformed citations: %w", logID, err)
	}
	for i := range cited {
		if err := domain.ValidateCitation(&cited[i]); err != nil {
			return nil, fmt.Errorf("qa log %s has malformed citations: %w", logID, err)
		}
	}
	return cited, nil
}

func (r *QALogRepository) UpdateStatus(ctx context.Context, id string, status domain.QALogStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE qa_logs SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrQALogNotFound
	}
	return nil
}

// ListByUserWithCursor returns one user's interaction history in a course,
// newest first.
func (r *QALogRepository) ListByUserWithCursor(ctx context.Context, courseID, userID string, cursor *pagination.Cursor, limit int) (*service.QALogPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, course_id, user_id, question, ai_answer, sources_cited, confidence_score, retrieval_confidence, status, created_at, updated_at
		 FROM qa_logs
		 WHERE course_id = $1 AND user_id = $2`
	args := []any{courseID, userID}

	if cursor != nil {
		args = append(args, cursor.Timestamp, cursor.LastID)
		query += fmt.Sprintf(` AND (created_at, id) < ($%d, $%d)`, len(args)-1, len(args))
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return buildQALogPage(rows, limit)
}

// ListByCourseWithCursor returns the course-wide interaction log for
// reviewers, newest first, optionally filtered by review status.
func (r *QALogRepository) ListByCourseWithCursor(ctx context.Context, courseID string, status *domain.QALogStatus, cursor *pagination.Cursor, limit int) (*service.QALogPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, course_id, user_id, question, ai_answer, sources_cited, confidence_score, retrieval_confidence, status, created_at, updated_at
		 FROM qa_logs
		 WHERE course_id = $1`
	args := []any{courseID}

	if status != nil {
		args = append(args, *status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if cursor != nil {
		args = append(args, cursor.Timestamp, cursor.LastID)
		query += fmt.Sprintf(` AND (created_at, id) < ($%d, $%d)`, len(args)-1, len(args))
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return buildQALogPage(rows, limit)
}

func buildQALogPage(rows pgx.Rows, limit int) (*service.QALogPageResult, error) {
	items, err := scanQALogRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		lastItem := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(lastItem.ID, lastItem.CreatedAt)
	}

	return &service.QALogPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func scanQALogRows(rows pgx.Rows) ([]*domain.QALog, error) {
	var items []*domain.QALog
	for rows.Next() {
		var l domain.QALog
		var sources []byte
		if err := rows.Scan(&l.ID, &l.CourseID, &l.UserID, &l.Question, &l.AIAnswer, &sources, &l.ConfidenceScore, &l.RetrievalConfidence, &l.Status, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		cited, err := decodeCitations(sources, l.ID)
		if err != nil {
			return nil, err
		}
		l.SourcesCited = cited
		items = append(items, &l)
	}
	return items, rows.Err()
}
