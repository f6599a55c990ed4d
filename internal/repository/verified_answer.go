package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/studyhall-ai/studyhall/internal/domain"
)

// VerifiedAnswerRepository handles persistence and nearest-neighbor search
// for TA verified answers.
type VerifiedAnswerRepository struct {
	db dbtx
}

func NewVerifiedAnswerRepository(pool *pgxpool.Pool) *VerifiedAnswerRepository {
	return &VerifiedAnswerRepository{db: pool}
}

func NewVerifiedAnswerRepositoryWithTx(tx pgx.Tx) *VerifiedAnswerRepository {
	return &VerifiedAnswerRepository{db: tx}
}

func (r *VerifiedAnswerRepository) Create(ctx context.Context, v *domain.VerifiedAnswer) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO ta_verified_answers (id, course_id, question, answer, embedding, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		v.ID, v.CourseID, v.Question, v.Answer, pgvector.NewVector(v.Embedding), nullableString(v.CreatedBy), v.CreatedAt,
	)
	return err
}

// SearchByEmbedding returns the verified answers nearest to the query
// embedding within one course, scored like chunk search so downstream
// consumers see a single score scale.
func (r *VerifiedAnswerRepository) SearchByEmbedding(ctx context.Context, embedding []float32, courseID string, limit int) ([]domain.ScoredVerifiedAnswer, error) {
	if limit <= 0 {
		limit = 2
	}

	vec := pgvector.NewVector(embedding)
	rows, err := r.db.Query(ctx,
		`SELECT id, course_id, question, answer, created_by, created_at,
		        1.0 / (1.0 + (embedding <=> $1)) AS score
		 FROM ta_verified_answers
		 WHERE course_id = $2 AND embedding IS NOT NULL
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		vec, courseID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.ScoredVerifiedAnswer
	for rows.Next() {
		var v domain.VerifiedAnswer
		var createdBy *string
		var score float64
		if err := rows.Scan(&v.ID, &v.CourseID, &v.Question, &v.Answer, &createdBy, &v.CreatedAt, &score); err != nil {
			return nil, err
		}
		if createdBy != nil {
			v.CreatedBy = *createdBy
		}
		s := score
		results = append(results, domain.ScoredVerifiedAnswer{VerifiedAnswer: v, Score: &s})
	}
	return results, rows.Err()
}
