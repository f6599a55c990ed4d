package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/service"
)

// AnalyticsRepository computes usage aggregates over the interaction log.
type AnalyticsRepository struct {
	db dbtx
}

func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{db: pool}
}

func (r *AnalyticsRepository) Summary(ctx context.Context, courseID string, since *time.Time) (*service.CourseAnalytics, error) {
	query := `SELECT COUNT(*),
	        COALESCE(AVG(confidence_score), 0),
	        COUNT(*) FILTER (WHERE status = $2),
	        COUNT(*) FILTER (WHERE status = $3)
	 FROM qa_logs
	 WHERE course_id = $1`
	args := []any{courseID, domain.QALogStatusFlagged, domain.QALogStatusReviewed}
	if since != nil {
		args = append(args, *since)
		query += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}

	var summary service.CourseAnalytics
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&summary.TotalQuestions,
		&summary.AverageConfidence,
		&summary.FlaggedCount,
		&summary.ReviewedCount,
	); err != nil {
		return nil, err
	}

	volume, err := r.volumeByDay(ctx, courseID, since)
	if err != nil {
		return nil, err
	}
	summary.VolumeByDay = volume

	return &summary, nil
}

func (r *AnalyticsRepository) volumeByDay(ctx context.Context, courseID string, since *time.Time) ([]service.DayCount, error) {
	query := `SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
	 FROM qa_logs
	 WHERE course_id = $1`
	args := []any{courseID}
	if since != nil {
		args = append(args, *since)
		query += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}
	query += ` GROUP BY day ORDER BY day ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	volume := make([]service.DayCount, 0)
	for rows.Next() {
		var dc service.DayCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, err
		}
		volume = append(volume, dc)
	}
	return volume, rows.Err()
}

func (r *AnalyticsRepository) RecentQuestions(ctx context.Context, courseID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 200
	}

	rows, err := r.db.Query(ctx,
		`SELECT question FROM qa_logs WHERE course_id = $1 ORDER BY created_at DESC LIMIT $2`,
		courseID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
