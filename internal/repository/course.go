package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyhall-ai/studyhall/internal/domain"
)

type CourseRepository struct {
	db dbtx
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: pool}
}

func NewCourseRepositoryWithTx(tx pgx.Tx) *CourseRepository {
	return &CourseRepository{db: tx}
}

func (r *CourseRepository) Create(ctx context.Context, c *domain.Course) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO courses (id, name, code, system_prompt, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Code, nullableString(c.SystemPrompt), c.CreatedAt,
	)
	return err
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	return r.getOne(ctx,
		`SELECT id, name, code, system_prompt, created_at FROM courses WHERE id = $1`,
		id,
	)
}

func (r *CourseRepository) GetByCode(ctx context.Context, code string) (*domain.Course, error) {
	return r.getOne(ctx,
		`SELECT id, name, code, system_prompt, created_at FROM courses WHERE code = $1`,
		code,
	)
}

func (r *CourseRepository) getOne(ctx context.Context, sql string, arg any) (*domain.Course, error) {
	var c domain.Course
	var systemPrompt *string
	err := r.db.QueryRow(ctx, sql, arg).Scan(&c.ID, &c.Name, &c.Code, &systemPrompt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, err
	}
	if systemPrompt != nil {
		c.SystemPrompt = *systemPrompt
	}
	return &c, nil
}

func (r *CourseRepository) List(ctx context.Context) ([]*domain.Course, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, code, system_prompt, created_at FROM courses ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []*domain.Course
	for rows.Next() {
		var c domain.Course
		var systemPrompt *string
		if err := rows.Scan(&c.ID, &c.Name, &c.Code, &systemPrompt, &c.CreatedAt); err != nil {
			return nil, err
		}
		if systemPrompt != nil {
			c.SystemPrompt = *systemPrompt
		}
		courses = append(courses, &c)
	}
	return courses, rows.Err()
}
