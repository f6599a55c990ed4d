package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyhall-ai/studyhall/internal/domain"
)

type UserRepository struct {
	db dbtx
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: pool}
}

func NewUserRepositoryWithTx(tx pgx.Tx) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) GetBySubject(ctx context.Context, subject string) (*domain.User, error) {
	var u domain.User
	var email *string
	err := r.db.QueryRow(ctx,
		`SELECT id, subject, email, role, created_at FROM users WHERE subject = $1`,
		subject,
	).Scan(&u.ID, &u.Subject, &email, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if email != nil {
		u.Email = *email
	}
	return &u, nil
}

// Upsert inserts the user on first sight of its subject and returns the
// stored row either way. An existing row keeps its role; only the email is
// refreshed from the token.
func (r *UserRepository) Upsert(ctx context.Context, u *domain.User) (*domain.User, error) {
	var stored domain.User
	var email *string
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (id, subject, email, role, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (subject) DO UPDATE SET email = EXCLUDED.email
		 RETURNING id, subject, email, role, created_at`,
		u.ID, u.Subject, nullableString(u.Email), u.Role, u.CreatedAt,
	).Scan(&stored.ID, &stored.Subject, &email, &stored.Role, &stored.CreatedAt)
	if err != nil {
		return nil, err
	}
	if email != nil {
		stored.Email = *email
	}
	return &stored, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, subject string, role domain.UserRole) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE users SET role = $1 WHERE subject = $2`,
		role, subject,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
