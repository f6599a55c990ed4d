//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/testutil"
)

func TestUserRepository_Upsert_InsertsNew(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	userRepo := NewUserRepository(pool)

	user := &domain.User{
		ID:        uuid.NewString(),
		Subject:   "auth0|student-1",
		Email:     "student1@uni.edu",
		Role:      domain.UserRoleStudent,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	stored, err := userRepo.Upsert(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
	assert.Equal(t, user.Subject, stored.Subject)
	assert.Equal(t, user.Email, stored.Email)
	assert.Equal(t, domain.UserRoleStudent, stored.Role)
}

func TestUserRepository_Upsert_KeepsExistingRole(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	userRepo := NewUserRepository(pool)

	original := &domain.User{
		ID:        uuid.NewString(),
		Subject:   "auth0|ta-1",
		Email:     "ta1@uni.edu",
		Role:      domain.UserRoleTA,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	_, err := userRepo.Upsert(ctx, original)
	require.NoError(t, err)

	returning := &domain.User{
		ID:        uuid.NewString(),
		Subject:   "auth0|ta-1",
		Email:     "ta1-new@uni.edu",
		Role:      domain.UserRoleStudent,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	stored, err := userRepo.Upsert(ctx, returning)
	require.NoError(t, err)

	assert.Equal(t, original.ID, stored.ID)
	assert.Equal(t, domain.UserRoleTA, stored.Role)
	assert.Equal(t, "ta1-new@uni.edu", stored.Email)
}

func TestUserRepository_Upsert_EmptyEmail(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	userRepo := NewUserRepository(pool)

	user := &domain.User{
		ID:        uuid.NewString(),
		Subject:   "auth0|student-2",
		Role:      domain.UserRoleStudent,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	stored, err := userRepo.Upsert(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, stored.Email)

	retrieved, err := userRepo.GetBySubject(ctx, "auth0|student-2")
	require.NoError(t, err)
	assert.Empty(t, retrieved.Email)
}

func TestUserRepository_GetBySubject(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	userRepo := NewUserRepository(pool)

	user := &domain.User{
		ID:        uuid.NewString(),
		Subject:   "auth0|student-3",
		Email:     "student3@uni.edu",
		Role:      domain.UserRoleStudent,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	_, err := userRepo.Upsert(ctx, user)
	require.NoError(t, err)

	retrieved, err := userRepo.GetBySubject(ctx, "auth0|student-3")
	require.NoError(t, err)
	assert.Equal(t, user.ID, retrieved.ID)
	assert.Equal(t, user.Email, retrieved.Email)
}

func TestUserRepository_GetBySubject_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	userRepo := NewUserRepository(pool)

	_, err := userRepo.GetBySubject(ctx, "auth0|nobody")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_UpdateRole(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	userRepo := NewUserRepository(pool)

	user := &domain.User{
		ID:        uuid.NewString(),
		Subject:   "auth0|student-4",
		Role:      domain.UserRoleStudent,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	_, err := userRepo.Upsert(ctx, user)
	require.NoError(t, err)

	err = userRepo.UpdateRole(ctx, "auth0|student-4", domain.UserRoleTA)
	require.NoError(t, err)

	retrieved, err := userRepo.GetBySubject(ctx, "auth0|student-4")
	require.NoError(t, err)
	assert.Equal(t, domain.UserRoleTA, retrieved.Role)
	assert.True(t, retrieved.CanReview())
}

func TestUserRepository_UpdateRole_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	userRepo := NewUserRepository(pool)

	err := userRepo.UpdateRole(ctx, "auth0|nobody", domain.UserRoleTA)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
