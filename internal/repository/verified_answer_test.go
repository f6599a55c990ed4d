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

func verifiedAnswer(courseID string, hot int, question, answer string) *domain.VerifiedAnswer {
	return &domain.VerifiedAnswer{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		Question:  question,
		Answer:    answer,
		Embedding: testVector(hot),
		CreatedBy: "ta-1",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestVerifiedAnswerRepository_Create(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	courseRepo := NewCourseRepository(pool)
	vaRepo := NewVerifiedAnswerRepository(pool)

	course := setupCourseForDocuments(ctx, t, courseRepo)

	va := verifiedAnswer(course.ID, 0, "What is a mutex?", "A mutex serializes access to shared state.")
	err := vaRepo.Create(ctx, va)
	require.NoError(t, err)

	results, err := vaRepo.SearchByEmbedding(ctx, testVector(0), course.ID, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, va.ID, results[0].ID)
	assert.Equal(t, va.Question, results[0].Question)
	assert.Equal(t, va.Answer, results[0].Answer)
	assert.Equal(t, "ta-1", results[0].CreatedBy)
	require.NotNil(t, results[0].Score)
	assert.InDelta(t, 1.0, *results[0].Score, 0.01)
}

func TestVerifiedAnswerRepository_Create_EmptyCreatedBy(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	courseRepo := NewCourseRepository(pool)
	vaRepo := NewVerifiedAnswerRepository(pool)

	course := setupCourseForDocuments(ctx, t, courseRepo)

	va := verifiedAnswer(course.ID, 0, "What is a semaphore?", "A semaphore counts permits.")
	va.CreatedBy = ""
	require.NoError(t, vaRepo.Create(ctx, va))

	results, err := vaRepo.SearchByEmbedding(ctx, testVector(0), course.ID, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].CreatedBy)
}

func TestVerifiedAnswerRepository_SearchByEmbedding_Ordering(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	courseRepo := NewCourseRepository(pool)
	vaRepo := NewVerifiedAnswerRepository(pool)

	course := setupCourseForDocuments(ctx, t, courseRepo)
	other := setupCourseForDocuments(ctx, t, courseRepo)

	near := verifiedAnswer(course.ID, 0, "What is a mutex?", "A mutex serializes access.")
	far := verifiedAnswer(course.ID, 1, "What is paging?", "Paging maps virtual addresses.")
	foreign := verifiedAnswer(other.ID, 0, "What is a mutex?", "Answer from another course.")

	require.NoError(t, vaRepo.Create(ctx, near))
	require.NoError(t, vaRepo.Create(ctx, far))
	require.NoError(t, vaRepo.Create(ctx, foreign))

	results, err := vaRepo.SearchByEmbedding(ctx, testVector(0), course.ID, 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, near.ID, results[0].ID)
	assert.Equal(t, far.ID, results[1].ID)
	require.NotNil(t, results[1].Score)
	assert.InDelta(t, 0.5, *results[1].Score, 0.01)
}

func TestVerifiedAnswerRepository_SearchByEmbedding_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	courseRepo := NewCourseRepository(pool)
	vaRepo := NewVerifiedAnswerRepository(pool)

	course := setupCourseForDocuments(ctx, t, courseRepo)

	for i := 0; i < 4; i++ {
		va := verifiedAnswer(course.ID, i, "Question?", "Answer.")
		require.NoError(t, vaRepo.Create(ctx, va))
	}

	results, err := vaRepo.SearchByEmbedding(ctx, testVector(0), course.ID, 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestVerifiedAnswerRepository_SearchByEmbedding_Empty(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	vaRepo := NewVerifiedAnswerRepository(pool)

	results, err := vaRepo.SearchByEmbedding(ctx, testVector(0), uuid.NewString(), 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
