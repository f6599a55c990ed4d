package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/llm"
)

// MockEmbedder is a mock implementation of Embedder
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockChunkSearcher is a mock implementation of ChunkSearcher
type MockChunkSearcher struct {
	mock.Mock
}

func (m *MockChunkSearcher) SearchPrimary(ctx context.Context, embedding []float32, courseID string, limit int) ([]domain.ScoredChunk, error) {
	args := m.Called(ctx, embedding, courseID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredChunk), args.Error(1)
}

func (m *MockChunkSearcher) SearchLegacy(ctx context.Context, embedding []float32, limit int) ([]domain.ScoredChunk, error) {
	args := m.Called(ctx, embedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredChunk), args.Error(1)
}

// MockVerifiedAnswerRepository is a mock implementation of VerifiedAnswerRepositoryInterface
type MockVerifiedAnswerRepository struct {
	mock.Mock
}

func (m *MockVerifiedAnswerRepository) Create(ctx context.Context, v *domain.VerifiedAnswer) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVerifiedAnswerRepository) SearchByEmbedding(ctx context.Context, embedding []float32, courseID string, limit int) ([]domain.ScoredVerifiedAnswer, error) {
	args := m.Called(ctx, embedding, courseID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredVerifiedAnswer), args.Error(1)
}

func courseChunk(content, courseID string) domain.ScoredChunk {
	return domain.ScoredChunk{
		Chunk: domain.Chunk{
			Content: content,
			Metadata: domain.ChunkMetadata{
				FileName: "lecture3.pdf",
				Type:     domain.SourceTypePDF,
				CourseID: courseID,
			},
		},
	}
}

func TestRetrievalService_Retrieve(t *testing.T) {
	ctx := context.Background()
	embedding := []float32{0.1, 0.2, 0.3}

	t.Run("primary chunks and verified answers", func(t *testing.T) {
		embedder := new(MockEmbedder)
		chunks := new(MockChunkSearcher)
		verified := new(MockVerifiedAnswerRepository)
		svc := NewRetrievalService(embedder, chunks, verified)

		embedder.On("EmbedText", mock.Anything, "what is a deadlock").Return(embedding, nil)
		chunks.On("SearchPrimary", mock.Anything, embedding, "course-1", 4).Return([]domain.ScoredChunk{
			courseChunk("deadlock detection", "course-1"),
			courseChunk("deadlock prevention", "course-1"),
		}, nil)
		verified.On("SearchByEmbedding", mock.Anything, embedding, "course-1", 2).Return([]domain.ScoredVerifiedAnswer{
			{VerifiedAnswer: domain.VerifiedAnswer{ID: "va-1", Question: "what is a deadlock"}},
		}, nil)

		result, err := svc.Retrieve(ctx, "what is a deadlock", "course-1", 4, 2)

		require.NoError(t, err)
		assert.Len(t, result.Chunks, 2)
		assert.Len(t, result.Verified, 1)
		assert.Equal(t, embedding, result.Embedding)
		assert.False(t, result.UsedLegacy)
		chunks.AssertNotCalled(t, "SearchLegacy", mock.Anything, mock.Anything, mock.Anything)
		embedder.AssertExpectations(t)
	})

	t.Run("empty primary falls back to legacy with course filter", func(t *testing.T) {
		embedder := new(MockEmbedder)
		chunks := new(MockChunkSearcher)
		verified := new(MockVerifiedAnswerRepository)
		svc := NewRetrievalService(embedder, chunks, verified)

		embedder.On("EmbedText", mock.Anything, mock.Anything).Return(embedding, nil)
		chunks.On("SearchPrimary", mock.Anything, embedding, "course-1", 4).Return([]domain.ScoredChunk{}, nil)
		chunks.On("SearchLegacy", mock.Anything, embedding, 8).Return([]domain.ScoredChunk{
			courseChunk("matching one", "course-1"),
			courseChunk("other course", "course-2"),
			courseChunk("matching two", "course-1"),
		}, nil)
		verified.On("SearchByEmbedding", mock.Anything, embedding, "course-1", 2).Return([]domain.ScoredVerifiedAnswer{}, nil)

		result, err := svc.Retrieve(ctx, "what is a deadlock", "course-1", 4, 2)

		require.NoError(t, err)
		require.Len(t, result.Chunks, 2)
		assert.Equal(t, "matching one", result.Chunks[0].Content)
		assert.Equal(t, "matching two", result.Chunks[1].Content)
		assert.True(t, result.UsedLegacy)
		chunks.AssertExpectations(t)
	})

	t.Run("legacy over-fetch has a floor", func(t *testing.T) {
		embedder := new(MockEmbedder)
		chunks := new(MockChunkSearcher)
		verified := new(MockVerifiedAnswerRepository)
		svc := NewRetrievalService(embedder, chunks, verified)

		embedder.On("EmbedText", mock.Anything, mock.Anything).Return(embedding, nil)
		chunks.On("SearchPrimary", mock.Anything, embedding, "course-1", 2).Return([]domain.ScoredChunk{}, nil)
		chunks.On("SearchLegacy", mock.Anything, embedding, 6).Return([]domain.ScoredChunk{
			courseChunk("one", "course-1"),
			courseChunk("two", "course-1"),
			courseChunk("three", "course-1"),
		}, nil)

		result, err := svc.Retrieve(ctx, "question", "course-1", 2, 0)

		require.NoError(t, err)
		assert.Len(t, result.Chunks, 2)
		chunks.AssertExpectations(t)
	})

	t.Run("primary error falls back to legacy", func(t *testing.T) {
		embedder := new(MockEmbedder)
		chunks := new(MockChunkSearcher)
		verified := new(MockVerifiedAnswerRepository)
		svc := NewRetrievalService(embedder, chunks, verified)

		embedder.On("EmbedText", mock.Anything, mock.Anything).Return(embedding, nil)
		chunks.On("SearchPrimary", mock.Anything, embedding, "course-1", 4).Return(nil, fmt.Errorf("relation does not exist"))
		chunks.On("SearchLegacy", mock.Anything, embedding, 8).Return([]domain.ScoredChunk{
			courseChunk("legacy row", "course-1"),
		}, nil)

		result, err := svc.Retrieve(ctx, "question", "course-1", 4, 0)

		require.NoError(t, err)
		assert.Len(t, result.Chunks, 1)
		assert.True(t, result.UsedLegacy)
	})

	t.Run("both chunk searches failing is fatal", func(t *testing.T) {
		embedder := new(MockEmbedder)
		chunks := new(MockChunkSearcher)
		verified := new(MockVerifiedAnswerRepository)
		svc := NewRetrievalService(embedder, chunks, verified)

		embedder.On("EmbedText", mock.Anything, mock.Anything).Return(embedding, nil)
		chunks.On("SearchPrimary", mock.Anything, embedding, "course-1", 4).Return(nil, fmt.Errorf("primary down"))
		chunks.On("SearchLegacy", mock.Anything, embedding, 8).Return(nil, fmt.Errorf("legacy down"))

		_, err := svc.Retrieve(ctx, "question", "course-1", 4, 0)

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeInternalError, domainErr.Code)
	})

	t.Run("legacy failure after clean empty primary is not fatal", func(t *testing.T) {
		embedder := new(MockEmbedder)
		chunks := new(MockChunkSearcher)
		verified := new(MockVerifiedAnswerRepository)
		svc := NewRetrievalService(embedder, chunks, verified)

		embedder.On("EmbedText", mock.Anything, mock.Anything).Return(embedding, nil)
		chunks.On("SearchPrimary", mock.Anything, embedding, "course-1", 4).Return([]domain.ScoredChunk{}, nil)
		chunks.On("SearchLegacy", mock.Anything, embedding, 8).Return(nil, fmt.Errorf("legacy down"))

		result, err := svc.Retrieve(ctx, "question", "course-1", 4, 0)

		require.NoError(t, err)
		assert.Empty(t, result.Chunks)
		assert.False(t, result.UsedLegacy)
	})

	t.Run("verified search failure degrades to chunks only", func(t *testing.T) {
		embedder := new(MockEmbedder)
		chunks := new(MockChunkSearcher)
		verified := new(MockVerifiedAnswerRepository)
		svc := NewRetrievalService(embedder, chunks, verified)

		embedder.On("EmbedText", mock.Anything, mock.Anything).Return(embedding, nil)
		chunks.On("SearchPrimary", mock.Anything, embedding, "course-1", 4).Return([]domain.ScoredChunk{
			courseChunk("deadlock detection", "course-1"),
		}, nil)
		verified.On("SearchByEmbedding", mock.Anything, embedding, "course-1", 2).Return(nil, fmt.Errorf("table missing"))

		result, err := svc.Retrieve(ctx, "question", "course-1", 4, 2)

		require.NoError(t, err)
		assert.Len(t, result.Chunks, 1)
		assert.Empty(t, result.Verified)
	})

	t.Run("zero verified budget skips verified search", func(t *testing.T) {
		embedder := new(MockEmbedder)
		chunks := new(MockChunkSearcher)
		verified := new(MockVerifiedAnswerRepository)
		svc := NewRetrievalService(embedder, chunks, verified)

		embedder.On("EmbedText", mock.Anything, mock.Anything).Return(embedding, nil)
		chunks.On("SearchPrimary", mock.Anything, embedding, "course-1", 4).Return([]domain.ScoredChunk{
			courseChunk("deadlock detection", "course-1"),
		}, nil)

		_, err := svc.Retrieve(ctx, "question", "course-1", 4, 0)

		require.NoError(t, err)
		verified.AssertNotCalled(t, "SearchByEmbedding", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("zero chunk budget skips chunk search", func(t *testing.T) {
		embedder := new(MockEmbedder)
		chunks := new(MockChunkSearcher)
		verified := new(MockVerifiedAnswerRepository)
		svc := NewRetrievalService(embedder, chunks, verified)

		embedder.On("EmbedText", mock.Anything, mock.Anything).Return(embedding, nil)
		verified.On("SearchByEmbedding", mock.Anything, embedding, "course-1", 2).Return([]domain.ScoredVerifiedAnswer{}, nil)

		result, err := svc.Retrieve(ctx, "question", "course-1", 0, 2)

		require.NoError(t, err)
		assert.Empty(t, result.Chunks)
		chunks.AssertNotCalled(t, "SearchPrimary", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("embedding errors map to domain codes", func(t *testing.T) {
		tests := []struct {
			name     string
			embedErr error
			wantCode string
		}{
			{"quota", llm.ErrQuotaExceeded, domain.ErrCodeProviderQuota},
			{"wrong dimensions", fmt.Errorf("%w: got 768, expected 3072", llm.ErrWrongDimensions), domain.ErrCodeConfiguration},
			{"other", errors.New("connection reset"), domain.ErrCodeProviderFailure},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				embedder := new(MockEmbedder)
				svc := NewRetrievalService(embedder, new(MockChunkSearcher), new(MockVerifiedAnswerRepository))

				embedder.On("EmbedText", mock.Anything, mock.Anything).Return(nil, tt.embedErr)

				_, err := svc.Retrieve(ctx, "question", "course-1", 4, 2)

				var domainErr *domain.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, tt.wantCode, domainErr.Code)
			})
		}
	})
}
