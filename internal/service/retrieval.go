package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/llm"
	"github.com/studyhall-ai/studyhall/internal/telemetry"
)

// Embedder produces a fixed-dimension embedding for a piece of text.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// ChunkSearcher runs nearest-neighbor queries against the chunk stores.
type ChunkSearcher interface {
	SearchPrimary(ctx context.Context, embedding []float32, courseID string, limit int) ([]domain.ScoredChunk, error)
	SearchLegacy(ctx context.Context, embedding []float32, limit int) ([]domain.ScoredChunk, error)
}

// VerifiedAnswerSearcher runs nearest-neighbor queries against TA verified answers.
type VerifiedAnswerSearcher interface {
	SearchByEmbedding(ctx context.Context, embedding []float32, courseID string, limit int) ([]domain.ScoredVerifiedAnswer, error)
}

// RetrievalResult carries both halves of a dual retrieval plus the question
// embedding that produced them, so later stages never re-embed.
type RetrievalResult struct {
	Chunks     []domain.ScoredChunk
	Verified   []domain.ScoredVerifiedAnswer
	Embedding  []float32
	UsedLegacy bool
}

// RetrievalService embeds a question once and gathers grounding material for
// it from the chunk and verified answer stores.
type RetrievalService struct {
	embedder Embedder
	chunks   ChunkSearcher
	verified VerifiedAnswerSearcher
}

// NewRetrievalService creates a new RetrievalService instance
func NewRetrievalService(embedder Embedder, chunks ChunkSearcher, verified VerifiedAnswerSearcher) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		chunks:   chunks,
		verified: verified,
	}
}

// minLegacyFetch is the floor for the legacy over-fetch. The legacy table has
// no course column, so extra rows are pulled to survive client-side filtering.
const minLegacyFetch = 6

// Retrieve runs the dual retrieval for a question. Chunk retrieval tries the
// primary table and falls back to the legacy table when the primary search
// errors or matches nothing. Verified answer retrieval is independent and
// non-fatal: a failure there degrades to chunk-only grounding.
func (s *RetrievalService) Retrieve(ctx context.Context, question, courseID string, kChunks, kVerified int) (*RetrievalResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "RetrievalService.Retrieve", telemetry.SpanAttributes{
		CourseID:  courseID,
		Operation: "retrieve",
	})
	defer span.End()

	embedding, err := s.embedder.EmbedText(ctx, question)
	if err != nil {
		span.SetError(err)
		return nil, embedErrorToDomain(err)
	}

	result := &RetrievalResult{Embedding: embedding}

	chunks, usedLegacy, err := s.searchChunks(ctx, embedding, courseID, kChunks)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	result.Chunks = chunks
	result.UsedLegacy = usedLegacy

	if kVerified > 0 {
		verified, err := s.verified.SearchByEmbedding(ctx, embedding, courseID, kVerified)
		if err != nil {
			telemetry.AddBreadcrumb(ctx, "retrieval", "verified answer search failed, continuing with chunks only")
			telemetry.CaptureError(ctx, err)
		} else {
			result.Verified = verified
		}
	}

	return result, nil
}

// searchChunks implements the two-step chunk strategy. The legacy table
// cannot filter by course server-side, so the fallback over-fetches and keeps
// only rows whose metadata names the requested course.
func (s *RetrievalService) searchChunks(ctx context.Context, embedding []float32, courseID string, k int) ([]domain.ScoredChunk, bool, error) {
	if k <= 0 {
		return nil, false, nil
	}

	primary, primaryErr := s.chunks.SearchPrimary(ctx, embedding, courseID, k)
	if primaryErr == nil && len(primary) > 0 {
		return primary, false, nil
	}
	if primaryErr != nil {
		telemetry.AddBreadcrumb(ctx, "retrieval", fmt.Sprintf("primary chunk search failed, trying legacy table: %v", primaryErr))
	}

	fetch := k * 2
	if fetch < minLegacyFetch {
		fetch = minLegacyFetch
	}
	legacy, legacyErr := s.chunks.SearchLegacy(ctx, embedding, fetch)
	if legacyErr != nil {
		if primaryErr != nil {
			return nil, false, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "chunk retrieval failed", legacyErr)
		}
		// Primary succeeded with zero rows; a broken legacy table must not
		// turn that empty result into a request failure.
		telemetry.CaptureError(ctx, legacyErr)
		return nil, false, nil
	}

	filtered := make([]domain.ScoredChunk, 0, k)
	for _, c := range legacy {
		if c.Metadata.CourseID != courseID {
			continue
		}
		filtered = append(filtered, c)
		if len(filtered) == k {
			break
		}
	}
	return filtered, true, nil
}

func embedErrorToDomain(err error) error {
	switch {
	case llm.IsQuota(err):
		return domain.NewDomainErrorWithCause(domain.ErrCodeProviderQuota, "embedding quota exceeded", err)
	case errors.Is(err, llm.ErrWrongDimensions):
		return domain.NewDomainErrorWithCause(domain.ErrCodeConfiguration, "embedding dimensions mismatch", err)
	default:
		return domain.NewDomainErrorWithCause(domain.ErrCodeProviderFailure, "embedding provider unavailable", err)
	}
}
