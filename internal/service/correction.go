package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/telemetry"
)

// VerifiedAnswerRepositoryInterface defines the repository interface for verified answer persistence
type VerifiedAnswerRepositoryInterface interface {
	Create(ctx context.Context, v *domain.VerifiedAnswer) error
	SearchByEmbedding(ctx context.Context, embedding []float32, courseID string, limit int) ([]domain.ScoredVerifiedAnswer, error)
}

// CorrectionService turns TA corrections into verified answers that future
// retrievals can surface ahead of raw course material.
type CorrectionService struct {
	qaLogRepo QALogRepositoryInterface
	embedder  Embedder
	txRunner  TxRunner
	uuidGen   UUIDGenerator
}

// NewCorrectionService creates a new CorrectionService instance
func NewCorrectionService(qaLogRepo QALogRepositoryInterface, embedder Embedder, txRunner TxRunner) *CorrectionService {
	return &CorrectionService{
		qaLogRepo: qaLogRepo,
		embedder:  embedder,
		txRunner:  txRunner,
		uuidGen:   &DefaultUUIDGenerator{},
	}
}

// NewCorrectionServiceWithUUIDGen creates a new CorrectionService with custom UUID generator (for testing)
func NewCorrectionServiceWithUUIDGen(qaLogRepo QALogRepositoryInterface, embedder Embedder, txRunner TxRunner, uuidGen UUIDGenerator) *CorrectionService {
	s := NewCorrectionService(qaLogRepo, embedder, txRunner)
	s.uuidGen = uuidGen
	return s
}

// SubmitCorrectionInput represents the input for submitting a TA correction
type SubmitCorrectionInput struct {
	QALogID        string
	CourseID       string
	VerifiedAnswer string
	CreatedBy      string
}

// Submit stores a corrected answer for the question behind a logged
// interaction. The original question is embedded once; the verified answer
// insert and the status flip to reviewed happen in one transaction. A log may
// be corrected again, which adds another verified answer for the question.
func (s *CorrectionService) Submit(ctx context.Context, input SubmitCorrectionInput) (*domain.VerifiedAnswer, error) {
	ctx, span := telemetry.StartSpan(ctx, "CorrectionService.Submit", telemetry.SpanAttributes{
		CourseID:  input.CourseID,
		QALogID:   input.QALogID,
		Operation: "submit_correction",
	})
	defer span.End()

	answerText := strings.TrimSpace(input.VerifiedAnswer)
	if answerText == "" {
		return nil, domain.ErrEmptyCorrection
	}

	qaLog, err := s.qaLogRepo.GetByID(ctx, input.QALogID)
	if err != nil {
		return nil, err
	}
	if qaLog.CourseID != input.CourseID {
		return nil, domain.ErrCourseMismatch
	}

	embedding, err := s.embedder.EmbedText(ctx, qaLog.Question)
	if err != nil {
		span.SetError(err)
		return nil, embedErrorToDomain(err)
	}

	verified := domain.NewVerifiedAnswer(
		s.uuidGen.NewString(),
		qaLog.CourseID,
		qaLog.Question,
		answerText,
		embedding,
		input.CreatedBy,
		time.Now().UTC(),
	)
	if err := domain.ValidateVerifiedAnswer(verified); err != nil {
		return nil, err
	}

	if err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.VerifiedAnswers().Create(ctx, verified); err != nil {
			return fmt.Errorf("failed to store verified answer: %w", err)
		}
		if err := repos.QALogs().UpdateStatus(ctx, qaLog.ID, domain.QALogStatusReviewed); err != nil {
			return fmt.Errorf("failed to mark interaction reviewed: %w", err)
		}
		return nil
	}); err != nil {
		span.SetError(err)
		return nil, err
	}

	return verified, nil
}
