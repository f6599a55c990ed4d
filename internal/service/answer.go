package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/llm"
	"github.com/studyhall-ai/studyhall/internal/telemetry"
)

// FallbackAnswer is the exact phrase returned when no grounding material
// exists for a question. The generation prompt instructs the model to emit
// the same phrase when the context is off-topic, and the confidence heuristic
// recognizes it as a hedge.
const FallbackAnswer = "I don't have enough information in the course materials to answer this question"

const answerPromptTemplate = `System: %s

Context (use ONLY this information to answer):
%s

User Question: %s

Instructions:
- Answer the question using ONLY the context provided above
- Include citations in your answer in the format: (source_name, page X) or (source_name, timestamp Xs)
- If the context doesn't contain relevant information, say "%s"
- Be helpful and clear in your explanation

Answer:`

// Retriever gathers grounding material for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question, courseID string, kChunks, kVerified int) (*RetrievalResult, error)
}

// Generator runs one text generation call against the hosted model.
type Generator interface {
	GenerateText(ctx context.Context, req llm.GenerationRequest) (string, error)
}

// AskInput represents the input for answering a question
type AskInput struct {
	CourseID string
	UserID   string
	Question string
}

// AnswerConfig carries the pipeline tunables resolved at startup.
type AnswerConfig struct {
	RetrievalChunks   int
	RetrievalVerified int
	SelfEvalEnabled   bool
}

// AnswerService runs the full question-answering pipeline: retrieve, assemble
// context, generate, score, cite, and persist the interaction log.
type AnswerService struct {
	retriever  Retriever
	generator  Generator
	courseRepo CourseRepositoryInterface
	qaLogRepo  QALogRepositoryInterface
	uuidGen    UUIDGenerator
	cfg        AnswerConfig
}

// NewAnswerService creates a new AnswerService instance
func NewAnswerService(
	retriever Retriever,
	generator Generator,
	courseRepo CourseRepositoryInterface,
	qaLogRepo QALogRepositoryInterface,
	cfg AnswerConfig,
) *AnswerService {
	return &AnswerService{
		retriever:  retriever,
		generator:  generator,
		courseRepo: courseRepo,
		qaLogRepo:  qaLogRepo,
		uuidGen:    &DefaultUUIDGenerator{},
		cfg:        cfg,
	}
}

// NewAnswerServiceWithUUIDGen creates a new AnswerService with custom UUID generator (for testing)
func NewAnswerServiceWithUUIDGen(
	retriever Retriever,
	generator Generator,
	courseRepo CourseRepositoryInterface,
	qaLogRepo QALogRepositoryInterface,
	cfg AnswerConfig,
	uuidGen UUIDGenerator,
) *AnswerService {
	s := NewAnswerService(retriever, generator, courseRepo, qaLogRepo, cfg)
	s.uuidGen = uuidGen
	return s
}

// Ask answers a student question against the course materials and records the
// interaction. An empty retrieval is a valid outcome: the fixed fallback
// phrase is returned without a generation call, with no citations and a
// heuristic-only confidence.
func (s *AnswerService) Ask(ctx context.Context, input AskInput) (*domain.AnswerPackage, error) {
	ctx, span := telemetry.StartSpan(ctx, "AnswerService.Ask", telemetry.SpanAttributes{
		CourseID:  input.CourseID,
		UserID:    input.UserID,
		Operation: "ask",
	})
	defer span.End()

	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, domain.ErrEmptyQuestion
	}

	course, err := s.courseRepo.GetByID(ctx, input.CourseID)
	if err != nil {
		return nil, err
	}

	retrieved, err := s.retriever.Retrieve(ctx, question, course.ID, s.cfg.RetrievalChunks, s.cfg.RetrievalVerified)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	contextText, sources := BuildContext(retrieved.Chunks, retrieved.Verified)

	answer := FallbackAnswer
	if contextText != "" {
		prompt := buildAnswerPrompt(course.EffectiveSystemPrompt(), contextText, question)
		answer, err = s.generator.GenerateText(ctx, llm.GenerationRequest{Prompt: prompt})
		if err != nil {
			span.SetError(err)
			return nil, generationErrorToDomain(err)
		}
	}

	citations := ExtractCitations(sources)
	heuristic := HeuristicConfidence(answer, len(retrieved.Chunks), len(retrieved.Verified))
	retrievalConfidence := RetrievalConfidence(question, retrieved.Chunks)

	var modelConfidence *float64
	if s.cfg.SelfEvalEnabled && contextText != "" {
		modelConfidence = s.selfEvaluate(ctx, question, retrieved.Chunks, answer)
	}
	confidence := CombineConfidence(heuristic, modelConfidence)

	qaLog := domain.NewQALog(
		s.uuidGen.NewString(),
		course.ID,
		input.UserID,
		question,
		answer,
		citations,
		confidence,
		&retrievalConfidence,
		time.Now().UTC(),
	)
	if err := domain.ValidateQALog(qaLog); err != nil {
		return nil, err
	}
	if err := s.qaLogRepo.Create(ctx, qaLog); err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to record interaction", err)
	}

	return &domain.AnswerPackage{
		Answer:              answer,
		Citations:           citations,
		ConfidenceScore:     confidence,
		RetrievalConfidence: &retrievalConfidence,
		SourcesUsed:         len(sources),
		QALogID:             qaLog.ID,
	}, nil
}

func buildAnswerPrompt(systemPrompt, contextText, question string) string {
	return fmt.Sprintf(answerPromptTemplate, systemPrompt, contextText, question, FallbackAnswer)
}

func generationErrorToDomain(err error) error {
	if llm.IsQuota(err) {
		return domain.NewDomainErrorWithCause(domain.ErrCodeProviderQuota, "generation quota exceeded", err)
	}
	return domain.NewDomainErrorWithCause(domain.ErrCodeProviderFailure, "generation provider unavailable", err)
}
