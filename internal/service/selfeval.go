package service

import (
	"context"
	"encoding/json"

	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/llm"
	"github.com/studyhall-ai/studyhall/internal/telemetry"
)

const selfEvalSystemPrompt = "You are an impartial evaluator. Given the QUESTION, RETRIEVED_CHUNKS, and ANSWER, output strict JSON assessing the answer. JSON keys: used_chunk_indices (array of ints), hallucination_risk (0-1), coverage (0-1), answer_quality (0-1), final_confidence (0-1), rationale (string <=400 chars). 'final_confidence' should reflect overall trustworthiness considering hallucination risk and coverage. Respond ONLY with JSON."

// selfEvalChunkPreviewChars caps how much of each chunk the evaluator sees.
const selfEvalChunkPreviewChars = 800

type selfEvalChunk struct {
	Index   int      `json:"index"`
	Score   *float64 `json:"score"`
	Content string   `json:"content"`
}

type selfEvalPayload struct {
	Question        string          `json:"question"`
	RetrievedChunks []selfEvalChunk `json:"retrieved_chunks"`
	Answer          string          `json:"answer"`
}

// selfEvaluate runs the optional second model pass that scores the generated
// answer against its chunks. Every failure mode degrades to nil so the
// heuristic confidence can stand alone.
func (s *AnswerService) selfEvaluate(ctx context.Context, question string, chunks []domain.ScoredChunk, answer string) *float64 {
	ctx, span := telemetry.StartSpan(ctx, "AnswerService.selfEvaluate", telemetry.SpanAttributes{
		Operation: "self_eval",
	})
	defer span.End()

	payload := selfEvalPayload{
		Question:        question,
		RetrievedChunks: make([]selfEvalChunk, 0, len(chunks)),
		Answer:          answer,
	}
	for i, c := range chunks {
		payload.RetrievedChunks = append(payload.RetrievedChunks, selfEvalChunk{
			Index:   i + 1,
			Score:   c.Score,
			Content: truncateRunes(c.Content, selfEvalChunkPreviewChars),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		telemetry.CaptureError(ctx, err)
		return nil
	}

	raw, err := s.generator.GenerateText(ctx, llm.GenerationRequest{
		Prompt:       string(body),
		SystemPrompt: selfEvalSystemPrompt,
	})
	if err != nil {
		telemetry.AddBreadcrumb(ctx, "self_eval", "evaluation call failed, keeping heuristic confidence")
		telemetry.CaptureError(ctx, err)
		return nil
	}

	eval, parseFailure := DecodeSelfEval(raw)
	if parseFailure != nil {
		telemetry.AddBreadcrumb(ctx, "self_eval", "evaluation output was not valid JSON, keeping heuristic confidence")
		return nil
	}

	return ModelConfidence(eval)
}
