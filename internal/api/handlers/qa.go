package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/studyhall-ai/studyhall/internal/api"
	"github.com/studyhall-ai/studyhall/internal/api/middleware"
	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/service"
)

type AskService interface {
	Ask(ctx context.Context, input service.AskInput) (*domain.AnswerPackage, error)
}

type CorrectionService interface {
	Submit(ctx context.Context, input service.SubmitCorrectionInput) (*domain.VerifiedAnswer, error)
}

type QAHandler struct {
	ask         AskService
	corrections CorrectionService
}

func NewQAHandler(ask AskService, corrections CorrectionService) *QAHandler {
	return &QAHandler{ask: ask, corrections: corrections}
}

type AskQuestionRequest struct {
	Question string `json:"question"`
	CourseID string `json:"course_id"`
}

type AskQuestionResponse struct {
	Answer              string            `json:"answer"`
	Citations           []domain.Citation `json:"citations"`
	SourcesUsed         int               `json:"sources_used"`
	ConfidenceScore     float64           `json:"confidence_score"`
	RetrievalConfidence *float64          `json:"retrieval_confidence"`
	QALogID             string            `json:"qa_log_id"`
}

func (h *QAHandler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		api.Error(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req AskQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "invalid request body")
		return
	}

	if req.Question == "" {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "question is required")
		return
	}
	if req.CourseID == "" {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "course_id is required")
		return
	}

	pkg, err := h.ask.Ask(r.Context(), service.AskInput{
		CourseID: req.CourseID,
		UserID:   user.ID,
		Question: req.Question,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, AskQuestionResponse{
		Answer:              pkg.Answer,
		Citations:           pkg.Citations,
		SourcesUsed:         pkg.SourcesUsed,
		ConfidenceScore:     pkg.ConfidenceScore,
		RetrievalConfidence: pkg.RetrievalConfidence,
		QALogID:             pkg.QALogID,
	})
}

type SubmitCorrectionRequest struct {
	QALogID        string `json:"qa_log_id"`
	VerifiedAnswer string `json:"verified_answer"`
	CourseID       string `json:"course_id"`
}

type SubmitCorrectionResponse struct {
	Message          string `json:"message"`
	VerifiedAnswerID string `json:"verified_answer_id"`
}

func (h *QAHandler) SubmitCorrection(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		api.Error(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if !user.CanReview() {
		api.HandleError(w, domain.ErrReviewerOnly)
		return
	}

	var req SubmitCorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "invalid request body")
		return
	}

	if req.QALogID == "" {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "qa_log_id is required")
		return
	}
	if req.VerifiedAnswer == "" {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "verified_answer is required")
		return
	}
	if req.CourseID == "" {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "course_id is required")
		return
	}

	verified, err := h.corrections.Submit(r.Context(), service.SubmitCorrectionInput{
		QALogID:        req.QALogID,
		CourseID:       req.CourseID,
		VerifiedAnswer: req.VerifiedAnswer,
		CreatedBy:      user.ID,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, SubmitCorrectionResponse{
		Message:          "Correction submitted successfully",
		VerifiedAnswerID: verified.ID,
	})
}
