package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/studyhall-ai/studyhall/internal/api"
	"github.com/studyhall-ai/studyhall/internal/api/middleware"
	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/service"
)

type ChatLogService interface {
	ListChatLogs(ctx context.Context, input service.ListChatLogsInput) (*service.ListLogsOutput, error)
	ListQALogs(ctx context.Context, input service.ListQALogsInput) (*service.ListLogsOutput, error)
	Flag(ctx context.Context, qaLogID, courseID string) error
}

type LogsHandler struct {
	svc ChatLogService
}

func NewLogsHandler(svc ChatLogService) *LogsHandler {
	return &LogsHandler{svc: svc}
}

type QALogResponse struct {
	ID                  string            `json:"id"`
	CourseID            string            `json:"course_id"`
	UserID              string            `json:"user_id"`
	Question            string            `json:"question"`
	AIAnswer            string            `json:"ai_answer"`
	SourcesCited        []domain.Citation `json:"sources_cited"`
	ConfidenceScore     float64           `json:"confidence_score"`
	RetrievalConfidence *float64          `json:"retrieval_confidence"`
	Status              string            `json:"status"`
	CreatedAt           string            `json:"created_at"`
}

func qaLogToResponse(l *domain.QALog) *QALogResponse {
	return &QALogResponse{
		ID:                  l.ID,
		CourseID:            l.CourseID,
		UserID:              l.UserID,
		Question:            l.Question,
		AIAnswer:            l.AIAnswer,
		SourcesCited:        l.SourcesCited,
		ConfidenceScore:     l.ConfidenceScore,
		RetrievalConfidence: l.RetrievalConfidence,
		Status:              string(l.Status),
		CreatedAt:           l.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

type LogListResponse struct {
	Logs       []*QALogResponse `json:"logs"`
	NextCursor string           `json:"next_cursor,omitempty"`
	HasMore    bool             `json:"has_more"`
}

func logListResponse(output *service.ListLogsOutput) LogListResponse {
	logs := make([]*QALogResponse, len(output.Items))
	for i, l := range output.Items {
		logs[i] = qaLogToResponse(l)
	}
	return LogListResponse{
		Logs:       logs,
		NextCursor: output.Cursor,
		HasMore:    output.HasMore,
	}
}

// ListChatLogs returns the requesting user's own interaction history.
func (h *LogsHandler) ListChatLogs(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		api.Error(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "unauthorized")
		return
	}

	courseID := r.URL.Query().Get("course_id")
	if courseID == "" {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "course_id is required")
		return
	}

	output, err := h.svc.ListChatLogs(r.Context(), service.ListChatLogsInput{
		CourseID: courseID,
		UserID:   user.ID,
		Cursor:   r.URL.Query().Get("cursor"),
		Limit:    parseLimit(r, 20),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, logListResponse(output))
}

// ListQALogs returns the course-wide interaction log for reviewers.
func (h *LogsHandler) ListQALogs(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		api.Error(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if !user.CanReview() {
		api.HandleError(w, domain.ErrReviewerOnly)
		return
	}

	courseID := r.URL.Query().Get("course_id")
	if courseID == "" {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "course_id is required")
		return
	}

	output, err := h.svc.ListQALogs(r.Context(), service.ListQALogsInput{
		CourseID: courseID,
		Status:   r.URL.Query().Get("status"),
		Cursor:   r.URL.Query().Get("cursor"),
		Limit:    parseLimit(r, 20),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, logListResponse(output))
}

type FlagRequest struct {
	CourseID string `json:"course_id"`
}

type FlagResponse struct {
	Message string `json:"message"`
}

// Flag marks an interaction for review.
func (h *LogsHandler) Flag(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		api.Error(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if !user.CanReview() {
		api.HandleError(w, domain.ErrReviewerOnly)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "id is required")
		return
	}

	var req FlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "invalid request body")
		return
	}
	if req.CourseID == "" {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "course_id is required")
		return
	}

	if err := h.svc.Flag(r.Context(), id, req.CourseID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, FlagResponse{Message: "Question flagged for review"})
}

func parseLimit(r *http.Request, fallback int) int {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return fallback
	}
	if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
		return parsed
	}
	return fallback
}
