package handlers

import (
	"context"
	"net/http"

	"github.com/studyhall-ai/studyhall/internal/api"
	"github.com/studyhall-ai/studyhall/internal/api/middleware"
	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/service"
)

type AnalyticsService interface {
	Summary(ctx context.Context, courseID, timeRange string) (*service.CourseAnalytics, error)
	TopConcepts(ctx context.Context, courseID string) ([]string, error)
}

type AnalyticsHandler struct {
	svc AnalyticsService
}

func NewAnalyticsHandler(svc AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// Summary returns usage aggregates for a course over the requested range.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
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

	summary, err := h.svc.Summary(r.Context(), courseID, r.URL.Query().Get("time_range"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, summary)
}

type TopConceptsResponse struct {
	Concepts []string `json:"concepts"`
}

// TopConcepts returns a short model-derived list of question topics.
func (h *AnalyticsHandler) TopConcepts(w http.ResponseWriter, r *http.Request) {
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

	concepts, err := h.svc.TopConcepts(r.Context(), courseID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, TopConceptsResponse{Concepts: concepts})
}
