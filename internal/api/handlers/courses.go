package handlers

import (
	"context"
	"net/http"

	"github.com/studyhall-ai/studyhall/internal/api"
	"github.com/studyhall-ai/studyhall/internal/api/middleware"
	"github.com/studyhall-ai/studyhall/internal/domain"
)

// CourseDirectory lists the courses available to authenticated users.
type CourseDirectory interface {
	List(ctx context.Context) ([]*domain.Course, error)
}

// CoursesHandler serves the course directory
type CoursesHandler struct {
	courses CourseDirectory
}

// NewCoursesHandler creates a new CoursesHandler instance
func NewCoursesHandler(courses CourseDirectory) *CoursesHandler {
	return &CoursesHandler{courses: courses}
}

// CourseResponse represents a course in API responses
type CourseResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	CreatedAt string `json:"created_at"`
}

// CourseListResponse represents the course directory response
type CourseListResponse struct {
	Courses []CourseResponse `json:"courses"`
}

// List handles GET /api/courses
func (h *CoursesHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		api.Error(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "authentication required")
		return
	}

	courses, err := h.courses.List(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := CourseListResponse{Courses: make([]CourseResponse, 0, len(courses))}
	for _, course := range courses {
		resp.Courses = append(resp.Courses, CourseResponse{
			ID:        course.ID,
			Name:      course.Name,
			Code:      course.Code,
			CreatedAt: course.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}

	api.Success(w, http.StatusOK, resp)
}
