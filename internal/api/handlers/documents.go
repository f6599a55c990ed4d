package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/studyhall-ai/studyhall/internal/api"
	"github.com/studyhall-ai/studyhall/internal/api/middleware"
	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/service"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing;
// larger uploads spill to temp files.
const maxUploadMemory = 10 << 20

type IngestionService interface {
	IngestUpload(ctx context.Context, input service.IngestUploadInput) (*domain.CourseDocument, error)
	ListDocuments(ctx context.Context, courseID string) ([]*domain.CourseDocument, error)
}

type DocumentsHandler struct {
	svc IngestionService
}

func NewDocumentsHandler(svc IngestionService) *DocumentsHandler {
	return &DocumentsHandler{svc: svc}
}

type DocumentResponse struct {
	ID         string `json:"id"`
	CourseID   string `json:"course_id"`
	FileName   string `json:"file_name"`
	FileType   string `json:"file_type"`
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count"`
	LastError  string `json:"last_error,omitempty"`
	CreatedAt  string `json:"created_at"`
}

func documentToResponse(d *domain.CourseDocument) *DocumentResponse {
	return &DocumentResponse{
		ID:         d.ID,
		CourseID:   d.CourseID,
		FileName:   d.FileName,
		FileType:   string(d.FileType),
		Status:     string(d.Status),
		ChunkCount: d.ChunkCount,
		LastError:  d.LastError,
		CreatedAt:  d.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

type UploadDocumentResponse struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count"`
}

// Upload accepts a multipart form with course_id and file fields. The file
// is parsed in-request; only chunks and the status row are stored.
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		api.Error(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if !user.CanReview() {
		api.HandleError(w, domain.ErrReviewerOnly)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "invalid multipart form")
		return
	}

	courseID := r.FormValue("course_id")
	if courseID == "" {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "course_id is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "file is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "could not read uploaded file")
		return
	}

	doc, err := h.svc.IngestUpload(r.Context(), service.IngestUploadInput{
		CourseID: courseID,
		FileName: header.Filename,
		Content:  content,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, UploadDocumentResponse{
		DocumentID: doc.ID,
		Status:     string(doc.Status),
		ChunkCount: doc.ChunkCount,
	})
}

type DocumentListResponse struct {
	Documents []*DocumentResponse `json:"documents"`
}

// List returns a course's documents with their ingestion status.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
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

	docs, err := h.svc.ListDocuments(r.Context(), courseID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*DocumentResponse, len(docs))
	for i, d := range docs {
		responses[i] = documentToResponse(d)
	}

	api.Success(w, http.StatusOK, DocumentListResponse{Documents: responses})
}
