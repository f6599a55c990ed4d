package domain

import (
	"fmt"
	"time"
)

// DocumentFileType represents the ingestable upload formats
type DocumentFileType string

const (
	DocumentFileTypePDF DocumentFileType = "pdf"
	DocumentFileTypeVTT DocumentFileType = "vtt"
)

// DocumentStatus tracks a course document through the ingestion lifecycle
type DocumentStatus string

const (
	DocumentStatusPending    DocumentStatus = "pending"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusChunked    DocumentStatus = "chunked"
	DocumentStatusEmbedding  DocumentStatus = "embedding"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// CourseDocument represents an ingested course material upload.
// Raw file bytes are not retained; only the derived chunks are stored.
type CourseDocument struct {
	ID         string
	CourseID   string
	FileName   string
	FileType   DocumentFileType
	Status     DocumentStatus
	ChunkCount int
	LastError  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewCourseDocument creates a new CourseDocument instance in the pending state
func NewCourseDocument(id, courseID, fileName string, fileType DocumentFileType, createdAt time.Time) *CourseDocument {
	return &CourseDocument{
		ID:        id,
		CourseID:  courseID,
		FileName:  fileName,
		FileType:  fileType,
		Status:    DocumentStatusPending,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// ValidateCourseDocument validates a CourseDocument instance
func ValidateCourseDocument(d *CourseDocument) error {
	if d == nil {
		return fmt.Errorf("course document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("course document ID is required")
	}

	if d.CourseID == "" {
		return fmt.Errorf("course document CourseID is required")
	}

	if d.FileName == "" {
		return fmt.Errorf("course document FileName is required")
	}

	if !isValidDocumentFileType(d.FileType) {
		return fmt.Errorf("course document FileType is invalid: %s", d.FileType)
	}

	if !isValidDocumentStatus(d.Status) {
		return fmt.Errorf("course document Status is invalid: %s", d.Status)
	}

	if d.ChunkCount < 0 {
		return fmt.Errorf("course document ChunkCount cannot be negative")
	}

	return nil
}

// isValidDocumentFileType checks if a DocumentFileType is valid
func isValidDocumentFileType(t DocumentFileType) bool {
	switch t {
	case DocumentFileTypePDF, DocumentFileTypeVTT:
		return true
	}
	return false
}

// isValidDocumentStatus checks if a DocumentStatus is valid
func isValidDocumentStatus(s DocumentStatus) bool {
	switch s {
	case DocumentStatusPending, DocumentStatusProcessing, DocumentStatusChunked,
		DocumentStatusEmbedding, DocumentStatusCompleted, DocumentStatusFailed:
		return true
	}
	return false
}
