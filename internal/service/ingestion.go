package service

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/ingest"
	"github.com/studyhall-ai/studyhall/internal/telemetry"
)

// ChunkRepositoryInterface defines the repository interface for chunk persistence
type ChunkRepositoryInterface interface {
	InsertBatch(ctx context.Context, chunks []*domain.Chunk) error
	ListUnembeddedByDocument(ctx context.Context, documentID string, limit int) ([]*domain.Chunk, error)
	UpdateEmbedding(ctx context.Context, id int64, embedding []float32) error
}

// CourseDocumentRepositoryInterface defines the repository interface for ingestion lifecycle tracking
type CourseDocumentRepositoryInterface interface {
	Create(ctx context.Context, d *domain.CourseDocument) error
	GetByID(ctx context.Context, id string) (*domain.CourseDocument, error)
	ListByCourse(ctx context.Context, courseID string) ([]*domain.CourseDocument, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error
	MarkChunked(ctx context.Context, id string, chunkCount int) error
	MarkFailed(ctx context.Context, id string, lastError string) error
	MarkCompleted(ctx context.Context, id string) error
	ClaimNextChunked(ctx context.Context) (*domain.CourseDocument, error)
}

// IngestionConfig carries the parsing tunables resolved at startup.
type IngestionConfig struct {
	MaxChunkChars           int
	TranscriptWindowSeconds float64
}

// IngestionService parses uploaded course materials and stores their chunks
// with embeddings left empty for the background worker to fill in. Raw upload
// bytes are never persisted.
type IngestionService struct {
	documentRepo CourseDocumentRepositoryInterface
	chunkRepo    ChunkRepositoryInterface
	courseRepo   CourseRepositoryInterface
	uuidGen      UUIDGenerator
	cfg          IngestionConfig
}

// NewIngestionService creates a new IngestionService instance
func NewIngestionService(
	documentRepo CourseDocumentRepositoryInterface,
	chunkRepo ChunkRepositoryInterface,
	courseRepo CourseRepositoryInterface,
	cfg IngestionConfig,
) *IngestionService {
	return &IngestionService{
		documentRepo: documentRepo,
		chunkRepo:    chunkRepo,
		courseRepo:   courseRepo,
		uuidGen:      &DefaultUUIDGenerator{},
		cfg:          cfg,
	}
}

// IngestUploadInput represents the input for ingesting one uploaded file
type IngestUploadInput struct {
	CourseID string
	FileName string
	Content  []byte
}

// IngestUpload parses an upload into chunks and records the document's
// progress through the lifecycle. The returned document is in the chunked
// state; embedding happens asynchronously. Parse failures mark the document
// failed and surface as validation errors.
func (s *IngestionService) IngestUpload(ctx context.Context, input IngestUploadInput) (*domain.CourseDocument, error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestionService.IngestUpload", telemetry.SpanAttributes{
		CourseID:  input.CourseID,
		Operation: "ingest",
	})
	defer span.End()

	if len(input.Content) == 0 {
		return nil, domain.ErrEmptyDocumentUpload
	}

	fileType, err := DetectFileType(input.FileName)
	if err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, input.CourseID)
	if err != nil {
		return nil, err
	}

	doc := domain.NewCourseDocument(s.uuidGen.NewString(), course.ID, input.FileName, fileType, time.Now().UTC())
	if err := domain.ValidateCourseDocument(doc); err != nil {
		return nil, err
	}
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.documentRepo.UpdateStatus(ctx, doc.ID, domain.DocumentStatusProcessing); err != nil {
		return nil, err
	}
	doc.Status = domain.DocumentStatusProcessing

	drafts, err := s.parse(fileType, input.Content)
	if err != nil {
		span.SetError(err)
		if markErr := s.documentRepo.MarkFailed(ctx, doc.ID, err.Error()); markErr != nil {
			telemetry.CaptureError(ctx, markErr)
		}
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "could not extract text from document", err)
	}

	chunks := make([]*domain.Chunk, 0, len(drafts))
	for i, draft := range drafts {
		chunks = append(chunks, &domain.Chunk{
			Content: draft.Content,
			Metadata: domain.ChunkMetadata{
				FileName:   input.FileName,
				Type:       chunkSourceType(fileType),
				Page:       draft.Page,
				StartTime:  draft.StartTime,
				EndTime:    draft.EndTime,
				CourseID:   course.ID,
				DocumentID: doc.ID,
				ChunkIndex: i,
			},
		})
	}
	if err := s.chunkRepo.InsertBatch(ctx, chunks); err != nil {
		span.SetError(err)
		if markErr := s.documentRepo.MarkFailed(ctx, doc.ID, "failed to store chunks"); markErr != nil {
			telemetry.CaptureError(ctx, markErr)
		}
		return nil, err
	}

	if err := s.documentRepo.MarkChunked(ctx, doc.ID, len(chunks)); err != nil {
		return nil, err
	}
	doc.Status = domain.DocumentStatusChunked
	doc.ChunkCount = len(chunks)

	return doc, nil
}

// ListDocuments returns the ingestion status of every document in a course.
func (s *IngestionService) ListDocuments(ctx context.Context, courseID string) ([]*domain.CourseDocument, error) {
	return s.documentRepo.ListByCourse(ctx, courseID)
}

func (s *IngestionService) parse(fileType domain.DocumentFileType, content []byte) ([]ingest.ChunkDraft, error) {
	switch fileType {
	case domain.DocumentFileTypePDF:
		return ingest.ParsePDF(bytes.NewReader(content), int64(len(content)), s.cfg.MaxChunkChars)
	case domain.DocumentFileTypeVTT:
		return ingest.ParseVTT(bytes.NewReader(content), s.cfg.TranscriptWindowSeconds)
	}
	return nil, domain.NewDomainError(domain.ErrCodeValidation, "unsupported document type")
}

// DetectFileType derives the ingestable format from a file name extension.
func DetectFileType(fileName string) (domain.DocumentFileType, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return domain.DocumentFileTypePDF, nil
	case ".vtt":
		return domain.DocumentFileTypeVTT, nil
	}
	return "", domain.NewDomainError(domain.ErrCodeValidation, "unsupported file type: only .pdf and .vtt uploads are accepted")
}

func chunkSourceType(fileType domain.DocumentFileType) domain.SourceType {
	if fileType == domain.DocumentFileTypeVTT {
		return domain.SourceTypeVTT
	}
	return domain.SourceTypePDF
}
