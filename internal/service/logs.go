package service

import (
	"context"

	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/pagination"
	"github.com/studyhall-ai/studyhall/internal/telemetry"
)

// QALogRepositoryInterface defines the repository interface for interaction log persistence
type QALogRepositoryInterface interface {
	Create(ctx context.Context, l *domain.QALog) error
	GetByID(ctx context.Context, id string) (*domain.QALog, error)
	UpdateStatus(ctx context.Context, id string, status domain.QALogStatus) error
	ListByUserWithCursor(ctx context.Context, courseID, userID string, cursor *pagination.Cursor, limit int) (*QALogPageResult, error)
	ListByCourseWithCursor(ctx context.Context, courseID string, status *domain.QALogStatus, cursor *pagination.Cursor, limit int) (*QALogPageResult, error)
}

type QALogPageResult struct {
	Items      []*domain.QALog
	NextCursor string
	HasMore    bool
}

// ChatLogService handles listing and review-state changes for interaction logs
type ChatLogService struct {
	qaLogRepo QALogRepositoryInterface
}

// NewChatLogService creates a new ChatLogService instance
func NewChatLogService(qaLogRepo QALogRepositoryInterface) *ChatLogService {
	return &ChatLogService{qaLogRepo: qaLogRepo}
}

// ListChatLogsInput represents the input for listing a user's own chat history
type ListChatLogsInput struct {
	CourseID string
	UserID   string
	Cursor   string
	Limit    int
}

// ListQALogsInput represents the input for the course-wide review listing
type ListQALogsInput struct {
	CourseID string
	Status   string
	Cursor   string
	Limit    int
}

type ListLogsOutput struct {
	Items   []*domain.QALog
	Cursor  string
	HasMore bool
}

// ListChatLogs returns the requesting user's own interaction history for a
// course, newest first.
func (s *ChatLogService) ListChatLogs(ctx context.Context, input ListChatLogsInput) (*ListLogsOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "ChatLogService.ListChatLogs", telemetry.SpanAttributes{
		CourseID:  input.CourseID,
		UserID:    input.UserID,
		Operation: "list",
	})
	defer span.End()

	cursor, _ := pagination.DecodeCursor(input.Cursor)
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	result, err := s.qaLogRepo.ListByUserWithCursor(ctx, input.CourseID, input.UserID, cursor, limit)
	if err != nil {
		return nil, err
	}

	return &ListLogsOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}

// ListQALogs returns the course-wide interaction log for reviewers, newest
// first, optionally filtered by review status.
func (s *ChatLogService) ListQALogs(ctx context.Context, input ListQALogsInput) (*ListLogsOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "ChatLogService.ListQALogs", telemetry.SpanAttributes{
		CourseID:  input.CourseID,
		Operation: "list",
	})
	defer span.End()

	var status *domain.QALogStatus
	if input.Status != "" {
		parsed, err := domain.ParseQALogStatus(input.Status)
		if err != nil {
			return nil, domain.NewDomainError(domain.ErrCodeValidation, err.Error())
		}
		status = &parsed
	}

	cursor, _ := pagination.DecodeCursor(input.Cursor)
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	result, err := s.qaLogRepo.ListByCourseWithCursor(ctx, input.CourseID, status, cursor, limit)
	if err != nil {
		return nil, err
	}

	return &ListLogsOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}

// Flag marks an answered interaction for TA review. Flagging an already
// flagged log is a no-op; a reviewed log can no longer be flagged.
func (s *ChatLogService) Flag(ctx context.Context, qaLogID, courseID string) error {
	ctx, span := telemetry.StartSpan(ctx, "ChatLogService.Flag", telemetry.SpanAttributes{
		CourseID:  courseID,
		QALogID:   qaLogID,
		Operation: "flag",
	})
	defer span.End()

	qaLog, err := s.qaLogRepo.GetByID(ctx, qaLogID)
	if err != nil {
		return err
	}
	if qaLog.CourseID != courseID {
		return domain.ErrCourseMismatch
	}
	if !qaLog.CanFlag() {
		return domain.ErrCannotFlagReviewed
	}
	if qaLog.Status == domain.QALogStatusFlagged {
		return nil
	}

	return s.qaLogRepo.UpdateStatus(ctx, qaLogID, domain.QALogStatusFlagged)
}
