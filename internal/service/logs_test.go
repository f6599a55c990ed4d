package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/pagination"
)

// MockQALogRepository is a mock implementation of QALogRepositoryInterface
type MockQALogRepository struct {
	mock.Mock
}

func (m *MockQALogRepository) Create(ctx context.Context, l *domain.QALog) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockQALogRepository) GetByID(ctx context.Context, id string) (*domain.QALog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QALog), args.Error(1)
}

func (m *MockQALogRepository) UpdateStatus(ctx context.Context, id string, status domain.QALogStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockQALogRepository) ListByUserWithCursor(ctx context.Context, courseID, userID string, cursor *pagination.Cursor, limit int) (*QALogPageResult, error) {
	args := m.Called(ctx, courseID, userID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*QALogPageResult), args.Error(1)
}

func (m *MockQALogRepository) ListByCourseWithCursor(ctx context.Context, courseID string, status *domain.QALogStatus, cursor *pagination.Cursor, limit int) (*QALogPageResult, error) {
	args := m.Called(ctx, courseID, status, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*QALogPageResult), args.Error(1)
}

func newAnsweredQALog() *domain.QALog {
	now := time.Now().UTC()
	return &domain.QALog{
		ID:              "log-1",
		CourseID:        "course-1",
		UserID:          "user-1",
		Question:        "What is a mutex?",
		AIAnswer:        "A mutex serializes access.",
		ConfidenceScore: 0.8,
		Status:          domain.QALogStatusAnswered,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestChatLogService_ListChatLogs(t *testing.T) {
	ctx := context.Background()

	t.Run("lists a user's history with the default limit", func(t *testing.T) {
		repo := new(MockQALogRepository)
		svc := NewChatLogService(repo)

		repo.On("ListByUserWithCursor", mock.Anything, "course-1", "user-1", (*pagination.Cursor)(nil), 20).Return(&QALogPageResult{
			Items:      []*domain.QALog{newAnsweredQALog()},
			NextCursor: "cursor-1",
			HasMore:    true,
		}, nil)

		out, err := svc.ListChatLogs(ctx, ListChatLogsInput{CourseID: "course-1", UserID: "user-1"})

		require.NoError(t, err)
		require.Len(t, out.Items, 1)
		assert.Equal(t, "log-1", out.Items[0].ID)
		assert.Equal(t, "cursor-1", out.Cursor)
		assert.True(t, out.HasMore)
		repo.AssertExpectations(t)
	})

	t.Run("decodes the cursor and honors the requested limit", func(t *testing.T) {
		repo := new(MockQALogRepository)
		svc := NewChatLogService(repo)

		ts := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
		encoded := pagination.EncodeCursor("log-9", ts)

		repo.On("ListByUserWithCursor", mock.Anything, "course-1", "user-1", mock.MatchedBy(func(c *pagination.Cursor) bool {
			return c != nil && c.LastID == "log-9" && c.Timestamp.Equal(ts)
		}), 50).Return(&QALogPageResult{}, nil)

		_, err := svc.ListChatLogs(ctx, ListChatLogsInput{CourseID: "course-1", UserID: "user-1", Cursor: encoded, Limit: 50})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("garbage cursor is ignored", func(t *testing.T) {
		repo := new(MockQALogRepository)
		svc := NewChatLogService(repo)

		repo.On("ListByUserWithCursor", mock.Anything, "course-1", "user-1", (*pagination.Cursor)(nil), 20).Return(&QALogPageResult{}, nil)

		_, err := svc.ListChatLogs(ctx, ListChatLogsInput{CourseID: "course-1", UserID: "user-1", Cursor: "not-base64!"})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("repository failure propagates", func(t *testing.T) {
		repo := new(MockQALogRepository)
		svc := NewChatLogService(repo)

		repo.On("ListByUserWithCursor", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("query failed"))

		_, err := svc.ListChatLogs(ctx, ListChatLogsInput{CourseID: "course-1", UserID: "user-1"})

		assert.Error(t, err)
	})
}

func TestChatLogService_ListQALogs(t *testing.T) {
	ctx := context.Background()

	t.Run("lists course-wide logs without a status filter", func(t *testing.T) {
		repo := new(MockQALogRepository)
		svc := NewChatLogService(repo)

		repo.On("ListByCourseWithCursor", mock.Anything, "course-1", (*domain.QALogStatus)(nil), (*pagination.Cursor)(nil), 20).Return(&QALogPageResult{
			Items: []*domain.QALog{newAnsweredQALog()},
		}, nil)

		out, err := svc.ListQALogs(ctx, ListQALogsInput{CourseID: "course-1"})

		require.NoError(t, err)
		require.Len(t, out.Items, 1)
		repo.AssertExpectations(t)
	})

	t.Run("filters by status", func(t *testing.T) {
		repo := new(MockQALogRepository)
		svc := NewChatLogService(repo)

		repo.On("ListByCourseWithCursor", mock.Anything, "course-1", mock.MatchedBy(func(s *domain.QALogStatus) bool {
			return s != nil && *s == domain.QALogStatusFlagged
		}), (*pagination.Cursor)(nil), 20).Return(&QALogPageResult{}, nil)

		_, err := svc.ListQALogs(ctx, ListQALogsInput{CourseID: "course-1", Status: "flagged"})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		repo := new(MockQALogRepository)
		svc := NewChatLogService(repo)

		_, err := svc.ListQALogs(ctx, ListQALogsInput{CourseID: "course-1", Status: "archived"})

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
		repo.AssertNotCalled(t, "ListByCourseWithCursor", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestChatLogService_Flag(t *testing.T) {
	ctx := context.Background()

	t.Run("flags an answered log", func(t *testing.T) {
		repo := new(MockQALogRepository)
		svc := NewChatLogService(repo)

		repo.On("GetByID", mock.Anything, "log-1").Return(newAnsweredQALog(), nil)
		repo.On("UpdateStatus", mock.Anything, "log-1", domain.QALogStatusFlagged).Return(nil)

		err := svc.Flag(ctx, "log-1", "course-1")

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("flagging an already flagged log is a no-op", func(t *testing.T) {
		repo := new(MockQALogRepository)
		svc := NewChatLogService(repo)

		flagged := newAnsweredQALog()
		flagged.Status = domain.QALogStatusFlagged
		repo.On("GetByID", mock.Anything, "log-1").Return(flagged, nil)

		err := svc.Flag(ctx, "log-1", "course-1")

		require.NoError(t, err)
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("a reviewed log cannot be flagged", func(t *testing.T) {
		repo := new(MockQALogRepository)
		svc := NewChatLogService(repo)

		reviewed := newAnsweredQALog()
		reviewed.Status = domain.QALogStatusReviewed
		repo.On("GetByID", mock.Anything, "log-1").Return(reviewed, nil)

		err := svc.Flag(ctx, "log-1", "course-1")

		assert.ErrorIs(t, err, domain.ErrCannotFlagReviewed)
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects a log from another course", func(t *testing.T) {
		repo := new(MockQALogRepository)
		svc := NewChatLogService(repo)

		repo.On("GetByID", mock.Anything, "log-1").Return(newAnsweredQALog(), nil)

		err := svc.Flag(ctx, "log-1", "course-2")

		assert.ErrorIs(t, err, domain.ErrCourseMismatch)
	})

	t.Run("unknown log propagates", func(t *testing.T) {
		repo := new(MockQALogRepository)
		svc := NewChatLogService(repo)

		repo.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrQALogNotFound)

		err := svc.Flag(ctx, "missing", "course-1")

		assert.ErrorIs(t, err, domain.ErrQALogNotFound)
	})
}
