package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/service"
)

type MockChatLogService struct {
	mock.Mock
}

func (m *MockChatLogService) ListChatLogs(ctx context.Context, input service.ListChatLogsInput) (*service.ListLogsOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListLogsOutput), args.Error(1)
}

func (m *MockChatLogService) ListQALogs(ctx context.Context, input service.ListQALogsInput) (*service.ListLogsOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListLogsOutput), args.Error(1)
}

func (m *MockChatLogService) Flag(ctx context.Context, qaLogID, courseID string) error {
	args := m.Called(ctx, qaLogID, courseID)
	return args.Error(0)
}

func newTestQALog() *domain.QALog {
	now := time.Now().UTC()
	return &domain.QALog{
		ID:              "log-1",
		CourseID:        "course-1",
		UserID:          "user-1",
		Question:        "What is a mutex?",
		AIAnswer:        "A mutual exclusion lock.",
		SourcesCited:    []domain.Citation{},
		ConfidenceScore: 0.8,
		Status:          domain.QALogStatusAnswered,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func flagRequest(id, body string, user *domain.User) *http.Request {
	req := requestWithUser(http.MethodPost, "/api/qa-logs/"+id+"/flag", []byte(body), user)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestLogsHandler_ListChatLogs_Success(t *testing.T) {
	mockSvc := new(MockChatLogService)
	handler := NewLogsHandler(mockSvc)

	output := &service.ListLogsOutput{
		Items:   []*domain.QALog{newTestQALog()},
		Cursor:  "cursor-1",
		HasMore: true,
	}
	mockSvc.On("ListChatLogs", mock.Anything, service.ListChatLogsInput{
		CourseID: "course-1",
		UserID:   "user-1",
		Limit:    20,
	}).Return(output, nil)

	req := requestWithUser(http.MethodGet, "/api/chat-logs?course_id=course-1", nil, newTestStudent())
	w := httptest.NewRecorder()

	handler.ListChatLogs(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	logs := data["logs"].([]interface{})
	require.Len(t, logs, 1)
	assert.Equal(t, "What is a mutex?", logs[0].(map[string]interface{})["question"])
	assert.Equal(t, "cursor-1", data["next_cursor"])
	assert.Equal(t, true, data["has_more"])
	mockSvc.AssertExpectations(t)
}

func TestLogsHandler_ListChatLogs_MissingCourseID(t *testing.T) {
	handler := NewLogsHandler(new(MockChatLogService))

	req := requestWithUser(http.MethodGet, "/api/chat-logs", nil, newTestStudent())
	w := httptest.NewRecorder()

	handler.ListChatLogs(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "course_id is required")
}

func TestLogsHandler_ListChatLogs_LimitQuery(t *testing.T) {
	mockSvc := new(MockChatLogService)
	handler := NewLogsHandler(mockSvc)

	empty := &service.ListLogsOutput{Items: []*domain.QALog{}}
	mockSvc.On("ListChatLogs", mock.Anything, mock.MatchedBy(func(input service.ListChatLogsInput) bool {
		return input.Limit == 50
	})).Return(empty, nil)

	req := requestWithUser(http.MethodGet, "/api/chat-logs?course_id=course-1&limit=50", nil, newTestStudent())
	w := httptest.NewRecorder()

	handler.ListChatLogs(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestLogsHandler_ListChatLogs_BadLimitFallsBack(t *testing.T) {
	mockSvc := new(MockChatLogService)
	handler := NewLogsHandler(mockSvc)

	empty := &service.ListLogsOutput{Items: []*domain.QALog{}}
	mockSvc.On("ListChatLogs", mock.Anything, mock.MatchedBy(func(input service.ListChatLogsInput) bool {
		return input.Limit == 20
	})).Return(empty, nil)

	req := requestWithUser(http.MethodGet, "/api/chat-logs?course_id=course-1&limit=banana", nil, newTestStudent())
	w := httptest.NewRecorder()

	handler.ListChatLogs(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestLogsHandler_ListQALogs_Success(t *testing.T) {
	mockSvc := new(MockChatLogService)
	handler := NewLogsHandler(mockSvc)

	flagged := newTestQALog()
	flagged.Status = domain.QALogStatusFlagged
	output := &service.ListLogsOutput{Items: []*domain.QALog{flagged}}
	mockSvc.On("ListQALogs", mock.Anything, service.ListQALogsInput{
		CourseID: "course-1",
		Status:   "flagged",
		Limit:    20,
	}).Return(output, nil)

	req := requestWithUser(http.MethodGet, "/api/qa-logs?course_id=course-1&status=flagged", nil, newTestTA())
	w := httptest.NewRecorder()

	handler.ListQALogs(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	logs := data["logs"].([]interface{})
	require.Len(t, logs, 1)
	assert.Equal(t, "flagged", logs[0].(map[string]interface{})["status"])
	mockSvc.AssertExpectations(t)
}

func TestLogsHandler_ListQALogs_StudentForbidden(t *testing.T) {
	handler := NewLogsHandler(new(MockChatLogService))

	req := requestWithUser(http.MethodGet, "/api/qa-logs?course_id=course-1", nil, newTestStudent())
	w := httptest.NewRecorder()

	handler.ListQALogs(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "requires ta or instructor role")
}

func TestLogsHandler_ListQALogs_InvalidStatusPassedThrough(t *testing.T) {
	mockSvc := new(MockChatLogService)
	handler := NewLogsHandler(mockSvc)

	mockSvc.On("ListQALogs", mock.Anything, mock.MatchedBy(func(input service.ListQALogsInput) bool {
		return input.Status == "bogus"
	})).Return(nil, domain.ErrInvalidQALogStatus)

	req := requestWithUser(http.MethodGet, "/api/qa-logs?course_id=course-1&status=bogus", nil, newTestTA())
	w := httptest.NewRecorder()

	handler.ListQALogs(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestLogsHandler_Flag_Success(t *testing.T) {
	mockSvc := new(MockChatLogService)
	handler := NewLogsHandler(mockSvc)

	mockSvc.On("Flag", mock.Anything, "log-1", "course-1").Return(nil)

	req := flagRequest("log-1", `{"course_id":"course-1"}`, newTestTA())
	w := httptest.NewRecorder()

	handler.Flag(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "Question flagged for review", data["message"])
	mockSvc.AssertExpectations(t)
}

func TestLogsHandler_Flag_StudentForbidden(t *testing.T) {
	handler := NewLogsHandler(new(MockChatLogService))

	req := flagRequest("log-1", `{"course_id":"course-1"}`, newTestStudent())
	w := httptest.NewRecorder()

	handler.Flag(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogsHandler_Flag_MissingCourseID(t *testing.T) {
	handler := NewLogsHandler(new(MockChatLogService))

	req := flagRequest("log-1", `{}`, newTestTA())
	w := httptest.NewRecorder()

	handler.Flag(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "course_id is required")
}

func TestLogsHandler_Flag_NotFound(t *testing.T) {
	mockSvc := new(MockChatLogService)
	handler := NewLogsHandler(mockSvc)

	mockSvc.On("Flag", mock.Anything, "log-999", "course-1").Return(domain.ErrQALogNotFound)

	req := flagRequest("log-999", `{"course_id":"course-1"}`, newTestTA())
	w := httptest.NewRecorder()

	handler.Flag(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestLogsHandler_Flag_ReviewedLog(t *testing.T) {
	mockSvc := new(MockChatLogService)
	handler := NewLogsHandler(mockSvc)

	mockSvc.On("Flag", mock.Anything, "log-1", "course-1").Return(domain.ErrCannotFlagReviewed)

	req := flagRequest("log-1", `{"course_id":"course-1"}`, newTestTA())
	w := httptest.NewRecorder()

	handler.Flag(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "reviewed qa logs cannot be flagged")
	mockSvc.AssertExpectations(t)
}
