package service

import (
	"context"
	"strings"
	"time"

	"github.com/studyhall-ai/studyhall/internal/domain"
)

// CourseRepositoryInterface defines the repository interface for course persistence
type CourseRepositoryInterface interface {
	Create(ctx context.Context, c *domain.Course) error
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	GetByCode(ctx context.Context, code string) (*domain.Course, error)
	List(ctx context.Context) ([]*domain.Course, error)
}

// CourseService handles business logic for courses
type CourseService struct {
	courseRepo CourseRepositoryInterface
	uuidGen    UUIDGenerator
}

// NewCourseService creates a new CourseService instance
func NewCourseService(courseRepo CourseRepositoryInterface) *CourseService {
	return &CourseService{
		courseRepo: courseRepo,
		uuidGen:    &DefaultUUIDGenerator{},
	}
}

// CreateCourseInput represents the input for creating a course
type CreateCourseInput struct {
	Name         string
	Code         string
	SystemPrompt string
}

// Create creates a new course. An empty system prompt falls back to the
// default teaching assistant persona at answer time.
func (s *CourseService) Create(ctx context.Context, input CreateCourseInput) (*domain.Course, error) {
	course := &domain.Course{
		ID:           s.uuidGen.NewString(),
		Name:         strings.TrimSpace(input.Name),
		Code:         strings.TrimSpace(input.Code),
		SystemPrompt: strings.TrimSpace(input.SystemPrompt),
		CreatedAt:    time.Now().UTC(),
	}

	if err := domain.ValidateCourse(course); err != nil {
		return nil, err
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}

	return course, nil
}

// GetByID retrieves a course by its ID
func (s *CourseService) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	return s.courseRepo.GetByID(ctx, id)
}

// GetByCode retrieves a course by its short code
func (s *CourseService) GetByCode(ctx context.Context, code string) (*domain.Course, error) {
	return s.courseRepo.GetByCode(ctx, code)
}

// List retrieves all courses
func (s *CourseService) List(ctx context.Context) ([]*domain.Course, error) {
	return s.courseRepo.List(ctx)
}
