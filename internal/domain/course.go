package domain

import (
	"fmt"
	"time"
)

// DefaultSystemPrompt is used when a course has no persona configured
const DefaultSystemPrompt = "You are a helpful teaching assistant."

// Course represents a course whose materials the assistant answers from
type Course struct {
	ID           string
	Name         string
	Code         string
	SystemPrompt string
	CreatedAt    time.Time
}

// NewCourse creates a new Course instance
func NewCourse(id, name, code, systemPrompt string, createdAt time.Time) *Course {
	return &Course{
		ID:           id,
		Name:         name,
		Code:         code,
		SystemPrompt: systemPrompt,
		CreatedAt:    createdAt,
	}
}

// EffectiveSystemPrompt returns the course persona, or the default when unset
func (c *Course) EffectiveSystemPrompt() string {
	if c.SystemPrompt == "" {
		return DefaultSystemPrompt
	}
	return c.SystemPrompt
}

// ValidateCourse validates a Course instance
func ValidateCourse(c *Course) error {
	if c == nil {
		return fmt.Errorf("course cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("course ID is required")
	}

	if c.Name == "" {
		return fmt.Errorf("course Name is required")
	}

	if c.Code == "" {
		return fmt.Errorf("course Code is required")
	}

	return nil
}
