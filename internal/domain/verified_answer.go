package domain

import (
	"fmt"
	"time"
)

// VerifiedAnswer represents a TA-approved question/answer pair. It is
// immutable after creation and takes retrieval priority over raw chunks.
type VerifiedAnswer struct {
	ID        string
	CourseID  string
	Question  string
	Answer    string
	Embedding []float32
	CreatedBy string
	CreatedAt time.Time
}

// ScoredVerifiedAnswer pairs a retrieved verified answer with its raw score
type ScoredVerifiedAnswer struct {
	VerifiedAnswer
	Score *float64
}

// NewVerifiedAnswer creates a new VerifiedAnswer instance
func NewVerifiedAnswer(
	id, courseID, question, answer string,
	embedding []float32,
	createdBy string,
	createdAt time.Time,
) *VerifiedAnswer {
	return &VerifiedAnswer{
		ID:        id,
		CourseID:  courseID,
		Question:  question,
		Answer:    answer,
		Embedding: embedding,
		CreatedBy: createdBy,
		CreatedAt: createdAt,
	}
}

// ValidateVerifiedAnswer validates a VerifiedAnswer instance
func ValidateVerifiedAnswer(v *VerifiedAnswer) error {
	if v == nil {
		return fmt.Errorf("verified answer cannot be nil")
	}

	if v.ID == "" {
		return fmt.Errorf("verified answer ID is required")
	}

	if v.CourseID == "" {
		return fmt.Errorf("verified answer CourseID is required")
	}

	if v.Question == "" {
		return fmt.Errorf("verified answer Question is required")
	}

	if v.Answer == "" {
		return fmt.Errorf("verified answer Answer is required")
	}

	if v.CreatedBy == "" {
		return fmt.Errorf("verified answer CreatedBy is required")
	}

	return nil
}
