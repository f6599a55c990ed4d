package domain

import (
	"fmt"
	"time"
)

// QALogStatus represents the review status of a logged interaction
type QALogStatus string

const (
	QALogStatusAnswered QALogStatus = "answered"
	QALogStatusFlagged  QALogStatus = "flagged"
	QALogStatusReviewed QALogStatus = "reviewed"
)

// QALog represents one persisted question-answering interaction.
// Created as answered; flagged by TA action; reviewed once a correction
// has been submitted. Every reviewed log has at least one verified
// answer recorded for the same question. AnswerConfidence and
// RetrievalConfidence are distinct signals and are stored separately.
type QALog struct {
	ID                  string
	CourseID            string
	UserID              string
	Question            string
	AIAnswer            string
	SourcesCited        []Citation
	ConfidenceScore     float64
	RetrievalConfidence *float64
	Status              QALogStatus
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// AnswerPackage is the structured result of one ask-question pipeline run
type AnswerPackage struct {
	Answer              string
	Citations           []Citation
	ConfidenceScore     float64
	RetrievalConfidence *float64
	SourcesUsed         int
	QALogID             string
}

// NewQALog creates a new QALog instance in the answered state
func NewQALog(
	id, courseID, userID, question, aiAnswer string,
	sourcesCited []Citation,
	confidenceScore float64,
	retrievalConfidence *float64,
	createdAt time.Time,
) *QALog {
	return &QALog{
		ID:                  id,
		CourseID:            courseID,
		UserID:              userID,
		Question:            question,
		AIAnswer:            aiAnswer,
		SourcesCited:        sourcesCited,
		ConfidenceScore:     confidenceScore,
		RetrievalConfidence: retrievalConfidence,
		Status:              QALogStatusAnswered,
		CreatedAt:           createdAt,
		UpdatedAt:           createdAt,
	}
}

// ValidateQALog validates a QALog instance
func ValidateQALog(l *QALog) error {
	if l == nil {
		return fmt.Errorf("qa log cannot be nil")
	}

	if l.ID == "" {
		return fmt.Errorf("qa log ID is required")
	}

	if l.CourseID == "" {
		return fmt.Errorf("qa log CourseID is required")
	}

	if l.UserID == "" {
		return fmt.Errorf("qa log UserID is required")
	}

	if l.Question == "" {
		return fmt.Errorf("qa log Question is required")
	}

	if !isValidQALogStatus(l.Status) {
		return fmt.Errorf("qa log Status is invalid: %s", l.Status)
	}

	if l.ConfidenceScore < 0 || l.ConfidenceScore > 1 {
		return fmt.Errorf("qa log ConfidenceScore must be within [0,1]")
	}

	for i := range l.SourcesCited {
		if err := ValidateCitation(&l.SourcesCited[i]); err != nil {
			return fmt.Errorf("qa log citation %d: %w", i, err)
		}
	}

	return nil
}

// CanFlag reports whether the log may transition to flagged
func (l *QALog) CanFlag() bool {
	return l.Status == QALogStatusAnswered || l.Status == QALogStatusFlagged
}

// isValidQALogStatus checks if a QALogStatus is valid
func isValidQALogStatus(s QALogStatus) bool {
	switch s {
	case QALogStatusAnswered, QALogStatusFlagged, QALogStatusReviewed:
		return true
	}
	return false
}

// ParseQALogStatus converts a string into a QALogStatus
func ParseQALogStatus(s string) (QALogStatus, error) {
	status := QALogStatus(s)
	if !isValidQALogStatus(status) {
		return "", fmt.Errorf("invalid qa log status: %s", s)
	}
	return status, nil
}
