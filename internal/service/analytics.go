package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/llm"
	"github.com/studyhall-ai/studyhall/internal/telemetry"
)

// AnalyticsRepositoryInterface defines the repository interface for course usage aggregates
type AnalyticsRepositoryInterface interface {
	Summary(ctx context.Context, courseID string, since *time.Time) (*CourseAnalytics, error)
	RecentQuestions(ctx context.Context, courseID string, limit int) ([]string, error)
}

// DayCount is a date-bucketed question count.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// CourseAnalytics summarizes course usage over a time range.
type CourseAnalytics struct {
	TotalQuestions    int        `json:"total_questions"`
	AverageConfidence float64    `json:"average_confidence"`
	FlaggedCount      int        `json:"flagged_count"`
	ReviewedCount     int        `json:"reviewed_count"`
	VolumeByDay       []DayCount `json:"volume_by_day"`
}

// topConceptsQuestionSample caps how many recent questions feed the topic
// summarization prompt.
const topConceptsQuestionSample = 200

// topConceptsTemperature is the only generation call that runs above
// temperature zero; topic naming benefits from a little variety.
const topConceptsTemperature = 0.3

// AnalyticsService computes usage aggregates and model-assisted topic
// summaries for course staff.
type AnalyticsService struct {
	analyticsRepo AnalyticsRepositoryInterface
	generator     Generator
}

// NewAnalyticsService creates a new AnalyticsService instance
func NewAnalyticsService(analyticsRepo AnalyticsRepositoryInterface, generator Generator) *AnalyticsService {
	return &AnalyticsService{
		analyticsRepo: analyticsRepo,
		generator:     generator,
	}
}

// Summary returns question volume and review aggregates for a course over
// the requested range: 7d, 30d, 90d, or all.
func (s *AnalyticsService) Summary(ctx context.Context, courseID, timeRange string) (*CourseAnalytics, error) {
	ctx, span := telemetry.StartSpan(ctx, "AnalyticsService.Summary", telemetry.SpanAttributes{
		CourseID:  courseID,
		Operation: "summary",
	})
	defer span.End()

	since, err := sinceForRange(timeRange)
	if err != nil {
		return nil, err
	}

	return s.analyticsRepo.Summary(ctx, courseID, since)
}

// TopConcepts names up to five recurring topics across the most recent
// questions in a course. Provider failures degrade to an empty list rather
// than failing the dashboard.
func (s *AnalyticsService) TopConcepts(ctx context.Context, courseID string) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "AnalyticsService.TopConcepts", telemetry.SpanAttributes{
		CourseID:  courseID,
		Operation: "top_concepts",
	})
	defer span.End()

	questions, err := s.analyticsRepo.RecentQuestions(ctx, courseID, topConceptsQuestionSample)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return []string{}, nil
	}

	raw, err := s.generator.GenerateText(ctx, llm.GenerationRequest{
		Prompt:      buildTopConceptsPrompt(questions),
		Temperature: topConceptsTemperature,
	})
	if err != nil {
		telemetry.CaptureError(ctx, err)
		return []string{}, nil
	}

	return parseConceptList(raw), nil
}

func sinceForRange(timeRange string) (*time.Time, error) {
	var days int
	switch timeRange {
	case "", "all":
		return nil, nil
	case "7d":
		days = 7
	case "30d":
		days = 30
	case "90d":
		days = 90
	default:
		return nil, domain.NewDomainError(domain.ErrCodeValidation, fmt.Sprintf("invalid time range: %s", timeRange))
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	return &since, nil
}

func buildTopConceptsPrompt(questions []string) string {
	var b strings.Builder
	b.WriteString("The following are questions students asked in one course:\n")
	for _, q := range questions {
		b.WriteString("- ")
		b.WriteString(q)
		b.WriteString("\n")
	}
	b.WriteString("\nList up to 5 short topic phrases that summarize the most common themes. Respond with a comma-separated list only.")
	return b.String()
}

func parseConceptList(raw string) []string {
	concepts := make([]string, 0, 5)
	for _, part := range strings.Split(raw, ",") {
		concept := strings.Trim(strings.TrimSpace(part), ".\"'")
		if concept == "" {
			continue
		}
		concepts = append(concepts, concept)
		if len(concepts) == 5 {
			break
		}
	}
	return concepts
}
