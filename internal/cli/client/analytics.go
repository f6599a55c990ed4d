package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

// AnalyticsSummary represents the analytics summary API response.
type AnalyticsSummary struct {
	TotalQuestions    int     `json:"total_questions"`
	AverageConfidence float64 `json:"average_confidence"`
	FlaggedCount      int     `json:"flagged_count"`
	ReviewedCount     int     `json:"reviewed_count"`
	VolumeByDay       []struct {
		Date  string `json:"date"`
		Count int    `json:"count"`
	} `json:"volume_by_day"`
}

// TopConceptsResponse represents the top-concepts API response.
type TopConceptsResponse struct {
	Concepts []string `json:"concepts"`
}

// AnalyticsCmd creates the analytics parent command.
func AnalyticsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Course usage analytics (TA/instructor)",
		Long:  "Question volume, confidence aggregates, and recurring topics for a course.",
	}

	cmd.AddCommand(AnalyticsSummaryCmd())
	cmd.AddCommand(AnalyticsConceptsCmd())

	return cmd
}

// AnalyticsSummaryCmd creates the analytics summary command.
func AnalyticsSummaryCmd() *cobra.Command {
	var (
		courseID  string
		timeRange string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show usage summary",
		Long:  "Shows question volume and review aggregates over the requested range.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAnalyticsSummary(courseID, timeRange, outputJSON)
		},
	}

	cmd.Flags().StringVar(&courseID, "course", "", "Course ID (defaults to the bound course)")
	cmd.Flags().StringVarP(&timeRange, "range", "r", "30d", "Time range (7d, 30d, 90d, all)")

	return cmd
}

func runAnalyticsSummary(courseID, timeRange string, outputJSON bool) error {
	courseID, err := resolveCourseID(courseID)
	if err != nil {
		return err
	}

	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	query := url.Values{}
	query.Set("course_id", courseID)
	query.Set("time_range", timeRange)

	resp, err := api.Get("/api/analytics/summary?" + query.Encode())
	if err != nil {
		return fmt.Errorf("failed to fetch summary: %w", err)
	}

	var summary AnalyticsSummary
	if err := json.Unmarshal(resp.Data, &summary); err != nil {
		return fmt.Errorf("failed to parse summary: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Questions: %d\n", summary.TotalQuestions)
		fmt.Printf("Average confidence: %.2f\n", summary.AverageConfidence)
		fmt.Printf("Flagged: %d  Reviewed: %d\n", summary.FlaggedCount, summary.ReviewedCount)
		if len(summary.VolumeByDay) > 0 {
			fmt.Println("Volume by day:")
			for _, day := range summary.VolumeByDay {
				fmt.Printf("  %s  %d\n", day.Date, day.Count)
			}
		}
	}

	return nil
}

// AnalyticsConceptsCmd creates the analytics concepts command.
func AnalyticsConceptsCmd() *cobra.Command {
	var courseID string

	cmd := &cobra.Command{
		Use:   "concepts",
		Short: "Show recurring question topics",
		Long:  "Names the topics students ask about most, summarized from recent questions.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAnalyticsConcepts(courseID, outputJSON)
		},
	}

	cmd.Flags().StringVar(&courseID, "course", "", "Course ID (defaults to the bound course)")

	return cmd
}

func runAnalyticsConcepts(courseID string, outputJSON bool) error {
	courseID, err := resolveCourseID(courseID)
	if err != nil {
		return err
	}

	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	query := url.Values{}
	query.Set("course_id", courseID)

	resp, err := api.Get("/api/analytics/top-concepts?" + query.Encode())
	if err != nil {
		return fmt.Errorf("failed to fetch concepts: %w", err)
	}

	var conceptsResp TopConceptsResponse
	if err := json.Unmarshal(resp.Data, &conceptsResp); err != nil {
		return fmt.Errorf("failed to parse concepts: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(conceptsResp, "", "  ")
		fmt.Println(string(output))
	} else {
		if len(conceptsResp.Concepts) == 0 {
			fmt.Println("No recurring topics yet.")
			return nil
		}
		fmt.Println("Top concepts:")
		for i, concept := range conceptsResp.Concepts {
			fmt.Printf("  %d. %s\n", i+1, concept)
		}
	}

	return nil
}
