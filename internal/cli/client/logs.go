package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// QALog represents one logged interaction in API responses.
type QALog struct {
	ID                  string     `json:"id"`
	CourseID            string     `json:"course_id"`
	UserID              string     `json:"user_id"`
	Question            string     `json:"question"`
	AIAnswer            string     `json:"ai_answer"`
	SourcesCited        []Citation `json:"sources_cited"`
	ConfidenceScore     float64    `json:"confidence_score"`
	RetrievalConfidence *float64   `json:"retrieval_confidence"`
	Status              string     `json:"status"`
	CreatedAt           string     `json:"created_at"`
}

// LogListResponse represents a paginated log listing.
type LogListResponse struct {
	Logs       []QALog `json:"logs"`
	NextCursor string  `json:"next_cursor,omitempty"`
	HasMore    bool    `json:"has_more"`
}

// LogsCmd creates the logs command.
func LogsCmd() *cobra.Command {
	var (
		courseID string
		limit    int
		cursor   string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show your question history",
		Long:  "Lists your own logged questions and answers for the course, newest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runLogs(courseID, limit, cursor, outputJSON)
		},
	}

	cmd.Flags().StringVar(&courseID, "course", "", "Course ID (defaults to the bound course)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runLogs(courseID string, limit int, cursor string, outputJSON bool) error {
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
	query.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	resp, err := api.Get("/api/chat-logs?" + query.Encode())
	if err != nil {
		return fmt.Errorf("failed to list logs: %w", err)
	}

	var listResp LogListResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse logs: %w", err)
	}

	printLogList(listResp, outputJSON)
	return nil
}

func printLogList(listResp LogListResponse, outputJSON bool) {
	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return
	}

	if len(listResp.Logs) == 0 {
		fmt.Println("No logs found.")
		return
	}

	for i, entry := range listResp.Logs {
		fmt.Printf("%s  [%s]  %.2f\n", entry.CreatedAt, entry.Status, entry.ConfidenceScore)
		fmt.Printf("Q: %s\n", truncate(entry.Question, 120))
		fmt.Printf("A: %s\n", truncate(entry.AIAnswer, 200))
		fmt.Printf("ID: %s\n", entry.ID)
		if i < len(listResp.Logs)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}
	if listResp.HasMore && listResp.NextCursor != "" {
		fmt.Printf("\nMore results available. Use --cursor %s\n", listResp.NextCursor)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
