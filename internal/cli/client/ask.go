package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AskRequest represents the ask-question API request.
type AskRequest struct {
	Question string `json:"question"`
	CourseID string `json:"course_id"`
}

// Citation represents one cited source in an answer.
type Citation struct {
	Type      string   `json:"type"`
	FileName  string   `json:"file_name,omitempty"`
	Page      *int     `json:"page,omitempty"`
	Timestamp *float64 `json:"timestamp,omitempty"`
	DocID     string   `json:"doc_id,omitempty"`
	Question  string   `json:"question,omitempty"`
}

// AskResponse represents the ask-question API response.
type AskResponse struct {
	Answer              string     `json:"answer"`
	Citations           []Citation `json:"citations"`
	SourcesUsed         int        `json:"sources_used"`
	ConfidenceScore     float64    `json:"confidence_score"`
	RetrievalConfidence *float64   `json:"retrieval_confidence"`
	QALogID             string     `json:"qa_log_id"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var courseID string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about the course materials",
		Long:  "Sends a question to the course assistant and prints the grounded answer.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(args[0], courseID, outputJSON)
		},
	}

	cmd.Flags().StringVar(&courseID, "course", "", "Course ID (defaults to the bound course)")

	return cmd
}

func runAsk(question, courseID string, outputJSON bool) error {
	courseID, err := resolveCourseID(courseID)
	if err != nil {
		return err
	}

	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	req := AskRequest{
		Question: question,
		CourseID: courseID,
	}

	resp, err := api.Post("/api/ask-question", req)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	var askResp AskResponse
	if err := json.Unmarshal(resp.Data, &askResp); err != nil {
		return fmt.Errorf("failed to parse answer: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(askResp, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Println(askResp.Answer)
		fmt.Println(strings.Repeat("-", 40))
		fmt.Printf("Confidence: %.2f", askResp.ConfidenceScore)
		if askResp.RetrievalConfidence != nil {
			fmt.Printf(" (retrieval: %.2f)", *askResp.RetrievalConfidence)
		}
		fmt.Printf("  Sources: %d\n", askResp.SourcesUsed)
		if len(askResp.Citations) > 0 {
			fmt.Println("Citations:")
			for _, c := range askResp.Citations {
				fmt.Printf("  - %s\n", formatCitation(c))
			}
		}
		fmt.Printf("Log ID: %s\n", askResp.QALogID)
	}

	return nil
}

func formatCitation(c Citation) string {
	switch {
	case c.Page != nil:
		return fmt.Sprintf("%s, page %d", c.FileName, *c.Page)
	case c.Timestamp != nil:
		return fmt.Sprintf("%s, %s", c.FileName, formatTimestamp(*c.Timestamp))
	case c.Question != "":
		return fmt.Sprintf("verified answer for %q", c.Question)
	default:
		return c.FileName
	}
}

func formatTimestamp(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// resolveCourseID falls back to the course bound by 'studyhall init'.
func resolveCourseID(courseID string) (string, error) {
	if courseID != "" {
		return courseID, nil
	}

	config, err := LoadConfig()
	if err != nil {
		return "", err
	}

	return config.CourseID, nil
}
