package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// ReviewCmd creates the review parent command.
func ReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review logged questions (TA/instructor)",
		Long:  "List course-wide question logs, flag answers, and submit corrections.",
	}

	cmd.AddCommand(ReviewListCmd())
	cmd.AddCommand(ReviewFlagCmd())
	cmd.AddCommand(ReviewCorrectCmd())

	return cmd
}

// ReviewListCmd creates the review list command.
func ReviewListCmd() *cobra.Command {
	var (
		courseID string
		status   string
		limit    int
		cursor   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the course-wide question log",
		Long:  "Lists every logged interaction for the course, newest first, optionally filtered by status.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runReviewList(courseID, status, limit, cursor, outputJSON)
		},
	}

	cmd.Flags().StringVar(&courseID, "course", "", "Course ID (defaults to the bound course)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (answered, flagged, reviewed)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runReviewList(courseID, status string, limit int, cursor string, outputJSON bool) error {
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
	if status != "" {
		query.Set("status", status)
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	resp, err := api.Get("/api/qa-logs?" + query.Encode())
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

// ReviewFlagCmd creates the review flag command.
func ReviewFlagCmd() *cobra.Command {
	var courseID string

	cmd := &cobra.Command{
		Use:   "flag <log-id>",
		Short: "Flag a logged answer for review",
		Long:  "Marks an answered interaction as needing TA attention.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReviewFlag(args[0], courseID)
		},
	}

	cmd.Flags().StringVar(&courseID, "course", "", "Course ID (defaults to the bound course)")

	return cmd
}

func runReviewFlag(logID, courseID string) error {
	courseID, err := resolveCourseID(courseID)
	if err != nil {
		return err
	}

	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Post("/api/qa-logs/"+logID+"/flag", map[string]string{"course_id": courseID})
	if err != nil {
		return fmt.Errorf("failed to flag log: %w", err)
	}

	var flagResp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Data, &flagResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Println(flagResp.Message)
	return nil
}

// CorrectionRequest represents the submit-correction API request.
type CorrectionRequest struct {
	QALogID        string `json:"qa_log_id"`
	VerifiedAnswer string `json:"verified_answer"`
	CourseID       string `json:"course_id"`
}

// CorrectionResponse represents the submit-correction API response.
type CorrectionResponse struct {
	Message          string `json:"message"`
	VerifiedAnswerID string `json:"verified_answer_id"`
}

// ReviewCorrectCmd creates the review correct command.
func ReviewCorrectCmd() *cobra.Command {
	var (
		courseID string
		answer   string
		file     string
	)

	cmd := &cobra.Command{
		Use:   "correct <log-id>",
		Short: "Submit a corrected answer",
		Long: `Submit a verified answer for a logged question. The answer text comes
from --answer, --file, or stdin.

Examples:
  studyhall review correct abc123 --answer "The deadline is Friday."
  studyhall review correct abc123 --file correction.md
  cat correction.md | studyhall review correct abc123`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runReviewCorrect(args[0], courseID, answer, file, outputJSON)
		},
	}

	cmd.Flags().StringVar(&courseID, "course", "", "Course ID (defaults to the bound course)")
	cmd.Flags().StringVarP(&answer, "answer", "a", "", "Corrected answer text")
	cmd.Flags().StringVarP(&file, "file", "f", "", "File containing the corrected answer")

	return cmd
}

func runReviewCorrect(logID, courseID, answer, file string, outputJSON bool) error {
	courseID, err := resolveCourseID(courseID)
	if err != nil {
		return err
	}

	if answer == "" {
		var input []byte
		if file != "" {
			input, err = os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
		} else {
			input, err = io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
		}
		answer = strings.TrimSpace(string(input))
	}

	if answer == "" {
		return fmt.Errorf("no answer provided")
	}

	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	req := CorrectionRequest{
		QALogID:        logID,
		VerifiedAnswer: answer,
		CourseID:       courseID,
	}

	resp, err := api.Post("/api/submit-correction", req)
	if err != nil {
		return fmt.Errorf("failed to submit correction: %w", err)
	}

	var correctionResp CorrectionResponse
	if err := json.Unmarshal(resp.Data, &correctionResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(correctionResp, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Println(correctionResp.Message)
		fmt.Printf("Verified answer ID: %s\n", correctionResp.VerifiedAnswerID)
	}

	return nil
}
