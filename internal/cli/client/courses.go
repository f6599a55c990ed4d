package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// Course represents a course in API responses.
type Course struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	CreatedAt string `json:"created_at"`
}

// CourseListResponse represents the course directory response.
type CourseListResponse struct {
	Courses []Course `json:"courses"`
}

// CoursesCmd creates the courses command.
func CoursesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List available courses",
		Long:  "Lists the courses registered on the server.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runCourses(outputJSON)
		},
	}

	return cmd
}

func runCourses(outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	courses, err := fetchCourses(api)
	if err != nil {
		return err
	}

	if outputJSON {
		output, _ := json.MarshalIndent(courses, "", "  ")
		fmt.Println(string(output))
	} else {
		if len(courses) == 0 {
			fmt.Println("No courses found.")
			return nil
		}
		fmt.Println("Courses:")
		for _, course := range courses {
			fmt.Printf("  %s  %s (%s)\n", course.Code, course.Name, course.ID)
		}
	}

	return nil
}

func fetchCourses(api *APIClient) ([]Course, error) {
	resp, err := api.Get("/api/courses")
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	var listResp CourseListResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return nil, fmt.Errorf("failed to parse courses: %w", err)
	}

	return listResp.Courses, nil
}
