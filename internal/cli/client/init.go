package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	studyhallDir = ".studyhall"
	configFile   = "config.yaml"
	envFile      = ".env"
)

type Config struct {
	CourseID   string `json:"course_id" yaml:"course_id"`
	CourseCode string `json:"course_code" yaml:"course_code"`
}

func InitCmd() *cobra.Command {
	var courseRef string
	var token string
	var apiURL string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Bind this directory to a course",
		Long:  "Creates the .studyhall/ directory, config.yaml, and .env with the bearer token.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runInit(courseRef, token, apiURL, outputJSON)
		},
	}

	cmd.Flags().StringVar(&courseRef, "course", "", "Course code or ID (required)")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token for authentication")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "API base URL (default: http://localhost:8080)")
	cmd.MarkFlagRequired("course")

	return cmd
}

func runInit(courseRef, token, apiURL string, outputJSON bool) error {
	if _, err := os.Stat(studyhallDir); err == nil {
		return fmt.Errorf(".studyhall directory already exists")
	}

	_ = godotenv.Load()
	if token == "" {
		token = os.Getenv(envToken)
	}
	if token == "" {
		fmt.Print("Enter bearer token: ")
		reader := bufio.NewReader(os.Stdin)
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
		token = strings.TrimSpace(input)
		if token == "" {
			return fmt.Errorf("bearer token is required")
		}
	}

	if apiURL == "" {
		apiURL = os.Getenv(envAPIURL)
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	envData := fmt.Sprintf("STUDYHALL_TOKEN=%s\nSTUDYHALL_API_URL=%s\n", token, apiURL)
	if err := os.WriteFile(envFile, []byte(envData), 0600); err != nil {
		return fmt.Errorf("failed to create .env: %w", err)
	}

	api, err := NewAPIClientWithConfig(token, apiURL)
	if err != nil {
		os.Remove(envFile)
		return fmt.Errorf("failed to create API client: %w", err)
	}

	course, err := resolveCourse(api, courseRef)
	if err != nil {
		os.Remove(envFile)
		return err
	}

	if err := os.MkdirAll(studyhallDir, 0755); err != nil {
		return fmt.Errorf("failed to create .studyhall directory: %w", err)
	}

	configPath := studyhallDir + "/" + configFile
	configData := fmt.Sprintf("course_id: %s\ncourse_code: %s\ncourse_name: %s\n", course.ID, course.Code, course.Name)
	if err := os.WriteFile(configPath, []byte(configData), 0644); err != nil {
		return fmt.Errorf("failed to create config.yaml: %w", err)
	}

	if outputJSON {
		result := map[string]interface{}{
			"success":     true,
			"course_id":   course.ID,
			"course_code": course.Code,
			"course_name": course.Name,
			"config":      configPath,
			"env":         envFile,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Printf("Bound to course '%s' [%s]\n", course.Name, course.Code)
		fmt.Printf("Course ID: %s\n", course.ID)
		fmt.Printf("Config saved to %s\n", configPath)
	}

	return nil
}

// resolveCourse matches a course by code (case-insensitive) or by ID.
func resolveCourse(api *APIClient, courseRef string) (*Course, error) {
	courses, err := fetchCourses(api)
	if err != nil {
		return nil, err
	}

	for i := range courses {
		if strings.EqualFold(courses[i].Code, courseRef) || courses[i].ID == courseRef {
			return &courses[i], nil
		}
	}

	return nil, fmt.Errorf("course not found: %s (run 'studyhall courses' to list available courses)", courseRef)
}

// LoadConfig reads the config from .studyhall/config.yaml.
func LoadConfig() (*Config, error) {
	configPath := studyhallDir + "/" + configFile
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("not a studyhall directory (run 'studyhall init' first)")
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Simple YAML parsing for flat fields
	var config Config
	for _, line := range splitLines(string(data)) {
		switch {
		case strings.HasPrefix(line, "course_id: "):
			config.CourseID = strings.TrimPrefix(line, "course_id: ")
		case strings.HasPrefix(line, "course_code: "):
			config.CourseCode = strings.TrimPrefix(line, "course_code: ")
		}
	}

	if config.CourseID == "" {
		return nil, fmt.Errorf("invalid config: course_id not found")
	}

	return &config, nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
