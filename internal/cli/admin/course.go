package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/studyhall-ai/studyhall/internal/config"
	"github.com/studyhall-ai/studyhall/internal/database"
	"github.com/studyhall-ai/studyhall/internal/repository"
	"github.com/studyhall-ai/studyhall/internal/service"
)

func CourseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "course",
		Short: "Manage courses",
		Long:  "Create and list courses",
	}

	cmd.AddCommand(CourseCreateCmd())
	cmd.AddCommand(CourseListCmd())

	return cmd
}

func CourseCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new course",
		Long:  "Create a new course with the specified name",
		Args:  cobra.ExactArgs(1),
		RunE:  runCourseCreate,
	}

	cmd.Flags().StringP("code", "c", "", "Short course code, e.g. CS101 (required)")
	cmd.Flags().String("prompt", "", "System prompt for the course persona")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.MarkFlagRequired("code")

	return cmd
}

func runCourseCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := args[0]
	code, _ := cmd.Flags().GetString("code")
	prompt, _ := cmd.Flags().GetString("prompt")
	outputFormat, _ := cmd.Flags().GetString("output")

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	courseSvc := service.NewCourseService(repository.NewCourseRepository(pool))

	course, err := courseSvc.Create(ctx, service.CreateCourseInput{
		Name:         name,
		Code:         code,
		SystemPrompt: prompt,
	})
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"id":         course.ID,
			"name":       course.Name,
			"code":       course.Code,
			"created_at": course.CreatedAt,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Course created: %s [%s] (%s)\n", course.Name, course.Code, course.ID)
	}

	return nil
}

func CourseListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all courses",
		Long:  "List all courses in the system",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runCourseList(outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runCourseList(outputFormat string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	courseRepo := repository.NewCourseRepository(pool)

	courses, err := courseRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list courses: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(courses))
		for i, course := range courses {
			data[i] = map[string]interface{}{
				"id":         course.ID,
				"name":       course.Name,
				"code":       course.Code,
				"created_at": course.CreatedAt,
			}
		}
		jsonBytes, _ := json.MarshalIndent(map[string]interface{}{"items": data}, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		if len(courses) == 0 {
			fmt.Println("No courses found")
			return nil
		}
		fmt.Println("Courses:")
		for _, course := range courses {
			fmt.Printf("  %s: %s [%s] (created: %s)\n", course.ID, course.Name, course.Code, course.CreatedAt.Format("2006-01-02 15:04:05"))
		}
	}

	return nil
}

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return database.Connect(ctx, cfg.DatabaseURL)
}
