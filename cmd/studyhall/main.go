package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/studyhall-ai/studyhall/internal/cli"
	"github.com/studyhall-ai/studyhall/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "studyhall",
		Short: "Studyhall CLI - Course Q&A from the terminal",
		Long: `Studyhall CLI provides commands to ask questions, review answers, and
manage course materials.

Environment variables:
  STUDYHALL_TOKEN     Bearer token for authentication (required)
  STUDYHALL_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("token", "", "Bearer token for authentication (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.InitCmd())
	rootCmd.AddCommand(client.AuthCmd())
	rootCmd.AddCommand(client.CoursesCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.LogsCmd())
	rootCmd.AddCommand(client.ReviewCmd())
	rootCmd.AddCommand(client.DocsCmd())
	rootCmd.AddCommand(client.AnalyticsCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
