package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/studyhall-ai/studyhall/internal/cli"
	"github.com/studyhall-ai/studyhall/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "studyhalld",
		Short: "Studyhall daemon and admin CLI",
		Long:  "Studyhall daemon for running the API server and managing courses, users, and tokens",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.MigrateCmd())
	rootCmd.AddCommand(admin.CourseCmd())
	rootCmd.AddCommand(admin.UserCmd())
	rootCmd.AddCommand(admin.TokenCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
