package admin

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/studyhall-ai/studyhall/internal/config"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Apply pending database migrations and exit",
		RunE:  runMigrate,
	}

	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	return runMigrations(cfg.DatabaseURL)
}
