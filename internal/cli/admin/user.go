package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/repository"
	"github.com/studyhall-ai/studyhall/internal/service"
)

func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
		Long:  "Inspect users and change their roles",
	}

	cmd.AddCommand(UserRoleCmd())
	cmd.AddCommand(UserGetCmd())

	return cmd
}

func UserRoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role <subject> <role>",
		Short: "Change a user's role",
		Long:  "Set the role (student, ta, instructor) for the user with the given token subject",
		Args:  cobra.ExactArgs(2),
		RunE:  runUserRole,
	}

	return cmd
}

func runUserRole(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	subject := args[0]

	role, err := domain.ParseUserRole(args[1])
	if err != nil {
		return err
	}

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	userSvc := service.NewUserService(repository.NewUserRepository(pool))

	if err := userSvc.UpdateRole(ctx, subject, role); err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	fmt.Printf("Role for %s set to %s\n", subject, role)
	return nil
}

func UserGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <subject>",
		Short: "Show a user",
		Long:  "Show the user with the given token subject",
		Args:  cobra.ExactArgs(1),
		RunE:  runUserGet,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runUserGet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	subject := args[0]
	outputFormat, _ := cmd.Flags().GetString("output")

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	userSvc := service.NewUserService(repository.NewUserRepository(pool))

	user, err := userSvc.GetBySubject(ctx, subject)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"id":         user.ID,
			"subject":    user.Subject,
			"email":      user.Email,
			"role":       user.Role,
			"created_at": user.CreatedAt,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("User %s\n", user.ID)
		fmt.Printf("Subject: %s\n", user.Subject)
		fmt.Printf("Email: %s\n", user.Email)
		fmt.Printf("Role: %s\n", user.Role)
		fmt.Printf("Created: %s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}
