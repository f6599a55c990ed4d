package admin

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/studyhall-ai/studyhall/internal/auth"
	"github.com/studyhall-ai/studyhall/internal/config"
)

func TokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Mint a signed JWT for development",
		Long:  "Sign a bearer token for the given subject using the configured JWT secret",
		Args:  cobra.ExactArgs(1),
		RunE:  runToken,
	}

	cmd.Flags().StringP("email", "e", "", "Email claim to embed in the token")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runToken(cmd *cobra.Command, args []string) error {
	subject := args[0]
	email, _ := cmd.Flags().GetString("email")
	ttl, _ := cmd.Flags().GetDuration("ttl")
	outputFormat, _ := cmd.Flags().GetString("output")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasJWT() {
		return fmt.Errorf("JWT_SECRET must be set to mint tokens")
	}

	token, err := auth.GenerateToken(cfg.JWTSecret, subject, email, ttl)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"subject":    subject,
			"email":      email,
			"expires_at": time.Now().Add(ttl).UTC().Format(time.RFC3339),
			"token":      token,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Token for %s (expires in %s):\n%s\n", subject, ttl, token)
	}

	return nil
}
