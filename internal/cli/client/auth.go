package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// AuthCmd creates the auth parent command
func AuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication credentials",
		Long:  "Login, logout, and check authentication status for the studyhall CLI",
	}

	cmd.AddCommand(AuthLoginCmd())
	cmd.AddCommand(AuthLogoutCmd())
	cmd.AddCommand(AuthStatusCmd())

	return cmd
}

// AuthLoginCmd creates the auth login command
func AuthLoginCmd() *cobra.Command {
	var token string
	var apiURL string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with a bearer token",
		Long:  "Store the bearer token and API URL in global config (~/.config/studyhall/config.json)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogin(token, apiURL)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Bearer token (JWT)")
	cmd.Flags().StringVar(&apiURL, "url", "http://localhost:8080", "API URL")

	return cmd
}

// AuthLogoutCmd creates the auth logout command
func AuthLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Logout and clear credentials",
		Long:  "Remove stored credentials from global config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogout()
		},
	}

	return cmd
}

// AuthStatusCmd creates the auth status command
func AuthStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Long:  "Display current authentication source and credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAuthStatus(outputJSON)
		},
	}

	cmd.Flags().Bool("output", false, "Output as JSON")

	return cmd
}

func runAuthLogin(token, apiURL string) error {
	if token == "" {
		fmt.Print("Enter bearer token: ")
		reader := bufio.NewReader(os.Stdin)
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
		token = strings.TrimSpace(input)
	}

	if !IsValidToken(token) {
		return fmt.Errorf("invalid token format (expected a JWT with three dot-separated segments)")
	}

	config := &GlobalConfig{
		Token:  token,
		APIURL: apiURL,
	}

	if err := SaveGlobalConfig(config); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	fmt.Println("Successfully logged in")
	return nil
}

func runAuthLogout() error {
	if err := DeleteGlobalConfig(); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}

	fmt.Println("Successfully logged out")
	return nil
}

func runAuthStatus(outputJSON bool) error {
	source, token, apiURL := GetCredentialSource("", "")

	if outputJSON {
		return outputStatusJSON(source, token, apiURL)
	}

	return outputStatusText(source, token, apiURL)
}

func outputStatusJSON(source CredentialSource, token, apiURL string) error {
	status := map[string]interface{}{
		"authenticated": source != SourceNone,
		"source":        string(source),
	}

	if source != SourceNone {
		status["token"] = maskToken(token)
		status["api_url"] = apiURL
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	fmt.Println(string(data))
	return nil
}

func outputStatusText(source CredentialSource, token, apiURL string) error {
	if source == SourceNone {
		fmt.Println("Not authenticated")
		fmt.Println("Run 'studyhall auth login' to authenticate")
		return nil
	}

	fmt.Printf("Authenticated: yes\n")
	fmt.Printf("Source: %s\n", source)
	fmt.Printf("Token: %s\n", maskToken(token))
	fmt.Printf("API URL: %s\n", apiURL)

	return nil
}

func maskToken(token string) string {
	if len(token) < 12 {
		return "***"
	}
	return token[:7] + "..." + token[len(token)-4:]
}
