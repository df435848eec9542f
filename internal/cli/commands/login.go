package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/z-diet/backend/internal/cli/client"
	"github.com/zhouzirui/z-diet/backend/internal/cli/config"
	"github.com/zhouzirui/z-diet/backend/internal/cli/ui"
)

var loginToken string

var loginCmd = &cobra.Command{
	Use:   "login [server]",
	Short: "save an access token for the API server",
	Long: `Save an access token and check it against the API server.

The token is stored in ~/.dietctl/config.json (or $DIETCTL_HOME/config.json)
and sent as a bearer token on every request.

If server is not provided, defaults to http://localhost:8080.`,
	Example: `  # Paste the token when prompted
  $ dietctl login

  # Non-interactive
  $ dietctl login http://api.example.com:8080 --token "$DIET_TOKEN"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginToken, "token", "t", "", "Access token (prompted when empty)")
	loginCmd.SilenceUsage = true
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	server := "http://localhost:8080"
	if len(args) > 0 {
		server = args[0]
	}

	token := strings.TrimSpace(loginToken)
	if token == "" {
		prompt := &survey.Password{Message: "Access token:"}
		if err := survey.AskOne(prompt, &token, survey.WithValidator(survey.Required)); err != nil {
			ui.PrintError("failed to read token: %v", err)
			return fmt.Errorf("input failed")
		}
		token = strings.TrimSpace(token)
	}

	userID, err := tokenSubject(token)
	if err != nil {
		ui.PrintErrorBox("Login Failed", err.Error())
		return fmt.Errorf("invalid token")
	}

	apiClient, err := client.NewAPIClient(server, token)
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return fmt.Errorf("client creation failed")
	}

	ui.PrintInfo("Connecting to %s...", apiClient.Server())

	// 用一个需要鉴权的接口校验 token。
	if _, err := apiClient.Messages(ctx); err != nil {
		ui.PrintErrorBox("Login Failed", err.Error())
		return fmt.Errorf("authentication failed")
	}

	cfg := &config.Config{
		Server:      apiClient.Server(),
		AccessToken: token,
		UserID:      userID,
	}
	if err := cfg.Save(); err != nil {
		ui.PrintError("failed to save config: %v", err)
		return fmt.Errorf("config save failed")
	}

	configPath, _ := config.Path()
	ui.PrintSuccessBox("✓ Login Successful", fmt.Sprintf("User ID:       %s\nConfig saved:  %s", userID, configPath))
	return nil
}

// tokenSubject reads the user id from the token without verifying it; the
// server does the verification.
func tokenSubject(token string) (string, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return "", fmt.Errorf("malformed token: %w", err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Subject, nil
}
