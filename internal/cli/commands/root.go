package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/z-diet/backend/internal/cli/client"
	"github.com/zhouzirui/z-diet/backend/internal/cli/config"
	"github.com/zhouzirui/z-diet/backend/internal/cli/ui"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "dietctl",
	Short:   "Diet tracking CLI",
	Version: version,
	Long: `A command-line client for the diet tracking backend. Chat with the diet
assistant to log meals, look up nutrition facts and review your week.`,
	Example: `  # Save a token for the API server
  $ dietctl login http://localhost:8080

  # Tell the assistant what you ate
  $ dietctl chat

  # Look up a food and log it
  $ dietctl search greek yogurt

  # Today's meals and the weekly summary
  $ dietctl meals
  $ dietctl stats`,
}

// Execute executes the root command
func Execute() error {
	rootCmd.SetVersionTemplate(fmt.Sprintf("dietctl version %s\n", version))
	return rootCmd.Execute()
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(mealsCmd)
	rootCmd.AddCommand(statsCmd)

	rootCmd.SetUsageTemplate(usageTemplate())
	rootCmd.SetHelpTemplate(usageTemplate())
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + ui.Styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + ui.Styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + ui.Styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + ui.Styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}

// authenticatedClient loads the saved config and builds an API client.
func authenticatedClient() (*client.APIClient, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return nil, nil, fmt.Errorf("config load failed")
	}

	if !cfg.IsAuthenticated() {
		ui.PrintError("not authenticated, please login first")
		fmt.Println("\nRun 'dietctl login' to authenticate.")
		return nil, nil, fmt.Errorf("authentication required")
	}

	apiClient, err := client.NewAPIClient(cfg.Server, cfg.AccessToken)
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return nil, nil, fmt.Errorf("client creation failed")
	}
	return apiClient, cfg, nil
}
