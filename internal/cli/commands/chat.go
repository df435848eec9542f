package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/z-diet/backend/internal/cli/chatflow"
	"github.com/zhouzirui/z-diet/backend/internal/cli/ui"
	"github.com/zhouzirui/z-diet/backend/internal/model/chat"
)

var chatFresh bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "chat with the diet assistant",
	Long: `Start an interactive chat with the diet assistant.

Replies are streamed as they are generated. When the assistant estimates a
meal, it is logged for today automatically.`,
	Example: `  # Continue the stored conversation
  $ dietctl chat

  # Start from an empty conversation
  $ dietctl chat --fresh`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatFresh, "fresh", false, "Ignore stored history for this session")
	chatCmd.SilenceUsage = true
}

func runChat(cmd *cobra.Command, args []string) error {
	apiClient, _, err := authenticatedClient()
	if err != nil {
		return err
	}

	var history []chat.Turn
	if !chatFresh {
		messages, err := apiClient.Messages(context.Background())
		if err != nil {
			ui.PrintError("failed to load history: %v", err)
			return fmt.Errorf("history load failed")
		}
		for _, m := range messages {
			history = append(history, chat.Turn{Role: m.Role, Content: m.Content})
		}
	}

	session := chatflow.NewSession(apiClient, history)
	ui.PrintChatWelcomeBanner()
	if len(history) > 0 {
		ui.PrintInfo("Continuing conversation (%d earlier messages)", len(history))
	}

	for {
		var text string
		err := survey.AskOne(&survey.Input{Message: "you:"}, &text)
		if errors.Is(err, terminal.InterruptErr) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("input failed: %w", err)
		}

		text = strings.TrimSpace(text)
		switch text {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/clear":
			removed, err := apiClient.ClearMessages(context.Background())
			if err != nil {
				ui.PrintError("failed to clear history: %v", err)
				continue
			}
			session.Reset()
			ui.PrintSuccess("Cleared %d messages", removed)
			continue
		}

		sendTurn(session, text)
	}
}

// sendTurn streams one reply. Ctrl-C cancels the reply, not the session.
func sendTurn(session *chatflow.Session, text string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ui.PrintBoldNoNewline("assistant: ")
	res, err := session.Send(ctx, text, ui.PrintDelta)
	fmt.Fprintln(ui.Out)

	if res.Meal != nil {
		ui.PrintSuccess("Logged %s", ui.MealSummary(*res.Meal))
	}
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		ui.PrintWarning("reply cancelled")
	default:
		ui.PrintError("%v", err)
	}
}
