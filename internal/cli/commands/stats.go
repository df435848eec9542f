package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/z-diet/backend/internal/cli/ui"
)

var statsEnd string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "show the seven day summary",
	Example: `  $ dietctl stats
  $ dietctl stats --end 2024-05-07`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsEnd, "end", "", "Last day of the week (YYYY-MM-DD), default today")
	statsCmd.SilenceUsage = true
}

func runStats(cmd *cobra.Command, args []string) error {
	apiClient, _, err := authenticatedClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stats, err := apiClient.WeeklyStats(ctx, statsEnd)
	if err != nil {
		ui.PrintError("failed to load stats: %v", err)
		return fmt.Errorf("stats failed")
	}

	fmt.Println(ui.RenderWeeklyStats(stats))
	return nil
}
