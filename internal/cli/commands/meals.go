package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/z-diet/backend/internal/cli/ui"
)

var (
	mealsFrom string
	mealsTo   string
)

var mealsCmd = &cobra.Command{
	Use:   "meals",
	Short: "list logged meals",
	Example: `  # Today
  $ dietctl meals

  # A range of days
  $ dietctl meals --from 2024-05-01 --to 2024-05-07

  # Remove a meal
  $ dietctl meals rm 6f1c...`,
	Args: cobra.NoArgs,
	RunE: runMeals,
}

var mealsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "delete a logged meal",
	Args:  cobra.ExactArgs(1),
	RunE:  runMealsRm,
}

func init() {
	mealsCmd.Flags().StringVar(&mealsFrom, "from", "", "First day (YYYY-MM-DD), default today")
	mealsCmd.Flags().StringVar(&mealsTo, "to", "", "Last day (YYYY-MM-DD), default --from")
	mealsCmd.SilenceUsage = true
	mealsRmCmd.SilenceUsage = true

	mealsCmd.AddCommand(mealsRmCmd)
}

func runMeals(cmd *cobra.Command, args []string) error {
	apiClient, _, err := authenticatedClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	meals, err := apiClient.Meals(ctx, mealsFrom, mealsTo)
	if err != nil {
		ui.PrintError("failed to list meals: %v", err)
		return fmt.Errorf("list failed")
	}

	fmt.Println(ui.RenderMeals(meals))
	return nil
}

func runMealsRm(cmd *cobra.Command, args []string) error {
	apiClient, _, err := authenticatedClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiClient.DeleteMeal(ctx, args[0]); err != nil {
		ui.PrintError("failed to delete meal: %v", err)
		return fmt.Errorf("delete failed")
	}

	ui.PrintSuccess("Deleted meal %s", args[0])
	return nil
}
