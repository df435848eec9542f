package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/z-diet/backend/internal/analysis/mealtype"
	"github.com/zhouzirui/z-diet/backend/internal/cli/ui"
	"github.com/zhouzirui/z-diet/backend/internal/model/meal"
)

var searchCmd = &cobra.Command{
	Use:   "search <food>",
	Short: "look up nutrition facts and log a food",
	Example: `  $ dietctl search chicken breast
  $ dietctl search "oat milk latte"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.SilenceUsage = true
}

func runSearch(cmd *cobra.Command, args []string) error {
	apiClient, _, err := authenticatedClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	query := strings.Join(args, " ")
	ui.PrintInfo("Searching for %q...", query)

	foods, err := apiClient.SearchFoods(ctx, query)
	if err != nil {
		ui.PrintErrorBox("Search Failed", err.Error())
		return fmt.Errorf("search failed")
	}
	if len(foods) == 0 {
		ui.PrintWarning("no foods found")
		return nil
	}

	labels := make([]string, len(foods))
	for i, f := range foods {
		labels[i] = ui.FoodLabel(f)
	}

	var picked int
	if err := survey.AskOne(&survey.Select{Message: "Pick a food:", Options: labels}, &picked); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}

	var servings string
	err = survey.AskOne(&survey.Input{Message: "Servings:", Default: "1"}, &servings,
		survey.WithValidator(func(ans interface{}) error {
			v, err := strconv.ParseFloat(strings.TrimSpace(fmt.Sprint(ans)), 64)
			if err != nil || v <= 0 {
				return fmt.Errorf("enter a positive number")
			}
			return nil
		}))
	if err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	multiplier, _ := strconv.ParseFloat(strings.TrimSpace(servings), 64)

	options := make([]string, len(meal.Types))
	for i, t := range meal.Types {
		options[i] = string(t)
	}
	guess := mealtype.Infer("", foods[picked].Name, "", time.Now()).Type

	var mealType string
	if err := survey.AskOne(&survey.Select{Message: "Meal:", Options: options, Default: string(guess)}, &mealType); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}

	logged, err := apiClient.LogFood(ctx, foods[picked], multiplier, meal.Type(mealType))
	if err != nil {
		ui.PrintErrorBox("Log Failed", err.Error())
		return fmt.Errorf("log failed")
	}

	ui.PrintSuccess("Logged %s", ui.MealSummary(logged))
	return nil
}
