package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/zhouzirui/z-diet/backend/internal/model/meal"
	mealService "github.com/zhouzirui/z-diet/backend/internal/service/meal"
)

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("245"))).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return Styles.Header
			}
			return cellStyle
		})
}

// RenderMeals renders meals as a table with a totals footer.
func RenderMeals(meals []meal.Meal) string {
	if len(meals) == 0 {
		return Styles.Muted.Render("No meals logged")
	}

	t := newTable("DATE", "TYPE", "MEAL", "KCAL", "P", "C", "F", "ID")
	var cal, protein, carbs, fats float64
	for _, m := range meals {
		t.Row(m.Date, string(m.Type), m.Name, num(m.Calories), num(m.Protein), num(m.Carbs), num(m.Fats), m.ID)
		cal += m.Calories
		protein += m.Protein
		carbs += m.Carbs
		fats += m.Fats
	}
	t.Row("", "", "total", num(cal), num(protein), num(carbs), num(fats), "")
	return t.String()
}

// RenderWeeklyStats renders the seven day summary.
func RenderWeeklyStats(stats mealService.WeeklyStats) string {
	t := newTable("DATE", "MEALS", "KCAL", "PROTEIN", "CARBS", "FATS")
	for _, d := range stats.Days {
		t.Row(d.Date, strconv.Itoa(d.Meals), num(d.Calories), num(d.Protein), num(d.Carbs), num(d.Fats))
	}
	t.Row("avg/day", "", num(stats.Averages.Calories), num(stats.Averages.Protein), num(stats.Averages.Carbs), num(stats.Averages.Fats))

	title := Styles.Bold.Render(fmt.Sprintf("Week %s .. %s (%d meals)", stats.Start, stats.End, stats.TotalMeals))
	return title + "\n" + t.String()
}

// FoodLabel is the one-line description used when picking a lookup result.
func FoodLabel(f meal.FoodItem) string {
	return fmt.Sprintf("%s (%s%s) - %s kcal, P %s / C %s / F %s",
		f.Name,
		num(float64(f.ServingSize)), f.ServingUnit,
		num(float64(f.Calories)),
		num(float64(f.Protein)), num(float64(f.Carbs)), num(float64(f.Fat)))
}

// MealSummary is the one-line confirmation printed after a meal is logged.
func MealSummary(m meal.Meal) string {
	return fmt.Sprintf("%s (%s): %s kcal, P %sg / C %sg / F %sg",
		m.Name, m.Type, num(m.Calories), num(m.Protein), num(m.Carbs), num(m.Fats))
}
