package ui

import (
	"strings"
	"testing"

	"github.com/zhouzirui/z-diet/backend/internal/model/meal"
	mealService "github.com/zhouzirui/z-diet/backend/internal/service/meal"
)

func TestRenderMealsIncludesTotals(t *testing.T) {
	out := RenderMeals([]meal.Meal{
		{ID: "m1", Name: "Eggs", Type: meal.Breakfast, Calories: 140, Protein: 12, Date: "2024-05-01"},
		{ID: "m2", Name: "Toast", Type: meal.Breakfast, Calories: 80.5, Carbs: 15, Date: "2024-05-01"},
	})

	for _, want := range []string{"Eggs", "Toast", "total", "220.5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderMealsEmpty(t *testing.T) {
	if out := RenderMeals(nil); !strings.Contains(out, "No meals logged") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRenderWeeklyStats(t *testing.T) {
	out := RenderWeeklyStats(mealService.WeeklyStats{
		Start:      "2024-04-25",
		End:        "2024-05-01",
		Days:       []mealService.DayTotals{{Date: "2024-05-01", Calories: 700, Meals: 2}},
		Averages:   mealService.Averages{Calories: 100},
		TotalMeals: 2,
	})

	for _, want := range []string{"2024-04-25 .. 2024-05-01", "avg/day", "700"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestFoodLabel(t *testing.T) {
	got := FoodLabel(meal.FoodItem{Name: "Egg", Calories: 70, Protein: 6, Carbs: 0.5, Fat: 5, ServingSize: 50, ServingUnit: "g"})
	want := "Egg (50g) - 70 kcal, P 6 / C 0.5 / F 5"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
