package meal

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used for meal dates.
const DateLayout = "2006-01-02"

// Type is the slot of the day a meal belongs to.
type Type string

const (
	Breakfast Type = "breakfast"
	Lunch     Type = "lunch"
	Dinner    Type = "dinner"
	Snack     Type = "snack"
)

// Types lists the accepted meal types in day order.
var Types = []Type{Breakfast, Lunch, Dinner, Snack}

// ParseType normalises raw into a Type.
func ParseType(raw string) (Type, bool) {
	candidate := Type(strings.ToLower(strings.TrimSpace(raw)))
	for _, t := range Types {
		if t == candidate {
			return t, true
		}
	}
	return "", false
}

// Source records how a meal was created.
type Source string

const (
	SourceChat   Source = "chat"
	SourceSearch Source = "search"
	SourceManual Source = "manual"
)

var (
	ErrNameRequired    = errors.New("meal name is required")
	ErrInvalidType     = errors.New("meal type must be breakfast, lunch, dinner or snack")
	ErrNegativeMacro   = errors.New("macros must be non-negative")
	ErrInvalidMealDate = errors.New("meal date must be YYYY-MM-DD")
	ErrNotFound        = errors.New("meal not found")
)

// Meal is a logged eating event. Immutable once created.
type Meal struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"meal_name"`
	Type      Type      `json:"meal_type"`
	Calories  float64   `json:"calories"`
	Protein   float64   `json:"protein"`
	Carbs     float64   `json:"carbs"`
	Fats      float64   `json:"fats"`
	Date      string    `json:"meal_date"`
	Notes     string    `json:"notes,omitempty"`
	Source    Source    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the invariants every stored meal satisfies.
func (m Meal) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrNameRequired
	}
	if _, ok := ParseType(string(m.Type)); !ok {
		return ErrInvalidType
	}
	for name, v := range map[string]float64{
		"calories": m.Calories,
		"protein":  m.Protein,
		"carbs":    m.Carbs,
		"fats":     m.Fats,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s=%v", ErrNegativeMacro, name, v)
		}
	}
	if _, err := time.Parse(DateLayout, m.Date); err != nil {
		return ErrInvalidMealDate
	}
	return nil
}

// Day formats t as a meal date.
func Day(t time.Time) string {
	return t.Format(DateLayout)
}
