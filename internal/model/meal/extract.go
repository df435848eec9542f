package meal

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// ErrNoMealBlock means the text carries no fenced json block.
var ErrNoMealBlock = errors.New("no meal block found")

var mealBlockPattern = regexp.MustCompile("```json\\s*\\n([\\s\\S]*?)\\n```")

// Draft is the meal object an assistant reply appends in a fenced json block.
type Draft struct {
	Name     string `json:"meal_name"`
	Type     string `json:"meal_type"`
	Calories Amount `json:"calories"`
	Protein  Amount `json:"protein"`
	Carbs    Amount `json:"carbs"`
	Fats     Amount `json:"fats"`
	Notes    string `json:"notes"`
}

// ExtractDraft finds the first fenced json block in text and decodes it.
// It returns ErrNoMealBlock when there is none, and a wrapped decode error
// when the block is not a meal object.
func ExtractDraft(text string) (Draft, error) {
	match := mealBlockPattern.FindStringSubmatch(text)
	if match == nil {
		return Draft{}, ErrNoMealBlock
	}

	var draft Draft
	if err := json.Unmarshal([]byte(match[1]), &draft); err != nil {
		return Draft{}, fmt.Errorf("decode meal block: %w", err)
	}
	if draft.Name == "" {
		return Draft{}, fmt.Errorf("decode meal block: %w", ErrNameRequired)
	}
	return draft, nil
}

// Meal converts the draft into a meal for date. The raw meal_type is kept
// as-is; callers normalise it before validation.
func (d Draft) Meal(date string) Meal {
	return Meal{
		Name:     d.Name,
		Type:     Type(d.Type),
		Calories: float64(d.Calories),
		Protein:  float64(d.Protein),
		Carbs:    float64(d.Carbs),
		Fats:     float64(d.Fats),
		Date:     date,
		Notes:    d.Notes,
		Source:   SourceChat,
	}
}
