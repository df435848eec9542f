package meal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidMultiplier is returned when a serving multiplier is not positive.
var ErrInvalidMultiplier = errors.New("serving multiplier must be positive")

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)

// Amount is a number that also accepts a JSON string, since model output is
// not consistent about quoting. Descriptive strings decode to their leading
// number, or 0 when there is none.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*a = 0
			return nil
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			*a = Amount(v)
			return nil
		}
		// "1 medium", "95 kcal": keep the leading number, else 0.
		v, _ := strconv.ParseFloat(leadingNumber.FindString(s), 64)
		*a = Amount(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = Amount(v)
	return nil
}

// FoodItem is one nutrition lookup result. It is not persisted until a user
// picks it and it becomes a Meal.
type FoodItem struct {
	Name        string `json:"name"`
	Calories    Amount `json:"calories"`
	Protein     Amount `json:"protein"`
	Carbs       Amount `json:"carbs"`
	Fat         Amount `json:"fat"`
	ServingSize Amount `json:"serving_size"`
	ServingUnit string `json:"serving_unit"`
}

// ToMeal scales the item by multiplier servings.
func (f FoodItem) ToMeal(multiplier float64, mealType Type, date string) (Meal, error) {
	if multiplier <= 0 || math.IsNaN(multiplier) || math.IsInf(multiplier, 0) {
		return Meal{}, ErrInvalidMultiplier
	}

	notes := ""
	if f.ServingSize > 0 {
		notes = fmt.Sprintf("%s x %s%s", trimFloat(multiplier), trimFloat(float64(f.ServingSize)), f.ServingUnit)
	}

	return Meal{
		Name:     f.Name,
		Type:     mealType,
		Calories: round1(float64(f.Calories) * multiplier),
		Protein:  round1(float64(f.Protein) * multiplier),
		Carbs:    round1(float64(f.Carbs) * multiplier),
		Fats:     round1(float64(f.Fat) * multiplier),
		Date:     date,
		Notes:    notes,
		Source:   SourceSearch,
	}, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
