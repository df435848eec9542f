// Package mealtype infers a meal slot when the model returns an unknown one.
package mealtype

import (
	"strings"
	"time"

	"github.com/zhouzirui/z-diet/backend/internal/model/meal"
)

// Decision 给出识别结果以及得分。
type Decision struct {
	Type  meal.Type
	Score int
}

var keywordBuckets = map[meal.Type][]string{
	meal.Breakfast: {
		"breakfast", "brunch", "morning", "cereal", "oatmeal", "oats", "porridge", "pancake", "waffle",
		"toast", "bagel", "omelette", "omelet", "scrambled", "granola", "croissant", "muesli",
	},
	meal.Lunch: {
		"lunch", "midday", "noon", "sandwich", "wrap", "salad", "bento", "burrito", "soup",
	},
	meal.Dinner: {
		"dinner", "supper", "evening", "steak", "roast", "lasagna", "curry", "stew", "casserole",
	},
	meal.Snack: {
		"snack", "bar", "chips", "crisps", "cookie", "nuts", "almonds", "yogurt", "apple", "banana",
		"smoothie", "shake", "popcorn", "cracker",
	},
}

// explicitBoost rewards text that names the slot directly.
var explicitBoost = map[meal.Type]string{
	meal.Breakfast: "breakfast",
	meal.Lunch:     "lunch",
	meal.Dinner:    "dinner",
	meal.Snack:     "snack",
}

// Infer resolves raw into a meal type. Known values pass through; otherwise
// keywords in the raw value, name and notes are scored, and the hour of at
// decides when nothing matches.
func Infer(raw, name, notes string, at time.Time) Decision {
	if t, ok := meal.ParseType(raw); ok {
		return Decision{Type: t, Score: 100}
	}

	text := strings.Join([]string{raw, name, notes}, " ")
	if d := scoreText(text); d.Score > 0 {
		return d
	}

	return Decision{Type: byHour(at.Hour()), Score: 0}
}

func scoreText(text string) Decision {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Decision{}
	}

	scores := make(map[meal.Type]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				scores[label] += 3
			}
		}
	}
	for label, word := range explicitBoost {
		if strings.Contains(normalized, word) {
			scores[label] += 10
		}
	}

	best := Decision{}
	for _, label := range meal.Types {
		if s := scores[label]; s > best.Score {
			best = Decision{Type: label, Score: s}
		}
	}
	return best
}

func byHour(hour int) meal.Type {
	switch {
	case hour >= 4 && hour < 11:
		return meal.Breakfast
	case hour >= 11 && hour < 15:
		return meal.Lunch
	case hour >= 17 && hour < 22:
		return meal.Dinner
	default:
		return meal.Snack
	}
}
