package exercise

// Exercise is one entry of the static workout catalogue.
type Exercise struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Duration     string   `json:"duration"`
	Difficulty   string   `json:"difficulty"`
	Calories     int      `json:"calories"`
	Description  string   `json:"description"`
	Instructions []string `json:"instructions"`
}

// Seed returns the built-in catalogue.
func Seed() []Exercise {
	return []Exercise{
		{
			ID:          "push-ups",
			Name:        "Push-ups",
			Category:    "Upper Body",
			Duration:    "10-15 reps",
			Difficulty:  "Beginner",
			Calories:    50,
			Description: "Bodyweight press for chest, shoulders and triceps.",
			Instructions: []string{
				"Set up in a plank with hands under the shoulders",
				"Lower until the chest is just above the floor",
				"Press back up while keeping the core braced",
			},
		},
		{
			ID:          "squats",
			Name:        "Squats",
			Category:    "Lower Body",
			Duration:    "15-20 reps",
			Difficulty:  "Beginner",
			Calories:    60,
			Description: "Foundational leg and glute movement.",
			Instructions: []string{
				"Stand with feet shoulder-width apart",
				"Sit the hips back and down, chest up",
				"Drive through the heels to stand",
			},
		},
		{
			ID:          "plank",
			Name:        "Plank",
			Category:    "Core",
			Duration:    "30-60 seconds",
			Difficulty:  "Beginner",
			Calories:    40,
			Description: "Isometric hold for the whole trunk.",
			Instructions: []string{
				"Rest on forearms and toes",
				"Keep a straight line from head to heels",
				"Breathe steadily and hold",
			},
		},
		{
			ID:          "lunges",
			Name:        "Lunges",
			Category:    "Lower Body",
			Duration:    "10-12 reps per leg",
			Difficulty:  "Intermediate",
			Calories:    70,
			Description: "Single-leg strength and balance work.",
			Instructions: []string{
				"Step forward with one leg",
				"Lower until both knees reach roughly 90 degrees",
				"Push back to start and switch legs",
			},
		},
		{
			ID:          "mountain-climbers",
			Name:        "Mountain Climbers",
			Category:    "Cardio",
			Duration:    "30-45 seconds",
			Difficulty:  "Intermediate",
			Calories:    80,
			Description: "Fast-paced cardio with a core component.",
			Instructions: []string{
				"Start in a high plank",
				"Drive one knee toward the chest",
				"Alternate legs quickly with hips level",
			},
		},
		{
			ID:          "burpees",
			Name:        "Burpees",
			Category:    "Full Body",
			Duration:    "8-12 reps",
			Difficulty:  "Advanced",
			Calories:    100,
			Description: "Squat, plank and jump combined into one conditioning drill.",
			Instructions: []string{
				"Squat and place hands on the floor",
				"Jump the feet back to a plank",
				"Return the feet and jump up explosively",
			},
		},
	}
}
