package models

// Plain data structures handed to chart-rendering consumers. No
// rendering logic lives here; everything is numeric arrays plus labels.

type StreakResult struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

// DailySeries covers the trailing N days, oldest first.
type DailySeries struct {
	Labels []string `json:"labels"` // MM-DD
	Counts []int    `json:"counts"`
	Rates  []int    `json:"rates"` // percent, 0-100
}

// MonthlySeries covers the trailing N calendar months, oldest first.
type MonthlySeries struct {
	Data   []int    `json:"data"`
	Labels []string `json:"labels"` // month abbreviations
}

type CategoryBreakdown struct {
	Data   []int    `json:"data"`
	Labels []string `json:"labels"`
	Colors []string `json:"colors"`
}

// HabitMetric is a habit ranked by derived completion rate, used for the
// top-habits and challenge-habits lists.
type HabitMetric struct {
	HabitID        uint        `json:"habit_id"`
	Name           string      `json:"habit_name"`
	Description    string      `json:"description"`
	Category       string      `json:"category"`
	Color          string      `json:"color"`
	Counter        int         `json:"counter"`
	CompletionRate int         `json:"completion_rate"`
	Streak         int         `json:"streak"`
	Status         HabitStatus `json:"status"`
	Sparkline      []int       `json:"sparkline"` // last 14 days, 1 = completed
}
