package models

import "gorm.io/gorm"

// Streak is the per-user cached streak record, recomputed lazily when
// LastActivityDate is not today.
type Streak struct {
	gorm.Model
	UserID           uint    `gorm:"uniqueIndex;not null" json:"user_id"`
	CurrentStreak    int     `gorm:"default:0" json:"current_streak"`
	LongestStreak    int     `gorm:"default:0" json:"longest_streak"`
	LastActivityDate *string `json:"last_activity_date"` // YYYY-MM-DD, nil when never active
}

// UserStatistic is the per-user per-date materialized snapshot. A row is
// written once for a date and never updated afterwards.
type UserStatistic struct {
	gorm.Model
	UserID           uint    `gorm:"uniqueIndex:idx_user_stat_date;not null" json:"user_id"`
	Date             string  `gorm:"uniqueIndex:idx_user_stat_date;not null" json:"date"`
	CompletionRate   float64 `json:"completion_rate"`
	TotalCompletions int     `json:"total_completions"`
	ActiveHabits     int     `json:"active_habits"`
}
