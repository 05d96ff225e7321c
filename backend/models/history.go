package models

import "time"

// History holds one row per calendar date on which anything was
// completed. The unique index on Date is what makes find-or-create safe
// under concurrent completions of different habits on the same day.
//
// History rows and completion links are hard-deleted: a soft-deleted
// row would still occupy the unique index and block re-completion.
type History struct {
	ID        uint      `gorm:"primarykey" json:"history_id"`
	Date      string    `gorm:"uniqueIndex;not null" json:"date"` // YYYY-MM-DD
	CreatedAt time.Time `json:"created_at"`
}

// HabitHistory records "this habit was completed on this date". The
// composite unique index enforces at most one completion per habit per
// date.
type HabitHistory struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	HabitID   uint      `gorm:"uniqueIndex:idx_habit_history" json:"habit_id"`
	HistoryID uint      `gorm:"uniqueIndex:idx_habit_history" json:"history_id"`
	CreatedAt time.Time `json:"created_at"`
}
