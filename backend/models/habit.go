package models

import (
	"time"

	"gorm.io/gorm"
)

// HabitStatus is a closed enumeration; anything else is rejected at the
// service layer.
type HabitStatus string

const (
	StatusInactive   HabitStatus = "inactive"
	StatusActive     HabitStatus = "active"
	StatusInProgress HabitStatus = "in_progress"
	StatusComplete   HabitStatus = "complete"
)

func (s HabitStatus) Valid() bool {
	switch s {
	case StatusInactive, StatusActive, StatusInProgress, StatusComplete:
		return true
	}
	return false
}

type Category struct {
	gorm.Model
	Name  string `gorm:"unique;not null" json:"name"`
	Color string `json:"color"` // chart hint only
}

type Habit struct {
	gorm.Model
	Name        string      `gorm:"not null" json:"name"`
	Description string      `json:"description"`
	Weekday     int         `gorm:"not null" json:"weekday"`   // 0 (Sunday) - 6 (Saturday)
	TimeSlot    int         `gorm:"not null" json:"time_slot"` // hour 0-23
	Counter     int         `gorm:"default:0" json:"counter"`  // invariant: never negative
	Status      HabitStatus `gorm:"default:active" json:"status"`
	CategoryID  *uint       `json:"category_id"`
	Category    *Category   `json:"category,omitempty"`
}

// UserHabit links a habit to its owning user. Pinned habits clone the
// habit row and get their own link rather than sharing one. Links are
// hard-deleted together with their habit.
type UserHabit struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_habit" json:"user_id"`
	HabitID   uint      `gorm:"uniqueIndex:idx_user_habit" json:"habit_id"`
	CreatedAt time.Time `json:"created_at"`
}
