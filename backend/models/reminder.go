package models

import "gorm.io/gorm"

type HabitReminder struct {
	gorm.Model
	UserID       uint   `gorm:"index" json:"user_id"`
	HabitID      uint   `gorm:"index" json:"habit_id"`
	ReminderTime string `gorm:"not null" json:"reminder_time"` // HH:MM, 24h
	DaysOfWeek   string `gorm:"not null" json:"days_of_week"`  // comma-separated 0-6
	Channel      string `gorm:"default:email" json:"channel"`  // email, sms
	Enabled      bool   `gorm:"default:true" json:"enabled"`
}
