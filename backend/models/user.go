package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null" json:"username"`
	Email        string `gorm:"unique;not null" json:"email"`
	Phone        string `json:"phone"`
	PasswordHash string `gorm:"not null" json:"-"`
	DailyDigest  bool   `gorm:"default:false" json:"daily_digest"`
	WeeklyReport bool   `gorm:"default:false" json:"weekly_report"`
}

type LoginHistory struct {
	gorm.Model
	UserID    uint `gorm:"index"`
	LoginTime time.Time
}

// Friend is a directed friendship row. Mutual becomes true once the
// receiver accepts, at which point both directions exist.
type Friend struct {
	gorm.Model
	SenderID   uint `gorm:"index;uniqueIndex:idx_friend_pair" json:"sender_id"`
	ReceiverID uint `gorm:"index;uniqueIndex:idx_friend_pair" json:"receiver_id"`
	Mutual     bool `gorm:"default:false" json:"mutual"`
}
