package services

import (
	"errors"
	"time"

	"habitat/backend/models"
	"habitat/backend/utils"

	"gorm.io/gorm"
)

// CurrentStreak walks a descending list of distinct completion dates
// and counts the consecutive run ending at the anchor.
//
// Anchor policy: the walk starts at today when a completion exists for
// today, otherwise at yesterday. A day whose completion simply hasn't
// happened yet does not break an ongoing streak.
func CurrentStreak(dates []string, today time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	todayStr := utils.FormatDate(today)
	anchor := today
	if dates[0] != todayStr {
		anchor = today.AddDate(0, 0, -1)
	}

	streak := 0
	for _, d := range dates {
		date, err := utils.ParseDate(d)
		if err != nil {
			continue
		}
		diff := utils.DayDiff(anchor, date)
		if diff == 0 {
			streak++
			anchor = date.AddDate(0, 0, -1)
		} else {
			break
		}
	}
	return streak
}

// LongestStreak returns the longest consecutive-day run in a
// descending list of distinct completion dates.
func LongestStreak(dates []string) int {
	if len(dates) == 0 {
		return 0
	}

	longest := 1
	run := 1
	for i := 0; i < len(dates)-1; i++ {
		a, errA := utils.ParseDate(dates[i])
		b, errB := utils.ParseDate(dates[i+1])
		if errA != nil || errB != nil {
			continue
		}
		if utils.DayDiff(a, b) == 1 {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	return longest
}

// StreakService maintains the per-user cached streak record.
type StreakService struct {
	DB      *gorm.DB
	History *HistoryService
}

func NewStreakService(db *gorm.DB) *StreakService {
	return &StreakService{DB: db, History: NewHistoryService(db)}
}

// GetOrCompute returns the cached streak record when it is fresh
// (last activity recorded today) and recomputes it from the distinct
// completion dates otherwise.
func (s *StreakService) GetOrCompute(userID uint) (*models.Streak, error) {
	today := utils.Today()

	var record models.Streak
	err := s.DB.Where("user_id = ?", userID).First(&record).Error
	if err == nil && record.LastActivityDate != nil && *record.LastActivityDate == today {
		return &record, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return s.Recompute(userID)
}

// Recompute derives the streak record from scratch and upserts it.
func (s *StreakService) Recompute(userID uint) (*models.Streak, error) {
	dates, err := s.History.AllCompletionDates(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record := models.Streak{
		UserID:        userID,
		CurrentStreak: CurrentStreak(dates, now),
		LongestStreak: LongestStreak(dates),
	}
	if len(dates) > 0 && dates[0] == utils.FormatDate(now) {
		today := utils.Today()
		record.LastActivityDate = &today
	}

	var existing models.Streak
	err = s.DB.Where("user_id = ?", userID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.DB.Create(&record).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		existing.CurrentStreak = record.CurrentStreak
		// The longest streak is a high-water mark; an undo that shortens
		// history never lowers it.
		if record.LongestStreak > existing.LongestStreak {
			existing.LongestStreak = record.LongestStreak
		}
		existing.LastActivityDate = record.LastActivityDate
		if err := s.DB.Save(&existing).Error; err != nil {
			return nil, err
		}
		record = existing
	}

	return &record, nil
}
