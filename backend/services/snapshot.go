package services

import (
	"errors"
	"fmt"

	"habitat/backend/models"
	"habitat/backend/utils"

	"gorm.io/gorm"
)

// SnapshotService materializes per-user per-day statistics. A snapshot
// is computed once for a date and then treated as immutable: later
// completions on the same day do not rewrite it.
type SnapshotService struct {
	DB *gorm.DB
}

func NewSnapshotService(db *gorm.DB) *SnapshotService {
	return &SnapshotService{DB: db}
}

const snapshotWindowDays = 30

// GetOrCompute returns the snapshot for (user, date), computing and
// persisting it when absent.
func (s *SnapshotService) GetOrCompute(userID uint, date string) (*models.UserStatistic, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var snapshot models.UserStatistic
	err := s.DB.Where("user_id = ? AND date = ?", userID, date).First(&snapshot).Error
	if err == nil {
		return &snapshot, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	rate, err := s.completionRate(userID, date, snapshotWindowDays)
	if err != nil {
		return nil, err
	}

	var totalCompletions int64
	err = s.DB.Model(&models.HabitHistory{}).
		Joins("JOIN user_habits uh ON uh.habit_id = habit_histories.habit_id").
		Where("uh.user_id = ?", userID).
		Count(&totalCompletions).Error
	if err != nil {
		return nil, err
	}

	var activeHabits int64
	err = s.DB.Model(&models.Habit{}).
		Joins("JOIN user_habits uh ON uh.habit_id = habits.id").
		Where("uh.user_id = ? AND habits.status = ?", userID, models.StatusActive).
		Count(&activeHabits).Error
	if err != nil {
		return nil, err
	}

	snapshot = models.UserStatistic{
		UserID:           userID,
		Date:             date,
		CompletionRate:   rate,
		TotalCompletions: int(totalCompletions),
		ActiveHabits:     int(activeHabits),
	}
	if err := s.DB.Create(&snapshot).Error; err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// completionRate estimates the share of scheduled habit-occurrences
// completed in the trailing window ending at `date`:
// completed / (scheduled * days) * 100, capped at 100.
func (s *SnapshotService) completionRate(userID uint, date string, days int) (float64, error) {
	end, err := utils.ParseDate(date)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	start := utils.FormatDate(end.AddDate(0, 0, -days))

	var scheduled int64
	err = s.DB.Model(&models.Habit{}).
		Joins("JOIN user_habits uh ON uh.habit_id = habits.id").
		Where("uh.user_id = ? AND habits.status <> ?", userID, models.StatusInactive).
		Count(&scheduled).Error
	if err != nil {
		return 0, err
	}
	if scheduled == 0 {
		return 0, nil
	}

	var completed int64
	err = s.DB.Model(&models.HabitHistory{}).
		Joins("JOIN histories hi ON hi.id = habit_histories.history_id").
		Joins("JOIN user_habits uh ON uh.habit_id = habit_histories.habit_id").
		Where("uh.user_id = ? AND hi.date >= ? AND hi.date <= ?", userID, start, date).
		Count(&completed).Error
	if err != nil {
		return 0, err
	}

	rate := float64(completed) / float64(scheduled*int64(days)) * 100
	if rate > 100 {
		rate = 100
	}
	return rate, nil
}
