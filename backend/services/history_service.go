package services

import (
	"errors"
	"fmt"

	"habitat/backend/models"
	"habitat/backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HistoryService owns the append-only completion log: one history row
// per calendar date, one completion link per (habit, date).
type HistoryService struct {
	DB *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{DB: db}
}

// findOrCreateHistory resolves the history row for a date, creating it
// when absent. The unique index on date keeps concurrent callers from
// inserting duplicates.
func findOrCreateHistory(tx *gorm.DB, date string) (*models.History, error) {
	var history models.History
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Where(models.History{Date: date}).
		FirstOrCreate(&history).Error
	if err != nil {
		return nil, err
	}
	if history.ID == 0 {
		// Lost the insert race; fetch the winner's row.
		if err := tx.Where("date = ?", date).First(&history).Error; err != nil {
			return nil, err
		}
	}
	return &history, nil
}

// pruneHistory deletes a history row once no completion links reference
// it anymore.
func pruneHistory(tx *gorm.DB, historyID uint) error {
	var remaining int64
	if err := tx.Model(&models.HabitHistory{}).
		Where("history_id = ?", historyID).
		Count(&remaining).Error; err != nil {
		return err
	}
	if remaining == 0 {
		return tx.Delete(&models.History{}, historyID).Error
	}
	return nil
}

// RecordCompletion marks a habit completed on a date. Completing an
// already-completed (habit, date) pair is a no-op: the counter moves by
// exactly one per distinct pair.
func (s *HistoryService) RecordCompletion(habitID uint, date string) error {
	if _, err := utils.ParseDate(date); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var habit models.Habit
		if err := tx.First(&habit, habitID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: habit %d", ErrNotFound, habitID)
			}
			return err
		}

		history, err := findOrCreateHistory(tx, date)
		if err != nil {
			return err
		}

		var existing models.HabitHistory
		err = tx.Where("habit_id = ? AND history_id = ?", habitID, history.ID).
			First(&existing).Error
		if err == nil {
			return nil // already completed on this date
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		link := models.HabitHistory{HabitID: habitID, HistoryID: history.ID}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}

		return tx.Model(&models.Habit{}).
			Where("id = ?", habitID).
			UpdateColumn("counter", gorm.Expr("counter + 1")).Error
	})
}

// UndoCompletion reverses RecordCompletion for a (habit, date) pair:
// the link goes away, the counter drops (floored at zero), and the
// history row is pruned when its last link is gone. No-op without a
// link.
func (s *HistoryService) UndoCompletion(habitID uint, date string) error {
	if _, err := utils.ParseDate(date); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var habit models.Habit
		if err := tx.First(&habit, habitID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: habit %d", ErrNotFound, habitID)
			}
			return err
		}

		var history models.History
		err := tx.Where("date = ?", date).First(&history).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		var link models.HabitHistory
		err = tx.Where("habit_id = ? AND history_id = ?", habitID, history.ID).
			First(&link).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Delete(&link).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Habit{}).
			Where("id = ?", habitID).
			UpdateColumn("counter", gorm.Expr("CASE WHEN counter > 0 THEN counter - 1 ELSE 0 END")).
			Error; err != nil {
			return err
		}

		return pruneHistory(tx, history.ID)
	})
}

// CompletedOn returns the user's habits that have a completion link to
// the given date.
func (s *HistoryService) CompletedOn(userID uint, date string) ([]models.Habit, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var habits []models.Habit
	err := s.DB.
		Joins("JOIN user_habits uh ON uh.habit_id = habits.id").
		Joins("JOIN habit_histories hh ON hh.habit_id = habits.id").
		Joins("JOIN histories hi ON hi.id = hh.history_id").
		Where("uh.user_id = ? AND hi.date = ?", userID, date).
		Find(&habits).Error
	if err != nil {
		return nil, err
	}
	return habits, nil
}

// IncompleteOn returns the user's habits scheduled on the weekday that
// have no completion link to the given date.
func (s *HistoryService) IncompleteOn(userID uint, weekday int, date string) ([]models.Habit, error) {
	if weekday < 0 || weekday > 6 {
		return nil, fmt.Errorf("%w: weekday must be 0-6, got %d", ErrValidation, weekday)
	}
	if _, err := utils.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var habits []models.Habit
	err := s.DB.
		Joins("JOIN user_habits uh ON uh.habit_id = habits.id").
		Where("uh.user_id = ? AND habits.weekday = ?", userID, weekday).
		Where(`habits.id NOT IN (
			SELECT hh.habit_id
			FROM habit_histories hh
			JOIN histories hi ON hi.id = hh.history_id
			WHERE hi.date = ?
		)`, date).
		Find(&habits).Error
	if err != nil {
		return nil, err
	}
	return habits, nil
}

// AllCompletionDates returns the distinct completion dates across all
// of the user's habits, newest first. This is the streak calculator's
// input.
func (s *HistoryService) AllCompletionDates(userID uint) ([]string, error) {
	var dates []string
	err := s.DB.Model(&models.History{}).
		Distinct("histories.date").
		Joins("JOIN habit_histories hh ON hh.history_id = histories.id").
		Joins("JOIN user_habits uh ON uh.habit_id = hh.habit_id").
		Where("uh.user_id = ?", userID).
		Order("histories.date DESC").
		Pluck("histories.date", &dates).Error
	if err != nil {
		return nil, err
	}
	return dates, nil
}
