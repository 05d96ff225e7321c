package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"habitat/backend/models"

	"gorm.io/gorm"
)

// HabitService owns habit definitions and their ownership links.
type HabitService struct {
	DB *gorm.DB
}

func NewHabitService(db *gorm.DB) *HabitService {
	return &HabitService{DB: db}
}

// HabitInput carries the user-settable habit fields.
type HabitInput struct {
	Name        string             `json:"habit_name"`
	Description string             `json:"description"`
	Weekdays    string             `json:"weekdays"` // single day or comma-separated list, e.g. "1,3,5"
	TimeSlot    int                `json:"time_slot"`
	Status      models.HabitStatus `json:"status"`
	CategoryID  *uint              `json:"category_id"`
}

func parseWeekdays(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		day, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || day < 0 || day > 6 {
			return nil, fmt.Errorf("%w: weekday must be 0-6, got %q", ErrValidation, p)
		}
		days = append(days, day)
	}
	return days, nil
}

func (s *HabitService) validate(input HabitInput) ([]int, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: habit name is required", ErrValidation)
	}
	if input.TimeSlot < 0 || input.TimeSlot > 23 {
		return nil, fmt.Errorf("%w: time slot must be 0-23, got %d", ErrValidation, input.TimeSlot)
	}
	if input.Status == "" {
		input.Status = models.StatusActive
	}
	if !input.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, input.Status)
	}
	return parseWeekdays(input.Weekdays)
}

// Create inserts one habit per requested weekday, each with its
// ownership link, in a single transaction.
func (s *HabitService) Create(userID uint, input HabitInput) ([]models.Habit, error) {
	days, err := s.validate(input)
	if err != nil {
		return nil, err
	}
	if input.Status == "" {
		input.Status = models.StatusActive
	}

	var habits []models.Habit
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for _, day := range days {
			habit := models.Habit{
				Name:        input.Name,
				Description: input.Description,
				Weekday:     day,
				TimeSlot:    input.TimeSlot,
				Counter:     0,
				Status:      input.Status,
				CategoryID:  input.CategoryID,
			}
			if err := tx.Create(&habit).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.UserHabit{UserID: userID, HabitID: habit.ID}).Error; err != nil {
				return err
			}
			habits = append(habits, habit)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return habits, nil
}

// requireOwnership resolves the habit and verifies the caller owns it.
func (s *HabitService) requireOwnership(tx *gorm.DB, userID, habitID uint) (*models.Habit, error) {
	var habit models.Habit
	if err := tx.First(&habit, habitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: habit %d", ErrNotFound, habitID)
		}
		return nil, err
	}

	var link models.UserHabit
	err := tx.Where("user_id = ? AND habit_id = ?", userID, habitID).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: habit %d", ErrNotOwner, habitID)
		}
		return nil, err
	}
	return &habit, nil
}

// Get returns a habit the caller owns.
func (s *HabitService) Get(userID, habitID uint) (*models.Habit, error) {
	return s.requireOwnership(s.DB, userID, habitID)
}

// Update edits an owned habit. Weekdays must resolve to a single day
// here; editing does not fan out into copies.
func (s *HabitService) Update(userID, habitID uint, input HabitInput) (*models.Habit, error) {
	days, err := s.validate(input)
	if err != nil {
		return nil, err
	}
	if len(days) != 1 {
		return nil, fmt.Errorf("%w: update requires exactly one weekday", ErrValidation)
	}

	habit, err := s.requireOwnership(s.DB, userID, habitID)
	if err != nil {
		return nil, err
	}

	habit.Name = input.Name
	habit.Description = input.Description
	habit.Weekday = days[0]
	habit.TimeSlot = input.TimeSlot
	if input.Status != "" {
		habit.Status = input.Status
	}
	habit.CategoryID = input.CategoryID

	if err := s.DB.Save(habit).Error; err != nil {
		return nil, err
	}
	return habit, nil
}

// Delete removes an owned habit together with its ownership link and
// completion links, pruning history entries left without links. All or
// nothing.
func (s *HabitService) Delete(userID, habitID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireOwnership(tx, userID, habitID); err != nil {
			return err
		}

		var links []models.HabitHistory
		if err := tx.Where("habit_id = ?", habitID).Find(&links).Error; err != nil {
			return err
		}
		if err := tx.Where("habit_id = ?", habitID).Delete(&models.HabitHistory{}).Error; err != nil {
			return err
		}
		for _, link := range links {
			if err := pruneHistory(tx, link.HistoryID); err != nil {
				return err
			}
		}

		if err := tx.Where("habit_id = ?", habitID).Delete(&models.UserHabit{}).Error; err != nil {
			return err
		}
		if err := tx.Where("habit_id = ?", habitID).Delete(&models.HabitReminder{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Habit{}, habitID).Error
	})
}

// Pin clones an owned habit onto today's weekday with a fresh counter
// and links the copy to the same owner.
func (s *HabitService) Pin(userID, habitID uint) (*models.Habit, error) {
	var pinned models.Habit
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		source, err := s.requireOwnership(tx, userID, habitID)
		if err != nil {
			return err
		}

		pinned = models.Habit{
			Name:        source.Name + " (Pinned)",
			Description: source.Description,
			Weekday:     int(time.Now().Weekday()),
			TimeSlot:    source.TimeSlot,
			Counter:     0,
			Status:      source.Status,
			CategoryID:  source.CategoryID,
		}
		if err := tx.Create(&pinned).Error; err != nil {
			return err
		}
		return tx.Create(&models.UserHabit{UserID: userID, HabitID: pinned.ID}).Error
	})
	if err != nil {
		return nil, err
	}
	return &pinned, nil
}

// ListForUser returns every habit linked to the user, name-ordered.
func (s *HabitService) ListForUser(userID uint) ([]models.Habit, error) {
	var habits []models.Habit
	err := s.DB.
		Joins("JOIN user_habits uh ON uh.habit_id = habits.id").
		Where("uh.user_id = ?", userID).
		Order("habits.name ASC").
		Find(&habits).Error
	if err != nil {
		return nil, err
	}
	return habits, nil
}

// ListForUserOnWeekday filters the user's habits by scheduled weekday
// ("today's habits"), ordered by time slot.
func (s *HabitService) ListForUserOnWeekday(userID uint, weekday int) ([]models.Habit, error) {
	if weekday < 0 || weekday > 6 {
		return nil, fmt.Errorf("%w: weekday must be 0-6, got %d", ErrValidation, weekday)
	}
	var habits []models.Habit
	err := s.DB.
		Joins("JOIN user_habits uh ON uh.habit_id = habits.id").
		Where("uh.user_id = ? AND habits.weekday = ?", userID, weekday).
		Order("habits.time_slot ASC").
		Find(&habits).Error
	if err != nil {
		return nil, err
	}
	return habits, nil
}
