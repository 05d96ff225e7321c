package controllers

import (
	"time"

	"habitat/backend/config"
	"habitat/backend/models"
	"habitat/backend/services"
	"habitat/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DashboardController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Habits  *services.HabitService
	History *services.HistoryService
	Streaks *services.StreakService
	Rates   *services.Aggregator
}

func NewDashboardController(db *gorm.DB, cfg *config.Config) *DashboardController {
	return &DashboardController{
		DB:      db,
		Cfg:     cfg,
		Habits:  services.NewHabitService(db),
		History: services.NewHistoryService(db),
		Streaks: services.NewStreakService(db),
		Rates:   services.NewAggregator(db),
	}
}

// GetDashboard assembles the dashboard payload: today's habits split by
// completion, the completion percentage, streaks, weekly rates, friend
// counts and upcoming reminders.
func (dc *DashboardController) GetDashboard(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, dc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	today := utils.Today()
	weekday := int(time.Now().Weekday())

	allHabits, err := dc.Habits.ListForUser(userID)
	if err != nil {
		return serviceError(c, err)
	}
	completedToday, err := dc.History.CompletedOn(userID, today)
	if err != nil {
		return serviceError(c, err)
	}
	incompleteToday, err := dc.History.IncompleteOn(userID, weekday, today)
	if err != nil {
		return serviceError(c, err)
	}

	totalToday := len(completedToday) + len(incompleteToday)
	completionPerc := 0
	if totalToday > 0 {
		completionPerc = len(completedToday) * 100 / totalToday
	}

	streak, err := dc.Streaks.GetOrCompute(userID)
	if err != nil {
		return serviceError(c, err)
	}
	weeklyRates, err := dc.Rates.WeeklyRates(userID)
	if err != nil {
		return serviceError(c, err)
	}

	// Social widgets are a read-only passthrough.
	var friendCount, friendRequests int64
	if err := dc.DB.Model(&models.Friend{}).
		Where("sender_id = ? AND mutual = ?", userID, true).
		Count(&friendCount).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if err := dc.DB.Model(&models.Friend{}).
		Where("receiver_id = ? AND mutual = ?", userID, false).
		Count(&friendRequests).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var reminders []models.HabitReminder
	if err := dc.DB.
		Where("user_id = ? AND enabled = ?", userID, true).
		Order("reminder_time ASC").
		Limit(5).
		Find(&reminders).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"all_habits":        allHabits,
		"completed_habits":  completedToday,
		"incomplete_habits": incompleteToday,
		"completion_perc":   completionPerc,
		"streak":            streak.CurrentStreak,
		"longest_streak":    streak.LongestStreak,
		"weekly_data":       weeklyRates,
		"friend_count":      friendCount,
		"friend_requests":   friendRequests,
		"reminders":         reminders,
	})
}
