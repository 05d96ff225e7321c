package controllers

import (
	"fmt"
	"time"

	"habitat/backend/config"
	"habitat/backend/models"
	"habitat/backend/services"
	"habitat/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type StatisticsController struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Habits    *services.HabitService
	History   *services.HistoryService
	Streaks   *services.StreakService
	Rates     *services.Aggregator
	Snapshots *services.SnapshotService
}

func NewStatisticsController(db *gorm.DB, cfg *config.Config) *StatisticsController {
	return &StatisticsController{
		DB:        db,
		Cfg:       cfg,
		Habits:    services.NewHabitService(db),
		History:   services.NewHistoryService(db),
		Streaks:   services.NewStreakService(db),
		Rates:     services.NewAggregator(db),
		Snapshots: services.NewSnapshotService(db),
	}
}

// GetStatistics assembles the statistics page payload: the daily
// snapshot, streaks, every chart series and the ranked habit lists.
func (sc *StatisticsController) GetStatistics(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	snapshot, err := sc.Snapshots.GetOrCompute(userID, utils.Today())
	if err != nil {
		return serviceError(c, err)
	}
	streak, err := sc.Streaks.GetOrCompute(userID)
	if err != nil {
		return serviceError(c, err)
	}
	daily, err := sc.Rates.DailySeries(userID, 30)
	if err != nil {
		return serviceError(c, err)
	}
	weekly, err := sc.Rates.WeeklyRates(userID)
	if err != nil {
		return serviceError(c, err)
	}
	monthly, err := sc.Rates.MonthlyTotals(userID, 6)
	if err != nil {
		return serviceError(c, err)
	}
	categories, err := sc.Rates.CategoryBreakdown(userID)
	if err != nil {
		return serviceError(c, err)
	}
	heatmap, err := sc.Rates.Heatmap(userID)
	if err != nil {
		return serviceError(c, err)
	}
	topHabits, err := sc.Rates.TopHabits(userID, 6)
	if err != nil {
		return serviceError(c, err)
	}
	challengeHabits, err := sc.Rates.ChallengeHabits(userID, 3)
	if err != nil {
		return serviceError(c, err)
	}

	weeklySum := 0
	for _, rate := range weekly {
		weeklySum += rate
	}

	// Month-over-month change between the two most recent totals.
	monthlyGrowth := 0
	if n := len(monthly.Data); n >= 2 && monthly.Data[n-2] > 0 {
		monthlyGrowth = (monthly.Data[n-1] - monthly.Data[n-2]) * 100 / monthly.Data[n-2]
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"completion_rate":   snapshot.CompletionRate,
		"total_completions": snapshot.TotalCompletions,
		"active_habits":     snapshot.ActiveHabits,
		"streak":            streak.CurrentStreak,
		"longest_streak":    streak.LongestStreak,
		"daily_data":        daily,
		"weekly_data":       weekly,
		"monthly_data":      monthly,
		"category_data":     categories,
		"heatmap_data":      heatmap,
		"top_habits":        topHabits,
		"challenge_habits":  challengeHabits,
		"weekly_average":    fmt.Sprintf("%d%%", weeklySum/7),
		"monthly_growth":    fmt.Sprintf("%+d%%", monthlyGrowth),
	})
}

// ExportStatistics produces the downloadable JSON export: summary,
// trends and per-habit completion history.
func (sc *StatisticsController) ExportStatistics(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := sc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	habits, err := sc.Habits.ListForUser(userID)
	if err != nil {
		return serviceError(c, err)
	}
	streak, err := sc.Streaks.GetOrCompute(userID)
	if err != nil {
		return serviceError(c, err)
	}
	weekly, err := sc.Rates.WeeklyRates(userID)
	if err != nil {
		return serviceError(c, err)
	}
	monthly, err := sc.Rates.MonthlyTotals(userID, 6)
	if err != nil {
		return serviceError(c, err)
	}
	categories, err := sc.Rates.CategoryBreakdown(userID)
	if err != nil {
		return serviceError(c, err)
	}
	snapshot, err := sc.Snapshots.GetOrCompute(userID, utils.Today())
	if err != nil {
		return serviceError(c, err)
	}

	var statsTrend []models.UserStatistic
	if err := sc.DB.
		Where("user_id = ?", userID).
		Order("date DESC").
		Limit(30).
		Find(&statsTrend).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	type habitExport struct {
		ID                uint               `json:"id"`
		Name              string             `json:"name"`
		Description       string             `json:"description"`
		Weekday           int                `json:"weekday"`
		TimeSlot          int                `json:"time_slot"`
		Status            models.HabitStatus `json:"status"`
		Completions       int                `json:"completions"`
		CompletionHistory []string           `json:"completion_history"`
	}

	exports := make([]habitExport, 0, len(habits))
	totalCompletions := 0
	for _, h := range habits {
		var dates []string
		err := sc.DB.Model(&models.HabitHistory{}).
			Joins("JOIN histories hi ON hi.id = habit_histories.history_id").
			Where("habit_histories.habit_id = ?", h.ID).
			Order("hi.date DESC").
			Pluck("hi.date", &dates).Error
		if err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}
		totalCompletions += len(dates)
		exports = append(exports, habitExport{
			ID:                h.ID,
			Name:              h.Name,
			Description:       h.Description,
			Weekday:           h.Weekday,
			TimeSlot:          h.TimeSlot,
			Status:            h.Status,
			Completions:       h.Counter,
			CompletionHistory: dates,
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=habit-statistics-%d.json", time.Now().Unix()))

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"username":    user.Username,
			"export_date": time.Now().Format(time.RFC3339),
		},
		"summary": fiber.Map{
			"total_habits":      len(habits),
			"total_completions": totalCompletions,
			"current_streak":    streak.CurrentStreak,
			"longest_streak":    streak.LongestStreak,
			"completion_rate":   snapshot.CompletionRate,
		},
		"trends": fiber.Map{
			"weekly":     weekly,
			"monthly":    monthly,
			"statistics": statsTrend,
			"categories": categories,
		},
		"habits": exports,
	})
}
