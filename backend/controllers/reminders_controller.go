package controllers

import (
	"errors"
	"strconv"

	"habitat/backend/config"
	"habitat/backend/models"
	"habitat/backend/services"
	"habitat/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RemindersController struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Habits    *services.HabitService
	Scheduler *services.ReminderScheduler
}

func NewRemindersController(db *gorm.DB, cfg *config.Config, scheduler *services.ReminderScheduler) *RemindersController {
	return &RemindersController{
		DB:        db,
		Cfg:       cfg,
		Habits:    services.NewHabitService(db),
		Scheduler: scheduler,
	}
}

func (rc *RemindersController) GetReminders(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var reminders []models.HabitReminder
	if err := rc.DB.Where("user_id = ?", userID).Find(&reminders).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Success(c, fiber.StatusOK, reminders)
}

type reminderInput struct {
	HabitID      uint   `json:"habit_id"`
	ReminderTime string `json:"reminder_time"`
	DaysOfWeek   string `json:"days_of_week"`
	Channel      string `json:"channel"`
	Enabled      *bool  `json:"enabled"`
}

func (rc *RemindersController) CreateReminder(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input reminderInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Channel == "" {
		input.Channel = "email"
	}
	if input.Channel != "email" && input.Channel != "sms" {
		return utils.BadRequest(c, "Channel must be email or sms")
	}

	// The reminder must target a habit the caller owns.
	if _, err := rc.Habits.Get(userID, input.HabitID); err != nil {
		return serviceError(c, err)
	}

	reminder := models.HabitReminder{
		UserID:       userID,
		HabitID:      input.HabitID,
		ReminderTime: input.ReminderTime,
		DaysOfWeek:   input.DaysOfWeek,
		Channel:      input.Channel,
		Enabled:      true,
	}

	if err := rc.DB.Create(&reminder).Error; err != nil {
		return utils.InternalServerError(c, "Could not create reminder")
	}
	if err := rc.Scheduler.Add(reminder); err != nil {
		// Bad time or weekday list; roll the insert back.
		rc.DB.Delete(&reminder)
		return serviceError(c, err)
	}

	return utils.Created(c, reminder)
}

func (rc *RemindersController) UpdateReminder(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	reminderID, err := strconv.Atoi(c.Params("id"))
	if err != nil || reminderID <= 0 {
		return utils.BadRequest(c, "Invalid reminder ID")
	}

	var reminder models.HabitReminder
	err = rc.DB.Where("id = ? AND user_id = ?", reminderID, userID).First(&reminder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Reminder not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input reminderInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.ReminderTime != "" {
		reminder.ReminderTime = input.ReminderTime
	}
	if input.DaysOfWeek != "" {
		reminder.DaysOfWeek = input.DaysOfWeek
	}
	if input.Channel != "" {
		if input.Channel != "email" && input.Channel != "sms" {
			return utils.BadRequest(c, "Channel must be email or sms")
		}
		reminder.Channel = input.Channel
	}
	if input.Enabled != nil {
		reminder.Enabled = *input.Enabled
	}

	if reminder.Enabled {
		if err := rc.Scheduler.Add(reminder); err != nil {
			return serviceError(c, err)
		}
	} else {
		rc.Scheduler.Remove(reminder.ID)
	}

	if err := rc.DB.Save(&reminder).Error; err != nil {
		return utils.InternalServerError(c, "Could not update reminder")
	}
	return utils.Success(c, fiber.StatusOK, reminder)
}

func (rc *RemindersController) DeleteReminder(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	reminderID, err := strconv.Atoi(c.Params("id"))
	if err != nil || reminderID <= 0 {
		return utils.BadRequest(c, "Invalid reminder ID")
	}

	var reminder models.HabitReminder
	err = rc.DB.Where("id = ? AND user_id = ?", reminderID, userID).First(&reminder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Reminder not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	rc.Scheduler.Remove(reminder.ID)
	if err := rc.DB.Delete(&reminder).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete reminder")
	}
	return utils.NoContent(c)
}
