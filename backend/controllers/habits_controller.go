package controllers

import (
	"regexp"
	"strconv"
	"time"

	"habitat/backend/config"
	"habitat/backend/models"
	"habitat/backend/services"
	"habitat/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type HabitsController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Habits  *services.HabitService
	History *services.HistoryService
}

func NewHabitsController(db *gorm.DB, cfg *config.Config) *HabitsController {
	return &HabitsController{
		DB:      db,
		Cfg:     cfg,
		Habits:  services.NewHabitService(db),
		History: services.NewHistoryService(db),
	}
}

func habitIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, err
	}
	return uint(id), nil
}

// GetHabits returns every habit the user owns plus today's split into
// complete and incomplete.
func (hc *HabitsController) GetHabits(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, hc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	today := utils.Today()
	weekday := int(time.Now().Weekday())

	allHabits, err := hc.Habits.ListForUser(userID)
	if err != nil {
		return serviceError(c, err)
	}
	todayHabits, err := hc.Habits.ListForUserOnWeekday(userID, weekday)
	if err != nil {
		return serviceError(c, err)
	}
	completed, err := hc.History.CompletedOn(userID, today)
	if err != nil {
		return serviceError(c, err)
	}
	incomplete, err := hc.History.IncompleteOn(userID, weekday, today)
	if err != nil {
		return serviceError(c, err)
	}

	completionPerc := 0
	if len(todayHabits) > 0 {
		completionPerc = len(completed) * 100 / len(todayHabits)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"all_habits":        allHabits,
		"today_habits":      todayHabits,
		"completed_habits":  completed,
		"incomplete_habits": incomplete,
		"completion_perc":   completionPerc,
		"day_of_week":       weekday,
	})
}

func (hc *HabitsController) CreateHabit(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, hc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input services.HabitInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	habits, err := hc.Habits.Create(userID, input)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Created(c, fiber.Map{"habits": habits})
}

func (hc *HabitsController) UpdateHabit(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, hc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	habitID, err := habitIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid habit ID")
	}

	var input services.HabitInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	habit, err := hc.Habits.Update(userID, habitID, input)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"habit": habit})
}

func (hc *HabitsController) DeleteHabit(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, hc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	habitID, err := habitIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid habit ID")
	}

	if err := hc.Habits.Delete(userID, habitID); err != nil {
		return serviceError(c, err)
	}
	return utils.NoContent(c)
}

// PinHabit clones a habit onto today's weekday for the dashboard.
func (hc *HabitsController) PinHabit(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, hc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	habitID, err := habitIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid habit ID")
	}

	pinned, err := hc.Habits.Pin(userID, habitID)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Created(c, fiber.Map{"habit": pinned})
}

// completionDate reads the optional date from the body, defaulting to
// today.
func completionDate(c *fiber.Ctx) (string, bool) {
	type DateInput struct {
		Date string `json:"date"`
	}
	var input DateInput
	_ = c.BodyParser(&input)
	if input.Date == "" {
		return utils.Today(), true
	}
	if !datePattern.MatchString(input.Date) {
		return "", false
	}
	return input.Date, true
}

func (hc *HabitsController) CompleteHabit(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, hc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	habitID, err := habitIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid habit ID")
	}
	date, ok := completionDate(c)
	if !ok {
		return utils.BadRequest(c, "Invalid date format. Use YYYY-MM-DD.")
	}

	if _, err := hc.Habits.Get(userID, habitID); err != nil {
		return serviceError(c, err)
	}
	if err := hc.History.RecordCompletion(habitID, date); err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Habit completed", "date": date})
}

func (hc *HabitsController) DecrementHabit(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, hc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	habitID, err := habitIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid habit ID")
	}
	date, ok := completionDate(c)
	if !ok {
		return utils.BadRequest(c, "Invalid date format. Use YYYY-MM-DD.")
	}

	if _, err := hc.Habits.Get(userID, habitID); err != nil {
		return serviceError(c, err)
	}
	if err := hc.History.UndoCompletion(habitID, date); err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Completion removed", "date": date})
}

// GetHabitDetails returns one habit with its completion totals.
func (hc *HabitsController) GetHabitDetails(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, hc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	habitID, err := habitIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid habit ID")
	}

	habit, err := hc.Habits.Get(userID, habitID)
	if err != nil {
		return serviceError(c, err)
	}

	var totalCompletions int64
	if err := hc.DB.Model(&models.HabitHistory{}).
		Where("habit_id = ?", habitID).
		Count(&totalCompletions).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	// Progress toward a nominal target of 10 completions.
	const target = 10
	progress := habit.Counter * 100 / target
	if progress > 100 {
		progress = 100
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"habit":             habit,
		"progress":          progress,
		"total_completions": totalCompletions,
	})
}

// GetHabitsByDate returns the habits scheduled on a date's weekday with
// a per-habit completion flag, for the calendar view.
func (hc *HabitsController) GetHabitsByDate(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, hc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	dateStr := c.Params("date")
	if !datePattern.MatchString(dateStr) {
		return utils.BadRequest(c, "Invalid date format. Use YYYY-MM-DD.")
	}
	date, err := utils.ParseDate(dateStr)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	weekday := int(date.Weekday())

	habits, err := hc.Habits.ListForUserOnWeekday(userID, weekday)
	if err != nil {
		return serviceError(c, err)
	}
	completed, err := hc.History.CompletedOn(userID, dateStr)
	if err != nil {
		return serviceError(c, err)
	}

	completedIDs := make(map[uint]bool, len(completed))
	for _, h := range completed {
		completedIDs[h.ID] = true
	}

	type habitWithStatus struct {
		models.Habit
		IsCompleted bool `json:"is_completed"`
	}
	result := make([]habitWithStatus, 0, len(habits))
	for _, h := range habits {
		result = append(result, habitWithStatus{Habit: h, IsCompleted: completedIDs[h.ID]})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"date":        dateStr,
		"day_of_week": weekday,
		"habits":      result,
	})
}
