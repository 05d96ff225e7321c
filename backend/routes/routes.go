package routes

import (
	"habitat/backend/config"
	"habitat/backend/controllers"
	"habitat/backend/middleware"
	"habitat/backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, scheduler *services.ReminderScheduler) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)
	app.Put("/api/user/settings", authMiddleware, userController.UpdateSettings)

	// Habit routes
	habitsController := controllers.NewHabitsController(db, cfg)
	habits := app.Group("/api/habits", authMiddleware)
	habits.Get("/", habitsController.GetHabits)
	habits.Post("/", habitsController.CreateHabit)
	habits.Get("/date/:date", habitsController.GetHabitsByDate)
	habits.Get("/:id", habitsController.GetHabitDetails)
	habits.Put("/:id", habitsController.UpdateHabit)
	habits.Delete("/:id", habitsController.DeleteHabit)
	habits.Post("/:id/pin", habitsController.PinHabit)
	habits.Post("/:id/complete", habitsController.CompleteHabit)
	habits.Post("/:id/decrement", habitsController.DecrementHabit)

	// Dashboard routes
	dashboardController := controllers.NewDashboardController(db, cfg)
	app.Get("/api/dashboard", authMiddleware, dashboardController.GetDashboard)

	// Statistics routes
	statisticsController := controllers.NewStatisticsController(db, cfg)
	app.Get("/api/statistics", authMiddleware, statisticsController.GetStatistics)
	app.Get("/api/statistics/export", authMiddleware, statisticsController.ExportStatistics)

	// Friend routes
	friendsController := controllers.NewFriendsController(db, cfg)
	friends := app.Group("/api/friends", authMiddleware)
	friends.Get("/", friendsController.GetFriends)
	friends.Post("/request", friendsController.SendRequest)
	friends.Post("/accept/:id", friendsController.AcceptRequest)
	friends.Get("/:id/stats", friendsController.GetFriendStats)

	// Reminder routes
	remindersController := controllers.NewRemindersController(db, cfg, scheduler)
	reminders := app.Group("/api/reminders", authMiddleware)
	reminders.Get("/", remindersController.GetReminders)
	reminders.Post("/", remindersController.CreateReminder)
	reminders.Put("/:id", remindersController.UpdateReminder)
	reminders.Delete("/:id", remindersController.DeleteReminder)
}
