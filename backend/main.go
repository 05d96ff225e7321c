package main

import (
	"log"

	"habitat/backend/config"
	"habitat/backend/middleware"
	"habitat/backend/routes"
	"habitat/backend/services"
	"habitat/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Start the reminder scheduler
	scheduler, err := services.NewReminderScheduler(db, &services.LogNotifier{Logger: logger}, logger)
	if err != nil {
		log.Fatalf("Error creating scheduler: %v", err)
	}
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Error starting scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Setup routes
	routes.SetupRoutes(app, db, cfg, scheduler)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
