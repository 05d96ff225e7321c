package tests

import (
	"io"
	"log"
	"os"
	"testing"

	"habitat/backend/config"
	"habitat/backend/models"
	"habitat/backend/routes"
	"habitat/backend/services"
	"habitat/backend/utils"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	app       *fiber.App
	db        *gorm.DB
	cfg       *config.Config
	scheduler *services.ReminderScheduler
	testUser  models.User
	jwtToken  string
)

func TestMain(m *testing.M) {
	// Setup
	setup()
	// Run tests
	code := m.Run()
	// Cleanup
	teardown()
	os.Exit(code)
}

func setup() {
	cfg = &config.Config{
		DBName:     "habitat_test",
		JWTSecret:  "testsecret",
		ServerPort: "8080",
	}

	// In-memory database so the suite runs without a server.
	var err error
	db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := utils.Migrate(db); err != nil {
		panic(err)
	}

	// Create test app
	app = fiber.New()
	logger := log.New(io.Discard, "", 0)
	scheduler, err = services.NewReminderScheduler(db, &services.LogNotifier{Logger: logger}, logger)
	if err != nil {
		panic(err)
	}
	if err := scheduler.Start(); err != nil {
		panic(err)
	}
	routes.SetupRoutes(app, db, cfg, scheduler)

	// Create test user
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	testUser = models.User{
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: string(hash),
	}
	db.Create(&testUser)

	jwtToken, err = utils.GenerateJWTToken(testUser.ID, cfg)
	if err != nil {
		panic(err)
	}
}

func teardown() {
	scheduler.Stop()
	db.Migrator().DropTable(
		&models.User{},
		&models.LoginHistory{},
		&models.Friend{},
		&models.Category{},
		&models.Habit{},
		&models.UserHabit{},
		&models.History{},
		&models.HabitHistory{},
		&models.Streak{},
		&models.UserStatistic{},
		&models.HabitReminder{},
	)
}
