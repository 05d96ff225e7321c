package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"

	"habitat/backend/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// Notifier delivers a reminder to a user. Delivery transport lives
// outside this package; the scheduler only decides when to fire.
type Notifier interface {
	SendReminder(user models.User, habit models.Habit, reminder models.HabitReminder) error
}

// LogNotifier writes reminders to the application log. It stands in
// for the email/SMS transports.
type LogNotifier struct {
	Logger *log.Logger
}

func (n *LogNotifier) SendReminder(user models.User, habit models.Habit, reminder models.HabitReminder) error {
	n.Logger.Printf("reminder [%s] for %s: habit %q at %s", reminder.Channel, user.Username, habit.Name, reminder.ReminderTime)
	return nil
}

// ReminderScheduler is an explicit job registry over gocron: one cron
// job per enabled reminder, addressable by reminder id.
type ReminderScheduler struct {
	DB       *gorm.DB
	Notifier Notifier
	Logger   *log.Logger

	mu        sync.Mutex
	scheduler gocron.Scheduler
	jobs      map[uint]gocron.Job
}

func NewReminderScheduler(db *gorm.DB, notifier Notifier, logger *log.Logger) (*ReminderScheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &ReminderScheduler{
		DB:        db,
		Notifier:  notifier,
		Logger:    logger,
		scheduler: s,
		jobs:      make(map[uint]gocron.Job),
	}, nil
}

// Start registers every enabled reminder and starts the scheduler.
func (rs *ReminderScheduler) Start() error {
	var reminders []models.HabitReminder
	if err := rs.DB.Where("enabled = ?", true).Find(&reminders).Error; err != nil {
		return err
	}
	for _, r := range reminders {
		if err := rs.Add(r); err != nil {
			rs.Logger.Printf("skipping reminder %d: %v", r.ID, err)
		}
	}
	rs.scheduler.Start()
	rs.Logger.Printf("reminder scheduler started with %d jobs", len(rs.jobs))
	return nil
}

// Stop shuts the scheduler down.
func (rs *ReminderScheduler) Stop() error {
	return rs.scheduler.Shutdown()
}

// cronExpr builds "MM HH * * days" from a reminder's time and weekday
// list.
func cronExpr(r models.HabitReminder) (string, error) {
	parts := strings.Split(r.ReminderTime, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: reminder time must be HH:MM, got %q", ErrValidation, r.ReminderTime)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("%w: bad hour in %q", ErrValidation, r.ReminderTime)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("%w: bad minute in %q", ErrValidation, r.ReminderTime)
	}

	days := make([]string, 0, 7)
	for _, d := range strings.Split(r.DaysOfWeek, ",") {
		day, err := strconv.Atoi(strings.TrimSpace(d))
		if err != nil || day < 0 || day > 6 {
			return "", fmt.Errorf("%w: weekday must be 0-6, got %q", ErrValidation, d)
		}
		days = append(days, strconv.Itoa(day))
	}
	return fmt.Sprintf("%d %d * * %s", minute, hour, strings.Join(days, ",")), nil
}

// Add registers (or replaces) the job for a reminder.
func (rs *ReminderScheduler) Add(r models.HabitReminder) error {
	expr, err := cronExpr(r)
	if err != nil {
		return err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if old, ok := rs.jobs[r.ID]; ok {
		_ = rs.scheduler.RemoveJob(old.ID())
		delete(rs.jobs, r.ID)
	}

	reminderID := r.ID
	job, err := rs.scheduler.NewJob(
		gocron.CronJob(expr, false),
		gocron.NewTask(func() { rs.fire(reminderID) }),
	)
	if err != nil {
		return err
	}
	rs.jobs[r.ID] = job
	return nil
}

// Remove drops the job for a reminder id; removing an unknown id is a
// no-op.
func (rs *ReminderScheduler) Remove(reminderID uint) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if job, ok := rs.jobs[reminderID]; ok {
		_ = rs.scheduler.RemoveJob(job.ID())
		delete(rs.jobs, reminderID)
	}
}

// List returns the registered reminder ids, ascending.
func (rs *ReminderScheduler) List() []uint {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	ids := make([]uint, 0, len(rs.jobs))
	for id := range rs.jobs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// fire re-reads the reminder before sending so a disable or delete
// between scheduling and firing wins.
func (rs *ReminderScheduler) fire(reminderID uint) {
	var reminder models.HabitReminder
	err := rs.DB.First(&reminder, reminderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !reminder.Enabled) {
		rs.Remove(reminderID)
		return
	}
	if err != nil {
		rs.Logger.Printf("reminder %d: %v", reminderID, err)
		return
	}

	var user models.User
	if err := rs.DB.First(&user, reminder.UserID).Error; err != nil {
		rs.Logger.Printf("reminder %d: %v", reminderID, err)
		return
	}
	var habit models.Habit
	if err := rs.DB.First(&habit, reminder.HabitID).Error; err != nil {
		rs.Logger.Printf("reminder %d: %v", reminderID, err)
		return
	}

	if err := rs.Notifier.SendReminder(user, habit, reminder); err != nil {
		rs.Logger.Printf("reminder %d delivery failed: %v", reminderID, err)
	}
}
