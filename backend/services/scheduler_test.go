package services

import (
	"io"
	"log"
	"testing"

	"habitat/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronExpr(t *testing.T) {
	tests := []struct {
		name     string
		reminder models.HabitReminder
		want     string
		wantErr  bool
	}{
		{
			name:     "single day",
			reminder: models.HabitReminder{ReminderTime: "07:30", DaysOfWeek: "1"},
			want:     "30 7 * * 1",
		},
		{
			name:     "several days",
			reminder: models.HabitReminder{ReminderTime: "21:05", DaysOfWeek: "1, 3, 5"},
			want:     "5 21 * * 1,3,5",
		},
		{
			name:     "missing colon",
			reminder: models.HabitReminder{ReminderTime: "0730", DaysOfWeek: "1"},
			wantErr:  true,
		},
		{
			name:     "hour out of range",
			reminder: models.HabitReminder{ReminderTime: "24:00", DaysOfWeek: "1"},
			wantErr:  true,
		},
		{
			name:     "weekday out of range",
			reminder: models.HabitReminder{ReminderTime: "08:00", DaysOfWeek: "7"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cronExpr(tt.reminder)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchedulerAddRemove(t *testing.T) {
	db := newTestDB(t)
	logger := log.New(io.Discard, "", 0)

	scheduler, err := NewReminderScheduler(db, &LogNotifier{Logger: logger}, logger)
	require.NoError(t, err)
	defer scheduler.Stop()

	first := models.HabitReminder{ReminderTime: "08:00", DaysOfWeek: "1,3", Channel: "email", Enabled: true}
	first.ID = 1
	second := models.HabitReminder{ReminderTime: "19:00", DaysOfWeek: "5", Channel: "sms", Enabled: true}
	second.ID = 2

	require.NoError(t, scheduler.Add(first))
	require.NoError(t, scheduler.Add(second))
	assert.Equal(t, []uint{1, 2}, scheduler.List())

	// Re-adding replaces the existing job instead of stacking a second one.
	first.ReminderTime = "09:00"
	require.NoError(t, scheduler.Add(first))
	assert.Equal(t, []uint{1, 2}, scheduler.List())

	err = scheduler.Add(models.HabitReminder{ReminderTime: "bad", DaysOfWeek: "1"})
	assert.ErrorIs(t, err, ErrValidation)

	scheduler.Remove(1)
	scheduler.Remove(42) // unknown id is a no-op
	assert.Equal(t, []uint{2}, scheduler.List())
}

func TestSchedulerStartLoadsEnabledReminders(t *testing.T) {
	db := newTestDB(t)
	userID := newTestUser(t, db, "sched")
	logger := log.New(io.Discard, "", 0)

	habits := NewHabitService(db)
	created, err := habits.Create(userID, HabitInput{Name: "R", Weekdays: "1", TimeSlot: 8})
	require.NoError(t, err)

	enabled := models.HabitReminder{
		UserID: userID, HabitID: created[0].ID,
		ReminderTime: "08:00", DaysOfWeek: "1", Channel: "email", Enabled: true,
	}
	disabled := models.HabitReminder{
		UserID: userID, HabitID: created[0].ID,
		ReminderTime: "09:00", DaysOfWeek: "2", Channel: "sms", Enabled: false,
	}
	require.NoError(t, db.Create(&enabled).Error)
	require.NoError(t, db.Create(&disabled).Error)

	scheduler, err := NewReminderScheduler(db, &LogNotifier{Logger: logger}, logger)
	require.NoError(t, err)
	require.NoError(t, scheduler.Start())
	defer scheduler.Stop()

	assert.Equal(t, []uint{enabled.ID}, scheduler.List())
}
