package services

import (
	"testing"
	"time"

	"habitat/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotComputeAndCache(t *testing.T) {
	db := newTestDB(t)
	userID := newTestUser(t, db, "snap")
	habits := NewHabitService(db)
	history := NewHistoryService(db)
	snapshots := NewSnapshotService(db)

	now := time.Now()
	created, err := habits.Create(userID, HabitInput{Name: "S", Weekdays: "1", TimeSlot: 8})
	require.NoError(t, err)
	_, err = habits.Create(userID, HabitInput{
		Name: "Off", Weekdays: "2", TimeSlot: 9, Status: models.StatusInactive,
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, history.RecordCompletion(created[0].ID, day(now, -i)))
	}

	date := day(now, 0)
	snapshot, err := snapshots.GetOrCompute(userID, date)
	require.NoError(t, err)
	assert.Equal(t, userID, snapshot.UserID)
	assert.Equal(t, date, snapshot.Date)
	assert.Equal(t, 3, snapshot.TotalCompletions)
	assert.Equal(t, 1, snapshot.ActiveHabits, "inactive habits do not count")
	assert.InDelta(t, 3.0/30.0*100, snapshot.CompletionRate, 0.01)
}

func TestSnapshotIsImmutableOncePersisted(t *testing.T) {
	db := newTestDB(t)
	userID := newTestUser(t, db, "frozen")
	habits := NewHabitService(db)
	history := NewHistoryService(db)
	snapshots := NewSnapshotService(db)

	now := time.Now()
	created, err := habits.Create(userID, HabitInput{Name: "F", Weekdays: "1", TimeSlot: 8})
	require.NoError(t, err)
	require.NoError(t, history.RecordCompletion(created[0].ID, day(now, 0)))

	date := day(now, 0)
	first, err := snapshots.GetOrCompute(userID, date)
	require.NoError(t, err)
	assert.Equal(t, 1, first.TotalCompletions)

	// More activity on the same day does not rewrite the snapshot.
	require.NoError(t, history.RecordCompletion(created[0].ID, day(now, -1)))
	second, err := snapshots.GetOrCompute(userID, date)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, second.TotalCompletions)

	var rows int64
	require.NoError(t, db.Model(&models.UserStatistic{}).
		Where("user_id = ?", userID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	// A different date gets its own snapshot with the fresh numbers.
	third, err := snapshots.GetOrCompute(userID, day(now, 1))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
	assert.Equal(t, 2, third.TotalCompletions)
}

func TestSnapshotEmptyUser(t *testing.T) {
	db := newTestDB(t)
	userID := newTestUser(t, db, "blank")
	snapshots := NewSnapshotService(db)

	snapshot, err := snapshots.GetOrCompute(userID, "2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, 0.0, snapshot.CompletionRate)
	assert.Equal(t, 0, snapshot.TotalCompletions)
	assert.Equal(t, 0, snapshot.ActiveHabits)

	_, err = snapshots.GetOrCompute(userID, "June 15")
	assert.ErrorIs(t, err, ErrValidation)
}
