package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestHabit posts a habit and returns its id.
func createTestHabit(t *testing.T, name, weekdays string) uint {
	t.Helper()

	habitData := map[string]interface{}{
		"habit_name": name,
		"weekdays":   weekdays,
		"time_slot":  9,
	}
	jsonData, _ := json.Marshal(habitData)

	req := httptest.NewRequest("POST", "/api/habits/", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", jwtToken)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	habits := result["data"].(map[string]interface{})["habits"].([]interface{})
	require.NotEmpty(t, habits)
	return uint(habits[0].(map[string]interface{})["ID"].(float64))
}

func TestCreateHabit(t *testing.T) {
	habitData := map[string]interface{}{
		"habit_name":  "Morning run",
		"description": "5km before work",
		"weekdays":    "1,3,5",
		"time_slot":   7,
	}
	jsonData, _ := json.Marshal(habitData)

	req := httptest.NewRequest("POST", "/api/habits/", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", jwtToken)

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	habits := result["data"].(map[string]interface{})["habits"].([]interface{})
	assert.Len(t, habits, 3, "one copy per weekday")
}

func TestCreateHabitValidation(t *testing.T) {
	habitData := map[string]interface{}{
		"habit_name": "Bad",
		"weekdays":   "9",
		"time_slot":  7,
	}
	jsonData, _ := json.Marshal(habitData)

	req := httptest.NewRequest("POST", "/api/habits/", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", jwtToken)

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetHabits(t *testing.T) {
	createTestHabit(t, "Listed habit", "2")

	req := httptest.NewRequest("GET", "/api/habits/", nil)
	req.Header.Set("Authorization", jwtToken)

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	data := result["data"].(map[string]interface{})
	assert.NotEmpty(t, data["all_habits"])
	assert.Contains(t, data, "completion_perc")
	assert.Contains(t, data, "day_of_week")
}

func TestCompleteAndDecrementHabit(t *testing.T) {
	habitID := createTestHabit(t, "Completable", "4")
	url := fmt.Sprintf("/api/habits/%d/complete", habitID)

	body, _ := json.Marshal(map[string]string{"date": "2024-06-10"})
	req := httptest.NewRequest("POST", url, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", jwtToken)

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Completing the same date twice is accepted and does not double count.
	req = httptest.NewRequest("POST", url, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", jwtToken)
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	detailsReq := httptest.NewRequest("GET", fmt.Sprintf("/api/habits/%d", habitID), nil)
	detailsReq.Header.Set("Authorization", jwtToken)
	detailsResp, err := app.Test(detailsReq)
	assert.NoError(t, err)

	var details map[string]interface{}
	json.NewDecoder(detailsResp.Body).Decode(&details)
	data := details["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total_completions"])

	// Undo brings the counter back down.
	body, _ = json.Marshal(map[string]string{"date": "2024-06-10"})
	req = httptest.NewRequest("POST", fmt.Sprintf("/api/habits/%d/decrement", habitID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", jwtToken)
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCompleteHabitBadDate(t *testing.T) {
	habitID := createTestHabit(t, "Bad date", "4")

	body, _ := json.Marshal(map[string]string{"date": "10/06/2024"})
	req := httptest.NewRequest("POST", fmt.Sprintf("/api/habits/%d/complete", habitID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", jwtToken)

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPinHabit(t *testing.T) {
	habitID := createTestHabit(t, "Pinnable", "0")

	req := httptest.NewRequest("POST", fmt.Sprintf("/api/habits/%d/pin", habitID), nil)
	req.Header.Set("Authorization", jwtToken)

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	habit := result["data"].(map[string]interface{})["habit"].(map[string]interface{})
	assert.Equal(t, "Pinnable (Pinned)", habit["name"])
	assert.Equal(t, float64(0), habit["counter"])
}

func TestDeleteHabit(t *testing.T) {
	habitID := createTestHabit(t, "Doomed", "6")

	req := httptest.NewRequest("DELETE", fmt.Sprintf("/api/habits/%d", habitID), nil)
	req.Header.Set("Authorization", jwtToken)

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	// Gone afterwards.
	req = httptest.NewRequest("GET", fmt.Sprintf("/api/habits/%d", habitID), nil)
	req.Header.Set("Authorization", jwtToken)
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHabitOwnership(t *testing.T) {
	habitID := createTestHabit(t, "Private", "3")

	// A second account cannot touch it.
	registerData := map[string]string{
		"username": "rival",
		"email":    "rival@example.com",
		"password": "password123",
	}
	jsonData, _ := json.Marshal(registerData)
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	rivalToken := result["token"].(string)

	req = httptest.NewRequest("DELETE", fmt.Sprintf("/api/habits/%d", habitID), nil)
	req.Header.Set("Authorization", rivalToken)
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestGetHabitsByDate(t *testing.T) {
	// 2024-06-10 is a Monday.
	habitID := createTestHabit(t, "Calendar habit", "1")

	body, _ := json.Marshal(map[string]string{"date": "2024-06-10"})
	req := httptest.NewRequest("POST", fmt.Sprintf("/api/habits/%d/complete", habitID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", jwtToken)
	_, err := app.Test(req)
	require.NoError(t, err)

	req = httptest.NewRequest("GET", "/api/habits/date/2024-06-10", nil)
	req.Header.Set("Authorization", jwtToken)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	data := result["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["day_of_week"])

	found := false
	for _, h := range data["habits"].([]interface{}) {
		habit := h.(map[string]interface{})
		if uint(habit["ID"].(float64)) == habitID {
			found = true
			assert.Equal(t, true, habit["is_completed"])
		}
	}
	assert.True(t, found)

	req = httptest.NewRequest("GET", "/api/habits/date/June-10", nil)
	req.Header.Set("Authorization", jwtToken)
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
