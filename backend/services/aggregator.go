package services

import (
	"fmt"
	"sort"
	"time"

	"habitat/backend/models"
	"habitat/backend/utils"

	"gorm.io/gorm"
)

// Colors for the category fallback chart and uncategorized bucket.
const (
	uncategorizedColor = "#94A3B8"
	defaultHabitColor  = "#4F46E5"
)

// Aggregator derives daily, weekly, monthly and per-category completion
// series from habit schedules and completion history. Every method
// propagates storage errors instead of returning zeroed series.
type Aggregator struct {
	DB *gorm.DB
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{DB: db}
}

func (a *Aggregator) completionsOn(userID uint, date string) (int64, error) {
	var count int64
	err := a.DB.Model(&models.HabitHistory{}).
		Joins("JOIN histories hi ON hi.id = habit_histories.history_id").
		Joins("JOIN user_habits uh ON uh.habit_id = habit_histories.habit_id").
		Where("uh.user_id = ? AND hi.date = ?", userID, date).
		Count(&count).Error
	return count, err
}

func (a *Aggregator) scheduledOnWeekday(userID uint, weekday int, includeInactive bool) (int64, error) {
	query := a.DB.Model(&models.Habit{}).
		Joins("JOIN user_habits uh ON uh.habit_id = habits.id").
		Where("uh.user_id = ? AND habits.weekday = ?", userID, weekday)
	if !includeInactive {
		query = query.Where("habits.status <> ?", models.StatusInactive)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// DailySeries returns per-day completion counts and rates for the
// trailing `days` days, oldest first. The rate compares completions on
// a day with the habits scheduled for that day's weekday, capped at
// 100; a day with nothing scheduled rates 0. A user with no habits gets
// all-zero series, not an error.
func (a *Aggregator) DailySeries(userID uint, days int) (*models.DailySeries, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive, got %d", ErrValidation, days)
	}

	series := &models.DailySeries{
		Labels: make([]string, 0, days),
		Counts: make([]int, 0, days),
		Rates:  make([]int, 0, days),
	}

	now := time.Now()
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		date := utils.FormatDate(day)
		series.Labels = append(series.Labels, date[5:]) // MM-DD

		count, err := a.completionsOn(userID, date)
		if err != nil {
			return nil, err
		}

		scheduled, err := a.scheduledOnWeekday(userID, int(day.Weekday()), false)
		if err != nil {
			return nil, err
		}

		rate := 0
		if scheduled > 0 {
			rate = capRate(int(count) * 100 / int(scheduled))
		}
		series.Counts = append(series.Counts, int(count))
		series.Rates = append(series.Rates, rate)
	}

	return series, nil
}

// WeeklyRates returns one completion rate per weekday (Sunday first)
// over the trailing 90-day window. The denominator uses the exact
// number of times each weekday occurs in the window rather than the
// rough 13-per-weekday estimate.
func (a *Aggregator) WeeklyRates(userID uint) ([7]int, error) {
	var rates [7]int
	now := time.Now()
	windowStart := utils.FormatDate(now.AddDate(0, 0, -90))

	for day := 0; day < 7; day++ {
		scheduled, err := a.scheduledOnWeekday(userID, day, false)
		if err != nil {
			return rates, err
		}
		if scheduled == 0 {
			continue
		}

		var completed int64
		err = a.DB.Model(&models.HabitHistory{}).
			Joins("JOIN histories hi ON hi.id = habit_histories.history_id").
			Joins("JOIN habits h ON h.id = habit_histories.habit_id").
			Joins("JOIN user_habits uh ON uh.habit_id = h.id").
			Where("uh.user_id = ? AND h.weekday = ? AND hi.date >= ?", userID, day, windowStart).
			Count(&completed).Error
		if err != nil {
			return rates, err
		}

		occurrences := utils.WeekdayOccurrences(now, 90, day)
		rates[day] = capRate(int(completed) * 100 / (int(scheduled) * occurrences))
	}

	return rates, nil
}

// MonthlyTotals returns completion totals per calendar month for the
// trailing `months` months, oldest first, labeled with the month
// abbreviation.
func (a *Aggregator) MonthlyTotals(userID uint, months int) (*models.MonthlySeries, error) {
	if months <= 0 {
		return nil, fmt.Errorf("%w: months must be positive, got %d", ErrValidation, months)
	}

	series := &models.MonthlySeries{
		Data:   make([]int, 0, months),
		Labels: make([]string, 0, months),
	}

	now := time.Now()
	for i := months - 1; i >= 0; i-- {
		month := now.AddDate(0, -i, 0)
		start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, -1)

		var total int64
		err := a.DB.Model(&models.HabitHistory{}).
			Joins("JOIN histories hi ON hi.id = habit_histories.history_id").
			Joins("JOIN user_habits uh ON uh.habit_id = habit_histories.habit_id").
			Where("uh.user_id = ? AND hi.date >= ? AND hi.date <= ?",
				userID, utils.FormatDate(start), utils.FormatDate(end)).
			Count(&total).Error
		if err != nil {
			return nil, err
		}

		series.Data = append(series.Data, int(total))
		series.Labels = append(series.Labels, month.Format("Jan"))
	}

	return series, nil
}

// CategoryBreakdown groups completion totals by habit category, with
// uncategorized habits bucketed separately. A user with no completions
// at all gets the documented placeholder set so the chart is never
// silently empty.
func (a *Aggregator) CategoryBreakdown(userID uint) (*models.CategoryBreakdown, error) {
	type row struct {
		Name        string
		Color       string
		Completions int
	}
	var rows []row
	err := a.DB.Model(&models.Category{}).
		Select("categories.name AS name, categories.color AS color, COUNT(hh.id) AS completions").
		Joins("JOIN habits h ON h.category_id = categories.id AND h.deleted_at IS NULL").
		Joins("JOIN habit_histories hh ON hh.habit_id = h.id").
		Joins("JOIN user_habits uh ON uh.habit_id = h.id").
		Where("uh.user_id = ?", userID).
		Group("categories.id, categories.name, categories.color").
		Order("completions DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var uncategorized int64
	err = a.DB.Model(&models.HabitHistory{}).
		Joins("JOIN habits h ON h.id = habit_histories.habit_id AND h.deleted_at IS NULL").
		Joins("JOIN user_habits uh ON uh.habit_id = h.id").
		Where("uh.user_id = ? AND h.category_id IS NULL", userID).
		Count(&uncategorized).Error
	if err != nil {
		return nil, err
	}

	breakdown := &models.CategoryBreakdown{}
	for _, r := range rows {
		color := r.Color
		if color == "" {
			color = defaultHabitColor
		}
		breakdown.Data = append(breakdown.Data, r.Completions)
		breakdown.Labels = append(breakdown.Labels, r.Name)
		breakdown.Colors = append(breakdown.Colors, color)
	}
	if uncategorized > 0 {
		breakdown.Data = append(breakdown.Data, int(uncategorized))
		breakdown.Labels = append(breakdown.Labels, "Uncategorized")
		breakdown.Colors = append(breakdown.Colors, uncategorizedColor)
	}

	// Placeholder set for users with no categorized completions at all.
	if len(breakdown.Data) == 0 {
		return &models.CategoryBreakdown{
			Data:   []int{0, 0, 0, 0, 0},
			Labels: []string{"Health", "Productivity", "Learning", "Fitness", "Mindfulness"},
			Colors: []string{"#4ADE80", "#3B82F6", "#8B5CF6", "#EF4444", "#EC4899"},
		}, nil
	}

	return breakdown, nil
}

// habitMetrics ranks the user's habits by an estimated completion rate:
// the lifetime counter against ~13 weekly occurrences in a 90-day
// window, capped at 100.
func (a *Aggregator) habitMetrics(userID uint) ([]models.HabitMetric, error) {
	var habits []models.Habit
	err := a.DB.Preload("Category").
		Joins("JOIN user_habits uh ON uh.habit_id = habits.id").
		Where("uh.user_id = ?", userID).
		Find(&habits).Error
	if err != nil {
		return nil, err
	}

	const expectedCompletions = 13 // ~ one weekday per week over 90 days

	metrics := make([]models.HabitMetric, 0, len(habits))
	for _, h := range habits {
		m := models.HabitMetric{
			HabitID:        h.ID,
			Name:           h.Name,
			Description:    h.Description,
			Category:       "Uncategorized",
			Color:          defaultHabitColor,
			Counter:        h.Counter,
			CompletionRate: capRate(h.Counter * 100 / expectedCompletions),
			Streak:         min(h.Counter, 30),
			Status:         h.Status,
		}
		if h.Category != nil {
			m.Category = h.Category.Name
			if h.Category.Color != "" {
				m.Color = h.Category.Color
			}
		}
		metrics = append(metrics, m)
	}
	return metrics, nil
}

// TopHabits returns the user's best habits by completion rate, each
// with a 14-day binary sparkline.
func (a *Aggregator) TopHabits(userID uint, limit int) ([]models.HabitMetric, error) {
	metrics, err := a.habitMetrics(userID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(metrics, func(i, j int) bool {
		return metrics[i].CompletionRate > metrics[j].CompletionRate
	})
	if len(metrics) > limit {
		metrics = metrics[:limit]
	}

	for i := range metrics {
		spark, err := a.sparkline(metrics[i].HabitID, 14)
		if err != nil {
			return nil, err
		}
		metrics[i].Sparkline = spark
	}
	return metrics, nil
}

// ChallengeHabits returns non-inactive habits with a completion rate
// under 50, worst first.
func (a *Aggregator) ChallengeHabits(userID uint, limit int) ([]models.HabitMetric, error) {
	metrics, err := a.habitMetrics(userID)
	if err != nil {
		return nil, err
	}

	challenges := metrics[:0]
	for _, m := range metrics {
		if m.CompletionRate < 50 && m.Status != models.StatusInactive {
			challenges = append(challenges, m)
		}
	}
	sort.SliceStable(challenges, func(i, j int) bool {
		return challenges[i].CompletionRate < challenges[j].CompletionRate
	})
	if len(challenges) > limit {
		challenges = challenges[:limit]
	}
	return challenges, nil
}

// sparkline marks each of the trailing `days` days 1 or 0 depending on
// whether the habit was completed, oldest first.
func (a *Aggregator) sparkline(habitID uint, days int) ([]int, error) {
	var dates []string
	err := a.DB.Model(&models.HabitHistory{}).
		Joins("JOIN histories hi ON hi.id = habit_histories.history_id").
		Where("habit_histories.habit_id = ? AND hi.date >= ?",
			habitID, utils.FormatDate(time.Now().AddDate(0, 0, -(days-1)))).
		Pluck("hi.date", &dates).Error
	if err != nil {
		return nil, err
	}

	completed := make(map[string]bool, len(dates))
	for _, d := range dates {
		completed[d] = true
	}

	spark := make([]int, 0, days)
	now := time.Now()
	for i := days - 1; i >= 0; i-- {
		if completed[utils.FormatDate(now.AddDate(0, 0, -i))] {
			spark = append(spark, 1)
		} else {
			spark = append(spark, 0)
		}
	}
	return spark, nil
}

// Heatmap returns completion counts per date keyed by unix timestamp,
// the shape the calendar heatmap consumes.
func (a *Aggregator) Heatmap(userID uint) (map[int64]int, error) {
	var dates []string
	err := a.DB.Model(&models.HabitHistory{}).
		Joins("JOIN histories hi ON hi.id = habit_histories.history_id").
		Joins("JOIN user_habits uh ON uh.habit_id = habit_histories.habit_id").
		Where("uh.user_id = ?", userID).
		Pluck("hi.date", &dates).Error
	if err != nil {
		return nil, err
	}

	heatmap := make(map[int64]int)
	for _, d := range dates {
		t, err := utils.ParseDate(d)
		if err != nil {
			continue
		}
		heatmap[t.Unix()]++
	}
	return heatmap, nil
}

func capRate(rate int) int {
	if rate > 100 {
		return 100
	}
	if rate < 0 {
		return 0
	}
	return rate
}
