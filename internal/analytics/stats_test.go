package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/habitflow/internal/db"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculateCompletionStatsFullWeek(t *testing.T) {
	now := time.Date(2024, 5, 20, 20, 0, 0, 0, time.Local)
	createdAt := now.AddDate(0, 0, -7)

	var completions []db.Completion
	for i := 0; i < 7; i++ {
		completions = append(completions, completionOn(now.AddDate(0, 0, -i)))
	}

	stats := CalculateCompletionStats(completions, createdAt, now)
	if stats.TotalCompletions != 7 {
		t.Fatalf("expected 7 completions, got %d", stats.TotalCompletions)
	}
	if !almostEqual(stats.Rate7Day, 100) {
		t.Fatalf("expected 7-day rate 100, got %f", stats.Rate7Day)
	}
}

func TestCalculateCompletionStatsEmpty(t *testing.T) {
	now := time.Date(2024, 5, 20, 20, 0, 0, 0, time.Local)

	stats := CalculateCompletionStats(nil, now.AddDate(0, 0, -10), now)
	if stats.TotalCompletions != 0 || stats.Rate7Day != 0 || stats.Rate30Day != 0 || stats.OverallRate != 0 {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}

func TestCalculateCompletionStatsCreatedNow(t *testing.T) {
	now := time.Date(2024, 5, 20, 20, 0, 0, 0, time.Local)

	// 习惯刚创建，跨度为 1 天而不是除零
	stats := CalculateCompletionStats([]db.Completion{completionOn(now)}, now, now)
	if !almostEqual(stats.OverallRate, 100) {
		t.Fatalf("expected overall rate 100 for day-one habit, got %f", stats.OverallRate)
	}
}

func TestCalculateCompletionStatsCreatedAfterNow(t *testing.T) {
	now := time.Date(2024, 5, 20, 20, 0, 0, 0, time.Local)

	stats := CalculateCompletionStats(nil, now.AddDate(0, 0, 1), now)
	if stats.OverallRate != 0 || stats.Rate7Day != 0 {
		t.Fatalf("expected zero rates for negative span, got %+v", stats)
	}
}

func TestCalculateCompletionStatsYoungHabitDenominator(t *testing.T) {
	now := time.Date(2024, 5, 20, 20, 0, 0, 0, time.Local)
	createdAt := now.AddDate(0, 0, -2) // 存在 3 天（含首尾）

	completions := []db.Completion{
		completionOn(now),
		completionOn(now.AddDate(0, 0, -1)),
		completionOn(now.AddDate(0, 0, -2)),
	}

	stats := CalculateCompletionStats(completions, createdAt, now)
	// 7 天窗口的分母取 min(7, 3) = 3
	if !almostEqual(stats.Rate7Day, 100) {
		t.Fatalf("expected 7-day rate 100, got %f", stats.Rate7Day)
	}
	if !almostEqual(stats.OverallRate, 100) {
		t.Fatalf("expected overall rate 100, got %f", stats.OverallRate)
	}
}

func TestCalculateCompletionStatsClamped(t *testing.T) {
	now := time.Date(2024, 5, 20, 20, 0, 0, 0, time.Local)
	createdAt := now.AddDate(0, 0, -1)

	// 一天打卡多次也不会超过 100
	completions := []db.Completion{
		completionOn(now), completionOn(now), completionOn(now),
		completionOn(now), completionOn(now), completionOn(now),
	}

	stats := CalculateCompletionStats(completions, createdAt, now)
	if stats.Rate7Day > 100 || stats.Rate30Day > 100 || stats.OverallRate > 100 {
		t.Fatalf("rates must be clamped to 100, got %+v", stats)
	}
}
