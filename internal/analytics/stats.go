package analytics

import (
	"time"

	"github.com/habitflow/internal/db"
)

// CompletionStats 汇总单个习惯的完成率统计。
type CompletionStats struct {
	Rate7Day         float64
	Rate30Day        float64
	TotalCompletions int
	OverallRate      float64
}

// CalculateCompletionStats 计算 7 天 / 30 天 / 总体完成率。
// 分母采用含首尾的天数（毫秒差整除一天 +1），窗口短于习惯存在天数时取窗口长度，
// 反之取存在天数；所有比率裁剪到 [0,100]，零天跨度返回 0 而不是除零。
func CalculateCompletionStats(completions []db.Completion, createdAt, now time.Time) CompletionStats {
	stats := CompletionStats{TotalCompletions: len(completions)}

	totalDays := daysBetween(createdAt, now)
	if totalDays <= 0 {
		return stats
	}

	stats.Rate7Day = windowRate(completions, now, 7, totalDays)
	stats.Rate30Day = windowRate(completions, now, 30, totalDays)
	stats.OverallRate = clampRate(float64(len(completions)) / float64(totalDays) * 100)

	return stats
}

// windowRate 计算最近 windowDays 天的完成率。
func windowRate(completions []db.Completion, now time.Time, windowDays, totalDays int) float64 {
	denominator := windowDays
	if totalDays < denominator {
		denominator = totalDays
	}
	if denominator <= 0 {
		return 0
	}

	cutoff := now.AddDate(0, 0, -windowDays)
	count := 0
	for _, completion := range completions {
		if completion.CompletedAt.After(cutoff) && !completion.CompletedAt.After(now) {
			count++
		}
	}

	return clampRate(float64(count) / float64(denominator) * 100)
}
