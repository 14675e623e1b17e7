package analytics

import (
	"time"

	"github.com/habitflow/internal/db"
)

const (
	heatmapWeeks = 4

	// newAccountAgeDays 以 daysBetween 的含首尾口径衡量习惯年龄：创建时刻即为
	// 第 1 天，经过两个完整天后年龄到 3，新手保底评分随之失效。
	newAccountAgeDays = 3
)

// AggregateStats 汇总整个账户的统计结果。
type AggregateStats struct {
	TotalHabits      int
	TotalCompletions int
	MaxStreak        int
	Rate7Day         float64
	Rate30Day        float64
	OverallRate      float64
	Categories       []CategoryBreakdown
	Heatmap          WeeklyHeatmapData
	Insights         ProfileInsights
	Consistency      ConsistencyScore
}

// CategoryBreakdown 描述单个分类的习惯与完成情况。
type CategoryBreakdown struct {
	Category        db.Category
	HabitCount      int
	CompletionCount int
	AvgRate         float64 // 分类内各习惯总体完成率的平均值
}

// WeeklyHeatmapData 是最近 4 周、每周 7 天的完成密度网格（旧周在前，周一开头）。
// 每格的值 = 当天完成数 ÷ 当天已创建且处于激活状态的习惯数。
type WeeklyHeatmapData struct {
	Start time.Time
	Weeks [][]float64
}

// ProfileInsights 提炼账户级别的亮点。
type ProfileInsights struct {
	MostConsistentHabitID   uint
	MostConsistentHabitName string
	BestDay                 *BestDayInfo
}

// ConsistencyScore 是 0-100 的综合坚持度评分与等级。
type ConsistencyScore struct {
	Score       int
	Grade       string
	Description string
}

// ComputeAggregateStats 把全部习惯与完成记录聚合成账户级统计。
func ComputeAggregateStats(habits []db.Habit, completions []db.Completion, now time.Time) AggregateStats {
	stats := AggregateStats{
		TotalHabits:      len(habits),
		TotalCompletions: len(completions),
	}

	if len(habits) == 0 {
		stats.Consistency = ConsistencyScore{Grade: "-", Description: "创建一个习惯开始记录吧"}
		stats.Heatmap = buildWeeklyHeatmap(habits, completions, now)
		return stats
	}

	byHabit := make(map[uint][]db.Completion, len(habits))
	for _, completion := range completions {
		byHabit[completion.HabitID] = append(byHabit[completion.HabitID], completion)
	}

	oldest := habits[0].CreatedAt
	bestRate := -1.0
	for _, habit := range habits {
		if habit.CreatedAt.Before(oldest) {
			oldest = habit.CreatedAt
		}

		streak := CalculateStreak(byHabit[habit.ID], now)
		if streak.Current > stats.MaxStreak {
			stats.MaxStreak = streak.Current
		}

		habitStats := CalculateCompletionStats(byHabit[habit.ID], habit.CreatedAt, now)
		if habitStats.OverallRate > bestRate {
			bestRate = habitStats.OverallRate
			stats.Insights.MostConsistentHabitID = habit.ID
			stats.Insights.MostConsistentHabitName = habit.Name
		}
	}

	stats.Rate7Day = accountWindowRate(completions, len(habits), now, oldest, 7)
	stats.Rate30Day = accountWindowRate(completions, len(habits), now, oldest, 30)
	totalDays := daysBetween(oldest, now)
	if totalDays > 0 {
		stats.OverallRate = clampRate(float64(len(completions)) / float64(len(habits)*totalDays) * 100)
	}

	stats.Categories = buildCategoryBreakdown(habits, byHabit, now)
	stats.Heatmap = buildWeeklyHeatmap(habits, completions, now)
	stats.Insights.BestDay = BestDay(completions)
	stats.Consistency = computeConsistencyScore(habits, completions, byHabit, stats.Rate30Day, now)

	return stats
}

// accountWindowRate 计算账户级窗口完成率：完成数 ÷ (习惯数 × 天数) × 100。
func accountWindowRate(completions []db.Completion, habitCount int, now, oldest time.Time, windowDays int) float64 {
	days := windowDays
	if accountDays := daysBetween(oldest, now); accountDays < days {
		days = accountDays
	}
	if days <= 0 || habitCount == 0 {
		return 0
	}

	cutoff := now.AddDate(0, 0, -windowDays)
	count := 0
	for _, completion := range completions {
		if completion.CompletedAt.After(cutoff) && !completion.CompletedAt.After(now) {
			count++
		}
	}

	return clampRate(float64(count) / float64(habitCount*days) * 100)
}

// buildCategoryBreakdown 按 HabitCategories 的固定顺序输出非空分类的统计。
func buildCategoryBreakdown(habits []db.Habit, byHabit map[uint][]db.Completion, now time.Time) []CategoryBreakdown {
	breakdowns := make([]CategoryBreakdown, 0, len(db.HabitCategories()))

	for _, category := range db.HabitCategories() {
		entry := CategoryBreakdown{Category: category}
		rateSum := 0.0

		for _, habit := range habits {
			if habit.Category != category {
				continue
			}
			entry.HabitCount++
			entry.CompletionCount += len(byHabit[habit.ID])
			rateSum += CalculateCompletionStats(byHabit[habit.ID], habit.CreatedAt, now).OverallRate
		}

		if entry.HabitCount == 0 {
			continue
		}
		entry.AvgRate = rateSum / float64(entry.HabitCount)
		breakdowns = append(breakdowns, entry)
	}

	return breakdowns
}

// buildWeeklyHeatmap 生成最近 4 周的完成密度网格。
func buildWeeklyHeatmap(habits []db.Habit, completions []db.Completion, now time.Time) WeeklyHeatmapData {
	today := dayStart(now)
	start := today.AddDate(0, 0, -(heatmapWeeks*7 - 1))

	countByDay := make(map[time.Time]int, len(completions))
	for _, completion := range completions {
		countByDay[dayStart(completion.CompletedAt)]++
	}

	weeks := make([][]float64, heatmapWeeks)
	for w := 0; w < heatmapWeeks; w++ {
		weeks[w] = make([]float64, 7)
		for d := 0; d < 7; d++ {
			day := start.AddDate(0, 0, w*7+d)
			active := habitsActiveOn(habits, day)
			if active == 0 {
				continue
			}
			weeks[w][d] = float64(countByDay[day]) / float64(active)
		}
	}

	return WeeklyHeatmapData{Start: start, Weeks: weeks}
}

// habitsActiveOn 统计某天已创建且处于激活状态的习惯数量。
func habitsActiveOn(habits []db.Habit, day time.Time) int {
	dayEnd := day.AddDate(0, 0, 1)
	count := 0
	for _, habit := range habits {
		if habit.Active && habit.CreatedAt.Before(dayEnd) {
			count++
		}
	}
	return count
}

// computeConsistencyScore 计算综合坚持度：
// 70% × 30 天账户完成率 + 20% × 平均连胜/习惯龄比值（单项裁剪到 [0,100]）
// + 10% × 完美天比率（所有激活习惯当天都完成的天数 ÷ 最新习惯创建以来的天数）。
// 全部习惯都不满 3 天时绕过公式：有任何完成记录直接给 75/B+，避免用
// 统计上无意义的短窗口打击新用户；一条记录都没有则给中性的零分占位。
func computeConsistencyScore(habits []db.Habit, completions []db.Completion, byHabit map[uint][]db.Completion, rate30 float64, now time.Time) ConsistencyScore {
	allNew := true
	newest := habits[0].CreatedAt
	for _, habit := range habits {
		if daysBetween(habit.CreatedAt, now) >= newAccountAgeDays {
			allNew = false
		}
		if habit.CreatedAt.After(newest) {
			newest = habit.CreatedAt
		}
	}

	if allNew {
		if len(completions) > 0 {
			return ConsistencyScore{Score: 75, Grade: "B+", Description: "好的开始，继续保持！"}
		}
		return ConsistencyScore{Grade: "-", Description: "记录第一次完成后开始评分"}
	}

	streakRatioSum := 0.0
	for _, habit := range habits {
		ageDays := daysBetween(habit.CreatedAt, now)
		if ageDays <= 0 {
			continue
		}
		streak := CalculateStreak(byHabit[habit.ID], now)
		streakRatioSum += clampRate(float64(streak.Current) / float64(ageDays) * 100)
	}
	avgStreakRatio := streakRatioSum / float64(len(habits))

	perfectRate := perfectDayRate(habits, completions, newest, now)

	score := int(0.70*rate30 + 0.20*avgStreakRatio + 0.10*perfectRate)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return ConsistencyScore{
		Score:       score,
		Grade:       consistencyGrade(score),
		Description: consistencyDescription(score),
	}
}

// perfectDayRate 计算"完美天"占比：当天每个已创建且激活的习惯都有完成记录。
func perfectDayRate(habits []db.Habit, completions []db.Completion, newest, now time.Time) float64 {
	days := daysBetween(newest, now)
	if days <= 0 {
		return 0
	}

	completedOn := make(map[time.Time]map[uint]struct{})
	for _, completion := range completions {
		day := dayStart(completion.CompletedAt)
		if completedOn[day] == nil {
			completedOn[day] = make(map[uint]struct{})
		}
		completedOn[day][completion.HabitID] = struct{}{}
	}

	perfect := 0
	start := dayStart(newest)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		done := completedOn[day]
		allDone := true
		counted := 0
		for _, habit := range habits {
			if !habit.Active || !habit.CreatedAt.Before(day.AddDate(0, 0, 1)) {
				continue
			}
			counted++
			if _, ok := done[habit.ID]; !ok {
				allDone = false
				break
			}
		}
		if counted > 0 && allDone {
			perfect++
		}
	}

	return clampRate(float64(perfect) / float64(days) * 100)
}

func consistencyGrade(score int) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B+"
	case score >= 60:
		return "B"
	case score >= 50:
		return "C+"
	case score >= 40:
		return "C"
	case score >= 30:
		return "D"
	default:
		return "F"
	}
}

func consistencyDescription(score int) string {
	switch {
	case score >= 80:
		return "坚持得非常好，保持节奏"
	case score >= 60:
		return "整体稳定，还有上升空间"
	case score >= 40:
		return "时断时续，试着缩小目标"
	default:
		return "刚刚起步，从一个习惯开始"
	}
}
