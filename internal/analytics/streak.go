package analytics

import (
	"slices"
	"time"

	"github.com/habitflow/internal/db"
)

// StreakInfo 描述当前连续打卡与历史最佳连续打卡。
type StreakInfo struct {
	Current int
	Best    int
}

// CalculateStreak 根据单个习惯的完成记录计算连续打卡情况。
// 按本地日历日去重后：当前连胜从今天开始向前逐日回溯；今天没有打卡时
// 允许从昨天起算（跳过整整一天才算断），今天昨天都没有则为 0。
// 最佳连胜按时间顺序扫描去重日，相邻日相差恰好一天累加，出现缺口重置。
func CalculateStreak(completions []db.Completion, now time.Time) StreakInfo {
	if len(completions) == 0 {
		return StreakInfo{}
	}

	days := distinctDays(completions)
	daySet := make(map[time.Time]struct{}, len(days))
	for _, day := range days {
		daySet[day] = struct{}{}
	}

	today := dayStart(now)
	anchor := today
	if _, ok := daySet[anchor]; !ok {
		anchor = today.AddDate(0, 0, -1)
	}

	current := 0
	for {
		if _, ok := daySet[anchor]; !ok {
			break
		}
		current++
		anchor = anchor.AddDate(0, 0, -1)
	}

	best := 0
	run := 0
	for i, day := range days {
		if i > 0 && day.Equal(days[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}

	return StreakInfo{Current: current, Best: best}
}

// distinctDays 返回按时间升序排列的去重打卡日（零点时间）。
func distinctDays(completions []db.Completion) []time.Time {
	seen := make(map[time.Time]struct{}, len(completions))
	days := make([]time.Time, 0, len(completions))

	for _, completion := range completions {
		day := dayStart(completion.CompletedAt)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}

	slices.SortFunc(days, func(a, b time.Time) int {
		return a.Compare(b)
	})

	return days
}
