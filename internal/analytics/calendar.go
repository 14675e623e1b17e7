package analytics

import (
	"time"

	"github.com/habitflow/internal/db"
)

const calendarWindowDays = 30

// CalendarDayData 表示日历网格中的一格。
// IsPlaceholder 为 true 时这一格只用于把首日对齐到周一开头的 7 列布局。
type CalendarDayData struct {
	Day           time.Time
	HasCompletion bool
	Completion    *db.Completion
	IsPlaceholder bool
}

// BuildCalendarGrid 生成最近 30 天的打卡日历（含今天，旧日期在前）。
// 返回固定 30 个真实日期，外加 0-6 个前导占位格，使首日落在对应的星期列上。
func BuildCalendarGrid(completions []db.Completion, now time.Time) []CalendarDayData {
	byDay := make(map[time.Time]*db.Completion, len(completions))
	for i := range completions {
		day := dayStart(completions[i].CompletedAt)
		if _, ok := byDay[day]; !ok {
			byDay[day] = &completions[i]
		}
	}

	first := dayStart(now).AddDate(0, 0, -(calendarWindowDays - 1))

	leading := weekdayMonday(first) - 1
	grid := make([]CalendarDayData, 0, leading+calendarWindowDays)
	for i := 0; i < leading; i++ {
		grid = append(grid, CalendarDayData{IsPlaceholder: true})
	}

	for i := 0; i < calendarWindowDays; i++ {
		day := first.AddDate(0, 0, i)
		entry := CalendarDayData{Day: day}
		if completion, ok := byDay[day]; ok {
			entry.HasCompletion = true
			entry.Completion = completion
		}
		grid = append(grid, entry)
	}

	return grid
}
