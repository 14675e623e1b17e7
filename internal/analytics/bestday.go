package analytics

import (
	"time"

	"github.com/habitflow/internal/db"
)

var weekdayNames = [8]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// BestDayInfo 描述完成次数最多的星期几。
type BestDayInfo struct {
	DayOfWeek int // 周一=1 .. 周日=7
	Name      string
	Count     int
	Rate      float64 // 占全部完成次数的百分比
}

// BestDay 找出完成频次最高的星期几，没有任何完成记录时返回 nil。
// 并列时取编号最小的那天（周一优先），保证结果确定。
func BestDay(completions []db.Completion) *BestDayInfo {
	if len(completions) == 0 {
		return nil
	}

	var counts [8]int
	for _, completion := range completions {
		counts[weekdayMonday(completion.CompletedAt)]++
	}

	best := 1
	for day := 2; day <= 7; day++ {
		if counts[day] > counts[best] {
			best = day
		}
	}

	return &BestDayInfo{
		DayOfWeek: best,
		Name:      weekdayNames[best],
		Count:     counts[best],
		Rate:      float64(counts[best]) / float64(len(completions)) * 100,
	}
}

// BestDayInRange 与 BestDay 相同，但仅统计 [start, end] 内的完成记录。
func BestDayInRange(completions []db.Completion, start, end time.Time) *BestDayInfo {
	filtered := make([]db.Completion, 0, len(completions))
	for _, completion := range completions {
		if completion.CompletedAt.Before(start) || completion.CompletedAt.After(end) {
			continue
		}
		filtered = append(filtered, completion)
	}
	return BestDay(filtered)
}
