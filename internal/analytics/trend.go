package analytics

import (
	"time"

	"github.com/habitflow/internal/db"
)

// TrendAnalysis 对比近期与前期的完成速度。
type TrendAnalysis struct {
	IsImproving  bool
	TrendPercent float64
	RecentAvg    float64
	PreviousAvg  float64
}

// AnalyzeTrend 以 14 天为一期对比完成数量：近期 [now-14d, now)，前期 [now-28d, now-14d)。
// 两期平均值均除以 7——14 天窗口配 7 的分母是沿用既有产品口径，勿"修正"。
func AnalyzeTrend(completions []db.Completion, now time.Time) TrendAnalysis {
	recentStart := now.AddDate(0, 0, -14)
	previousStart := now.AddDate(0, 0, -28)

	recent := 0
	previous := 0
	for _, completion := range completions {
		ts := completion.CompletedAt
		switch {
		case !ts.Before(recentStart) && ts.Before(now):
			recent++
		case !ts.Before(previousStart) && ts.Before(recentStart):
			previous++
		}
	}

	analysis := TrendAnalysis{
		RecentAvg:   float64(recent) / 7.0,
		PreviousAvg: float64(previous) / 7.0,
	}
	analysis.IsImproving = analysis.RecentAvg > analysis.PreviousAvg

	switch {
	case previous > 0:
		analysis.TrendPercent = (analysis.RecentAvg - analysis.PreviousAvg) / analysis.PreviousAvg * 100
	case recent > 0:
		analysis.TrendPercent = 100
	}

	return analysis
}
