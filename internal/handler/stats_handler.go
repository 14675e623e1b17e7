package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitflow/internal/analytics"
	"github.com/habitflow/internal/service"
)

// HabitStats 返回单个习惯的派生指标：连胜、完成率、趋势、最佳日与打卡日历
func (a *API) HabitStats(c *gin.Context) {
	habitID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	detail, err := a.stats.HabitDetail(habitID, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrHabitNotFound) {
			respondError(c, http.StatusNotFound, "习惯不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "统计计算失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"habit": habitToPayload(detail.Habit),
		"streak": gin.H{
			"current": detail.Streak.Current,
			"best":    detail.Streak.Best,
		},
		"completion": gin.H{
			"rate_7d":           detail.Stats.Rate7Day,
			"rate_30d":          detail.Stats.Rate30Day,
			"total_completions": detail.Stats.TotalCompletions,
			"overall_rate":      detail.Stats.OverallRate,
		},
		"trend": gin.H{
			"is_improving":  detail.Trend.IsImproving,
			"trend_percent": detail.Trend.TrendPercent,
			"recent_avg":    detail.Trend.RecentAvg,
			"previous_avg":  detail.Trend.PreviousAvg,
		},
		"best_day": bestDayToPayload(detail.BestDay),
		"calendar": calendarToPayload(detail.Calendar),
	})
}

// ProfileStats 返回账户级聚合统计
func (a *API) ProfileStats(c *gin.Context) {
	stats, err := a.stats.Profile(time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "统计计算失败")
		return
	}

	categories := make([]gin.H, 0, len(stats.Categories))
	for _, entry := range stats.Categories {
		categories = append(categories, gin.H{
			"category":         entry.Category,
			"habit_count":      entry.HabitCount,
			"completion_count": entry.CompletionCount,
			"avg_rate":         entry.AvgRate,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"total_habits":      stats.TotalHabits,
		"total_completions": stats.TotalCompletions,
		"max_streak":        stats.MaxStreak,
		"rate_7d":           stats.Rate7Day,
		"rate_30d":          stats.Rate30Day,
		"overall_rate":      stats.OverallRate,
		"categories":        categories,
		"heatmap": gin.H{
			"start": stats.Heatmap.Start.Format(dateFormat),
			"weeks": stats.Heatmap.Weeks,
		},
		"insights": gin.H{
			"most_consistent_habit_id":   stats.Insights.MostConsistentHabitID,
			"most_consistent_habit_name": stats.Insights.MostConsistentHabitName,
			"best_day":                   bestDayToPayload(stats.Insights.BestDay),
		},
		"consistency": gin.H{
			"score":       stats.Consistency.Score,
			"grade":       stats.Consistency.Grade,
			"description": stats.Consistency.Description,
		},
	})
}

func bestDayToPayload(info *analytics.BestDayInfo) gin.H {
	if info == nil {
		return nil
	}
	return gin.H{
		"day_of_week": info.DayOfWeek,
		"name":        info.Name,
		"count":       info.Count,
		"rate":        info.Rate,
	}
}

func calendarToPayload(days []analytics.CalendarDayData) []gin.H {
	items := make([]gin.H, 0, len(days))
	for _, day := range days {
		item := gin.H{
			"placeholder": day.IsPlaceholder,
		}
		if !day.IsPlaceholder {
			item["day"] = day.Day.Format(dateFormat)
			item["has_completion"] = day.HasCompletion
			if day.Completion != nil {
				item["completion"] = completionToPayload(*day.Completion)
			}
		}
		items = append(items, item)
	}
	return items
}
