package service

import (
	"fmt"
	"time"

	"github.com/habitflow/internal/analytics"
	"github.com/habitflow/internal/db"
	"gorm.io/gorm"
)

// StatsService 把存储层的快照喂给纯分析核心。
// 自身不做任何统计运算，也不持有状态，now 一律由调用方传入。
type StatsService struct {
	db          *gorm.DB
	habits      *HabitService
	completions *CompletionService
}

// HabitDetailStats 汇总单个习惯详情页所需的全部派生指标
type HabitDetailStats struct {
	Habit    db.Habit
	Streak   analytics.StreakInfo
	Stats    analytics.CompletionStats
	Trend    analytics.TrendAnalysis
	BestDay  *analytics.BestDayInfo
	Calendar []analytics.CalendarDayData
}

// NewStatsService 构造 StatsService
func NewStatsService(gdb *gorm.DB) *StatsService {
	return &StatsService{
		db:          gdb,
		habits:      NewHabitService(gdb),
		completions: NewCompletionService(gdb),
	}
}

// HabitDetail 计算单个习惯的连胜、完成率、趋势、最佳日和打卡日历
func (s *StatsService) HabitDetail(habitID uint, now time.Time) (*HabitDetailStats, error) {
	habit, err := s.habits.Get(habitID)
	if err != nil {
		return nil, err
	}

	completions, err := s.completions.ListForHabit(CompletionFilter{HabitID: habitID})
	if err != nil {
		return nil, err
	}

	return &HabitDetailStats{
		Habit:    *habit,
		Streak:   analytics.CalculateStreak(completions, now),
		Stats:    analytics.CalculateCompletionStats(completions, habit.CreatedAt, now),
		Trend:    analytics.AnalyzeTrend(completions, now),
		BestDay:  analytics.BestDay(completions),
		Calendar: analytics.BuildCalendarGrid(completions, now),
	}, nil
}

// Profile 计算账户级聚合统计（分类拆分、热力图、坚持度评分等）
func (s *StatsService) Profile(now time.Time) (*analytics.AggregateStats, error) {
	var habits []db.Habit
	if err := s.db.Order("id ASC").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("load habits: %w", err)
	}

	completions, err := s.completions.ListAll(CompletionFilter{})
	if err != nil {
		return nil, err
	}

	stats := analytics.ComputeAggregateStats(habits, completions, now)
	return &stats, nil
}
