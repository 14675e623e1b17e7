package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/habitflow/internal/analytics"
	"github.com/habitflow/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrCompletionNotFound 在指定打卡记录不存在时返回
var ErrCompletionNotFound = errors.New("completion not found")

// CompletionService 负责打卡记录的写入与查询。
// 记录不可修改：同一习惯同一时间戳重复写入被唯一索引吸收（传感器去抖），
// 只支持新增与删除；每次变更后同步刷新习惯上的连胜计数。
type CompletionService struct {
	db *gorm.DB
}

// CompletionInput 定义打卡时的输入对象
type CompletionInput struct {
	HabitID       uint
	CompletedAt   time.Time
	AutoCompleted bool
	Note          string
}

// CompletionFilter 指定查询区间，零值时间表示不限制
type CompletionFilter struct {
	HabitID uint
	Start   time.Time
	End     time.Time
}

// NewCompletionService 构造 CompletionService
func NewCompletionService(gdb *gorm.DB) *CompletionService {
	return &CompletionService{db: gdb}
}

// Record 写入一条打卡记录并刷新习惯的连胜计数。
// 完成时间为零值时拒绝；重复的 (habit, completed_at) 幂等返回已有记录。
func (s *CompletionService) Record(input CompletionInput) (*db.Completion, error) {
	if input.HabitID == 0 {
		return nil, fmt.Errorf("habit id is required")
	}
	if input.CompletedAt.IsZero() {
		return nil, fmt.Errorf("completion time is required")
	}

	var habit db.Habit
	if err := s.db.First(&habit, input.HabitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("find habit: %w", err)
	}

	record := db.Completion{
		HabitID:       input.HabitID,
		CompletedAt:   input.CompletedAt,
		AutoCompleted: input.AutoCompleted,
		Note:          strings.TrimSpace(input.Note),
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "habit_id"}, {Name: "completed_at"}},
		DoNothing: true,
	}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("record completion: %w", err)
	}

	if err := s.db.Where("habit_id = ? AND completed_at = ?", input.HabitID, input.CompletedAt).
		First(&record).Error; err != nil {
		return nil, fmt.Errorf("reload completion: %w", err)
	}

	if err := s.refreshStreak(input.HabitID, time.Now()); err != nil {
		return nil, err
	}

	return &record, nil
}

// Delete 删除指定打卡记录并刷新连胜计数
func (s *CompletionService) Delete(id uint) error {
	var record db.Completion
	if err := s.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCompletionNotFound
		}
		return fmt.Errorf("find completion: %w", err)
	}

	// 物理删除：记录没有恢复语义，软删除的行仍占住 (habit_id, completed_at)
	// 唯一索引，会阻塞同一时间戳的重新打卡
	if err := s.db.Unscoped().Delete(&db.Completion{}, id).Error; err != nil {
		return fmt.Errorf("delete completion: %w", err)
	}

	return s.refreshStreak(record.HabitID, time.Now())
}

// ListForHabit 返回某个习惯的打卡记录，按完成时间升序
func (s *CompletionService) ListForHabit(filter CompletionFilter) ([]db.Completion, error) {
	if filter.HabitID == 0 {
		return nil, fmt.Errorf("habit id is required")
	}

	query := s.db.Where("habit_id = ?", filter.HabitID)
	query = applyTimeRange(query, filter)

	var completions []db.Completion
	if err := query.Order("completed_at ASC").Find(&completions).Error; err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}

	return completions, nil
}

// ListAll 返回全部习惯的打卡记录，按完成时间升序
func (s *CompletionService) ListAll(filter CompletionFilter) ([]db.Completion, error) {
	query := applyTimeRange(s.db.Model(&db.Completion{}), filter)

	var completions []db.Completion
	if err := query.Order("completed_at ASC").Find(&completions).Error; err != nil {
		return nil, fmt.Errorf("list all completions: %w", err)
	}

	return completions, nil
}

// refreshStreak 重算习惯的当前连胜并落库。
// now 取触发这次刷新的时间点，保证计数与分析口径一致。
func (s *CompletionService) refreshStreak(habitID uint, now time.Time) error {
	completions, err := s.ListForHabit(CompletionFilter{HabitID: habitID})
	if err != nil {
		return err
	}

	streak := analytics.CalculateStreak(completions, now)
	if err := s.db.Model(&db.Habit{}).Where("id = ?", habitID).
		Update("streak_count", streak.Current).Error; err != nil {
		return fmt.Errorf("update streak count: %w", err)
	}

	return nil
}

func applyTimeRange(query *gorm.DB, filter CompletionFilter) *gorm.DB {
	if !filter.Start.IsZero() {
		query = query.Where("completed_at >= ?", filter.Start)
	}
	if !filter.End.IsZero() {
		query = query.Where("completed_at <= ?", filter.End)
	}
	return query
}
