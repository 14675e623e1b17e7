package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/habitflow/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrHabitNotFound 在指定习惯不存在时返回
	ErrHabitNotFound = errors.New("habit not found")
	// ErrHabitInvalidCategory 当分类不在习惯分类集合内时返回
	ErrHabitInvalidCategory = errors.New("invalid habit category")
	// ErrHabitInvalidTrigger 当触发配置异常时返回
	ErrHabitInvalidTrigger = errors.New("invalid habit trigger configuration")
)

// HabitService 负责 Habit 数据的增删改查
// 触发类型为 TIME/MOTION/LOCATION 三选一，恰好一组触发参数被填充
// Category 限定在习惯分类集合内（不含 HEALTHY_EATING）

type HabitService struct {
	db *gorm.DB
}

// HabitFilter 描述列表过滤条件
type HabitFilter struct {
	Category string
	Trigger  string
	Active   *bool
	Search   string
}

// HabitInput 定义创建/更新习惯时可配置字段
type HabitInput struct {
	Name              string
	Description       string
	Category          db.Category
	TriggerType       db.TriggerType
	Active            *bool
	ReminderTimes     []string
	ReminderDays      []int
	MotionLabel       string
	TargetDurationMin int
	LocationName      string
	Latitude          float64
	Longitude         float64
	RadiusMeters      float64
}

// NewHabitService 构造 HabitService
func NewHabitService(gdb *gorm.DB) *HabitService {
	return &HabitService{db: gdb}
}

// List 返回习惯集合，支持基本筛选
func (s *HabitService) List(filter HabitFilter) ([]db.Habit, error) {
	var habits []db.Habit

	query := s.db.Model(&db.Habit{})

	if filter.Category != "" {
		query = query.Where("category = ?", strings.ToUpper(strings.TrimSpace(filter.Category)))
	}
	if filter.Trigger != "" {
		query = query.Where("trigger_type = ?", strings.ToUpper(strings.TrimSpace(filter.Trigger)))
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", strings.TrimSpace(filter.Search))
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	if err := query.Order("created_at DESC").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	return habits, nil
}

// Get 根据 ID 获取习惯
func (s *HabitService) Get(id uint) (*db.Habit, error) {
	var habit db.Habit
	if err := s.db.First(&habit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return &habit, nil
}

// Create 新建习惯
func (s *HabitService) Create(input HabitInput) (*db.Habit, error) {
	if err := validateHabitInput(input); err != nil {
		return nil, err
	}

	habit := db.Habit{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Category:    input.Category,
		TriggerType: input.TriggerType,
		Active:      true,
	}
	if input.Active != nil {
		habit.Active = *input.Active
	}
	applyTriggerParams(&habit, input)

	if err := s.db.Create(&habit).Error; err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	return &habit, nil
}

// Update 更新习惯
func (s *HabitService) Update(id uint, input HabitInput) (*db.Habit, error) {
	if err := validateHabitInput(input); err != nil {
		return nil, err
	}

	var existing db.Habit
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("find habit: %w", err)
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Description = strings.TrimSpace(input.Description)
	existing.Category = input.Category
	existing.TriggerType = input.TriggerType
	if input.Active != nil {
		existing.Active = *input.Active
	}
	applyTriggerParams(&existing, input)

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update habit: %w", err)
	}
	return &existing, nil
}

// Delete 删除习惯并级联删除其打卡记录
func (s *HabitService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("habit_id = ?", id).Delete(&db.Completion{}).Error; err != nil {
			return fmt.Errorf("delete habit completions: %w", err)
		}
		if err := tx.Delete(&db.Habit{}, id).Error; err != nil {
			return fmt.Errorf("delete habit: %w", err)
		}
		return nil
	})
}

func validateHabitInput(input HabitInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("habit name is required")
	}

	validCategory := false
	for _, category := range db.HabitCategories() {
		if input.Category == category {
			validCategory = true
			break
		}
	}
	if !validCategory {
		return fmt.Errorf("%w: %s", ErrHabitInvalidCategory, input.Category)
	}

	switch input.TriggerType {
	case db.TriggerTime:
		if input.MotionLabel != "" || input.TargetDurationMin != 0 || input.RadiusMeters != 0 || input.LocationName != "" {
			return fmt.Errorf("%w: time trigger with motion/location params", ErrHabitInvalidTrigger)
		}
		for _, day := range input.ReminderDays {
			if day < 1 || day > 7 {
				return fmt.Errorf("%w: reminder day %d out of range", ErrHabitInvalidTrigger, day)
			}
		}
	case db.TriggerMotion:
		if len(input.ReminderTimes) > 0 || len(input.ReminderDays) > 0 || input.RadiusMeters != 0 || input.LocationName != "" {
			return fmt.Errorf("%w: motion trigger with time/location params", ErrHabitInvalidTrigger)
		}
		if input.TargetDurationMin <= 0 {
			return fmt.Errorf("%w: target duration must be positive", ErrHabitInvalidTrigger)
		}
	case db.TriggerLocation:
		if len(input.ReminderTimes) > 0 || len(input.ReminderDays) > 0 || input.MotionLabel != "" || input.TargetDurationMin != 0 {
			return fmt.Errorf("%w: location trigger with time/motion params", ErrHabitInvalidTrigger)
		}
		if input.RadiusMeters <= 0 {
			return fmt.Errorf("%w: radius must be positive", ErrHabitInvalidTrigger)
		}
	default:
		return fmt.Errorf("%w: unsupported trigger type %s", ErrHabitInvalidTrigger, input.TriggerType)
	}

	return nil
}

// applyTriggerParams 按触发类型写入对应参数组并清空其余字段
func applyTriggerParams(habit *db.Habit, input HabitInput) {
	habit.ReminderTimes = ""
	habit.ReminderDays = ""
	habit.MotionLabel = ""
	habit.TargetDurationMin = 0
	habit.LocationName = ""
	habit.Latitude = 0
	habit.Longitude = 0
	habit.RadiusMeters = 0

	switch input.TriggerType {
	case db.TriggerTime:
		habit.ReminderTimes = strings.Join(input.ReminderTimes, ",")
		habit.ReminderDays = joinInts(input.ReminderDays)
	case db.TriggerMotion:
		label := strings.TrimSpace(input.MotionLabel)
		if label == "" {
			label = "Walk"
		}
		habit.MotionLabel = label
		habit.TargetDurationMin = input.TargetDurationMin
	case db.TriggerLocation:
		habit.LocationName = strings.TrimSpace(input.LocationName)
		habit.Latitude = input.Latitude
		habit.Longitude = input.Longitude
		habit.RadiusMeters = input.RadiusMeters
	}
}

func joinInts(values []int) string {
	parts := make([]string, 0, len(values))
	for _, value := range values {
		parts = append(parts, strconv.Itoa(value))
	}
	return strings.Join(parts, ",")
}
