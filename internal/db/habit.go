package db

import (
	"time"

	"gorm.io/gorm"
)

// Category 表示习惯/内容的分类枚举，持久化为字符串。
type Category string

const (
	CategoryFitness      Category = "FITNESS"
	CategoryWellness     Category = "WELLNESS"
	CategoryProductivity Category = "PRODUCTIVITY"
	CategoryLearning     Category = "LEARNING"
	CategoryGeneral      Category = "GENERAL"
	// CategoryHealthyEating 仅出现在内容建议的分类体系中，不用于习惯本身。
	CategoryHealthyEating Category = "HEALTHY_EATING"
)

// TriggerType 表示触发类型：定时、运动或地理围栏。
type TriggerType string

const (
	TriggerTime     TriggerType = "TIME"
	TriggerMotion   TriggerType = "MOTION"
	TriggerLocation TriggerType = "LOCATION"
)

// HabitCategories 返回可用于习惯的分类集合（不含 HEALTHY_EATING）。
func HabitCategories() []Category {
	return []Category{
		CategoryFitness,
		CategoryWellness,
		CategoryProductivity,
		CategoryLearning,
		CategoryGeneral,
	}
}

// Habit 定义了习惯模型。
// 触发参数按 TriggerType 区分：TIME 使用 ReminderTimes/ReminderDays（逗号分隔），
// MOTION 使用 MotionLabel/TargetDurationMin，LOCATION 使用 LocationName/经纬度/半径。
// 不变量：恰好一组触发参数被填充，由 service 层校验。
// StreakCount 由打卡记录维护，分析逻辑只读不写。
type Habit struct {
	gorm.Model
	Name              string
	Description       string
	Category          Category    `gorm:"size:32;index"`
	TriggerType       TriggerType `gorm:"size:16"`
	Active            bool        `gorm:"default:true"`
	StreakCount       int
	ReminderTimes     string
	ReminderDays      string
	MotionLabel       string
	TargetDurationMin int
	LocationName      string
	Latitude          float64
	Longitude         float64
	RadiusMeters      float64
}

// Completion 记录习惯的一次完成。
// Habit + CompletedAt 采用唯一索引，防止传感器重复触发写入两条记录。
// AutoCompleted 标记来源（传感器自动 / 手动），Note 为可选备注。
// 记录一经创建不可修改，只支持新增与删除。
type Completion struct {
	gorm.Model
	HabitID       uint      `gorm:"index;index:idx_completion_unique,unique"`
	Habit         Habit     `gorm:"constraint:OnDelete:CASCADE"`
	CompletedAt   time.Time `gorm:"index:idx_completion_unique,unique"`
	AutoCompleted bool
	Note          string
}

// TableName 重写确保唯一索引作用到 habit_id + completed_at
func (Completion) TableName() string {
	return "completions"
}
