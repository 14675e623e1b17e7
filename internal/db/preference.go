package db

import "gorm.io/gorm"

// Preference 存储用户可配置的偏好键值对。
type Preference struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (Preference) TableName() string {
	return "preferences"
}

const (
	// PrefKeyPreferredCategories 表示偏好的习惯分类（逗号分隔）。
	PrefKeyPreferredCategories = "preferred_categories"
)
