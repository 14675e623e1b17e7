package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/habitflow/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreferenceService 提供用户偏好的读取与更新能力。
type PreferenceService struct {
	db *gorm.DB
}

// NewPreferenceService 构造 PreferenceService。
func NewPreferenceService(gdb *gorm.DB) *PreferenceService {
	return &PreferenceService{db: gdb}
}

// PreferredCategories 返回偏好的习惯分类，未设置时为空集合。
func (s *PreferenceService) PreferredCategories() ([]db.Category, error) {
	var record db.Preference
	err := s.db.Where("key = ?", db.PrefKeyPreferredCategories).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []db.Category{}, nil
		}
		return nil, fmt.Errorf("load preferred categories: %w", err)
	}

	categories := make([]db.Category, 0, 4)
	for _, raw := range strings.Split(record.Value, ",") {
		trimmed := strings.ToUpper(strings.TrimSpace(raw))
		if trimmed == "" {
			continue
		}
		categories = append(categories, db.Category(trimmed))
	}

	return categories, nil
}

// SetPreferredCategories 覆盖保存偏好分类，仅接受习惯分类集合内的值。
func (s *PreferenceService) SetPreferredCategories(categories []db.Category) error {
	valid := make([]string, 0, len(categories))
	for _, category := range categories {
		known := false
		for _, candidate := range db.HabitCategories() {
			if category == candidate {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%w: %s", ErrHabitInvalidCategory, category)
		}
		valid = append(valid, string(category))
	}

	record := db.Preference{
		Key:   db.PrefKeyPreferredCategories,
		Value: strings.Join(valid, ","),
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return fmt.Errorf("save preferred categories: %w", err)
	}

	return nil
}
