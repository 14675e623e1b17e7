package analytics

import (
	"strings"

	"github.com/habitflow/internal/db"
)

var (
	motionKeywords = []string{
		"walk", "walking", "run", "running", "jog", "steps", "cycling",
		"move", "movement", "workout", "exercise",
	}
	locationKeywords = []string{
		"gym", "park", "office", "library", "outdoor", "location", "place", "nearby",
	}
	timeKeywords = []string{
		"morning", "evening", "night", "daily", "schedule", "reminder", "routine", "bedtime",
	}
)

// TriggerDefaults 是为推断出的触发类型建议的默认参数。
type TriggerDefaults struct {
	MotionLabel       string
	TargetDurationMin int
	RadiusMeters      float64
	ReminderTimes     []string
	ReminderDays      []int
}

// InferTriggerType 根据建议文本推断触发类型。
// 依次检查运动、地点、时间关键词；全部未命中时退回分类默认表
// （FITNESS→MOTION，其余→TIME）。
func InferTriggerType(suggestion db.ContentSuggestion) db.TriggerType {
	text := strings.ToLower(suggestion.Title + " " + suggestion.Content)

	for _, keyword := range motionKeywords {
		if strings.Contains(text, keyword) {
			return db.TriggerMotion
		}
	}
	for _, keyword := range locationKeywords {
		if strings.Contains(text, keyword) {
			return db.TriggerLocation
		}
	}
	for _, keyword := range timeKeywords {
		if strings.Contains(text, keyword) {
			return db.TriggerTime
		}
	}

	if suggestion.Category == db.CategoryFitness {
		return db.TriggerMotion
	}
	return db.TriggerTime
}

// SuggestDefaults 为触发类型给出默认参数。
// MOTION 的标签按 run/walk 关键词推断，默认 "Walk"，时长 30 分钟；
// LOCATION 默认半径 100 米；TIME 返回空的提醒配置由用户自行填写。
func SuggestDefaults(triggerType db.TriggerType, suggestion db.ContentSuggestion) TriggerDefaults {
	switch triggerType {
	case db.TriggerMotion:
		label := "Walk"
		text := strings.ToLower(suggestion.Title + " " + suggestion.Content)
		if strings.Contains(text, "run") {
			label = "Run"
		}
		return TriggerDefaults{MotionLabel: label, TargetDurationMin: 30}
	case db.TriggerLocation:
		return TriggerDefaults{RadiusMeters: 100}
	case db.TriggerTime:
		return TriggerDefaults{ReminderTimes: []string{}, ReminderDays: []int{}}
	default:
		return TriggerDefaults{}
	}
}
