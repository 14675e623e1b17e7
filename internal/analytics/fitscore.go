package analytics

import (
	"strings"

	"github.com/habitflow/internal/db"
)

const (
	fitScoreBase = 50

	techPenalty            = -15
	preferredCategoryBonus = 20
	timeOfDayBonus         = 15
	weatherBonus           = 10
	weatherFitnessPenalty  = -5
	weatherIndoorBonus     = 5
	locationBonus          = 5
	motionMatchBonus       = 10
	actionableBonus        = 5
	nutritionBonus         = 4
)

var (
	techKeywords = []string{
		"technology", "software", "gadget", "smartphone", "computer",
		"crypto", "startup", "programming", "silicon valley",
	}
	healthContextKeywords = []string{
		"health", "fitness", "wellness", "nutrition", "meditation",
		"workout", "exercise", "diet",
	}
	actionableKeywords = []string{
		"daily", "routine", "practice", "habit", "exercise", "tips",
		"improve", "start", "build",
	}
	nutritionKeywords = []string{
		"nutrition", "protein", "vitamin", "diet", "recipe", "meal", "healthy eating",
	}
)

// FitScore 计算内容建议在当前用户上下文下的适配分（0-100）。
// 纯加法模型，基准分 50，各分支独立加减后整体裁剪；相同输入必然得到相同输出。
func FitScore(suggestion db.ContentSuggestion, ctx UserContext) int {
	text := strings.ToLower(suggestion.Title + " " + suggestion.Content)
	score := fitScoreBase

	// 技术类内容降权，但健康语境下提到技术不受罚
	if containsAny(text, techKeywords) && !containsAny(text, healthContextKeywords) {
		score += techPenalty
	}

	if ctx.PrefersCategory(suggestion.Category) {
		score += preferredCategoryBonus
	}

	score += categoryAdjustment(suggestion.Category)

	if isTimeAppropriate(suggestion.Category, ctx.Hour) {
		score += timeOfDayBonus
	}

	if ctx.Weather != nil {
		score += weatherAdjustment(suggestion.Category, ctx.Weather.Condition)
	}

	// 地点适配目前是占位实现：有位置信息即视为适配
	if ctx.Location != nil {
		score += locationBonus
	}

	if ctx.Motion != "" && motionMatches(suggestion.Category, ctx.Motion) {
		score += motionMatchBonus
	}

	if containsAny(strings.ToLower(suggestion.Title), actionableKeywords) {
		score += actionableBonus
	}

	if containsAny(text, nutritionKeywords) {
		score += nutritionBonus
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// categoryAdjustment 返回分类的固定加减分。
func categoryAdjustment(category db.Category) int {
	switch category {
	case db.CategoryFitness:
		return 12
	case db.CategoryWellness:
		return 11
	case db.CategoryHealthyEating:
		return 11
	case db.CategoryProductivity:
		return 6
	case db.CategoryLearning:
		return 3
	case db.CategoryGeneral:
		return -10
	default:
		return 0
	}
}

// isTimeAppropriate 判断分类在给定小时是否处于合适时段。
func isTimeAppropriate(category db.Category, hour int) bool {
	switch category {
	case db.CategoryFitness:
		return (hour >= 6 && hour <= 10) || (hour >= 17 && hour <= 20)
	case db.CategoryWellness:
		return (hour >= 6 && hour <= 9) || (hour >= 18 && hour <= 22)
	case db.CategoryHealthyEating:
		return (hour >= 7 && hour <= 9) || (hour >= 12 && hour <= 14) || (hour >= 18 && hour <= 20)
	case db.CategoryProductivity:
		return hour >= 9 && hour <= 17
	case db.CategoryLearning:
		return hour >= 9 && hour <= 18
	default:
		return true
	}
}

// weatherAdjustment 计算天气分支的加减分。
// FITNESS 在晴/多云得加分，恶劣天气受罚；非 FITNESS 分类默认视为适配，
// 所以只有"户外不宜"的加分分支理论上不可达，保留以与既有口径一致。
func weatherAdjustment(category db.Category, condition WeatherCondition) int {
	if isWeatherAppropriate(category, condition) {
		return weatherBonus
	}
	if category == db.CategoryFitness {
		return weatherFitnessPenalty
	}
	if isBadOutdoorWeather(condition) {
		return weatherIndoorBonus
	}
	return 0
}

func isWeatherAppropriate(category db.Category, condition WeatherCondition) bool {
	switch category {
	case db.CategoryFitness:
		return condition == WeatherSunny || condition == WeatherCloudy
	default:
		return true
	}
}

func isBadOutdoorWeather(condition WeatherCondition) bool {
	return condition == WeatherRainy || condition == WeatherSnowy || condition == WeatherWindy
}

// motionMatches 判断运动状态与分类是否匹配。
func motionMatches(category db.Category, motion MotionState) bool {
	switch category {
	case db.CategoryFitness:
		return motion == MotionWalking || motion == MotionRunning
	case db.CategoryWellness, db.CategoryHealthyEating, db.CategoryProductivity, db.CategoryLearning:
		return motion == MotionStationary
	default:
		return true
	}
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
