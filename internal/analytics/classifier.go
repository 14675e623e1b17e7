package analytics

import (
	"strings"

	"github.com/habitflow/internal/db"
)

// 关键词按优先级排列：FITNESS > WELLNESS > PRODUCTIVITY > LEARNING。
// "yoga" 同时出现在健身与身心语境时按此优先级归入 FITNESS。
var categoryKeywords = []struct {
	category db.Category
	keywords []string
}{
	{db.CategoryFitness, []string{
		"workout", "exercise", "fitness", "gym", "run", "running", "yoga",
		"cardio", "strength", "training", "sport", "stretch",
	}},
	{db.CategoryWellness, []string{
		"meditation", "mindfulness", "wellness", "sleep", "stress", "mental",
		"breathing", "relax", "gratitude", "journal", "self-care",
	}},
	{db.CategoryProductivity, []string{
		"productivity", "focus", "time management", "organize", "planning",
		"efficiency", "goal", "work", "deadline",
	}},
	{db.CategoryLearning, []string{
		"learn", "learning", "study", "read", "reading", "book", "course",
		"language", "skill", "knowledge",
	}},
}

// ClassifyContent 将标题+正文映射到一个习惯分类。
// 匹配是大小写不敏感的子串查找，命中多个分类时按列表顺序取第一个，
// 全部未命中返回 GENERAL，永不出错。
func ClassifyContent(title, content string) db.Category {
	text := strings.ToLower(title + " " + content)

	for _, set := range categoryKeywords {
		for _, keyword := range set.keywords {
			if strings.Contains(text, keyword) {
				return set.category
			}
		}
	}

	return db.CategoryGeneral
}
