package db

import "time"

// ContentSuggestion 缓存从第三方内容源抓取的建议条目。
// ID 使用 UUID 字符串，FitScore 为最近一次评分结果（0-100），
// ExpiresAt 为空表示不过期。
type ContentSuggestion struct {
	ID        string `gorm:"primaryKey;size:36"`
	Title     string
	Content   string `gorm:"type:text"`
	Source    string
	SourceURL string
	Category  Category `gorm:"size:32;index"`
	FitScore  int
	CachedAt  time.Time
	ExpiresAt *time.Time
}

// TableName 自定义表名以保持命名一致。
func (ContentSuggestion) TableName() string {
	return "content_suggestions"
}
