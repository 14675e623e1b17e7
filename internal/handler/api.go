package handler

import (
	"time"

	"github.com/habitflow/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db          *gorm.DB
	habits      *service.HabitService
	completions *service.CompletionService
	stats       *service.StatsService
	preferences *service.PreferenceService
	suggestions *service.SuggestionService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, feedURL string, suggestionTTL time.Duration) *API {
	return &API{
		db:          db,
		habits:      service.NewHabitService(db),
		completions: service.NewCompletionService(db),
		stats:       service.NewStatsService(db),
		preferences: service.NewPreferenceService(db),
		suggestions: service.NewSuggestionService(db, feedURL, suggestionTTL),
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Suggestions 暴露建议服务，便于测试时注入 HTTP 客户端。
func (a *API) Suggestions() *service.SuggestionService {
	return a.suggestions
}
