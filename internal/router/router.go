package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/habitflow/internal/config"
	"github.com/habitflow/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig, api *handler.API) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("habitflow_session", store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	r.POST("/api/login", handler.Login)
	r.POST("/api/logout", handler.Logout)

	// 需要认证的 API 路由
	auth := r.Group("/api")
	auth.Use(handler.AuthRequired())
	{
		auth.GET("/habits", api.ListHabits)
		auth.GET("/habits/:id", api.GetHabit)
		auth.POST("/habits", api.CreateHabit)
		auth.PUT("/habits/:id", api.UpdateHabit)
		auth.DELETE("/habits/:id", api.DeleteHabit)

		auth.POST("/habits/:id/completions", api.RecordCompletion)
		auth.GET("/habits/:id/completions", api.ListCompletions)
		auth.DELETE("/completions/:id", api.DeleteCompletion)

		auth.GET("/habits/:id/stats", api.HabitStats)
		auth.GET("/stats/profile", api.ProfileStats)

		auth.GET("/suggestions", api.ListSuggestions)
		auth.GET("/suggestions/:id", api.GetSuggestion)
		auth.POST("/suggestions/refresh", api.RefreshSuggestions)

		auth.GET("/preferences", api.GetPreferences)
		auth.PUT("/preferences", api.UpdatePreferences)
	}

	return r
}
