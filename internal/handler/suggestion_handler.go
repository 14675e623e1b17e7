package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitflow/internal/analytics"
	"github.com/habitflow/internal/db"
	"github.com/habitflow/internal/service"
)

// RefreshSuggestions 触发内容源抓取并重建建议缓存
func (a *API) RefreshSuggestions(c *gin.Context) {
	created, err := a.suggestions.Refresh(c.Request.Context(), time.Now())
	if err != nil {
		if errors.Is(err, service.ErrSuggestionFeedNotConfigured) {
			respondError(c, http.StatusServiceUnavailable, "未配置内容源")
			return
		}
		respondError(c, http.StatusBadGateway, "内容源抓取失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"created": created})
}

// ListSuggestions 按适配分返回建议列表，上下文由查询参数组装
func (a *API) ListSuggestions(c *gin.Context) {
	userCtx, ok := a.buildUserContext(c)
	if !ok {
		return
	}

	ranked, err := a.suggestions.Ranked(userCtx, time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取建议失败")
		return
	}

	items := make([]gin.H, 0, len(ranked))
	for _, entry := range ranked {
		items = append(items, scoredSuggestionToPayload(entry))
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": items})
}

// GetSuggestion 返回单条建议，正文渲染为安全 HTML
func (a *API) GetSuggestion(c *gin.Context) {
	record, err := a.suggestions.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrSuggestionNotFound) {
			respondError(c, http.StatusNotFound, "建议不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取建议失败")
		return
	}

	rendered, err := service.RenderContent(record.Content)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "正文渲染失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"suggestion":   suggestionToPayload(*record),
		"content_html": rendered,
	})
}

// buildUserContext 从查询参数组装评分上下文；偏好分类取自持久化设置。
// hour 缺省取当前小时，location/motion/weather 缺省则跳过对应评分分支。
func (a *API) buildUserContext(c *gin.Context) (analytics.UserContext, bool) {
	userCtx := analytics.UserContext{Hour: time.Now().Hour()}

	preferred, err := a.preferences.PreferredCategories()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "读取偏好失败")
		return analytics.UserContext{}, false
	}
	userCtx.PreferredCategories = preferred

	if raw := c.Query("hour"); raw != "" {
		hour, err := strconv.Atoi(raw)
		if err != nil || hour < 0 || hour > 23 {
			respondError(c, http.StatusBadRequest, "hour 参数不合法")
			return analytics.UserContext{}, false
		}
		userCtx.Hour = hour
	}

	if raw := strings.TrimSpace(c.Query("motion")); raw != "" {
		userCtx.Motion = analytics.MotionState(strings.ToUpper(raw))
	}

	if raw := strings.TrimSpace(c.Query("weather")); raw != "" {
		weather := analytics.Weather{Condition: analytics.WeatherCondition(strings.ToUpper(raw))}
		if rawTemp := c.Query("temperature"); rawTemp != "" {
			temp, err := strconv.ParseFloat(rawTemp, 64)
			if err != nil {
				respondError(c, http.StatusBadRequest, "temperature 参数不合法")
				return analytics.UserContext{}, false
			}
			weather.Temperature = temp
		}
		userCtx.Weather = &weather
	}

	rawLat, rawLng := c.Query("lat"), c.Query("lng")
	if rawLat != "" && rawLng != "" {
		lat, latErr := strconv.ParseFloat(rawLat, 64)
		lng, lngErr := strconv.ParseFloat(rawLng, 64)
		if latErr != nil || lngErr != nil {
			respondError(c, http.StatusBadRequest, "经纬度参数不合法")
			return analytics.UserContext{}, false
		}
		userCtx.Location = &analytics.Location{Latitude: lat, Longitude: lng}
	}

	return userCtx, true
}

func scoredSuggestionToPayload(entry service.ScoredSuggestion) gin.H {
	item := suggestionToPayload(entry.Suggestion)
	item["score"] = entry.Score
	item["trigger_type"] = entry.TriggerType
	item["defaults"] = triggerDefaultsToPayload(entry.TriggerType, entry.Defaults)
	return item
}

func suggestionToPayload(record db.ContentSuggestion) gin.H {
	item := gin.H{
		"id":        record.ID,
		"title":     record.Title,
		"content":   record.Content,
		"source":    record.Source,
		"category":  record.Category,
		"fit_score": record.FitScore,
		"cached_at": record.CachedAt.Format(time.RFC3339),
	}
	if record.SourceURL != "" {
		item["source_url"] = record.SourceURL
	}
	if record.ExpiresAt != nil {
		item["expires_at"] = record.ExpiresAt.Format(time.RFC3339)
	}
	return item
}

func triggerDefaultsToPayload(trigger db.TriggerType, defaults analytics.TriggerDefaults) gin.H {
	switch trigger {
	case db.TriggerMotion:
		return gin.H{
			"motion_label":        defaults.MotionLabel,
			"target_duration_min": defaults.TargetDurationMin,
		}
	case db.TriggerLocation:
		return gin.H{"radius_meters": defaults.RadiusMeters}
	default:
		return gin.H{
			"reminder_times": defaults.ReminderTimes,
			"reminder_days":  defaults.ReminderDays,
		}
	}
}
