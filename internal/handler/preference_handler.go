package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/habitflow/internal/db"
	"github.com/habitflow/internal/service"
)

// GetPreferences 返回用户偏好设置
func (a *API) GetPreferences(c *gin.Context) {
	categories, err := a.preferences.PreferredCategories()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "读取偏好失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferred_categories": categories})
}

// UpdatePreferences 覆盖保存用户偏好设置
func (a *API) UpdatePreferences(c *gin.Context) {
	var payload struct {
		PreferredCategories []string `json:"preferred_categories"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	categories := make([]db.Category, 0, len(payload.PreferredCategories))
	for _, raw := range payload.PreferredCategories {
		categories = append(categories, db.Category(strings.ToUpper(strings.TrimSpace(raw))))
	}

	if err := a.preferences.SetPreferredCategories(categories); err != nil {
		if errors.Is(err, service.ErrHabitInvalidCategory) {
			respondError(c, http.StatusBadRequest, "分类无效")
			return
		}
		respondError(c, http.StatusInternalServerError, "保存偏好失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferred_categories": categories})
}
