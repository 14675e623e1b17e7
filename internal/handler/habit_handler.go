package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/habitflow/internal/db"
	"github.com/habitflow/internal/service"
)

type habitPayload struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Category          string   `json:"category"`
	TriggerType       string   `json:"trigger_type"`
	Active            *bool    `json:"active"`
	ReminderTimes     []string `json:"reminder_times"`
	ReminderDays      []int    `json:"reminder_days"`
	MotionLabel       string   `json:"motion_label"`
	TargetDurationMin int      `json:"target_duration_min"`
	LocationName      string   `json:"location_name"`
	Latitude          float64  `json:"latitude"`
	Longitude         float64  `json:"longitude"`
	RadiusMeters      float64  `json:"radius_meters"`
}

// ListHabits 返回习惯列表 JSON
func (a *API) ListHabits(c *gin.Context) {
	filter := service.HabitFilter{
		Category: c.Query("category"),
		Trigger:  c.Query("trigger"),
		Search:   c.Query("search"),
	}
	if raw := strings.TrimSpace(c.Query("active")); raw != "" {
		active := raw == "true" || raw == "1"
		filter.Active = &active
	}

	habits, err := a.habits.List(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取习惯列表失败")
		return
	}

	items := make([]gin.H, 0, len(habits))
	for _, habit := range habits {
		items = append(items, habitToPayload(habit))
	}

	c.JSON(http.StatusOK, gin.H{"habits": items})
}

// GetHabit 返回单个习惯详情
func (a *API) GetHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	habit, err := a.habits.Get(id)
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit": habitToPayload(*habit)})
}

// CreateHabit 创建习惯
func (a *API) CreateHabit(c *gin.Context) {
	input, ok := parseHabitInput(c)
	if !ok {
		return
	}

	habit, err := a.habits.Create(input)
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit": habitToPayload(*habit)})
}

// UpdateHabit 更新习惯
func (a *API) UpdateHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	input, ok := parseHabitInput(c)
	if !ok {
		return
	}

	habit, err := a.habits.Update(id, input)
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit": habitToPayload(*habit)})
}

// DeleteHabit 删除习惯及其全部打卡记录
func (a *API) DeleteHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	if err := a.habits.Delete(id); err != nil {
		respondError(c, http.StatusInternalServerError, "删除习惯失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func parseHabitInput(c *gin.Context) (service.HabitInput, bool) {
	var payload habitPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return service.HabitInput{}, false
	}

	if strings.TrimSpace(payload.Name) == "" {
		respondError(c, http.StatusBadRequest, "习惯名称不能为空")
		return service.HabitInput{}, false
	}

	return service.HabitInput{
		Name:              payload.Name,
		Description:       payload.Description,
		Category:          db.Category(strings.ToUpper(strings.TrimSpace(payload.Category))),
		TriggerType:       db.TriggerType(strings.ToUpper(strings.TrimSpace(payload.TriggerType))),
		Active:            payload.Active,
		ReminderTimes:     payload.ReminderTimes,
		ReminderDays:      payload.ReminderDays,
		MotionLabel:       payload.MotionLabel,
		TargetDurationMin: payload.TargetDurationMin,
		LocationName:      payload.LocationName,
		Latitude:          payload.Latitude,
		Longitude:         payload.Longitude,
		RadiusMeters:      payload.RadiusMeters,
	}, true
}

func habitToPayload(habit db.Habit) gin.H {
	item := gin.H{
		"id":           habit.ID,
		"name":         habit.Name,
		"description":  habit.Description,
		"category":     habit.Category,
		"trigger_type": habit.TriggerType,
		"active":       habit.Active,
		"streak_count": habit.StreakCount,
		"created_at":   habit.CreatedAt.Format(dateFormat),
	}

	switch habit.TriggerType {
	case db.TriggerTime:
		item["reminder_times"] = splitCSV(habit.ReminderTimes)
		item["reminder_days"] = splitCSV(habit.ReminderDays)
	case db.TriggerMotion:
		item["motion_label"] = habit.MotionLabel
		item["target_duration_min"] = habit.TargetDurationMin
	case db.TriggerLocation:
		item["location_name"] = habit.LocationName
		item["latitude"] = habit.Latitude
		item["longitude"] = habit.Longitude
		item["radius_meters"] = habit.RadiusMeters
	}

	return item
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func handleHabitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHabitNotFound):
		respondError(c, http.StatusNotFound, "习惯不存在")
	case errors.Is(err, service.ErrHabitInvalidCategory):
		respondError(c, http.StatusBadRequest, "分类无效")
	case errors.Is(err, service.ErrHabitInvalidTrigger):
		respondError(c, http.StatusBadRequest, "触发配置无效")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
