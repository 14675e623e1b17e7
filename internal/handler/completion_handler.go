package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitflow/internal/db"
	"github.com/habitflow/internal/service"
)

// RecordCompletion 为指定习惯写入一条打卡记录
func (a *API) RecordCompletion(c *gin.Context) {
	habitID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	var payload struct {
		CompletedAt   string `json:"completed_at"`
		AutoCompleted bool   `json:"auto_completed"`
		Note          string `json:"note"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	completedAt := time.Now()
	if payload.CompletedAt != "" {
		parsed, ok := parseOptionalTime(payload.CompletedAt)
		if !ok {
			respondError(c, http.StatusBadRequest, "完成时间格式不正确")
			return
		}
		completedAt = parsed
	}

	record, err := a.completions.Record(service.CompletionInput{
		HabitID:       habitID,
		CompletedAt:   completedAt,
		AutoCompleted: payload.AutoCompleted,
		Note:          payload.Note,
	})
	if err != nil {
		if errors.Is(err, service.ErrHabitNotFound) {
			respondError(c, http.StatusNotFound, "习惯不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "打卡失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"completion": completionToPayload(*record)})
}

// ListCompletions 返回指定习惯的打卡记录，支持 start/end 时间过滤
func (a *API) ListCompletions(c *gin.Context) {
	habitID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	start, ok := parseOptionalTime(c.Query("start"))
	if !ok {
		respondError(c, http.StatusBadRequest, "开始时间格式不正确")
		return
	}
	end, ok := parseOptionalTime(c.Query("end"))
	if !ok {
		respondError(c, http.StatusBadRequest, "结束时间格式不正确")
		return
	}

	completions, err := a.completions.ListForHabit(service.CompletionFilter{
		HabitID: habitID,
		Start:   start,
		End:     end,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取打卡记录失败")
		return
	}

	items := make([]gin.H, 0, len(completions))
	for _, record := range completions {
		items = append(items, completionToPayload(record))
	}

	c.JSON(http.StatusOK, gin.H{"completions": items})
}

// DeleteCompletion 删除一条打卡记录
func (a *API) DeleteCompletion(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的记录ID")
		return
	}

	if err := a.completions.Delete(id); err != nil {
		if errors.Is(err, service.ErrCompletionNotFound) {
			respondError(c, http.StatusNotFound, "打卡记录不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除打卡记录失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func completionToPayload(record db.Completion) gin.H {
	return gin.H{
		"id":             record.ID,
		"habit_id":       record.HabitID,
		"completed_at":   record.CompletedAt.Format(time.RFC3339),
		"auto_completed": record.AutoCompleted,
		"note":           record.Note,
	}
}
