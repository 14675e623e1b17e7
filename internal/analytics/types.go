// Package analytics 实现习惯数据的统计与内容评分核心。
// 所有函数均为 (habits, completions, now) 的纯函数：不读时钟、不做 I/O、
// 不修改任何输入，便于在任意线程上调用与测试。
package analytics

import (
	"time"

	"github.com/habitflow/internal/db"
)

// MotionState 表示最近一次识别到的运动状态。
type MotionState string

const (
	MotionWalking    MotionState = "WALKING"
	MotionRunning    MotionState = "RUNNING"
	MotionStationary MotionState = "STATIONARY"
	MotionInVehicle  MotionState = "IN_VEHICLE"
	MotionUnknown    MotionState = "UNKNOWN"
)

// WeatherCondition 表示当前天气状况。
type WeatherCondition string

const (
	WeatherSunny  WeatherCondition = "SUNNY"
	WeatherCloudy WeatherCondition = "CLOUDY"
	WeatherRainy  WeatherCondition = "RAINY"
	WeatherSnowy  WeatherCondition = "SNOWY"
	WeatherWindy  WeatherCondition = "WINDY"
)

// Location 表示一个经纬度坐标。
type Location struct {
	Latitude  float64
	Longitude float64
}

// Weather 表示一次天气快照。
type Weather struct {
	Condition   WeatherCondition
	Temperature float64
}

// UserContext 是评分时刻的用户上下文快照，由调用方在外部组装。
// Location/Motion/Weather 均为可选，缺失时对应的加减分分支整体跳过。
type UserContext struct {
	PreferredCategories []db.Category
	Hour                int
	Location            *Location
	Motion              MotionState
	Weather             *Weather
}

// PrefersCategory 判断分类是否在偏好集合内。
func (c UserContext) PrefersCategory(category db.Category) bool {
	for _, preferred := range c.PreferredCategories {
		if preferred == category {
			return true
		}
	}
	return false
}

const millisPerDay = 24 * 60 * 60 * 1000

// dayStart 将时间归一化到当天零点（本地时区边界）。
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween 计算两个时间点之间的天数：毫秒差整除一天后 +1（含首尾）。
// 结束早于开始时返回 0。
func daysBetween(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Milliseconds()/millisPerDay) + 1
}

// weekdayMonday 把 time.Weekday（周日=0）转换为周一=1..周日=7 的内部编号。
// 全仓库只在这里做一次换算，避免两套星期编号混用。
func weekdayMonday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// clampRate 把百分比裁剪到 [0,100]。
func clampRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > 100 {
		return 100
	}
	return rate
}
