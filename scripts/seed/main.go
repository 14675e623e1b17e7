package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/habitflow/internal/config"
	"github.com/habitflow/internal/db"
	"github.com/habitflow/internal/service"
)

// 演示数据生成器：创建默认账号、一组习惯和最近 30 天的打卡记录。
func main() {
	cfg := config.Load()
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成演示数据...")

	if err := db.EnsureUser("admin", "admin123"); err != nil {
		log.Fatal("创建用户失败:", err)
	}

	habits := createDemoHabits()
	total := createDemoCompletions(habits)

	fmt.Println("演示数据生成完成！")
	fmt.Println("用户: admin (密码: admin123)")
	fmt.Printf("习惯: %d 个，打卡记录: %d 条\n", len(habits), total)
}

func createDemoHabits() []db.Habit {
	var count int64
	db.DB.Model(&db.Habit{}).Count(&count)
	if count > 0 {
		fmt.Println("习惯已存在，跳过创建")
		var existing []db.Habit
		db.DB.Find(&existing)
		return existing
	}

	habitSvc := service.NewHabitService(db.DB)
	inputs := []service.HabitInput{
		{
			Name:          "晨间冥想",
			Description:   "起床后十分钟正念呼吸",
			Category:      db.CategoryWellness,
			TriggerType:   db.TriggerTime,
			ReminderTimes: []string{"07:00"},
			ReminderDays:  []int{1, 2, 3, 4, 5},
		},
		{
			Name:              "午后快走",
			Description:       "午饭后散步二十分钟",
			Category:          db.CategoryFitness,
			TriggerType:       db.TriggerMotion,
			MotionLabel:       "Walk",
			TargetDurationMin: 20,
		},
		{
			Name:         "健身房训练",
			Description:  "到达健身房后自动提醒",
			Category:     db.CategoryFitness,
			TriggerType:  db.TriggerLocation,
			LocationName: "社区健身房",
			Latitude:     39.9042,
			Longitude:    116.4074,
			RadiusMeters: 100,
		},
		{
			Name:          "每日阅读",
			Description:   "睡前读书三十分钟",
			Category:      db.CategoryLearning,
			TriggerType:   db.TriggerTime,
			ReminderTimes: []string{"21:30"},
		},
	}

	created := make([]db.Habit, 0, len(inputs))
	for _, input := range inputs {
		habit, err := habitSvc.Create(input)
		if err != nil {
			log.Fatal("创建习惯失败:", err)
		}
		created = append(created, *habit)
	}

	return created
}

// createDemoCompletions 为每个习惯生成最近 30 天约七成完成率的打卡记录。
func createDemoCompletions(habits []db.Habit) int {
	completionSvc := service.NewCompletionService(db.DB)
	rng := rand.New(rand.NewSource(42))
	now := time.Now()
	total := 0

	for _, habit := range habits {
		for offset := 29; offset >= 0; offset-- {
			if rng.Float64() > 0.7 {
				continue
			}
			completedAt := time.Date(now.Year(), now.Month(), now.Day(), 8, 0, 0, 0, now.Location()).
				AddDate(0, 0, -offset)
			if _, err := completionSvc.Record(service.CompletionInput{
				HabitID:       habit.ID,
				CompletedAt:   completedAt,
				AutoCompleted: habit.TriggerType != db.TriggerTime,
			}); err != nil {
				log.Fatal("创建打卡记录失败:", err)
			}
			total++
		}
	}

	return total
}
