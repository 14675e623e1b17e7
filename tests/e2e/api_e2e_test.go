package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitflow/internal/config"
	"github.com/habitflow/internal/db"
	"github.com/habitflow/internal/handler"
	"github.com/habitflow/internal/router"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type e2eSuite struct {
	handler  http.Handler
	anon     httpClient
	session  httpClient
	baseURL  string
	password string
	user     db.User
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(handler http.Handler, withJar bool) *localClient {
	var jar http.CookieJar
	if withJar {
		if j, err := cookiejar.New(nil); err == nil {
			jar = j
		}
	}
	return &localClient{handler: handler, jar: jar}
}

func (c *localClient) Do(req *http.Request) (*http.Response, error) {
	if c.jar != nil {
		for _, cookie := range c.jar.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	if c.jar != nil {
		c.jar.SetCookies(req.URL, resp.Cookies())
	}
	return resp, nil
}

type feedStub struct {
	body string
}

func (f *feedStub) Do(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(f.body)),
		Header:     make(http.Header),
	}, nil
}

func TestE2E_AllInterfaces(t *testing.T) {
	suite := newE2ESuite(t)

	t.Run("auth", suite.testAuth)
	suite.login(t)
	t.Run("habit apis", suite.testHabitAPIs)
	t.Run("completion and stats apis", suite.testCompletionAndStatsAPIs)
	t.Run("preference and suggestion apis", suite.testPreferenceAndSuggestionAPIs)
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := gdb.AutoMigrate(
		&db.User{},
		&db.Habit{},
		&db.Completion{},
		&db.ContentSuggestion{},
		&db.Preference{},
	); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	db.DB = gdb
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
		db.DB = nil
	})

	hashed, err := bcrypt.GenerateFromPassword([]byte("e2e-secret"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := db.User{Username: "admin", Password: string(hashed)}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	feed := `[
		{"title": "Daily running workout tips", "content": "cardio and **protein** nutrition", "category": "fitness", "source": "dailyfit"},
		{"title": "Celebrity gossip roundup", "content": "nothing useful here", "source": "tabloid"}
	]`

	api := handler.NewAPI(db.DB, "http://feed.example/items", time.Hour)
	api.Suggestions().SetHTTPClient(&feedStub{body: feed})

	cfg := config.AppConfig{
		SessionSecret: "test-session-secret",
		GinMode:       gin.TestMode,
	}
	engine := router.SetupRouter(cfg, api)

	return &e2eSuite{
		handler:  engine,
		anon:     newLocalClient(engine, false),
		session:  newLocalClient(engine, true),
		baseURL:  "https://example.test",
		password: "e2e-secret",
		user:     user,
	}
}

func (s *e2eSuite) login(t *testing.T) {
	t.Helper()
	resp := s.mustRequestJSON(t, s.session, http.MethodPost, "/api/login", map[string]interface{}{
		"username": s.user.Username,
		"password": s.password,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed, status %d, body=%s", resp.StatusCode, readBody(t, resp))
	}
}

func (s *e2eSuite) testAuth(t *testing.T) {
	t.Helper()

	resp := s.mustRequest(t, s.anon, http.MethodGet, "/ping", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ping expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "pong") {
		t.Fatalf("ping: unexpected body %q", body)
	}

	// 未登录时受保护接口一律 401
	resp = s.mustRequest(t, s.anon, http.MethodGet, "/api/habits", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list habits expected 401, got %d", resp.StatusCode)
	}

	resp = s.mustRequestJSON(t, s.anon, http.MethodPost, "/api/login", map[string]interface{}{
		"username": s.user.Username,
		"password": "wrong-password",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password expected 401, got %d", resp.StatusCode)
	}
}

func (s *e2eSuite) testHabitAPIs(t *testing.T) {
	t.Helper()

	createPayload := map[string]interface{}{
		"name":           "晨间冥想",
		"description":    "起床后十分钟正念",
		"category":       "WELLNESS",
		"trigger_type":   "TIME",
		"reminder_times": []string{"07:00"},
		"reminder_days":  []int{1, 2, 3, 4, 5},
	}
	resp := s.mustRequestJSON(t, s.session, http.MethodPost, "/api/habits", createPayload)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create habit expected 200, got %d, body=%s", resp.StatusCode, readBody(t, resp))
	}
	var created struct {
		Habit struct {
			ID          uint   `json:"id"`
			TriggerType string `json:"trigger_type"`
		} `json:"habit"`
	}
	decodeJSON(t, resp, &created)
	if created.Habit.ID == 0 {
		t.Fatal("create habit returned empty id")
	}
	if created.Habit.TriggerType != "TIME" {
		t.Fatalf("expected TIME trigger, got %s", created.Habit.TriggerType)
	}

	resp = s.mustRequest(t, s.session, http.MethodGet, "/api/habits/"+idStr(created.Habit.ID), nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get habit expected 200, got %d", resp.StatusCode)
	}

	resp = s.mustRequest(t, s.session, http.MethodGet, "/api/habits?category=WELLNESS", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list habits expected 200, got %d", resp.StatusCode)
	}
	var listed struct {
		Habits []map[string]interface{} `json:"habits"`
	}
	decodeJSON(t, resp, &listed)
	if len(listed.Habits) != 1 {
		t.Fatalf("expected 1 habit in WELLNESS, got %d", len(listed.Habits))
	}

	// 切换为运动触发，旧的提醒配置应被清空
	updatePayload := map[string]interface{}{
		"name":                "晨间快走",
		"category":            "FITNESS",
		"trigger_type":        "MOTION",
		"motion_label":        "Walk",
		"target_duration_min": 20,
	}
	resp = s.mustRequestJSON(t, s.session, http.MethodPut, "/api/habits/"+idStr(created.Habit.ID), updatePayload)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update habit expected 200, got %d, body=%s", resp.StatusCode, readBody(t, resp))
	}
	var updated struct {
		Habit struct {
			TriggerType       string `json:"trigger_type"`
			TargetDurationMin int    `json:"target_duration_min"`
		} `json:"habit"`
	}
	decodeJSON(t, resp, &updated)
	if updated.Habit.TriggerType != "MOTION" || updated.Habit.TargetDurationMin != 20 {
		t.Fatalf("unexpected updated habit: %+v", updated.Habit)
	}

	resp = s.mustRequestJSON(t, s.session, http.MethodPost, "/api/habits", map[string]interface{}{
		"name":         "非法分类",
		"category":     "GAMING",
		"trigger_type": "TIME",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid category expected 400, got %d", resp.StatusCode)
	}

	resp = s.mustRequest(t, s.session, http.MethodGet, "/api/habits/999999", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing habit expected 404, got %d", resp.StatusCode)
	}
}

func (s *e2eSuite) testCompletionAndStatsAPIs(t *testing.T) {
	t.Helper()

	habitID := s.createHabit(t, "每日阅读", "LEARNING")
	now := time.Now()

	// 连续三天打卡
	var lastCompletionID uint
	for offset := 2; offset >= 0; offset-- {
		resp := s.mustRequestJSON(t, s.session, http.MethodPost, "/api/habits/"+idStr(habitID)+"/completions", map[string]interface{}{
			"completed_at": now.AddDate(0, 0, -offset).Format(time.RFC3339),
		})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("record completion expected 200, got %d, body=%s", resp.StatusCode, readBody(t, resp))
		}
		var recorded struct {
			Completion struct {
				ID uint `json:"id"`
			} `json:"completion"`
		}
		decodeJSON(t, resp, &recorded)
		lastCompletionID = recorded.Completion.ID
	}

	resp := s.mustRequest(t, s.session, http.MethodGet, "/api/habits/"+idStr(habitID)+"/completions", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list completions expected 200, got %d", resp.StatusCode)
	}
	var completions struct {
		Completions []map[string]interface{} `json:"completions"`
	}
	decodeJSON(t, resp, &completions)
	if len(completions.Completions) != 3 {
		t.Fatalf("expected 3 completions, got %d", len(completions.Completions))
	}

	resp = s.mustRequest(t, s.session, http.MethodGet, "/api/habits/"+idStr(habitID)+"/stats", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("habit stats expected 200, got %d", resp.StatusCode)
	}
	var stats struct {
		Streak struct {
			Current int `json:"current"`
			Best    int `json:"best"`
		} `json:"streak"`
		Calendar []map[string]interface{} `json:"calendar"`
	}
	decodeJSON(t, resp, &stats)
	if stats.Streak.Current != 3 || stats.Streak.Best != 3 {
		t.Fatalf("expected streak 3/3, got %+v", stats.Streak)
	}
	if len(stats.Calendar) < 30 {
		t.Fatalf("expected at least 30 calendar cells, got %d", len(stats.Calendar))
	}

	resp = s.mustRequest(t, s.session, http.MethodGet, "/api/stats/profile", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile stats expected 200, got %d", resp.StatusCode)
	}
	var profile struct {
		TotalCompletions int `json:"total_completions"`
		MaxStreak        int `json:"max_streak"`
		Consistency      struct {
			Score int    `json:"score"`
			Grade string `json:"grade"`
		} `json:"consistency"`
	}
	decodeJSON(t, resp, &profile)
	if profile.TotalCompletions < 3 {
		t.Fatalf("expected at least 3 completions in profile, got %d", profile.TotalCompletions)
	}
	if profile.MaxStreak < 3 {
		t.Fatalf("expected max streak >= 3, got %d", profile.MaxStreak)
	}
	// 账户里所有习惯都是刚创建的，评分走新手保底
	if profile.Consistency.Score != 75 || profile.Consistency.Grade != "B+" {
		t.Fatalf("expected new-account score 75/B+, got %+v", profile.Consistency)
	}

	resp = s.mustRequest(t, s.session, http.MethodDelete, "/api/completions/"+idStr(lastCompletionID), nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete completion expected 200, got %d", resp.StatusCode)
	}

	resp = s.mustRequest(t, s.session, http.MethodDelete, "/api/completions/"+idStr(lastCompletionID), nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("repeat delete expected 404, got %d", resp.StatusCode)
	}
}

func (s *e2eSuite) testPreferenceAndSuggestionAPIs(t *testing.T) {
	t.Helper()

	resp := s.mustRequestJSON(t, s.session, http.MethodPut, "/api/preferences", map[string]interface{}{
		"preferred_categories": []string{"FITNESS"},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update preferences expected 200, got %d", resp.StatusCode)
	}

	resp = s.mustRequest(t, s.session, http.MethodGet, "/api/preferences", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get preferences expected 200, got %d", resp.StatusCode)
	}
	var prefs struct {
		PreferredCategories []string `json:"preferred_categories"`
	}
	decodeJSON(t, resp, &prefs)
	if len(prefs.PreferredCategories) != 1 || prefs.PreferredCategories[0] != "FITNESS" {
		t.Fatalf("unexpected preferences: %+v", prefs.PreferredCategories)
	}

	resp = s.mustRequest(t, s.session, http.MethodPost, "/api/suggestions/refresh", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh suggestions expected 200, got %d, body=%s", resp.StatusCode, readBody(t, resp))
	}
	var refreshed struct {
		Created int `json:"created"`
	}
	decodeJSON(t, resp, &refreshed)
	if refreshed.Created != 2 {
		t.Fatalf("expected 2 cached suggestions, got %d", refreshed.Created)
	}

	resp = s.mustRequest(t, s.session, http.MethodGet, "/api/suggestions?hour=7&motion=RUNNING", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list suggestions expected 200, got %d", resp.StatusCode)
	}
	var suggestions struct {
		Suggestions []struct {
			ID       string `json:"id"`
			Title    string `json:"title"`
			Score    int    `json:"score"`
			Category string `json:"category"`
		} `json:"suggestions"`
	}
	decodeJSON(t, resp, &suggestions)
	if len(suggestions.Suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(suggestions.Suggestions))
	}
	if suggestions.Suggestions[0].Category != "FITNESS" {
		t.Fatalf("expected preferred fitness suggestion ranked first, got %+v", suggestions.Suggestions[0])
	}
	if suggestions.Suggestions[0].Score <= suggestions.Suggestions[1].Score {
		t.Fatalf("expected descending scores, got %d then %d",
			suggestions.Suggestions[0].Score, suggestions.Suggestions[1].Score)
	}

	resp = s.mustRequest(t, s.session, http.MethodGet, "/api/suggestions/"+suggestions.Suggestions[0].ID, nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get suggestion expected 200, got %d", resp.StatusCode)
	}
	var detail struct {
		ContentHTML string `json:"content_html"`
	}
	decodeJSON(t, resp, &detail)
	if !strings.Contains(detail.ContentHTML, "<strong>protein</strong>") {
		t.Fatalf("expected markdown rendered to html, got %q", detail.ContentHTML)
	}

	resp = s.mustRequest(t, s.session, http.MethodGet, "/api/suggestions/missing-id", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing suggestion expected 404, got %d", resp.StatusCode)
	}
}

func (s *e2eSuite) createHabit(t *testing.T, name, category string) uint {
	t.Helper()
	resp := s.mustRequestJSON(t, s.session, http.MethodPost, "/api/habits", map[string]interface{}{
		"name":         name,
		"category":     category,
		"trigger_type": "TIME",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create habit expected 200, got %d, body=%s", resp.StatusCode, readBody(t, resp))
	}
	var created struct {
		Habit struct {
			ID uint `json:"id"`
		} `json:"habit"`
	}
	decodeJSON(t, resp, &created)
	return created.Habit.ID
}

func (s *e2eSuite) mustRequest(t *testing.T, client httpClient, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.baseURL+path, body)
	if err != nil {
		t.Fatalf("failed to build request %s %s: %v", method, path, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

func (s *e2eSuite) mustRequestJSON(t *testing.T, client httpClient, method, path string, payload map[string]interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	headers := map[string]string{"Content-Type": "application/json"}
	return s.mustRequest(t, client, method, path, bytes.NewReader(data), headers)
}

func decodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	body := readBody(t, resp)
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		t.Fatalf("failed to decode json: %v\nbody=%s", err, body)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(data)
}

func idStr(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
