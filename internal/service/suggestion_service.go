package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/habitflow/internal/analytics"
	"github.com/habitflow/internal/db"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gorm.io/gorm"
)

var (
	// ErrSuggestionFeedNotConfigured 表示未配置内容源地址
	ErrSuggestionFeedNotConfigured = errors.New("suggestion feed url not configured")
	// ErrSuggestionNotFound 在指定建议不存在时返回
	ErrSuggestionNotFound = errors.New("suggestion not found")
)

var (
	suggestionMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	suggestionSanitizer = bluemonday.UGCPolicy()
	suggestionTextOnly  = bluemonday.StrictPolicy()
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// feedItem 是第三方内容源返回的单条数据
type feedItem struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Source   string `json:"source"`
	URL      string `json:"url"`
	Category string `json:"category"`
}

// ScoredSuggestion 是附带评分与推断结果的建议条目
type ScoredSuggestion struct {
	Suggestion  db.ContentSuggestion
	Score       int
	TriggerType db.TriggerType
	Defaults    analytics.TriggerDefaults
}

// SuggestionService 负责第三方内容建议的抓取、清洗、缓存与排序。
// 抓取是薄封装；分类与评分全部委托给 analytics 包的纯函数。
type SuggestionService struct {
	db      *gorm.DB
	http    httpDoer
	feedURL string
	ttl     time.Duration
}

// NewSuggestionService 构造 SuggestionService，默认 10 秒抓取超时。
func NewSuggestionService(gdb *gorm.DB, feedURL string, ttl time.Duration) *SuggestionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SuggestionService{
		db:      gdb,
		http:    &http.Client{Timeout: 10 * time.Second},
		feedURL: strings.TrimSpace(feedURL),
		ttl:     ttl,
	}
}

// SetHTTPClient 允许在测试中注入 HTTP 客户端。
func (s *SuggestionService) SetHTTPClient(client httpDoer) {
	if client == nil {
		s.http = &http.Client{Timeout: 10 * time.Second}
		return
	}
	s.http = client
}

// Refresh 抓取内容源并重建缓存：清洗正文、补全分类、分配 UUID、写入过期时间。
// 返回新写入的条目数。
func (s *SuggestionService) Refresh(ctx context.Context, now time.Time) (int, error) {
	if s.feedURL == "" {
		return 0, ErrSuggestionFeedNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch suggestion feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("suggestion feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return 0, fmt.Errorf("read feed body: %w", err)
	}

	var items []feedItem
	if err := json.Unmarshal(body, &items); err != nil {
		return 0, fmt.Errorf("decode feed body: %w", err)
	}

	expiresAt := now.Add(s.ttl)
	created := 0

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// 全量刷新：旧缓存一并清掉，避免同源条目重复堆积
		if err := tx.Where("1 = 1").Delete(&db.ContentSuggestion{}).Error; err != nil {
			return fmt.Errorf("clear suggestion cache: %w", err)
		}

		for _, item := range items {
			title := strings.TrimSpace(suggestionTextOnly.Sanitize(item.Title))
			if title == "" {
				continue
			}
			content := strings.TrimSpace(suggestionSanitizer.Sanitize(item.Content))

			category := normalizeSuggestionCategory(item.Category)
			if category == "" {
				category = analytics.ClassifyContent(title, content)
			}

			record := db.ContentSuggestion{
				ID:        uuid.NewString(),
				Title:     title,
				Content:   content,
				Source:    strings.TrimSpace(item.Source),
				SourceURL: strings.TrimSpace(item.URL),
				Category:  category,
				CachedAt:  now,
				ExpiresAt: &expiresAt,
			}

			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("cache suggestion: %w", err)
			}
			created++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return created, nil
}

// Ranked 返回未过期的建议，按适配分降序；评分结果同时回写缓存。
// 分数相同的条目按缓存时间新者在前，再按 ID 保证顺序稳定。
func (s *SuggestionService) Ranked(userCtx analytics.UserContext, now time.Time) ([]ScoredSuggestion, error) {
	var records []db.ContentSuggestion
	if err := s.db.Where("expires_at IS NULL OR expires_at > ?", now).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load suggestions: %w", err)
	}

	scored := make([]ScoredSuggestion, 0, len(records))
	for _, record := range records {
		score := analytics.FitScore(record, userCtx)

		if score != record.FitScore {
			if err := s.db.Model(&db.ContentSuggestion{}).Where("id = ?", record.ID).
				Update("fit_score", score).Error; err != nil {
				return nil, fmt.Errorf("store fit score: %w", err)
			}
		}
		record.FitScore = score

		triggerType := analytics.InferTriggerType(record)
		scored = append(scored, ScoredSuggestion{
			Suggestion:  record,
			Score:       score,
			TriggerType: triggerType,
			Defaults:    analytics.SuggestDefaults(triggerType, record),
		})
	}

	slices.SortFunc(scored, func(a, b ScoredSuggestion) int {
		if diff := b.Score - a.Score; diff != 0 {
			return diff
		}
		if !a.Suggestion.CachedAt.Equal(b.Suggestion.CachedAt) {
			if a.Suggestion.CachedAt.After(b.Suggestion.CachedAt) {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Suggestion.ID, b.Suggestion.ID)
	})

	return scored, nil
}

// Get 按 ID 返回单条建议。
func (s *SuggestionService) Get(id string) (*db.ContentSuggestion, error) {
	var record db.ContentSuggestion
	if err := s.db.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSuggestionNotFound
		}
		return nil, fmt.Errorf("get suggestion: %w", err)
	}
	return &record, nil
}

// RenderContent 把建议正文的 Markdown 渲染为可安全展示的 HTML。
func RenderContent(content string) (string, error) {
	var buf bytes.Buffer
	if err := suggestionMarkdown.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("render suggestion content: %w", err)
	}
	return string(suggestionSanitizer.SanitizeBytes(buf.Bytes())), nil
}

// normalizeSuggestionCategory 校验内容源给出的分类，未知值返回空串交给分类器。
func normalizeSuggestionCategory(raw string) db.Category {
	candidate := db.Category(strings.ToUpper(strings.TrimSpace(raw)))
	switch candidate {
	case db.CategoryFitness, db.CategoryWellness, db.CategoryProductivity,
		db.CategoryLearning, db.CategoryGeneral, db.CategoryHealthyEating:
		return candidate
	default:
		return ""
	}
}
