package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jinbei222125-wq/wojp-corporate/internal/model"
	"github.com/jinbei222125-wq/wojp-corporate/internal/news"
)

// --- モック定義 ---

// mockNewsService はNewsServiceInterfaceのモック実装。
type mockNewsService struct {
	listPublishedFn func(ctx context.Context) ([]*model.News, error)
	getPublishedFn  func(ctx context.Context, id int64) (*model.News, error)
	categoriesFn    func() []model.NewsCategory
	listAllFn       func(ctx context.Context) ([]*model.News, error)
	createFn        func(ctx context.Context, in model.NewsInput) (*model.News, error)
	updateFn        func(ctx context.Context, id int64, patch model.NewsPatch) (*model.News, error)
	deleteFn        func(ctx context.Context, id int64) error
	buildFeedFn     func(ctx context.Context, cfg news.FeedConfig) ([]byte, error)
}

func (m *mockNewsService) ListPublished(ctx context.Context) ([]*model.News, error) {
	if m.listPublishedFn != nil {
		return m.listPublishedFn(ctx)
	}
	return nil, nil
}

func (m *mockNewsService) GetPublished(ctx context.Context, id int64) (*model.News, error) {
	if m.getPublishedFn != nil {
		return m.getPublishedFn(ctx, id)
	}
	return nil, nil
}

func (m *mockNewsService) Categories() []model.NewsCategory {
	if m.categoriesFn != nil {
		return m.categoriesFn()
	}
	return nil
}

func (m *mockNewsService) ListAll(ctx context.Context) ([]*model.News, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockNewsService) Create(ctx context.Context, in model.NewsInput) (*model.News, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return nil, nil
}

func (m *mockNewsService) Update(ctx context.Context, id int64, patch model.NewsPatch) (*model.News, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return nil, nil
}

func (m *mockNewsService) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockNewsService) BuildFeed(ctx context.Context, cfg news.FeedConfig) ([]byte, error) {
	if m.buildFeedFn != nil {
		return m.buildFeedFn(ctx, cfg)
	}
	return nil, nil
}

// mockContentWriteRecorder はContentWriteRecorderのモック実装。
type mockContentWriteRecorder struct {
	writes []string
}

func (m *mockContentWriteRecorder) RecordContentWrite(contentType, operation string) {
	m.writes = append(m.writes, contentType+":"+operation)
}

// --- テストヘルパー ---

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseAPIErrorResponse はレスポンスボディからAPIErrorレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}

func testArticle(id int64) *model.News {
	return &model.News{
		ID:          id,
		Title:       "新サービス提供開始のお知らせ",
		Content:     "<p>本日より新サービスの提供を開始しました。</p>",
		Category:    model.CategoryAnnouncement,
		PublishedAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
		IsPublished: model.FlagOn,
	}
}

// --- 公開エンドポイントのテスト ---

func TestNewsHandler_ListPublished_Success(t *testing.T) {
	svc := &mockNewsService{
		listPublishedFn: func(ctx context.Context) ([]*model.News, error) {
			return []*model.News{testArticle(2), testArticle(1)}, nil
		},
	}
	h := NewNewsHandler(svc, news.FeedConfig{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
	w := httptest.NewRecorder()

	h.ListPublished(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if contentType := resp.Header.Get("Content-Type"); contentType != "application/json" {
		t.Errorf("Content-Type = %q, want %q", contentType, "application/json")
	}

	var result []newsResponse
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("len(result) = %d, want 2", len(result))
	}
	if result[0].ID != 2 {
		t.Errorf("result[0].ID = %d, want 2", result[0].ID)
	}
	if result[0].Category != "お知らせ" {
		t.Errorf("result[0].Category = %q, want %q", result[0].Category, "お知らせ")
	}
}

func TestNewsHandler_ListPublished_EmptyReturnsArray(t *testing.T) {
	svc := &mockNewsService{
		listPublishedFn: func(ctx context.Context) ([]*model.News, error) {
			return []*model.News{}, nil
		},
	}
	h := NewNewsHandler(svc, news.FeedConfig{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
	w := httptest.NewRecorder()

	h.ListPublished(w, req)

	// 縮退モードでも[]を返し、nullにはならないこと
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body = %q, want %q", got, "[]")
	}
}

func TestNewsHandler_GetPublished_Success(t *testing.T) {
	svc := &mockNewsService{
		getPublishedFn: func(ctx context.Context, id int64) (*model.News, error) {
			if id != 7 {
				t.Errorf("id = %d, want 7", id)
			}
			return testArticle(7), nil
		},
	}
	h := NewNewsHandler(svc, news.FeedConfig{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/news/7", nil)
	req = withChiURLParam(req, "id", "7")
	w := httptest.NewRecorder()

	h.GetPublished(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var result newsResponse
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.ID != 7 {
		t.Errorf("result.ID = %d, want 7", result.ID)
	}
}

func TestNewsHandler_GetPublished_NotFound(t *testing.T) {
	svc := &mockNewsService{
		getPublishedFn: func(ctx context.Context, id int64) (*model.News, error) {
			return nil, model.NewNewsNotFoundError(id)
		},
	}
	h := NewNewsHandler(svc, news.FeedConfig{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/news/999", nil)
	req = withChiURLParam(req, "id", "999")
	w := httptest.NewRecorder()

	h.GetPublished(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if result := parseAPIErrorResponse(t, w); result["code"] != model.ErrCodeNewsNotFound {
		t.Errorf("code = %q, want %q", result["code"], model.ErrCodeNewsNotFound)
	}
}

func TestNewsHandler_GetPublished_InvalidID(t *testing.T) {
	h := NewNewsHandler(&mockNewsService{}, news.FeedConfig{}, nil)

	for _, raw := range []string{"abc", "0", "-1"} {
		req := httptest.NewRequest(http.MethodGet, "/api/news/"+raw, nil)
		req = withChiURLParam(req, "id", raw)
		w := httptest.NewRecorder()

		h.GetPublished(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("id=%q: status = %d, want %d", raw, w.Code, http.StatusBadRequest)
		}
	}
}

func TestNewsHandler_Categories_ReturnsDefinedList(t *testing.T) {
	svc := &mockNewsService{
		categoriesFn: func() []model.NewsCategory {
			return []model.NewsCategory{
				model.CategoryAnnouncement,
				model.CategoryImportant,
				model.CategoryPressRelease,
				model.CategoryMediaCoverage,
			}
		},
	}
	h := NewNewsHandler(svc, news.FeedConfig{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/news/categories", nil)
	w := httptest.NewRecorder()

	h.Categories(w, req)

	var result []string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result) != 4 {
		t.Fatalf("len(result) = %d, want 4", len(result))
	}
	if result[0] != "お知らせ" {
		t.Errorf("result[0] = %q, want %q", result[0], "お知らせ")
	}
}

func TestNewsHandler_Feed_ServesRSSContentType(t *testing.T) {
	svc := &mockNewsService{
		buildFeedFn: func(ctx context.Context, cfg news.FeedConfig) ([]byte, error) {
			if cfg.SiteTitle != "株式会社テスト" {
				t.Errorf("SiteTitle = %q, want %q", cfg.SiteTitle, "株式会社テスト")
			}
			return []byte(`<?xml version="1.0"?><rss version="2.0"></rss>`), nil
		},
	}
	h := NewNewsHandler(svc, news.FeedConfig{SiteTitle: "株式会社テスト"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/news/feed", nil)
	w := httptest.NewRecorder()

	h.Feed(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if contentType := resp.Header.Get("Content-Type"); contentType != "application/rss+xml; charset=utf-8" {
		t.Errorf("Content-Type = %q", contentType)
	}
	if !strings.Contains(w.Body.String(), "<rss") {
		t.Error("body should contain rss element")
	}
}

// --- 管理エンドポイントのテスト ---

func TestNewsHandler_Create_Success(t *testing.T) {
	svc := &mockNewsService{
		createFn: func(ctx context.Context, in model.NewsInput) (*model.News, error) {
			if in.Title != "新記事" {
				t.Errorf("Title = %q, want %q", in.Title, "新記事")
			}
			if in.Category != model.CategoryPressRelease {
				t.Errorf("Category = %q, want %q", in.Category, model.CategoryPressRelease)
			}
			if in.IsPublished != model.FlagOn {
				t.Errorf("IsPublished = %d, want %d", in.IsPublished, model.FlagOn)
			}
			created := testArticle(10)
			created.Title = in.Title
			return created, nil
		},
	}
	metrics := &mockContentWriteRecorder{}
	h := NewNewsHandler(svc, news.FeedConfig{}, metrics)

	body := `{"title": "新記事", "content": "本文です。", "category": "プレスリリース", "isPublished": 1}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/news", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if len(metrics.writes) != 1 || metrics.writes[0] != "news:create" {
		t.Errorf("recorded writes = %v, want [news:create]", metrics.writes)
	}
}

func TestNewsHandler_Create_InvalidJSON_ReturnsBadRequest(t *testing.T) {
	h := NewNewsHandler(&mockNewsService{}, news.FeedConfig{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/news", bytes.NewBufferString(`{invalid`))
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestNewsHandler_Create_ValidationError_ReturnsBadRequest(t *testing.T) {
	svc := &mockNewsService{
		createFn: func(ctx context.Context, in model.NewsInput) (*model.News, error) {
			return nil, model.NewValidationError("タイトルは必須です。")
		},
	}
	h := NewNewsHandler(svc, news.FeedConfig{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/news", bytes.NewBufferString(`{"title": ""}`))
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if result := parseAPIErrorResponse(t, w); result["code"] != model.ErrCodeValidation {
		t.Errorf("code = %q, want %q", result["code"], model.ErrCodeValidation)
	}
}

func TestNewsHandler_Create_DatabaseUnavailable_Returns503(t *testing.T) {
	svc := &mockNewsService{
		createFn: func(ctx context.Context, in model.NewsInput) (*model.News, error) {
			return nil, model.NewDatabaseUnavailableError()
		},
	}
	h := NewNewsHandler(svc, news.FeedConfig{}, nil)

	body := `{"title": "新記事", "content": "本文", "category": "お知らせ"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/news", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
	if result := parseAPIErrorResponse(t, w); result["code"] != model.ErrCodeDatabaseUnavailable {
		t.Errorf("code = %q, want %q", result["code"], model.ErrCodeDatabaseUnavailable)
	}
}

func TestNewsHandler_Update_PassesOnlyProvidedFields(t *testing.T) {
	svc := &mockNewsService{
		updateFn: func(ctx context.Context, id int64, patch model.NewsPatch) (*model.News, error) {
			if id != 3 {
				t.Errorf("id = %d, want 3", id)
			}
			if patch.Title == nil || *patch.Title != "改題" {
				t.Errorf("patch.Title = %v, want 改題", patch.Title)
			}
			if patch.Content != nil {
				t.Errorf("patch.Content = %v, want nil", patch.Content)
			}
			if patch.IsPublished == nil || *patch.IsPublished != model.FlagOn {
				t.Errorf("patch.IsPublished = %v, want 1", patch.IsPublished)
			}
			return testArticle(3), nil
		},
	}
	metrics := &mockContentWriteRecorder{}
	h := NewNewsHandler(svc, news.FeedConfig{}, metrics)

	body := `{"title": "改題", "isPublished": 1}`
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/news/3", bytes.NewBufferString(body))
	req = withChiURLParam(req, "id", "3")
	w := httptest.NewRecorder()

	h.Update(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if len(metrics.writes) != 1 || metrics.writes[0] != "news:update" {
		t.Errorf("recorded writes = %v, want [news:update]", metrics.writes)
	}
}

func TestNewsHandler_Update_NotFound(t *testing.T) {
	svc := &mockNewsService{
		updateFn: func(ctx context.Context, id int64, patch model.NewsPatch) (*model.News, error) {
			return nil, model.NewNewsNotFoundError(id)
		},
	}
	h := NewNewsHandler(svc, news.FeedConfig{}, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/news/999", bytes.NewBufferString(`{"title": "x"}`))
	req = withChiURLParam(req, "id", "999")
	w := httptest.NewRecorder()

	h.Update(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestNewsHandler_Delete_Success(t *testing.T) {
	deleted := int64(0)
	svc := &mockNewsService{
		deleteFn: func(ctx context.Context, id int64) error {
			deleted = id
			return nil
		},
	}
	metrics := &mockContentWriteRecorder{}
	h := NewNewsHandler(svc, news.FeedConfig{}, metrics)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/news/5", nil)
	req = withChiURLParam(req, "id", "5")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if deleted != 5 {
		t.Errorf("deleted id = %d, want 5", deleted)
	}

	var result map[string]bool
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !result["success"] {
		t.Error("expected success = true")
	}
	if len(metrics.writes) != 1 || metrics.writes[0] != "news:delete" {
		t.Errorf("recorded writes = %v, want [news:delete]", metrics.writes)
	}
}
