package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jinbei222125-wq/wojp-corporate/internal/model"
	"github.com/jinbei222125-wq/wojp-corporate/internal/news"
)

// NewsServiceInterface はNEWSハンドラーが必要とするサービスインターフェース。
type NewsServiceInterface interface {
	ListPublished(ctx context.Context) ([]*model.News, error)
	GetPublished(ctx context.Context, id int64) (*model.News, error)
	Categories() []model.NewsCategory
	ListAll(ctx context.Context) ([]*model.News, error)
	Create(ctx context.Context, in model.NewsInput) (*model.News, error)
	Update(ctx context.Context, id int64, patch model.NewsPatch) (*model.News, error)
	Delete(ctx context.Context, id int64) error
	BuildFeed(ctx context.Context, cfg news.FeedConfig) ([]byte, error)
}

// ContentWriteRecorder は管理系書き込みメトリクスの記録インターフェース。
type ContentWriteRecorder interface {
	RecordContentWrite(contentType string, operation string)
}

// NewsHandler はNEWS記事のHTTPハンドラー。
type NewsHandler struct {
	service    NewsServiceInterface
	feedConfig news.FeedConfig
	metrics    ContentWriteRecorder
}

// NewNewsHandler はNewsHandlerを生成する。metricsはnil可。
func NewNewsHandler(service NewsServiceInterface, feedConfig news.FeedConfig, metrics ContentWriteRecorder) *NewsHandler {
	return &NewsHandler{
		service:    service,
		feedConfig: feedConfig,
		metrics:    metrics,
	}
}

// newsResponse はNEWS記事のAPIレスポンス。
type newsResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	IsPublished int       `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toNewsResponse(a *model.News) newsResponse {
	return newsResponse{
		ID:          a.ID,
		Title:       a.Title,
		Content:     a.Content,
		Category:    string(a.Category),
		ImageURL:    a.ImageURL,
		PublishedAt: a.PublishedAt,
		IsPublished: a.IsPublished,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func toNewsResponseList(articles []*model.News) []newsResponse {
	out := make([]newsResponse, len(articles))
	for i, a := range articles {
		out[i] = toNewsResponse(a)
	}
	return out
}

// ListPublished は公開済み記事の一覧を返す。
// GET /api/news
func (h *NewsHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	articles, err := h.service.ListPublished(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNewsResponseList(articles))
}

// GetPublished は公開済み記事を1件返す。
// GET /api/news/{id}
func (h *NewsHandler) GetPublished(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	article, err := h.service.GetPublished(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNewsResponse(article))
}

// Categories は定義済みカテゴリの一覧を返す。
// GET /api/news/categories
func (h *NewsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Categories())
}

// Feed は公開済み記事のRSS 2.0フィードを返す。
// GET /news/feed
func (h *NewsHandler) Feed(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.BuildFeed(r.Context(), h.feedConfig)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

// ListAll は公開/非公開を問わず全記事の一覧を返す。
// GET /api/admin/news
func (h *NewsHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	articles, err := h.service.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNewsResponseList(articles))
}

// createNewsRequest はNEWS作成リクエストのボディ。
type createNewsRequest struct {
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Category    string     `json:"category"`
	ImageURL    string     `json:"imageUrl"`
	PublishedAt *time.Time `json:"publishedAt"`
	IsPublished *int       `json:"isPublished"`
}

// Create は記事を作成する。
// POST /api/admin/news
func (h *NewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createNewsRequest
	if err := decodeJSONBody(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	in := model.NewsInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: model.NewsCategory(req.Category),
		ImageURL: req.ImageURL,
	}
	if req.PublishedAt != nil {
		in.PublishedAt = *req.PublishedAt
	}
	if req.IsPublished != nil {
		in.IsPublished = *req.IsPublished
	}

	article, err := h.service.Create(r.Context(), in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordContentWrite("news", "create")
	}

	writeJSON(w, http.StatusCreated, toNewsResponse(article))
}

// updateNewsRequest はNEWS部分更新リクエストのボディ。
// 省略されたフィールドは変更しない。
type updateNewsRequest struct {
	Title       *string    `json:"title"`
	Content     *string    `json:"content"`
	Category    *string    `json:"category"`
	ImageURL    *string    `json:"imageUrl"`
	PublishedAt *time.Time `json:"publishedAt"`
	IsPublished *int       `json:"isPublished"`
}

// Update は記事の指定フィールドのみを更新する。
// PATCH /api/admin/news/{id}
func (h *NewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var req updateNewsRequest
	if err := decodeJSONBody(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	patch := model.NewsPatch{
		Title:       req.Title,
		Content:     req.Content,
		ImageURL:    req.ImageURL,
		PublishedAt: req.PublishedAt,
		IsPublished: req.IsPublished,
	}
	if req.Category != nil {
		category := model.NewsCategory(*req.Category)
		patch.Category = &category
	}

	article, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordContentWrite("news", "update")
	}

	writeJSON(w, http.StatusOK, toNewsResponse(article))
}

// Delete は記事を削除する。
// DELETE /api/admin/news/{id}
func (h *NewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordContentWrite("news", "delete")
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
