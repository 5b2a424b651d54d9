package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/campushub/internal/middleware"
	"github.com/hitoshi/campushub/internal/model"
	"github.com/hitoshi/campushub/internal/news"
	"github.com/hitoshi/campushub/internal/repository"
)

// NewsServiceInterface はお知らせハンドラーが必要とするサービスインターフェース。
type NewsServiceInterface interface {
	List(ctx context.Context, page, pageSize int) (*repository.Page[model.News], error)
	Get(ctx context.Context, id int64) (*model.News, error)
	Create(ctx context.Context, authorID int64, input news.CreateInput) (*model.News, error)
	Update(ctx context.Context, id int64, input news.UpdateInput) (*model.News, error)
	Delete(ctx context.Context, id int64) error
}

// NewsHandler はお知らせAPIのHTTPハンドラー。
type NewsHandler struct {
	service NewsServiceInterface
}

// NewNewsHandler はNewsHandlerを生成する。
func NewNewsHandler(service NewsServiceInterface) *NewsHandler {
	return &NewsHandler{service: service}
}

// newsResponse はお知らせのAPIレスポンス。
type newsResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle"`
	Content     string     `json:"content"`
	ImageURL    string     `json:"image_url"`
	AuthorID    int64      `json:"author_id"`
	PublishedAt time.Time  `json:"published_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

func toNewsResponse(n *model.News) newsResponse {
	return newsResponse{
		ID:          n.ID,
		Title:       n.Title,
		Subtitle:    n.Subtitle,
		Content:     n.Content,
		ImageURL:    n.ImageURL,
		AuthorID:    n.AuthorID,
		PublishedAt: n.PublishedAt,
		ExpiresAt:   n.ExpiresAt,
	}
}

// createNewsRequest はお知らせ作成リクエストのボディ。
type createNewsRequest struct {
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle"`
	Content     string     `json:"content"`
	ImageURL    string     `json:"image_url"`
	PublishedAt time.Time  `json:"published_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// updateNewsRequest はお知らせ更新リクエストのボディ。省略されたフィールドは変更しない。
type updateNewsRequest struct {
	Title       *string    `json:"title"`
	Subtitle    *string    `json:"subtitle"`
	Content     *string    `json:"content"`
	ImageURL    *string    `json:"image_url"`
	PublishedAt *time.Time `json:"published_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// List はお知らせを新しい順にページングして返す。
// GET /api/v1/news
func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	result, err := h.service.List(r.Context(), page, pageSize)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	out := make([]newsResponse, len(result.Data))
	for i, n := range result.Data {
		out[i] = toNewsResponse(n)
	}
	writeJSON(w, http.StatusOK, listEnvelope[newsResponse]{
		Data:      out,
		Total:     result.Total,
		Page:      result.Page,
		PageSize:  result.PageSize,
		PageCount: result.PageCount,
	})
}

// Get はお知らせ詳細を返す。
// GET /api/v1/news/{id}
func (h *NewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNewsResponse(item))
}

// Create はお知らせを作成する。
// POST /api/v1/news
func (h *NewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	var req createNewsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	item, err := h.service.Create(r.Context(), principal.ID, news.CreateInput{
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Content:     req.Content,
		ImageURL:    req.ImageURL,
		PublishedAt: req.PublishedAt,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toNewsResponse(item))
}

// Update はお知らせを部分更新する。
// PUT /api/v1/news/{id}
func (h *NewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateNewsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	item, err := h.service.Update(r.Context(), id, news.UpdateInput{
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Content:     req.Content,
		ImageURL:    req.ImageURL,
		PublishedAt: req.PublishedAt,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNewsResponse(item))
}

// Delete はお知らせを削除する。
// DELETE /api/v1/news/{id}
func (h *NewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
