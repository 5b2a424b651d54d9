package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/campushub/internal/middleware"
	"github.com/hitoshi/campushub/internal/model"
)

// CategoryServiceInterface はカテゴリハンドラーが必要とするサービスインターフェース。
type CategoryServiceInterface interface {
	List(ctx context.Context) ([]*model.JobCategory, error)
	Get(ctx context.Context, id int64) (*model.JobCategory, error)
	Create(ctx context.Context, name string) (*model.JobCategory, error)
	Update(ctx context.Context, id int64, name string) (*model.JobCategory, error)
	Delete(ctx context.Context, id int64) error
}

// CategoryHandler は求人カテゴリAPIのHTTPハンドラー。
type CategoryHandler struct {
	service CategoryServiceInterface
}

// NewCategoryHandler はCategoryHandlerを生成する。
func NewCategoryHandler(service CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// categoryResponse は求人カテゴリのAPIレスポンス。
type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// List は全カテゴリを名前順で返す。
// GET /api/v1/job-categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	out := make([]categoryResponse, len(categories))
	for i, c := range categories {
		out[i] = categoryResponse{ID: c.ID, Name: c.Name}
	}
	writeJSON(w, http.StatusOK, map[string][]categoryResponse{"data": out})
}

// Get はカテゴリ詳細を返す。
// GET /api/v1/job-categories/{id}
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	category, err := h.service.Get(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categoryResponse{ID: category.ID, Name: category.Name})
}

// Create はカテゴリを作成する。
// POST /api/v1/job-categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeBody(w, r, &req) {
		return
	}

	category, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryResponse{ID: category.ID, Name: category.Name})
}

// Update はカテゴリ名を変更する。
// PUT /api/v1/job-categories/{id}
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req nameRequest
	if !decodeBody(w, r, &req) {
		return
	}

	category, err := h.service.Update(r.Context(), id, req.Name)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categoryResponse{ID: category.ID, Name: category.Name})
}

// Delete はカテゴリを削除する。求人から参照されている場合は409を返す。
// DELETE /api/v1/job-categories/{id}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
