package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/campushub/internal/middleware"
	"github.com/hitoshi/campushub/internal/model"
)

// TagServiceInterface はタグハンドラーが必要とするサービスインターフェース。
type TagServiceInterface interface {
	List(ctx context.Context) ([]*model.Tag, error)
	Create(ctx context.Context, name string) (*model.Tag, error)
}

// TagHandler はタグAPIのHTTPハンドラー。
type TagHandler struct {
	service TagServiceInterface
}

// NewTagHandler はTagHandlerを生成する。
func NewTagHandler(service TagServiceInterface) *TagHandler {
	return &TagHandler{service: service}
}

// nameRequest は名前のみを持つ作成リクエストのボディ。
type nameRequest struct {
	Name string `json:"name"`
}

// List は全タグを名前順で返す。
// GET /api/v1/tags
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.List(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	out := make([]tagResponse, len(tags))
	for i, t := range tags {
		out[i] = tagResponse{ID: t.ID, Name: t.Name}
	}
	writeJSON(w, http.StatusOK, map[string][]tagResponse{"data": out})
}

// Create はタグを作成する。重複する名前は409を返す。
// POST /api/v1/tags
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tag, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tagResponse{ID: tag.ID, Name: tag.Name})
}
