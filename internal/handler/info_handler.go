package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/campushub/internal/info"
	"github.com/hitoshi/campushub/internal/middleware"
	"github.com/hitoshi/campushub/internal/model"
)

// InfoServiceInterface は大学情報ハンドラーが必要とするサービスインターフェース。
type InfoServiceInterface interface {
	List(ctx context.Context) ([]*model.InfoEntry, error)
	GetByKey(ctx context.Context, key string) (*model.InfoEntry, error)
	Upsert(ctx context.Context, key string, input info.UpsertInput) (*model.InfoEntry, error)
	DeleteByKey(ctx context.Context, key string) error
}

// InfoHandler は大学情報APIのHTTPハンドラー。
// エントリはIDではなく自然キー（"contact" など）でアドレスされる。
type InfoHandler struct {
	service InfoServiceInterface
}

// NewInfoHandler はInfoHandlerを生成する。
func NewInfoHandler(service InfoServiceInterface) *InfoHandler {
	return &InfoHandler{service: service}
}

// infoResponse は大学情報のAPIレスポンス。
type infoResponse struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toInfoResponse(e *model.InfoEntry) infoResponse {
	return infoResponse{
		ID:        e.ID,
		Key:       e.Key,
		Title:     e.Title,
		Content:   e.Content,
		Address:   e.Address,
		Phone:     e.Phone,
		Email:     e.Email,
		UpdatedAt: e.UpdatedAt,
	}
}

// upsertInfoRequest は大学情報の保存リクエストのボディ。
type upsertInfoRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// List は全エントリをキー順で返す。
// GET /api/v1/info
func (h *InfoHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	out := make([]infoResponse, len(entries))
	for i, e := range entries {
		out[i] = toInfoResponse(e)
	}
	writeJSON(w, http.StatusOK, map[string][]infoResponse{"data": out})
}

// Get は指定キーのエントリを返す。
// GET /api/v1/info/{key}
func (h *InfoHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.GetByKey(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInfoResponse(entry))
}

// Upsert は指定キーのエントリを保存する。キーが既存なら上書きする。
// PUT /api/v1/info/{key}
func (h *InfoHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertInfoRequest
	if !decodeBody(w, r, &req) {
		return
	}

	entry, err := h.service.Upsert(r.Context(), chi.URLParam(r, "key"), info.UpsertInput{
		Title:   req.Title,
		Content: req.Content,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInfoResponse(entry))
}

// Delete は指定キーのエントリを削除する。
// DELETE /api/v1/info/{key}
func (h *InfoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteByKey(r.Context(), chi.URLParam(r, "key")); err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
