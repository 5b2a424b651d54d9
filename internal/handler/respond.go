// Package handler はAPIのHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/campushub/internal/middleware"
	"github.com/hitoshi/campushub/internal/model"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// decodeBody はリクエストボディをJSONとして解析する。
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		middleware.WriteError(w, model.NewValidationError("body", "リクエストボディの解析に失敗しました。"))
		return false
	}
	return true
}

// pathID はURLパスのidパラメータを数値として取り出す。
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		middleware.WriteError(w, model.NewValidationError("id", "IDは正の整数で指定してください。"))
		return 0, false
	}
	return id, true
}

// pageParams はクエリからページ番号とページサイズを取り出す。
// 未指定・不正な値はデフォルトに丸める。
func pageParams(r *http.Request) (page, pageSize int) {
	page = queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize = queryInt(r, "page_size", defaultPageSize)
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// principalOr401 はコンテキストからプリンシパルを取り出す。
// 認証ミドルウェア配下でのみ呼ばれる前提だが、欠落時は401を返す。
func principalOr401(w http.ResponseWriter, r *http.Request) (*model.Principal, bool) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		middleware.WriteError(w, model.NewTokenInvalidError())
		return nil, false
	}
	return principal, true
}
