package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/hitoshi/campushub/internal/model"
)

// SessionCookieName はセッションIDを保持するCookie名。
const SessionCookieName = "session_id"

// LoginPath は管理コンソールのログインページのパス。
const LoginPath = "/web/login"

// SessionResolver はセッションIDからプリンシパルを復元するインターフェース。
// auth.SessionManagerの部分集合として定義する。
type SessionResolver interface {
	Resolve(ctx context.Context, id string) (*model.Principal, error)
}

// NewSessionAuth はCookieのセッションを検証するミドルウェアを返す。
// 復元したプリンシパルをリクエストコンテキストに注入する。
// 未認証リクエストはログインページへリダイレクトし、
// 元のURLをnextクエリパラメータに保持してログイン後の復帰を可能にする。
func NewSessionAuth(resolver SessionResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				redirectToLogin(w, r)
				return
			}

			principal, err := resolver.Resolve(r.Context(), cookie.Value)
			if err != nil {
				if _, ok := model.AsAppError(err); !ok {
					slog.Error("failed to resolve session",
						slog.String("error", err.Error()),
					)
				}
				redirectToLogin(w, r)
				return
			}

			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// redirectToLogin は元のリクエストURLをnextに載せてログインページへ転送する。
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Path
	if r.URL.RawQuery != "" {
		next += "?" + r.URL.RawQuery
	}
	location := LoginPath + "?next=" + url.QueryEscape(next)
	http.Redirect(w, r, location, http.StatusFound)
}
