package middleware

import (
	"net/http"
	"strings"

	"github.com/hitoshi/campushub/internal/model"
)

// TokenVerifier はアクセストークンの検証に必要なインターフェース。
// auth.TokenCodecの部分集合として定義する。
type TokenVerifier interface {
	Verify(token string) (*model.Principal, error)
}

// NewTokenAuth はAuthorizationヘッダのBearerトークンを検証するミドルウェアを返す。
// 検証済みプリンシパルをリクエストコンテキストに注入する。
// ヘッダ欠落・形式不正はTokenInvalid、期限切れはTokenExpiredの401を返す。
func NewTokenAuth(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				WriteError(w, model.NewTokenInvalidError())
				return
			}

			principal, err := verifier.Verify(token)
			if err != nil {
				WriteError(w, err)
				return
			}

			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken はAuthorizationヘッダから素のトークン文字列を取り出す。
// スキーム名の大文字小文字は区別しない。
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
