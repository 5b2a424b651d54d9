package middleware

import (
	"net/http"

	"github.com/hitoshi/campushub/internal/model"
)

// NewAdminOnly は管理者ロールを要求するAPIミドルウェアを返す。
// 認証ミドルウェアの後段に配置すること。プリンシパルが存在しない場合も403を返す。
func NewAdminOnly() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := PrincipalFromContext(r.Context())
			if err != nil || !principal.Role.IsAdmin() {
				WriteError(w, model.NewForbiddenError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewAdminOnlyPage は管理者ロールを要求するWebコンソール用ミドルウェアを返す。
// 拒否時はJSONではなくdeniedハンドラに描画を委譲する。
func NewAdminOnlyPage(denied http.HandlerFunc) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := PrincipalFromContext(r.Context())
			if err != nil || !principal.Role.IsAdmin() {
				denied(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
