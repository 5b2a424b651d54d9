package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/campushub/internal/middleware"
	"github.com/hitoshi/campushub/internal/model"
)

// Authenticator は資格情報の検証インターフェース。auth.Serviceが実装する。
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*model.Principal, error)
}

// TokenIssuer はアクセストークンの発行インターフェース。auth.TokenCodecが実装する。
type TokenIssuer interface {
	Issue(principal model.Principal) (string, time.Time, error)
}

// LoginRecorder はログイン成否のメトリクス記録インターフェース。
type LoginRecorder interface {
	RecordLoginSuccess(method string)
	RecordLoginFailure(method string)
}

// AuthHandler は認証APIのHTTPハンドラー。
type AuthHandler struct {
	authenticator Authenticator
	issuer        TokenIssuer
	recorder      LoginRecorder
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(authenticator Authenticator, issuer TokenIssuer, recorder LoginRecorder) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator,
		issuer:        issuer,
		recorder:      recorder,
	}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// principalResponse は認証済みプリンシパルのAPIレスポンス。
type principalResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toPrincipalResponse(p *model.Principal) principalResponse {
	return principalResponse{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
		Role:  string(p.Role),
	}
}

// loginResponse はログイン成功時のAPIレスポンス。
type loginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      principalResponse `json:"user"`
}

// Login は資格情報を検証し、アクセストークンを発行する。
// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	principal, err := h.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.recorder.RecordLoginFailure("token")
		middleware.WriteError(w, err)
		return
	}

	token, expiresAt, err := h.issuer.Issue(*principal)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	h.recorder.RecordLoginSuccess("token")
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toPrincipalResponse(principal),
	})
}

// Verify はトークンを検証し、エンコードされたプリンシパルを返す。
// トークン検証自体は前段のミドルウェアが行う。
// GET /api/v1/auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]principalResponse{
		"user": toPrincipalResponse(principal),
	})
}
