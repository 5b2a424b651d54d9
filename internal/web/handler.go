// Package web は管理コンソール（サーバーサイドレンダリングのWeb UI）を提供する。
// 認証はCookieベースのセッションで行い、テンプレートはバイナリに埋め込む。
package web

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/campushub/internal/middleware"
	"github.com/hitoshi/campushub/internal/model"
	"github.com/hitoshi/campushub/internal/repository"
)

//go:embed templates/*.html
var templateFS embed.FS

// Authenticator は資格情報を検証するインターフェース。
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*model.Principal, error)
}

// SessionManager はセッションのライフサイクル操作のインターフェース。
// auth.SessionManagerが満たす。
type SessionManager interface {
	Create(ctx context.Context, principal model.Principal) (*model.Session, error)
	Resolve(ctx context.Context, id string) (*model.Principal, error)
	Destroy(ctx context.Context, id string) error
}

// NewsLister はお知らせ一覧取得のインターフェース。
type NewsLister interface {
	List(ctx context.Context, page, pageSize int) (*repository.Page[model.News], error)
}

// LoginRecorder はログイン試行のメトリクスを記録するインターフェース。
type LoginRecorder interface {
	RecordLoginSuccess(method string)
	RecordLoginFailure(method string)
}

// loginMethodSession はセッション認証のメトリクスラベル。
const loginMethodSession = "session"

// Handler は管理コンソールのHTTPハンドラー。/web以下にマウントされる前提。
type Handler struct {
	auth          Authenticator
	sessions      SessionManager
	news          NewsLister
	recorder      LoginRecorder
	logger        *slog.Logger
	templates     *template.Template
	limiter       *middleware.RateLimiter
	cookieSecure  bool
	cookieDomain  string
	sessionMaxAge int
}

// Config はHandlerの生成パラメータ。
type Config struct {
	Auth          Authenticator
	Sessions      SessionManager
	News          NewsLister
	Recorder      LoginRecorder
	Logger        *slog.Logger
	Limiter       *middleware.RateLimiter
	CookieSecure  bool
	CookieDomain  string
	SessionMaxAge int
}

// NewHandler は管理コンソールのルーターを構成したHandlerを返す。
func NewHandler(cfg Config) (*Handler, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Handler{
		auth:          cfg.Auth,
		sessions:      cfg.Sessions,
		news:          cfg.News,
		recorder:      cfg.Recorder,
		logger:        cfg.Logger,
		templates:     templates,
		limiter:       cfg.Limiter,
		cookieSecure:  cfg.CookieSecure,
		cookieDomain:  cfg.CookieDomain,
		sessionMaxAge: cfg.SessionMaxAge,
	}, nil
}

// Routes は/webにマウントするルーターを返す。
// /homeと/newsはセッション認証で保護され、/newsはさらに管理者のみに制限される。
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/login", h.LoginPage)
	if h.limiter != nil {
		r.With(h.limiter.LoginMiddleware()).Post("/login", h.Login)
	} else {
		r.Post("/login", h.Login)
	}
	r.Get("/logout", h.Logout)

	sessionAuth := middleware.NewSessionAuth(h.sessions)
	r.Group(func(r chi.Router) {
		r.Use(sessionAuth)
		r.Get("/home", h.Home)
		r.With(middleware.NewAdminOnlyPage(h.deniedPage)).Get("/news", h.News)
	})

	return r
}

// loginView はログインページのテンプレートデータ。
type loginView struct {
	Title     string
	Principal *model.Principal
	Error     string
	Email     string
	Next      string
}

// LoginPage はログインフォームを表示する。
// GET /web/login
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "login", loginView{
		Title: "ログイン",
		Next:  sanitizeNext(r.URL.Query().Get("next")),
	})
}

// Login はフォームの資格情報を検証し、セッションを発行する。
// 認証失敗時はCookieを発行せずフォームを再表示する。
// POST /web/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "login", loginView{
			Title: "ログイン",
			Error: "リクエストの形式が正しくありません。",
		})
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	next := sanitizeNext(r.PostFormValue("next"))

	principal, err := h.auth.Authenticate(r.Context(), email, password)
	if err != nil {
		if _, ok := model.AsAppError(err); !ok {
			h.logger.Error("failed to authenticate",
				slog.String("error", err.Error()),
			)
		}
		if h.recorder != nil {
			h.recorder.RecordLoginFailure(loginMethodSession)
		}
		h.render(w, http.StatusUnauthorized, "login", loginView{
			Title: "ログイン",
			Error: "メールアドレスまたはパスワードが正しくありません。",
			Email: email,
			Next:  next,
		})
		return
	}

	session, err := h.sessions.Create(r.Context(), *principal)
	if err != nil {
		h.logger.Error("failed to create session",
			slog.String("error", err.Error()),
		)
		h.render(w, http.StatusInternalServerError, "login", loginView{
			Title: "ログイン",
			Error: "ログイン処理に失敗しました。しばらくしてから再度お試しください。",
			Email: email,
			Next:  next,
		})
		return
	}

	http.SetCookie(w, h.sessionCookie(session.ID, h.sessionMaxAge))
	if h.recorder != nil {
		h.recorder.RecordLoginSuccess(loginMethodSession)
	}

	if next == "" {
		next = landingPath(principal.Role)
	}
	http.Redirect(w, r, next, http.StatusFound)
}

// Logout はセッションを破棄し、Cookieを失効させる。
// GET /web/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			h.logger.Error("failed to destroy session",
				slog.String("error", err.Error()),
			)
		}
	}

	http.SetCookie(w, h.sessionCookie("", -1))
	http.Redirect(w, r, middleware.LoginPath, http.StatusFound)
}

// homeView はホームページのテンプレートデータ。
type homeView struct {
	Title     string
	Principal *model.Principal
}

// Home はログインユーザーのホームページを表示する。
// GET /web/home
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, middleware.LoginPath, http.StatusFound)
		return
	}
	h.render(w, http.StatusOK, "home", homeView{
		Title:     "ホーム",
		Principal: principal,
	})
}

// newsView はお知らせ管理ページのテンプレートデータ。
type newsView struct {
	Title     string
	Principal *model.Principal
	News      []*model.News
	Page      int
	PageCount int
	PrevPage  int
	NextPage  int
}

// News はお知らせの管理一覧を表示する。管理者のみ。
// GET /web/news
func (h *Handler) News(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, middleware.LoginPath, http.StatusFound)
		return
	}

	page := 1
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}

	result, err := h.news.List(r.Context(), page, 20)
	if err != nil {
		h.logger.Error("failed to list news",
			slog.String("error", err.Error()),
		)
		http.Error(w, "お知らせの取得に失敗しました。", http.StatusInternalServerError)
		return
	}

	h.render(w, http.StatusOK, "news", newsView{
		Title:     "お知らせ管理",
		Principal: principal,
		News:      result.Data,
		Page:      result.Page,
		PageCount: result.PageCount,
		PrevPage:  result.Page - 1,
		NextPage:  result.Page + 1,
	})
}

// deniedView は権限エラーページのテンプレートデータ。
type deniedView struct {
	Title     string
	Principal *model.Principal
}

// deniedPage は管理者権限のないユーザーへの403ページを表示する。
func (h *Handler) deniedPage(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())
	h.render(w, http.StatusForbidden, "denied", deniedView{
		Title:     "アクセスできません",
		Principal: principal,
	})
}

// render はテンプレートを一度バッファに描画してから書き出す。
// 描画エラー時に中途半端なHTMLを返さないため。
func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("failed to render template",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// sessionCookie はセッションCookieを構築する。maxAgeに負値を渡すと失効する。
func (h *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		Domain:   h.cookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// sanitizeNext はログイン後の遷移先を検証する。
// オープンリダイレクト防止のため、サイト内の絶対パスのみ許可する。
func sanitizeNext(next string) string {
	if next == "" {
		return ""
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	if u, err := url.Parse(next); err != nil || u.Host != "" || u.Scheme != "" {
		return ""
	}
	return next
}

// landingPath はロールに応じたログイン後の初期ページを返す。
func landingPath(role model.Role) string {
	if role.IsAdmin() {
		return "/web/news"
	}
	return "/web/home"
}
