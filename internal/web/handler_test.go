package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/campushub/internal/middleware"
	"github.com/hitoshi/campushub/internal/model"
	"github.com/hitoshi/campushub/internal/repository"
)

// --- モック定義 ---

type mockAuthenticator struct {
	authenticateFn func(ctx context.Context, email, password string) (*model.Principal, error)
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, email, password string) (*model.Principal, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, email, password)
	}
	return nil, model.NewInvalidCredentialsError()
}

type mockSessionManager struct {
	createFn  func(ctx context.Context, principal model.Principal) (*model.Session, error)
	resolveFn func(ctx context.Context, id string) (*model.Principal, error)
	destroyed []string
}

func (m *mockSessionManager) Create(ctx context.Context, principal model.Principal) (*model.Session, error) {
	if m.createFn != nil {
		return m.createFn(ctx, principal)
	}
	return &model.Session{
		ID:        "test-session-id",
		AccountID: principal.ID,
		Name:      principal.Name,
		Email:     principal.Email,
		Role:      principal.Role,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (m *mockSessionManager) Resolve(ctx context.Context, id string) (*model.Principal, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, id)
	}
	return nil, model.NewSessionNotFoundError()
}

func (m *mockSessionManager) Destroy(_ context.Context, id string) error {
	m.destroyed = append(m.destroyed, id)
	return nil
}

type mockNewsLister struct {
	listFn func(ctx context.Context, page, pageSize int) (*repository.Page[model.News], error)
}

func (m *mockNewsLister) List(ctx context.Context, page, pageSize int) (*repository.Page[model.News], error) {
	if m.listFn != nil {
		return m.listFn(ctx, page, pageSize)
	}
	return &repository.Page[model.News]{Data: nil, Page: page, PageSize: pageSize, PageCount: 1}, nil
}

type mockLoginRecorder struct {
	successes []string
	failures  []string
}

func (m *mockLoginRecorder) RecordLoginSuccess(method string) {
	m.successes = append(m.successes, method)
}

func (m *mockLoginRecorder) RecordLoginFailure(method string) {
	m.failures = append(m.failures, method)
}

func adminPrincipal() *model.Principal {
	return &model.Principal{ID: 1, Name: "管理者", Email: "admin@example.com", Role: model.RoleAdmin}
}

func userPrincipal() *model.Principal {
	return &model.Principal{ID: 2, Name: "学生", Email: "user@example.com", Role: model.RoleUser}
}

func newTestHandler(t *testing.T, cfg Config) *Handler {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Auth == nil {
		cfg.Auth = &mockAuthenticator{}
	}
	if cfg.Sessions == nil {
		cfg.Sessions = &mockSessionManager{}
	}
	if cfg.News == nil {
		cfg.News = &mockNewsLister{}
	}
	cfg.SessionMaxAge = 3600
	h, err := NewHandler(cfg)
	if err != nil {
		t.Fatalf("failed to create handler: %v", err)
	}
	return h
}

func postLogin(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func sessionCookieFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

// --- テスト ---

func TestHandler_LoginPage_RendersForm(t *testing.T) {
	h := newTestHandler(t, Config{})
	router := h.Routes()

	req := httptest.NewRequest(http.MethodGet, "/login?next=%2Fweb%2Fnews", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, `name="email"`) || !strings.Contains(body, `name="password"`) {
		t.Error("login form fields not rendered")
	}
	if !strings.Contains(body, `name="next" value="/web/news"`) {
		t.Errorf("next field not carried: %s", body)
	}
}

func TestHandler_Login_AdminRedirectsToNews(t *testing.T) {
	recorder := &mockLoginRecorder{}
	h := newTestHandler(t, Config{
		Auth: &mockAuthenticator{
			authenticateFn: func(_ context.Context, email, password string) (*model.Principal, error) {
				if email == "admin@example.com" && password == "secret123" {
					return adminPrincipal(), nil
				}
				return nil, model.NewInvalidCredentialsError()
			},
		},
		Recorder: recorder,
	})
	router := h.Routes()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, postLogin(url.Values{
		"email":    {"admin@example.com"},
		"password": {"secret123"},
	}))

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != "/web/news" {
		t.Errorf("Location = %q, want /web/news", got)
	}

	cookie := sessionCookieFrom(t, w)
	if cookie == nil {
		t.Fatal("session cookie not set")
	}
	if cookie.Value != "test-session-id" {
		t.Errorf("cookie value = %q", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Error("cookie should be HttpOnly")
	}
	if cookie.MaxAge != 3600 {
		t.Errorf("cookie MaxAge = %d, want 3600", cookie.MaxAge)
	}
	if len(recorder.successes) != 1 || recorder.successes[0] != "session" {
		t.Errorf("successes = %v", recorder.successes)
	}
}

func TestHandler_Login_UserRedirectsToHome(t *testing.T) {
	h := newTestHandler(t, Config{
		Auth: &mockAuthenticator{
			authenticateFn: func(context.Context, string, string) (*model.Principal, error) {
				return userPrincipal(), nil
			},
		},
	})
	router := h.Routes()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, postLogin(url.Values{
		"email":    {"user@example.com"},
		"password": {"secret123"},
	}))

	if got := w.Header().Get("Location"); got != "/web/home" {
		t.Errorf("Location = %q, want /web/home", got)
	}
}

func TestHandler_Login_HonorsNext(t *testing.T) {
	h := newTestHandler(t, Config{
		Auth: &mockAuthenticator{
			authenticateFn: func(context.Context, string, string) (*model.Principal, error) {
				return adminPrincipal(), nil
			},
		},
	})
	router := h.Routes()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, postLogin(url.Values{
		"email":    {"admin@example.com"},
		"password": {"secret123"},
		"next":     {"/web/news?page=2"},
	}))

	if got := w.Header().Get("Location"); got != "/web/news?page=2" {
		t.Errorf("Location = %q, want /web/news?page=2", got)
	}
}

func TestHandler_Login_RejectsExternalNext(t *testing.T) {
	h := newTestHandler(t, Config{
		Auth: &mockAuthenticator{
			authenticateFn: func(context.Context, string, string) (*model.Principal, error) {
				return userPrincipal(), nil
			},
		},
	})
	router := h.Routes()

	for _, next := range []string{"https://evil.example.com/", "//evil.example.com/", "javascript:alert(1)"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, postLogin(url.Values{
			"email":    {"user@example.com"},
			"password": {"secret123"},
			"next":     {next},
		}))

		if got := w.Header().Get("Location"); got != "/web/home" {
			t.Errorf("next = %q: Location = %q, want /web/home", next, got)
		}
	}
}

func TestHandler_Login_FailureSetsNoCookie(t *testing.T) {
	recorder := &mockLoginRecorder{}
	sessions := &mockSessionManager{
		createFn: func(context.Context, model.Principal) (*model.Session, error) {
			t.Fatal("Create should not be called on auth failure")
			return nil, nil
		},
	}
	h := newTestHandler(t, Config{Sessions: sessions, Recorder: recorder})
	router := h.Routes()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, postLogin(url.Values{
		"email":    {"admin@example.com"},
		"password": {"wrong"},
	}))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if cookie := sessionCookieFrom(t, w); cookie != nil {
		t.Error("session cookie should not be set on failure")
	}
	if !strings.Contains(w.Body.String(), "メールアドレスまたはパスワードが正しくありません") {
		t.Error("error message not rendered")
	}
	if len(recorder.failures) != 1 || recorder.failures[0] != "session" {
		t.Errorf("failures = %v", recorder.failures)
	}
}

func TestHandler_Logout_DestroysSessionAndExpiresCookie(t *testing.T) {
	sessions := &mockSessionManager{}
	h := newTestHandler(t, Config{Sessions: sessions})
	router := h.Routes()

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "abc123"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/web/login" {
		t.Errorf("Location = %q, want /web/login", got)
	}
	if len(sessions.destroyed) != 1 || sessions.destroyed[0] != "abc123" {
		t.Errorf("destroyed = %v", sessions.destroyed)
	}
	cookie := sessionCookieFrom(t, w)
	if cookie == nil {
		t.Fatal("expiring cookie not set")
	}
	if cookie.MaxAge >= 0 || cookie.Value != "" {
		t.Errorf("cookie = %+v, want expired", cookie)
	}
}

func TestHandler_Home_RequiresSession(t *testing.T) {
	h := newTestHandler(t, Config{})
	router := h.Routes()

	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/web/login?next=%2Fhome" {
		t.Errorf("Location = %q", got)
	}
}

func TestHandler_Home_RendersPrincipal(t *testing.T) {
	sessions := &mockSessionManager{
		resolveFn: func(_ context.Context, id string) (*model.Principal, error) {
			if id == "valid-session" {
				return userPrincipal(), nil
			}
			return nil, model.NewSessionNotFoundError()
		},
	}
	h := newTestHandler(t, Config{Sessions: sessions})
	router := h.Routes()

	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "valid-session"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "学生") {
		t.Error("principal name not rendered")
	}
}

func TestHandler_News_AdminOnly(t *testing.T) {
	sessions := &mockSessionManager{
		resolveFn: func(_ context.Context, id string) (*model.Principal, error) {
			switch id {
			case "admin-session":
				return adminPrincipal(), nil
			case "user-session":
				return userPrincipal(), nil
			}
			return nil, model.NewSessionNotFoundError()
		},
	}
	news := &mockNewsLister{
		listFn: func(_ context.Context, page, pageSize int) (*repository.Page[model.News], error) {
			return &repository.Page[model.News]{
				Data: []*model.News{{
					ID:          1,
					Title:       "後期履修登録のお知らせ",
					PublishedAt: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
				}},
				Total:     1,
				Page:      page,
				PageSize:  pageSize,
				PageCount: 1,
			}, nil
		},
	}
	h := newTestHandler(t, Config{Sessions: sessions, News: news})
	router := h.Routes()

	t.Run("管理者は一覧を閲覧できる", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/news", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "admin-session"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "後期履修登録のお知らせ") {
			t.Error("news title not rendered")
		}
	})

	t.Run("一般ユーザーは403", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/news", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "user-session"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", w.Code)
		}
		if !strings.Contains(w.Body.String(), "権限がありません") {
			t.Error("denied page not rendered")
		}
	})
}

func TestSanitizeNext(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/web/news", "/web/news"},
		{"/web/news?page=2", "/web/news?page=2"},
		{"//evil.example.com/", ""},
		{"https://evil.example.com/", ""},
		{"web/news", ""},
	}

	for _, tt := range tests {
		if got := sanitizeNext(tt.in); got != tt.want {
			t.Errorf("sanitizeNext(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
