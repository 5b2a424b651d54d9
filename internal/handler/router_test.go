package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/campushub/internal/middleware"
	"github.com/hitoshi/campushub/internal/model"
)

type mockRouteVerifier struct{}

func (mockRouteVerifier) Verify(token string) (*model.Principal, error) {
	switch token {
	case "admin-token":
		return &model.Principal{ID: 1, Name: "管理者", Email: "admin@example.com", Role: model.RoleAdmin}, nil
	case "user-token":
		return &model.Principal{ID: 2, Name: "学生", Email: "user@example.com", Role: model.RoleUser}, nil
	default:
		return nil, model.NewTokenInvalidError()
	}
}

type mockTagService struct {
	listFn   func(ctx context.Context) ([]*model.Tag, error)
	createFn func(ctx context.Context, name string) (*model.Tag, error)
}

func (m *mockTagService) List(ctx context.Context) ([]*model.Tag, error) {
	return m.listFn(ctx)
}

func (m *mockTagService) Create(ctx context.Context, name string) (*model.Tag, error) {
	return m.createFn(ctx, name)
}

func newTestRouter(tags *mockTagService) http.Handler {
	return NewRouter(&RouterDeps{
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		TokenVerifier: mockRouteVerifier{},
		TagService:    tags,
	})
}

func TestRouter_PublicReadWithoutAuth(t *testing.T) {
	router := newTestRouter(&mockTagService{
		listFn: func(context.Context) ([]*model.Tag, error) {
			return []*model.Tag{{ID: 1, Name: "インターン"}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tags", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp map[string][]tagResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp["data"]) != 1 || resp["data"][0].Name != "インターン" {
		t.Errorf("data = %+v", resp["data"])
	}
}

func TestRouter_WriteWithoutToken(t *testing.T) {
	router := newTestRouter(&mockTagService{
		createFn: func(context.Context, string) (*model.Tag, error) {
			t.Fatal("Create should not be reached without a token")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tags", strings.NewReader(`{"name":"新タグ"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var envelope middleware.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if envelope.Error.Code != string(model.KindTokenInvalid) {
		t.Errorf("code = %q, want %q", envelope.Error.Code, model.KindTokenInvalid)
	}
}

func TestRouter_WriteWithUserToken(t *testing.T) {
	router := newTestRouter(&mockTagService{
		createFn: func(context.Context, string) (*model.Tag, error) {
			t.Fatal("Create should not be reached for a non-admin")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tags", strings.NewReader(`{"name":"新タグ"}`))
	req.Header.Set("Authorization", "Bearer user-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestRouter_WriteWithAdminToken(t *testing.T) {
	router := newTestRouter(&mockTagService{
		createFn: func(_ context.Context, name string) (*model.Tag, error) {
			return &model.Tag{ID: 9, Name: name}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tags", strings.NewReader(`{"name":"新タグ"}`))
	req.Header.Set("Authorization", "Bearer admin-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp tagResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != 9 || resp.Name != "新タグ" {
		t.Errorf("tag = %+v", resp)
	}
}

func TestRouter_VerifyRequiresToken(t *testing.T) {
	router := newTestRouter(&mockTagService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/verify", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(&mockTagService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want ok", resp["status"])
	}
}
