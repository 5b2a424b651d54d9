package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/campushub/internal/jobposting"
	"github.com/hitoshi/campushub/internal/middleware"
	"github.com/hitoshi/campushub/internal/model"
	"github.com/hitoshi/campushub/internal/repository"
)

type mockJobPostingService struct {
	createFn func(ctx context.Context, publisherID int64, input jobposting.CreateInput) (*model.JobPosting, error)
	updateFn func(ctx context.Context, id int64, input jobposting.UpdateInput) (*model.JobPosting, error)
	getFn    func(ctx context.Context, id int64) (*model.JobPosting, error)
	listFn   func(ctx context.Context, page, pageSize int) (*repository.Page[model.JobPosting], error)
	searchFn func(ctx context.Context, search repository.JobPostingSearch) ([]*model.JobPosting, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (m *mockJobPostingService) Create(ctx context.Context, publisherID int64, input jobposting.CreateInput) (*model.JobPosting, error) {
	return m.createFn(ctx, publisherID, input)
}

func (m *mockJobPostingService) Update(ctx context.Context, id int64, input jobposting.UpdateInput) (*model.JobPosting, error) {
	return m.updateFn(ctx, id, input)
}

func (m *mockJobPostingService) Get(ctx context.Context, id int64) (*model.JobPosting, error) {
	return m.getFn(ctx, id)
}

func (m *mockJobPostingService) List(ctx context.Context, page, pageSize int) (*repository.Page[model.JobPosting], error) {
	return m.listFn(ctx, page, pageSize)
}

func (m *mockJobPostingService) Search(ctx context.Context, search repository.JobPostingSearch) ([]*model.JobPosting, error) {
	return m.searchFn(ctx, search)
}

func (m *mockJobPostingService) Delete(ctx context.Context, id int64) error {
	return m.deleteFn(ctx, id)
}

func sampleJobPosting() *model.JobPosting {
	return &model.JobPosting{
		ID:          1,
		Title:       "バックエンドエンジニア",
		CompanyName: "テック株式会社",
		CategoryID:  2,
		PublisherID: 7,
		PublishedAt: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC),
		ExpiresAt:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Tags:        []model.Tag{{ID: 10, Name: "Go"}},
	}
}

func jobRouter(h *JobPostingHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/api/v1/jobs", h.List)
	r.Get("/api/v1/jobs/{id}", h.Get)
	r.Post("/api/v1/jobs", h.Create)
	r.Put("/api/v1/jobs/{id}", h.Update)
	r.Delete("/api/v1/jobs/{id}", h.Delete)
	return r
}

func TestJobPostingHandler_List_Paginated(t *testing.T) {
	service := &mockJobPostingService{
		listFn: func(_ context.Context, page, pageSize int) (*repository.Page[model.JobPosting], error) {
			if page != 2 || pageSize != 10 {
				t.Errorf("page = %d pageSize = %d, want 2/10", page, pageSize)
			}
			return &repository.Page[model.JobPosting]{
				Data:      []*model.JobPosting{sampleJobPosting()},
				Total:     11,
				Page:      page,
				PageSize:  pageSize,
				PageCount: 2,
			}, nil
		},
		searchFn: func(context.Context, repository.JobPostingSearch) ([]*model.JobPosting, error) {
			t.Fatal("Search should not be called without filters")
			return nil, nil
		},
	}
	r := jobRouter(NewJobPostingHandler(service))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs?page=2&page_size=10", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp listEnvelope[jobPostingResponse]
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 11 || resp.PageCount != 2 || len(resp.Data) != 1 {
		t.Errorf("envelope = %+v", resp)
	}
	if len(resp.Data[0].Tags) != 1 || resp.Data[0].Tags[0].Name != "Go" {
		t.Errorf("tags = %+v", resp.Data[0].Tags)
	}
}

func TestJobPostingHandler_List_FilteredSearch(t *testing.T) {
	var got repository.JobPostingSearch
	service := &mockJobPostingService{
		searchFn: func(_ context.Context, search repository.JobPostingSearch) ([]*model.JobPosting, error) {
			got = search
			return []*model.JobPosting{sampleJobPosting()}, nil
		},
		listFn: func(context.Context, int, int) (*repository.Page[model.JobPosting], error) {
			t.Fatal("List should not be called with filters")
			return nil, nil
		},
	}
	r := jobRouter(NewJobPostingHandler(service))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs?category=2&q=Go", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if got.CategoryID != 2 || got.Text != "Go" || !got.ActiveOnly {
		t.Errorf("search = %+v", got)
	}
	var resp map[string][]jobPostingResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp["data"]) != 1 {
		t.Errorf("data = %+v", resp["data"])
	}
}

func TestJobPostingHandler_List_AllDisablesActiveOnly(t *testing.T) {
	service := &mockJobPostingService{
		searchFn: func(_ context.Context, search repository.JobPostingSearch) ([]*model.JobPosting, error) {
			if search.ActiveOnly {
				t.Error("ActiveOnly should be false when all=true")
			}
			return nil, nil
		},
	}
	r := jobRouter(NewJobPostingHandler(service))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs?all=true", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestJobPostingHandler_Get_InvalidID(t *testing.T) {
	service := &mockJobPostingService{
		getFn: func(context.Context, int64) (*model.JobPosting, error) {
			t.Fatal("Get should not be called for invalid id")
			return nil, nil
		},
	}
	r := jobRouter(NewJobPostingHandler(service))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestJobPostingHandler_Get_NotFound(t *testing.T) {
	service := &mockJobPostingService{
		getFn: func(context.Context, int64) (*model.JobPosting, error) {
			return nil, model.NewNotFoundError("求人", 99)
		},
	}
	r := jobRouter(NewJobPostingHandler(service))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/99", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestJobPostingHandler_Create_PassesPrincipalAndTags(t *testing.T) {
	var gotPublisher int64
	var gotInput jobposting.CreateInput
	service := &mockJobPostingService{
		createFn: func(_ context.Context, publisherID int64, input jobposting.CreateInput) (*model.JobPosting, error) {
			gotPublisher = publisherID
			gotInput = input
			return sampleJobPosting(), nil
		},
	}
	r := jobRouter(NewJobPostingHandler(service))

	body := `{"title":"バックエンドエンジニア","company_name":"テック株式会社","category_id":2,` +
		`"published_at":"2025-04-01T09:00:00Z","expires_at":"2025-06-01T00:00:00Z","tags":[10,11]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(body))
	req = req.WithContext(middleware.ContextWithPrincipal(req.Context(),
		&model.Principal{ID: 7, Role: model.RoleAdmin}))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if gotPublisher != 7 {
		t.Errorf("publisherID = %d, want 7", gotPublisher)
	}
	if len(gotInput.TagIDs) != 2 || gotInput.TagIDs[0] != 10 {
		t.Errorf("tagIDs = %v", gotInput.TagIDs)
	}
}

func TestJobPostingHandler_Create_NoPrincipal(t *testing.T) {
	service := &mockJobPostingService{
		createFn: func(context.Context, int64, jobposting.CreateInput) (*model.JobPosting, error) {
			t.Fatal("Create should not be called without a principal")
			return nil, nil
		},
	}
	r := jobRouter(NewJobPostingHandler(service))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestJobPostingHandler_Update_TagSemantics(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantTags []int64
		wantNil  bool
	}{
		{name: "tags省略は無変更", body: `{"title":"改訂"}`, wantNil: true},
		{name: "空配列は全解除", body: `{"tags":[]}`, wantTags: []int64{}},
		{name: "ID列は完全置換", body: `{"tags":[3,5]}`, wantTags: []int64{3, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotInput jobposting.UpdateInput
			service := &mockJobPostingService{
				updateFn: func(_ context.Context, id int64, input jobposting.UpdateInput) (*model.JobPosting, error) {
					gotInput = input
					return sampleJobPosting(), nil
				},
			}
			r := jobRouter(NewJobPostingHandler(service))

			req := httptest.NewRequest(http.MethodPut, "/api/v1/jobs/1", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", w.Code, w.Body.String())
			}
			if tt.wantNil {
				if gotInput.TagIDs != nil {
					t.Errorf("tagIDs = %v, want nil", gotInput.TagIDs)
				}
				return
			}
			if gotInput.TagIDs == nil || len(gotInput.TagIDs) != len(tt.wantTags) {
				t.Fatalf("tagIDs = %v, want %v", gotInput.TagIDs, tt.wantTags)
			}
			for i, id := range tt.wantTags {
				if gotInput.TagIDs[i] != id {
					t.Errorf("tagIDs[%d] = %d, want %d", i, gotInput.TagIDs[i], id)
				}
			}
		})
	}
}

func TestJobPostingHandler_Delete_NoContent(t *testing.T) {
	service := &mockJobPostingService{
		deleteFn: func(_ context.Context, id int64) error {
			if id != 5 {
				t.Errorf("id = %d, want 5", id)
			}
			return nil
		},
	}
	r := jobRouter(NewJobPostingHandler(service))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/jobs/5", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
}
