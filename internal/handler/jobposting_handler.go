package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/campushub/internal/jobposting"
	"github.com/hitoshi/campushub/internal/middleware"
	"github.com/hitoshi/campushub/internal/model"
	"github.com/hitoshi/campushub/internal/repository"
)

// JobPostingServiceInterface は求人ハンドラーが必要とするサービスインターフェース。
type JobPostingServiceInterface interface {
	Create(ctx context.Context, publisherID int64, input jobposting.CreateInput) (*model.JobPosting, error)
	Update(ctx context.Context, id int64, input jobposting.UpdateInput) (*model.JobPosting, error)
	Get(ctx context.Context, id int64) (*model.JobPosting, error)
	List(ctx context.Context, page, pageSize int) (*repository.Page[model.JobPosting], error)
	Search(ctx context.Context, search repository.JobPostingSearch) ([]*model.JobPosting, error)
	Delete(ctx context.Context, id int64) error
}

// JobPostingHandler は求人APIのHTTPハンドラー。
type JobPostingHandler struct {
	service JobPostingServiceInterface
}

// NewJobPostingHandler はJobPostingHandlerを生成する。
func NewJobPostingHandler(service JobPostingServiceInterface) *JobPostingHandler {
	return &JobPostingHandler{service: service}
}

// tagResponse はタグのAPIレスポンス。
type tagResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// jobPostingResponse は求人のAPIレスポンス。
type jobPostingResponse struct {
	ID           int64         `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Requirements string        `json:"requirements"`
	CompanyName  string        `json:"company_name"`
	Location     string        `json:"location"`
	Salary       *float64      `json:"salary,omitempty"`
	Source       string        `json:"source"`
	URL          string        `json:"url"`
	CategoryID   int64         `json:"category_id"`
	PublisherID  int64         `json:"publisher_id"`
	PublishedAt  time.Time     `json:"published_at"`
	ExpiresAt    time.Time     `json:"expires_at"`
	Tags         []tagResponse `json:"tags"`
}

func toJobPostingResponse(p *model.JobPosting) jobPostingResponse {
	tags := make([]tagResponse, len(p.Tags))
	for i, t := range p.Tags {
		tags[i] = tagResponse{ID: t.ID, Name: t.Name}
	}
	return jobPostingResponse{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Requirements: p.Requirements,
		CompanyName:  p.CompanyName,
		Location:     p.Location,
		Salary:       p.Salary,
		Source:       p.Source,
		URL:          p.URL,
		CategoryID:   p.CategoryID,
		PublisherID:  p.PublisherID,
		PublishedAt:  p.PublishedAt,
		ExpiresAt:    p.ExpiresAt,
		Tags:         tags,
	}
}

func toJobPostingResponses(postings []*model.JobPosting) []jobPostingResponse {
	out := make([]jobPostingResponse, len(postings))
	for i, p := range postings {
		out[i] = toJobPostingResponse(p)
	}
	return out
}

// listEnvelope はページング付き一覧のAPIレスポンス。
type listEnvelope[T any] struct {
	Data      []T `json:"data"`
	Total     int `json:"total"`
	Page      int `json:"page"`
	PageSize  int `json:"page_size"`
	PageCount int `json:"page_count"`
}

// createJobRequest は求人作成リクエストのボディ。
type createJobRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	CompanyName  string    `json:"company_name"`
	Location     string    `json:"location"`
	Salary       *float64  `json:"salary"`
	Source       string    `json:"source"`
	URL          string    `json:"url"`
	CategoryID   int64     `json:"category_id"`
	PublishedAt  time.Time `json:"published_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	Tags         []int64   `json:"tags"`
}

// updateJobRequest は求人更新リクエストのボディ。
// 省略されたフィールドは変更しない。tagsはnullで無変更、[]で全解除、ID列で完全置換。
type updateJobRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Requirements *string    `json:"requirements"`
	CompanyName  *string    `json:"company_name"`
	Location     *string    `json:"location"`
	Salary       *float64   `json:"salary"`
	Source       *string    `json:"source"`
	URL          *string    `json:"url"`
	CategoryID   *int64     `json:"category_id"`
	PublishedAt  *time.Time `json:"published_at"`
	ExpiresAt    *time.Time `json:"expires_at"`
	Tags         []int64    `json:"tags"`
}

// List は求人一覧を返す。
// category・q・allのいずれかが指定された場合は検索、それ以外はページング一覧。
// GET /api/v1/jobs
func (h *JobPostingHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Has("category") || query.Has("q") || query.Has("all") {
		search := repository.JobPostingSearch{
			CategoryID: int64(queryInt(r, "category", 0)),
			Text:       query.Get("q"),
			ActiveOnly: query.Get("all") != "true",
		}
		postings, err := h.service.Search(r.Context(), search)
		if err != nil {
			middleware.WriteError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]jobPostingResponse{
			"data": toJobPostingResponses(postings),
		})
		return
	}

	page, pageSize := pageParams(r)
	result, err := h.service.List(r.Context(), page, pageSize)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listEnvelope[jobPostingResponse]{
		Data:      toJobPostingResponses(result.Data),
		Total:     result.Total,
		Page:      result.Page,
		PageSize:  result.PageSize,
		PageCount: result.PageCount,
	})
}

// Get は求人詳細を返す。
// GET /api/v1/jobs/{id}
func (h *JobPostingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	posting, err := h.service.Get(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobPostingResponse(posting))
}

// Create は求人を作成する。
// POST /api/v1/jobs
func (h *JobPostingHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	var req createJobRequest
	if !decodeBody(w, r, &req) {
		return
	}

	posting, err := h.service.Create(r.Context(), principal.ID, jobposting.CreateInput{
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
		CompanyName:  req.CompanyName,
		Location:     req.Location,
		Salary:       req.Salary,
		Source:       req.Source,
		URL:          req.URL,
		CategoryID:   req.CategoryID,
		PublishedAt:  req.PublishedAt,
		ExpiresAt:    req.ExpiresAt,
		TagIDs:       req.Tags,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toJobPostingResponse(posting))
}

// Update は求人を部分更新する。
// PUT /api/v1/jobs/{id}
func (h *JobPostingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateJobRequest
	if !decodeBody(w, r, &req) {
		return
	}

	posting, err := h.service.Update(r.Context(), id, jobposting.UpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
		CompanyName:  req.CompanyName,
		Location:     req.Location,
		Salary:       req.Salary,
		Source:       req.Source,
		URL:          req.URL,
		CategoryID:   req.CategoryID,
		PublishedAt:  req.PublishedAt,
		ExpiresAt:    req.ExpiresAt,
		TagIDs:       req.Tags,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobPostingResponse(posting))
}

// Delete は求人を削除する。
// DELETE /api/v1/jobs/{id}
func (h *JobPostingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
