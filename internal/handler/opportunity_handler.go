package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/campushub/internal/middleware"
	"github.com/hitoshi/campushub/internal/model"
	"github.com/hitoshi/campushub/internal/opportunity"
	"github.com/hitoshi/campushub/internal/repository"
)

// OpportunityServiceInterface は学内機会ハンドラーが必要とするサービスインターフェース。
type OpportunityServiceInterface interface {
	List(ctx context.Context, page, pageSize int, typeID int64) (*repository.Page[model.Opportunity], error)
	Get(ctx context.Context, id int64) (*model.Opportunity, error)
	Create(ctx context.Context, authorID int64, input opportunity.CreateInput) (*model.Opportunity, error)
	Update(ctx context.Context, id int64, input opportunity.UpdateInput) (*model.Opportunity, error)
	Delete(ctx context.Context, id int64) error
	ListTypes(ctx context.Context) ([]*model.OpportunityType, error)
	CreateType(ctx context.Context, name string) (*model.OpportunityType, error)
}

// OpportunityHandler は学内機会APIのHTTPハンドラー。
type OpportunityHandler struct {
	service OpportunityServiceInterface
}

// NewOpportunityHandler はOpportunityHandlerを生成する。
func NewOpportunityHandler(service OpportunityServiceInterface) *OpportunityHandler {
	return &OpportunityHandler{service: service}
}

// opportunityResponse は学内機会のAPIレスポンス。
type opportunityResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TypeID      int64      `json:"type_id"`
	AuthorID    int64      `json:"author_id"`
	PublishedAt time.Time  `json:"published_at"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

func toOpportunityResponse(o *model.Opportunity) opportunityResponse {
	return opportunityResponse{
		ID:          o.ID,
		Title:       o.Title,
		Description: o.Description,
		TypeID:      o.TypeID,
		AuthorID:    o.AuthorID,
		PublishedAt: o.PublishedAt,
		Deadline:    o.Deadline,
	}
}

// opportunityTypeResponse は機会種別のAPIレスポンス。
type opportunityTypeResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// createOpportunityRequest は学内機会作成リクエストのボディ。
type createOpportunityRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TypeID      int64      `json:"type_id"`
	PublishedAt time.Time  `json:"published_at"`
	Deadline    *time.Time `json:"deadline"`
}

// updateOpportunityRequest は学内機会更新リクエストのボディ。省略されたフィールドは変更しない。
type updateOpportunityRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	TypeID      *int64     `json:"type_id"`
	PublishedAt *time.Time `json:"published_at"`
	Deadline    *time.Time `json:"deadline"`
}

// List は学内機会を新しい順にページングして返す。typeクエリで種別を絞り込める。
// GET /api/v1/opportunities
func (h *OpportunityHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	typeID := int64(queryInt(r, "type", 0))

	result, err := h.service.List(r.Context(), page, pageSize, typeID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	out := make([]opportunityResponse, len(result.Data))
	for i, o := range result.Data {
		out[i] = toOpportunityResponse(o)
	}
	writeJSON(w, http.StatusOK, listEnvelope[opportunityResponse]{
		Data:      out,
		Total:     result.Total,
		Page:      result.Page,
		PageSize:  result.PageSize,
		PageCount: result.PageCount,
	})
}

// Get は学内機会の詳細を返す。
// GET /api/v1/opportunities/{id}
func (h *OpportunityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOpportunityResponse(item))
}

// Create は学内機会を作成する。
// POST /api/v1/opportunities
func (h *OpportunityHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	var req createOpportunityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	item, err := h.service.Create(r.Context(), principal.ID, opportunity.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		TypeID:      req.TypeID,
		PublishedAt: req.PublishedAt,
		Deadline:    req.Deadline,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOpportunityResponse(item))
}

// Update は学内機会を部分更新する。
// PUT /api/v1/opportunities/{id}
func (h *OpportunityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateOpportunityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	item, err := h.service.Update(r.Context(), id, opportunity.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		TypeID:      req.TypeID,
		PublishedAt: req.PublishedAt,
		Deadline:    req.Deadline,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOpportunityResponse(item))
}

// Delete は学内機会を削除する。
// DELETE /api/v1/opportunities/{id}
func (h *OpportunityHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// ListTypes は全機会種別を名前順で返す。
// GET /api/v1/opportunity-types
func (h *OpportunityHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.ListTypes(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	out := make([]opportunityTypeResponse, len(types))
	for i, t := range types {
		out[i] = opportunityTypeResponse{ID: t.ID, Name: t.Name}
	}
	writeJSON(w, http.StatusOK, map[string][]opportunityTypeResponse{"data": out})
}

// CreateType は機会種別を作成する。
// POST /api/v1/opportunity-types
func (h *OpportunityHandler) CreateType(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := h.service.CreateType(r.Context(), req.Name)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, opportunityTypeResponse{ID: created.ID, Name: created.Name})
}
