package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/campushub/internal/event"
	"github.com/hitoshi/campushub/internal/middleware"
	"github.com/hitoshi/campushub/internal/model"
	"github.com/hitoshi/campushub/internal/repository"
)

// EventServiceInterface はイベントハンドラーが必要とするサービスインターフェース。
type EventServiceInterface interface {
	List(ctx context.Context, page, pageSize int) (*repository.Page[model.Event], error)
	Get(ctx context.Context, id int64) (*model.Event, error)
	Create(ctx context.Context, organizerID int64, input event.CreateInput) (*model.Event, error)
	Update(ctx context.Context, id int64, input event.UpdateInput) (*model.Event, error)
	Delete(ctx context.Context, id int64) error
}

// EventHandler は学内イベントAPIのHTTPハンドラー。
type EventHandler struct {
	service EventServiceInterface
}

// NewEventHandler はEventHandlerを生成する。
func NewEventHandler(service EventServiceInterface) *EventHandler {
	return &EventHandler{service: service}
}

// eventResponse は学内イベントのAPIレスポンス。
type eventResponse struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Location        string     `json:"location"`
	RegistrationURL string     `json:"registration_url"`
	OrganizerID     int64      `json:"organizer_id"`
	StartsAt        time.Time  `json:"starts_at"`
	EndsAt          *time.Time `json:"ends_at,omitempty"`
}

func toEventResponse(e *model.Event) eventResponse {
	return eventResponse{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		Location:        e.Location,
		RegistrationURL: e.RegistrationURL,
		OrganizerID:     e.OrganizerID,
		StartsAt:        e.StartsAt,
		EndsAt:          e.EndsAt,
	}
}

// createEventRequest はイベント作成リクエストのボディ。
type createEventRequest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Location        string     `json:"location"`
	RegistrationURL string     `json:"registration_url"`
	StartsAt        time.Time  `json:"starts_at"`
	EndsAt          *time.Time `json:"ends_at"`
}

// updateEventRequest はイベント更新リクエストのボディ。省略されたフィールドは変更しない。
type updateEventRequest struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	Location        *string    `json:"location"`
	RegistrationURL *string    `json:"registration_url"`
	StartsAt        *time.Time `json:"starts_at"`
	EndsAt          *time.Time `json:"ends_at"`
}

// List はイベントを開催日の近い順にページングして返す。
// GET /api/v1/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	result, err := h.service.List(r.Context(), page, pageSize)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	out := make([]eventResponse, len(result.Data))
	for i, e := range result.Data {
		out[i] = toEventResponse(e)
	}
	writeJSON(w, http.StatusOK, listEnvelope[eventResponse]{
		Data:      out,
		Total:     result.Total,
		Page:      result.Page,
		PageSize:  result.PageSize,
		PageCount: result.PageCount,
	})
}

// Get はイベント詳細を返す。
// GET /api/v1/events/{id}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(item))
}

// Create はイベントを作成する。
// POST /api/v1/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	var req createEventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	item, err := h.service.Create(r.Context(), principal.ID, event.CreateInput{
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		RegistrationURL: req.RegistrationURL,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventResponse(item))
}

// Update はイベントを部分更新する。
// PUT /api/v1/events/{id}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateEventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	item, err := h.service.Update(r.Context(), id, event.UpdateInput{
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		RegistrationURL: req.RegistrationURL,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(item))
}

// Delete はイベントを削除する。
// DELETE /api/v1/events/{id}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
