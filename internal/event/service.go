// Package event は学内イベントのドメインロジックを提供する。
package event

import (
	"context"
	"strings"
	"time"

	"github.com/hitoshi/campushub/internal/model"
	"github.com/hitoshi/campushub/internal/repository"
	"github.com/hitoshi/campushub/internal/security"
)

// Store はイベントの永続化に必要なインターフェース。
type Store interface {
	FindByID(ctx context.Context, id int64) (*model.Event, error)
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	Update(ctx context.Context, id int64, changes map[string]any) (*model.Event, error)
	Delete(ctx context.Context, id int64) error
	Paginate(ctx context.Context, page, pageSize int, filter repository.Filter, opts repository.ListOptions) (*repository.Page[model.Event], error)
}

// CreateInput はイベント作成の入力。
type CreateInput struct {
	Title           string
	Description     string
	Location        string
	RegistrationURL string
	StartsAt        time.Time
	EndsAt          *time.Time
}

// UpdateInput はイベント更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Title           *string
	Description     *string
	Location        *string
	RegistrationURL *string
	StartsAt        *time.Time
	EndsAt          *time.Time
}

// Service は学内イベント管理のサービス層。
type Service struct {
	events    Store
	sanitizer security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(events Store, sanitizer security.ContentSanitizerService) *Service {
	return &Service{events: events, sanitizer: sanitizer}
}

// List はイベントを開催日の近い順にページングして返す。
func (s *Service) List(ctx context.Context, page, pageSize int) (*repository.Page[model.Event], error) {
	return s.events.Paginate(ctx, page, pageSize, nil, repository.ListOptions{
		OrderBy: "starts_at",
		Desc:    true,
	})
}

// Get は指定IDのイベントを取得する。
func (s *Service) Get(ctx context.Context, id int64) (*model.Event, error) {
	return s.events.FindByID(ctx, id)
}

// Create はイベントを作成する。organizerIDには認証済みプリンシパルのIDを渡す。
func (s *Service) Create(ctx context.Context, organizerID int64, input CreateInput) (*model.Event, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, model.NewValidationError("title", "タイトルは必須です。")
	}
	if input.StartsAt.IsZero() {
		return nil, model.NewValidationError("starts_at", "開始日時は必須です。")
	}
	if input.EndsAt != nil && !input.EndsAt.After(input.StartsAt) {
		return nil, model.NewValidationError("ends_at", "終了日時は開始日時より後である必要があります。")
	}

	return s.events.Create(ctx, &model.Event{
		Title:           title,
		Description:     s.sanitizer.Sanitize(input.Description),
		Location:        strings.TrimSpace(input.Location),
		RegistrationURL: strings.TrimSpace(input.RegistrationURL),
		OrganizerID:     organizerID,
		StartsAt:        input.StartsAt,
		EndsAt:          input.EndsAt,
	})
}

// Update はイベントを部分更新する。
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*model.Event, error) {
	changes := map[string]any{}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, model.NewValidationError("title", "タイトルは必須です。")
		}
		changes["title"] = title
	}
	if input.Description != nil {
		changes["description"] = s.sanitizer.Sanitize(*input.Description)
	}
	if input.Location != nil {
		changes["location"] = strings.TrimSpace(*input.Location)
	}
	if input.RegistrationURL != nil {
		changes["registration_url"] = strings.TrimSpace(*input.RegistrationURL)
	}
	if input.StartsAt != nil {
		changes["starts_at"] = *input.StartsAt
	}
	if input.EndsAt != nil {
		changes["ends_at"] = *input.EndsAt
	}

	if len(changes) == 0 {
		return s.events.FindByID(ctx, id)
	}
	return s.events.Update(ctx, id, changes)
}

// Delete はイベントを削除する。
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.events.Delete(ctx, id)
}
