// Package opportunity は学内機会（奨学金・研究プロジェクト等）のドメインロジックを提供する。
package opportunity

import (
	"context"
	"strings"
	"time"

	"github.com/hitoshi/campushub/internal/model"
	"github.com/hitoshi/campushub/internal/repository"
	"github.com/hitoshi/campushub/internal/security"
)

// Store は学内機会の永続化に必要なインターフェース。
type Store interface {
	FindByID(ctx context.Context, id int64) (*model.Opportunity, error)
	Create(ctx context.Context, opportunity *model.Opportunity) (*model.Opportunity, error)
	Update(ctx context.Context, id int64, changes map[string]any) (*model.Opportunity, error)
	Delete(ctx context.Context, id int64) error
	Paginate(ctx context.Context, page, pageSize int, filter repository.Filter, opts repository.ListOptions) (*repository.Page[model.Opportunity], error)
}

// TypeStore は機会種別の永続化に必要なインターフェース。
type TypeStore interface {
	FindAll(ctx context.Context, opts repository.ListOptions) ([]*model.OpportunityType, error)
	Create(ctx context.Context, opportunityType *model.OpportunityType) (*model.OpportunityType, error)
}

// CreateInput は学内機会作成の入力。
type CreateInput struct {
	Title       string
	Description string
	TypeID      int64
	PublishedAt time.Time
	Deadline    *time.Time
}

// UpdateInput は学内機会更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Title       *string
	Description *string
	TypeID      *int64
	PublishedAt *time.Time
	Deadline    *time.Time
}

// Service は学内機会管理のサービス層。
type Service struct {
	opportunities Store
	types         TypeStore
	sanitizer     security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(opportunities Store, types TypeStore, sanitizer security.ContentSanitizerService) *Service {
	return &Service{opportunities: opportunities, types: types, sanitizer: sanitizer}
}

// List は学内機会を新しい順にページングして返す。
// typeIDが正の場合は種別で絞り込む。
func (s *Service) List(ctx context.Context, page, pageSize int, typeID int64) (*repository.Page[model.Opportunity], error) {
	var filter repository.Filter
	if typeID > 0 {
		filter = repository.Filter{"type_id": typeID}
	}
	return s.opportunities.Paginate(ctx, page, pageSize, filter, repository.ListOptions{
		OrderBy: "published_at",
		Desc:    true,
	})
}

// Get は指定IDの学内機会を取得する。
func (s *Service) Get(ctx context.Context, id int64) (*model.Opportunity, error) {
	return s.opportunities.FindByID(ctx, id)
}

// Create は学内機会を作成する。authorIDには認証済みプリンシパルのIDを渡す。
// 存在しない種別IDを指定した場合は外部キー制約により参照エラーとなる。
func (s *Service) Create(ctx context.Context, authorID int64, input CreateInput) (*model.Opportunity, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, model.NewValidationError("title", "タイトルは必須です。")
	}
	if input.TypeID <= 0 {
		return nil, model.NewValidationError("type_id", "種別は必須です。")
	}

	publishedAt := input.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now()
	}

	return s.opportunities.Create(ctx, &model.Opportunity{
		Title:       title,
		Description: s.sanitizer.Sanitize(input.Description),
		TypeID:      input.TypeID,
		AuthorID:    authorID,
		PublishedAt: publishedAt,
		Deadline:    input.Deadline,
	})
}

// Update は学内機会を部分更新する。
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*model.Opportunity, error) {
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
	if input.TypeID != nil {
		if *input.TypeID <= 0 {
			return nil, model.NewValidationError("type_id", "種別は必須です。")
		}
		changes["type_id"] = *input.TypeID
	}
	if input.PublishedAt != nil {
		changes["published_at"] = *input.PublishedAt
	}
	if input.Deadline != nil {
		changes["deadline"] = *input.Deadline
	}

	if len(changes) == 0 {
		return s.opportunities.FindByID(ctx, id)
	}
	return s.opportunities.Update(ctx, id, changes)
}

// Delete は学内機会を削除する。
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.opportunities.Delete(ctx, id)
}

// ListTypes は全機会種別を名前順で返す。
func (s *Service) ListTypes(ctx context.Context) ([]*model.OpportunityType, error) {
	return s.types.FindAll(ctx, repository.ListOptions{OrderBy: "name"})
}

// CreateType は新しい機会種別を作成する。
func (s *Service) CreateType(ctx context.Context, name string) (*model.OpportunityType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewValidationError("name", "種別名は必須です。")
	}
	return s.types.Create(ctx, &model.OpportunityType{Name: name})
}
