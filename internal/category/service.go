// Package category は求人カテゴリ管理のドメインロジックを提供する。
package category

import (
	"context"
	"strings"

	"github.com/hitoshi/campushub/internal/model"
	"github.com/hitoshi/campushub/internal/repository"
)

// Store はカテゴリの永続化に必要なインターフェース。
type Store interface {
	FindAll(ctx context.Context, opts repository.ListOptions) ([]*model.JobCategory, error)
	FindByID(ctx context.Context, id int64) (*model.JobCategory, error)
	Create(ctx context.Context, category *model.JobCategory) (*model.JobCategory, error)
	Update(ctx context.Context, id int64, changes map[string]any) (*model.JobCategory, error)
	Delete(ctx context.Context, id int64) error
}

// UsageCounter はカテゴリを参照している求人数の取得インターフェース。
// repository.JobPostingRepoの部分集合として定義する。
type UsageCounter interface {
	CountByCategory(ctx context.Context, categoryID int64) (int, error)
}

// Service は求人カテゴリ管理のサービス層。
// カテゴリは求人から外部キーで参照されるため、使用中のカテゴリは削除できない。
type Service struct {
	categories Store
	usage      UsageCounter
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(categories Store, usage UsageCounter) *Service {
	return &Service{categories: categories, usage: usage}
}

// List は全カテゴリを名前順で返す。
func (s *Service) List(ctx context.Context) ([]*model.JobCategory, error) {
	return s.categories.FindAll(ctx, repository.ListOptions{OrderBy: "name"})
}

// Get は指定IDのカテゴリを取得する。
func (s *Service) Get(ctx context.Context, id int64) (*model.JobCategory, error) {
	return s.categories.FindByID(ctx, id)
}

// Create は新しいカテゴリを作成する。
func (s *Service) Create(ctx context.Context, name string) (*model.JobCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewValidationError("name", "カテゴリ名は必須です。")
	}
	return s.categories.Create(ctx, &model.JobCategory{Name: name})
}

// Update はカテゴリ名を変更する。
func (s *Service) Update(ctx context.Context, id int64, name string) (*model.JobCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewValidationError("name", "カテゴリ名は必須です。")
	}
	return s.categories.Update(ctx, id, map[string]any{"name": name})
}

// Delete はカテゴリを削除する。
// 求人から参照されているカテゴリの削除は拒否する。
func (s *Service) Delete(ctx context.Context, id int64) error {
	count, err := s.usage.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &model.AppError{
			Kind:    model.KindConflict,
			Message: "求人から参照されているカテゴリは削除できません。",
		}
	}
	return s.categories.Delete(ctx, id)
}
