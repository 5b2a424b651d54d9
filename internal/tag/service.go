// Package tag はタグ管理のドメインロジックを提供する。
package tag

import (
	"context"
	"strings"

	"github.com/hitoshi/campushub/internal/model"
	"github.com/hitoshi/campushub/internal/repository"
)

// Store はタグの永続化に必要なインターフェース。
// repository.TagRepoが実装する。
type Store interface {
	FindAll(ctx context.Context, opts repository.ListOptions) ([]*model.Tag, error)
	Create(ctx context.Context, tag *model.Tag) (*model.Tag, error)
}

// Service はタグ管理のサービス層。
// タグは求人の作成・更新とは独立したライフサイクルを持ち、
// このサービス経由で随時作成される。既存タグとの重複は一意制約で弾かれる。
type Service struct {
	tags Store
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(tags Store) *Service {
	return &Service{tags: tags}
}

// List は全タグを名前順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Tag, error) {
	return s.tags.FindAll(ctx, repository.ListOptions{OrderBy: "name"})
}

// Create は新しいタグを作成する。
// 名前は前後の空白を除去して保存する。既存タグと重複する場合は競合エラーを返す。
func (s *Service) Create(ctx context.Context, name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewValidationError("name", "タグ名は必須です。")
	}
	return s.tags.Create(ctx, &model.Tag{Name: name})
}
