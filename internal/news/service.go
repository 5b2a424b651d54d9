// Package news はお知らせ記事のドメインロジックを提供する。
package news

import (
	"context"
	"strings"
	"time"

	"github.com/hitoshi/campushub/internal/model"
	"github.com/hitoshi/campushub/internal/repository"
	"github.com/hitoshi/campushub/internal/security"
)

// Store はお知らせの永続化に必要なインターフェース。
type Store interface {
	FindByID(ctx context.Context, id int64) (*model.News, error)
	Create(ctx context.Context, news *model.News) (*model.News, error)
	Update(ctx context.Context, id int64, changes map[string]any) (*model.News, error)
	Delete(ctx context.Context, id int64) error
	Paginate(ctx context.Context, page, pageSize int, filter repository.Filter, opts repository.ListOptions) (*repository.Page[model.News], error)
}

// CreateInput はお知らせ作成の入力。
type CreateInput struct {
	Title       string
	Subtitle    string
	Content     string
	ImageURL    string
	PublishedAt time.Time
	ExpiresAt   *time.Time
}

// UpdateInput はお知らせ更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Title       *string
	Subtitle    *string
	Content     *string
	ImageURL    *string
	PublishedAt *time.Time
	ExpiresAt   *time.Time
}

// Service はお知らせ管理のサービス層。
// 本文は管理者が作成したHTMLであり、保存前にサニタイズする。
type Service struct {
	news      Store
	sanitizer security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(news Store, sanitizer security.ContentSanitizerService) *Service {
	return &Service{news: news, sanitizer: sanitizer}
}

// List はお知らせを新しい順にページングして返す。
func (s *Service) List(ctx context.Context, page, pageSize int) (*repository.Page[model.News], error) {
	return s.news.Paginate(ctx, page, pageSize, nil, repository.ListOptions{
		OrderBy: "published_at",
		Desc:    true,
	})
}

// Get は指定IDのお知らせを取得する。
func (s *Service) Get(ctx context.Context, id int64) (*model.News, error) {
	return s.news.FindByID(ctx, id)
}

// Create はお知らせを作成する。authorIDには認証済みプリンシパルのIDを渡す。
func (s *Service) Create(ctx context.Context, authorID int64, input CreateInput) (*model.News, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, model.NewValidationError("title", "タイトルは必須です。")
	}

	publishedAt := input.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now()
	}

	return s.news.Create(ctx, &model.News{
		Title:       title,
		Subtitle:    strings.TrimSpace(input.Subtitle),
		Content:     s.sanitizer.Sanitize(input.Content),
		ImageURL:    strings.TrimSpace(input.ImageURL),
		AuthorID:    authorID,
		PublishedAt: publishedAt,
		ExpiresAt:   input.ExpiresAt,
	})
}

// Update はお知らせを部分更新する。
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*model.News, error) {
	changes := map[string]any{}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, model.NewValidationError("title", "タイトルは必須です。")
		}
		changes["title"] = title
	}
	if input.Subtitle != nil {
		changes["subtitle"] = strings.TrimSpace(*input.Subtitle)
	}
	if input.Content != nil {
		changes["content"] = s.sanitizer.Sanitize(*input.Content)
	}
	if input.ImageURL != nil {
		changes["image_url"] = strings.TrimSpace(*input.ImageURL)
	}
	if input.PublishedAt != nil {
		changes["published_at"] = *input.PublishedAt
	}
	if input.ExpiresAt != nil {
		changes["expires_at"] = *input.ExpiresAt
	}

	if len(changes) == 0 {
		return s.news.FindByID(ctx, id)
	}
	return s.news.Update(ctx, id, changes)
}

// Delete はお知らせを削除する。
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.news.Delete(ctx, id)
}
