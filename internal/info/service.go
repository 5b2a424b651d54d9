// Package info は大学の基本情報（連絡先・所在地・窓口案内など）のドメインロジックを提供する。
// エントリは "contact" のような自然キーで識別され、同一キーへの保存は上書きになる。
package info

import (
	"context"
	"strings"
	"time"

	"github.com/hitoshi/campushub/internal/model"
	"github.com/hitoshi/campushub/internal/repository"
)

// Store は大学情報の永続化に必要なインターフェース。
// repository.InfoRepoが実装する。
type Store interface {
	FindAll(ctx context.Context, opts repository.ListOptions) ([]*model.InfoEntry, error)
	FindByKey(ctx context.Context, key string) (*model.InfoEntry, error)
	Create(ctx context.Context, entry *model.InfoEntry) (*model.InfoEntry, error)
	Update(ctx context.Context, id int64, changes map[string]any) (*model.InfoEntry, error)
	Delete(ctx context.Context, id int64) error
}

// UpsertInput は大学情報の保存内容。キーを除く全フィールドを置き換える。
type UpsertInput struct {
	Title   string
	Content string
	Address string
	Phone   string
	Email   string
}

// Service は大学情報のサービス層。
type Service struct {
	entries Store
	now     func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(entries Store) *Service {
	return &Service{entries: entries, now: time.Now}
}

// List は全エントリをキー順で返す。
func (s *Service) List(ctx context.Context) ([]*model.InfoEntry, error) {
	return s.entries.FindAll(ctx, repository.ListOptions{OrderBy: "key"})
}

// GetByKey は指定キーのエントリを取得する。
func (s *Service) GetByKey(ctx context.Context, key string) (*model.InfoEntry, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}

	entry, err := s.entries.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, model.NewKeyNotFoundError("大学情報", key)
	}
	return entry, nil
}

// Upsert は指定キーのエントリを保存する。
// キーが既存なら内容を置き換え、なければ新規作成する。更新日時は保存のたびに進む。
func (s *Service) Upsert(ctx context.Context, key string, input UpsertInput) (*model.InfoEntry, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}

	existing, err := s.entries.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		return s.entries.Create(ctx, &model.InfoEntry{
			Key:       key,
			Title:     strings.TrimSpace(input.Title),
			Content:   input.Content,
			Address:   strings.TrimSpace(input.Address),
			Phone:     strings.TrimSpace(input.Phone),
			Email:     strings.TrimSpace(input.Email),
			UpdatedAt: s.now(),
		})
	}

	return s.entries.Update(ctx, existing.ID, map[string]any{
		"title":      strings.TrimSpace(input.Title),
		"content":    input.Content,
		"address":    strings.TrimSpace(input.Address),
		"phone":      strings.TrimSpace(input.Phone),
		"email":      strings.TrimSpace(input.Email),
		"updated_at": s.now(),
	})
}

// DeleteByKey は指定キーのエントリを削除する。
func (s *Service) DeleteByKey(ctx context.Context, key string) error {
	entry, err := s.GetByKey(ctx, key)
	if err != nil {
		return err
	}
	return s.entries.Delete(ctx, entry.ID)
}

// normalizeKey はキーの前後空白を除去し、空キーを検証エラーにする。
func normalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", model.NewValidationError("key", "キーは必須です。")
	}
	return key, nil
}
