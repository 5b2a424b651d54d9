// Package jobposting は求人情報のドメインロジックを提供する。
package jobposting

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/campushub/internal/model"
	"github.com/hitoshi/campushub/internal/repository"
	"github.com/hitoshi/campushub/internal/security"
)

// PostingStore は求人の永続化に必要なインターフェース。
// repository.JobPostingRepoが実装する。
type PostingStore interface {
	FindByID(ctx context.Context, id int64) (*model.JobPosting, error)
	Create(ctx context.Context, posting *model.JobPosting) (*model.JobPosting, error)
	Update(ctx context.Context, id int64, changes map[string]any) (*model.JobPosting, error)
	Delete(ctx context.Context, id int64) error
	Paginate(ctx context.Context, page, pageSize int, filter repository.Filter, opts repository.ListOptions) (*repository.Page[model.JobPosting], error)
	Search(ctx context.Context, search repository.JobPostingSearch) ([]*model.JobPosting, error)
	LoadTags(ctx context.Context, postings []*model.JobPosting) error
	TagLinker
}

// TagStore はタグの存在確認に必要なインターフェース。
type TagStore interface {
	TagFinder
}

// ReconcileRecorder はタグ関連付け更新のメトリクス記録インターフェース。
type ReconcileRecorder interface {
	RecordTagsReconciled(added, removed int)
	RecordReconcileFailure()
}

// CreateInput は求人作成の入力。
type CreateInput struct {
	Title        string
	Description  string
	Requirements string
	CompanyName  string
	Location     string
	Salary       *float64
	Source       string
	URL          string
	CategoryID   int64
	PublishedAt  time.Time
	ExpiresAt    time.Time
	TagIDs       []int64
}

// UpdateInput は求人更新の入力。nilのフィールドは変更しない。
// TagIDsがnilの場合はタグ関連を変更せず、空スライスの場合は全タグを外す。
type UpdateInput struct {
	Title        *string
	Description  *string
	Requirements *string
	CompanyName  *string
	Location     *string
	Salary       *float64
	Source       *string
	URL          *string
	CategoryID   *int64
	PublishedAt  *time.Time
	ExpiresAt    *time.Time
	TagIDs       []int64
}

// Service は求人管理のサービス層。
// 求人本体とタグ関連リンクは単一トランザクション内で更新し、
// いずれかの失敗で全体をロールバックする。
type Service struct {
	postings  PostingStore
	tags      TagStore
	sanitizer security.ContentSanitizerService
	recorder  ReconcileRecorder

	// runTx はトランザクション境界。束ねられたストアをworkに渡す。
	runTx func(ctx context.Context, work func(postings PostingStore, tags TagStore) error) error
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	db *sql.DB,
	postings *repository.JobPostingRepo,
	tags *repository.TagRepo,
	sanitizer security.ContentSanitizerService,
	recorder ReconcileRecorder,
) *Service {
	return &Service{
		postings:  postings,
		tags:      tags,
		sanitizer: sanitizer,
		recorder:  recorder,
		runTx: func(ctx context.Context, work func(postings PostingStore, tags TagStore) error) error {
			return repository.RunInTransaction(ctx, db, func(tx *sql.Tx) error {
				return work(postings.WithTx(tx), tags.WithTx(tx))
			})
		},
	}
}

// Create は求人を作成し、指定されたタグ集合を関連付ける。
// 本体の作成とタグ関連付けは単一トランザクションで行う。
func (s *Service) Create(ctx context.Context, publisherID int64, input CreateInput) (*model.JobPosting, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	posting := &model.JobPosting{
		Title:        strings.TrimSpace(input.Title),
		Description:  s.sanitizer.Sanitize(input.Description),
		Requirements: s.sanitizer.Sanitize(input.Requirements),
		CompanyName:  strings.TrimSpace(input.CompanyName),
		Location:     strings.TrimSpace(input.Location),
		Salary:       input.Salary,
		Source:       strings.TrimSpace(input.Source),
		URL:          strings.TrimSpace(input.URL),
		CategoryID:   input.CategoryID,
		PublisherID:  publisherID,
		PublishedAt:  input.PublishedAt,
		ExpiresAt:    input.ExpiresAt,
	}

	var created *model.JobPosting
	err := s.runTx(ctx, func(postings PostingStore, tags TagStore) error {
		var err error
		created, err = postings.Create(ctx, posting)
		if err != nil {
			return err
		}

		added, removed, err := reconcileTags(ctx, postings, tags, created.ID, input.TagIDs)
		if err != nil {
			s.recorder.RecordReconcileFailure()
			return err
		}
		s.recorder.RecordTagsReconciled(added, removed)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.postings.LoadTags(ctx, []*model.JobPosting{created}); err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	return created, nil
}

// Update は求人を部分更新する。
// TagIDsが非nilの場合、タグ関連を指定集合へ完全置換する。
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*model.JobPosting, error) {
	changes, err := s.buildChanges(input)
	if err != nil {
		return nil, err
	}

	var updated *model.JobPosting
	err = s.runTx(ctx, func(postings PostingStore, tags TagStore) error {
		var err error
		if len(changes) > 0 {
			updated, err = postings.Update(ctx, id, changes)
		} else {
			updated, err = postings.FindByID(ctx, id)
		}
		if err != nil {
			return err
		}

		if input.TagIDs != nil {
			added, removed, err := reconcileTags(ctx, postings, tags, id, input.TagIDs)
			if err != nil {
				s.recorder.RecordReconcileFailure()
				return err
			}
			s.recorder.RecordTagsReconciled(added, removed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.postings.LoadTags(ctx, []*model.JobPosting{updated}); err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	return updated, nil
}

// Get は求人をタグ付きで取得する。
func (s *Service) Get(ctx context.Context, id int64) (*model.JobPosting, error) {
	posting, err := s.postings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.postings.LoadTags(ctx, []*model.JobPosting{posting}); err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	return posting, nil
}

// List は求人を新しい順にページングして返す。タグもロードする。
func (s *Service) List(ctx context.Context, page, pageSize int) (*repository.Page[model.JobPosting], error) {
	result, err := s.postings.Paginate(ctx, page, pageSize, nil, repository.ListOptions{
		OrderBy: "published_at",
		Desc:    true,
	})
	if err != nil {
		return nil, err
	}
	if err := s.postings.LoadTags(ctx, result.Data); err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	return result, nil
}

// Search は条件に合致する求人をタグ付きで返す。
func (s *Service) Search(ctx context.Context, search repository.JobPostingSearch) ([]*model.JobPosting, error) {
	postings, err := s.postings.Search(ctx, search)
	if err != nil {
		return nil, err
	}
	if err := s.postings.LoadTags(ctx, postings); err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	return postings, nil
}

// Delete は求人を削除する。タグ関連リンクはカスケード削除される。
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.postings.Delete(ctx, id)
}

func validateCreate(input CreateInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return model.NewValidationError("title", "タイトルは必須です。")
	}
	if strings.TrimSpace(input.CompanyName) == "" {
		return model.NewValidationError("company_name", "企業名は必須です。")
	}
	if input.CategoryID <= 0 {
		return model.NewValidationError("category_id", "カテゴリは必須です。")
	}
	if input.ExpiresAt.IsZero() {
		return model.NewValidationError("expires_at", "掲載期限は必須です。")
	}
	if !input.PublishedAt.IsZero() && !input.ExpiresAt.After(input.PublishedAt) {
		return model.NewValidationError("expires_at", "掲載期限は掲載開始より後である必要があります。")
	}
	return nil
}

// buildChanges は部分更新の入力をカラム名→値のマップへ変換する。
func (s *Service) buildChanges(input UpdateInput) (map[string]any, error) {
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
	if input.Requirements != nil {
		changes["requirements"] = s.sanitizer.Sanitize(*input.Requirements)
	}
	if input.CompanyName != nil {
		name := strings.TrimSpace(*input.CompanyName)
		if name == "" {
			return nil, model.NewValidationError("company_name", "企業名は必須です。")
		}
		changes["company_name"] = name
	}
	if input.Location != nil {
		changes["location"] = strings.TrimSpace(*input.Location)
	}
	if input.Salary != nil {
		changes["salary"] = *input.Salary
	}
	if input.Source != nil {
		changes["source"] = strings.TrimSpace(*input.Source)
	}
	if input.URL != nil {
		changes["url"] = strings.TrimSpace(*input.URL)
	}
	if input.CategoryID != nil {
		if *input.CategoryID <= 0 {
			return nil, model.NewValidationError("category_id", "カテゴリは必須です。")
		}
		changes["category_id"] = *input.CategoryID
	}
	if input.PublishedAt != nil {
		changes["published_at"] = *input.PublishedAt
	}
	if input.ExpiresAt != nil {
		changes["expires_at"] = *input.ExpiresAt
	}

	return changes, nil
}
