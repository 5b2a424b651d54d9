package jobposting

import (
	"context"
	"fmt"
	"slices"

	"github.com/hitoshi/campushub/internal/model"
)

// TagLinker は求人とタグの関連リンクを操作するインターフェース。
// repository.JobPostingRepoの部分集合として定義する。
type TagLinker interface {
	ListTagIDs(ctx context.Context, postingID int64) ([]int64, error)
	AddTagLinks(ctx context.Context, postingID int64, tagIDs []int64) error
	RemoveTagLinks(ctx context.Context, postingID int64, tagIDs []int64) error
}

// TagFinder はタグの存在確認に必要なインターフェース。
type TagFinder interface {
	FindByIDs(ctx context.Context, ids []int64) ([]*model.Tag, error)
}

// diffTagIDs は現在のタグID集合と目標集合の差分を返す。
// 目標集合の重複は除去され、返り値はいずれも昇順。
func diffTagIDs(current, target []int64) (toAdd, toRemove []int64) {
	currentSet := make(map[int64]bool, len(current))
	for _, id := range current {
		currentSet[id] = true
	}
	targetSet := make(map[int64]bool, len(target))
	for _, id := range target {
		targetSet[id] = true
	}

	for id := range targetSet {
		if !currentSet[id] {
			toAdd = append(toAdd, id)
		}
	}
	for id := range currentSet {
		if !targetSet[id] {
			toRemove = append(toRemove, id)
		}
	}

	slices.Sort(toAdd)
	slices.Sort(toRemove)
	return toAdd, toRemove
}

// reconcileTags は求人のタグ関連を目標集合へ完全置換する。
// 目標集合に存在しないタグIDが含まれる場合は参照エラーを返し、何も変更しない。
// 現在集合と目標集合が一致している場合は書き込みを行わない（冪等）。
// 適用した追加・削除リンク数を返す。
func reconcileTags(ctx context.Context, linker TagLinker, finder TagFinder, postingID int64, target []int64) (added, removed int, err error) {
	// 目標集合の全タグが実在することを先に確認する
	if len(target) > 0 {
		unique := slices.Compact(slices.Sorted(slices.Values(target)))
		found, err := finder.FindByIDs(ctx, unique)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to verify tags: %w", err)
		}
		if len(found) != len(unique) {
			return 0, 0, model.NewReferenceError("tags", nil)
		}
	}

	current, err := linker.ListTagIDs(ctx, postingID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list current tags: %w", err)
	}

	toAdd, toRemove := diffTagIDs(current, target)

	if len(toRemove) > 0 {
		if err := linker.RemoveTagLinks(ctx, postingID, toRemove); err != nil {
			return 0, 0, fmt.Errorf("failed to remove tag links: %w", err)
		}
	}
	if len(toAdd) > 0 {
		if err := linker.AddTagLinks(ctx, postingID, toAdd); err != nil {
			return 0, 0, fmt.Errorf("failed to add tag links: %w", err)
		}
	}

	return len(toAdd), len(toRemove), nil
}
