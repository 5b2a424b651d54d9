package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/campushub/internal/model"
)

// linkField は結合テーブルの制約名をAPIフィールド名に対応させる。
// タグ側の外部キー違反はリクエストの tags フィールドの問題として報告する。
func linkField(constraint string) string {
	switch constraint {
	case "job_posting_tags_tag_id_fkey":
		return "tags"
	case "job_posting_tags_posting_id_fkey":
		return "posting_id"
	}
	return ""
}

// JobPostingSearch は求人検索の条件。
type JobPostingSearch struct {
	CategoryID int64  // 0は無条件
	Text       string // タイトル・本文の部分一致（大文字小文字無視）
	ActiveOnly bool   // 有効期限内のみ
}

// JobPostingRepo は求人のリポジトリ。
// ジェネリックCRUDに結合テーブル（job_posting_tags）の集合操作と検索を追加する。
type JobPostingRepo struct {
	*Generic[model.JobPosting]
	db DBTX
}

// NewJobPostingRepo はJobPostingRepoを生成する。
func NewJobPostingRepo(db DBTX) *JobPostingRepo {
	return &JobPostingRepo{
		Generic: NewGeneric[model.JobPosting](db, jobPostingMapper{}),
		db:      db,
	}
}

// WithTx はこのリポジトリをトランザクションに束ねた複製を返す。
func (r *JobPostingRepo) WithTx(tx DBTX) *JobPostingRepo {
	return &JobPostingRepo{
		Generic: NewGeneric[model.JobPosting](tx, jobPostingMapper{}),
		db:      tx,
	}
}

// ListTagIDs は指定求人に現在リンクされているタグID集合を返す。
func (r *JobPostingRepo) ListTagIDs(ctx context.Context, postingID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tag_id FROM job_posting_tags WHERE posting_id = $1 ORDER BY tag_id`,
		postingID,
	)
	if err != nil {
		return nil, translateError(err, "job_posting_tags", linkField)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, translateError(err, "job_posting_tags", linkField)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "job_posting_tags", linkField)
	}

	return ids, nil
}

// AddTagLinks は求人とタグのリンクを追加する。
// 存在しないタグIDが含まれる場合は tags フィールドの参照エラーになる。
func (r *JobPostingRepo) AddTagLinks(ctx context.Context, postingID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO job_posting_tags (posting_id, tag_id)
		 SELECT $1, unnest($2::bigint[])`,
		postingID, pq.Array(tagIDs),
	)
	if err != nil {
		return translateError(err, "job_posting_tags", linkField)
	}
	return nil
}

// RemoveTagLinks は求人とタグのリンクを削除する。
func (r *JobPostingRepo) RemoveTagLinks(ctx context.Context, postingID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM job_posting_tags WHERE posting_id = $1 AND tag_id = ANY($2)`,
		postingID, pq.Array(tagIDs),
	)
	if err != nil {
		return translateError(err, "job_posting_tags", linkField)
	}
	return nil
}

// LoadTags は求人リストの各要素に関連タグを読み込む。
// 結合テーブルとタグを1クエリで取得し、求人IDごとに振り分ける。
func (r *JobPostingRepo) LoadTags(ctx context.Context, postings []*model.JobPosting) error {
	if len(postings) == 0 {
		return nil
	}

	ids := make([]int64, len(postings))
	byID := make(map[int64]*model.JobPosting, len(postings))
	for i, p := range postings {
		ids[i] = p.ID
		byID[p.ID] = p
		p.Tags = []model.Tag{}
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT jpt.posting_id, t.id, t.name
		 FROM job_posting_tags jpt
		 JOIN tags t ON t.id = jpt.tag_id
		 WHERE jpt.posting_id = ANY($1)
		 ORDER BY t.name`,
		pq.Array(ids),
	)
	if err != nil {
		return translateError(err, "job_posting_tags", linkField)
	}
	defer rows.Close()

	for rows.Next() {
		var postingID int64
		var tag model.Tag
		if err := rows.Scan(&postingID, &tag.ID, &tag.Name); err != nil {
			return translateError(err, "job_posting_tags", linkField)
		}
		if p, ok := byID[postingID]; ok {
			p.Tags = append(p.Tags, tag)
		}
	}
	if err := rows.Err(); err != nil {
		return translateError(err, "job_posting_tags", linkField)
	}

	return nil
}

// Search は条件に一致する求人を公開日の降順で返す。
func (r *JobPostingRepo) Search(ctx context.Context, search JobPostingSearch) ([]*model.JobPosting, error) {
	var conds []string
	var args []any

	if search.CategoryID > 0 {
		args = append(args, search.CategoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if search.Text != "" {
		args = append(args, "%"+search.Text+"%")
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if search.ActiveOnly {
		args = append(args, time.Now())
		conds = append(conds, fmt.Sprintf("expires_at > $%d", len(args)))
	}

	query := "SELECT id, " + strings.Join(jobPostingMapper{}.Columns(), ", ") + " FROM job_postings"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY published_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "job_postings", jobPostingMapper{}.Field)
	}
	defer rows.Close()

	var postings []*model.JobPosting
	for rows.Next() {
		p, err := jobPostingMapper{}.Scan(rows)
		if err != nil {
			return nil, translateError(err, "job_postings", jobPostingMapper{}.Field)
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "job_postings", jobPostingMapper{}.Field)
	}

	return postings, nil
}

// CountByCategory は指定カテゴリを参照する求人数を返す。
// カテゴリ削除時のガード判定に使用する。
func (r *JobPostingRepo) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM job_postings WHERE category_id = $1`,
		categoryID,
	).Scan(&count)
	if err != nil {
		return 0, translateError(err, "job_postings", jobPostingMapper{}.Field)
	}
	return count, nil
}
